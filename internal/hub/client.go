package hub

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Kiosks and dashboards connect from arbitrary origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one websocket subscriber.  An empty topic set means the
// client receives every event; otherwise only the listed types.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	topics map[string]bool
}

func (c *Client) wants(eventType string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.topics) == 0 {
		return true
	}
	return c.topics[eventType]
}

// subscribeMessage is the only inbound frame clients may send.
type subscribeMessage struct {
	Action string   `json:"action"`
	Topics []string `json:"topics"`
}

// readPump consumes inbound frames, applying subscribe requests and
// discarding everything else.  It also drives the pong deadline.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("hub: read error: %v", err)
			}
			return
		}
		var msg subscribeMessage
		if json.Unmarshal(raw, &msg) != nil || msg.Action != "subscribe" {
			continue
		}
		topics := make(map[string]bool, len(msg.Topics))
		for _, t := range msg.Topics {
			topics[t] = true
		}
		c.mu.Lock()
		c.topics = topics
		c.mu.Unlock()
	}
}

// writePump flushes queued events to the peer and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWS upgrades an HTTP request and registers the new client.
func ServeWS(h *Hub, w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 32),
		topics: map[string]bool{},
	}
	h.register <- c
	go c.writePump()
	go c.readPump()
	return nil
}
