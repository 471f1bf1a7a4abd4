// Package hub implements the realtime fan-out channel used by kiosks
// and operator dashboards.  Delivery is fire-and-forget: events are
// pushed to whoever is connected at emission time, slow consumers are
// disconnected, and nothing is replayed.
package hub

import (
	"encoding/json"
	"log"
)

// Event is the wire envelope broadcast to subscribers.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Canonical event names.  Attach and detach form a symmetric pair.
const (
	EventStartSession  = "start_session"
	EventStopSession   = "stop_session"
	EventStartCapture  = "start_capture"
	EventFilterAdded   = "filter_added"
	EventFilterRemoved = "filter_removed"
)

// Hub maintains the set of active clients and routes events to them.
// All membership changes go through the channels consumed by Run, so
// the clients map is touched by a single goroutine only.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
}

func New() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Event, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes registrations and broadcasts until the process exits.
// Call it in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			log.Printf("hub: client connected (%d online)", len(h.clients))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				log.Printf("hub: client disconnected (%d online)", len(h.clients))
			}
		case ev := <-h.broadcast:
			payload, err := json.Marshal(ev)
			if err != nil {
				log.Printf("hub: marshal event failed: %v", err)
				continue
			}
			for c := range h.clients {
				if !c.wants(ev.Type) {
					continue
				}
				select {
				case c.send <- payload:
				default:
					// Client cannot keep up; drop it rather than block everyone.
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// Publish queues an event for broadcast.  It never blocks the caller;
// if the hub's buffer is full the event is dropped and logged.
func (h *Hub) Publish(ev Event) {
	select {
	case h.broadcast <- ev:
	default:
		log.Printf("hub: broadcast buffer full, dropping %s", ev.Type)
	}
}
