package hub

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) (*Hub, *websocket.Conn) {
	t.Helper()
	h := New()
	go h.Run()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = ServeWS(h, w, r)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	// Registration runs asynchronously after the upgrade.
	time.Sleep(50 * time.Millisecond)
	return h, conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		t.Fatalf("unmarshal %q: %v", raw, err)
	}
	return ev
}

func TestBroadcastReachesClient(t *testing.T) {
	h, conn := newTestServer(t)

	h.Publish(Event{Type: EventStartSession, Data: map[string]string{"user_id": "user-1"}})

	ev := readEvent(t, conn)
	if ev.Type != EventStartSession {
		t.Fatalf("type = %q, want %q", ev.Type, EventStartSession)
	}
	data, ok := ev.Data.(map[string]any)
	if !ok {
		t.Fatalf("data type %T", ev.Data)
	}
	if data["user_id"] != "user-1" {
		t.Errorf("user_id = %v, want user-1", data["user_id"])
	}
}

func TestSubscribeFiltersEvents(t *testing.T) {
	h, conn := newTestServer(t)

	sub := map[string]any{"action": "subscribe", "topics": []string{EventFilterAdded}}
	if err := conn.WriteJSON(sub); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	// Give the read pump a moment to apply the topic set.
	time.Sleep(50 * time.Millisecond)

	h.Publish(Event{Type: EventStopSession, Data: map[string]string{"session_id": "s-1"}})
	h.Publish(Event{Type: EventFilterAdded, Data: map[string]string{"filter_id": "f-1"}})

	ev := readEvent(t, conn)
	if ev.Type != EventFilterAdded {
		t.Fatalf("got %q, want only %q past the filter", ev.Type, EventFilterAdded)
	}
}

func TestBroadcastFansOut(t *testing.T) {
	h, conn1 := newTestServer(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = ServeWS(h, w, r)
	}))
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn2, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial second client: %v", err)
	}
	t.Cleanup(func() { _ = conn2.Close() })
	time.Sleep(50 * time.Millisecond)

	h.Publish(Event{Type: EventStartCapture, Data: map[string]string{"session_id": "s-1"}})

	for i, conn := range []*websocket.Conn{conn1, conn2} {
		if ev := readEvent(t, conn); ev.Type != EventStartCapture {
			t.Errorf("client %d got %q, want %q", i+1, ev.Type, EventStartCapture)
		}
	}
}
