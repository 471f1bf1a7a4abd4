package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/minhvt/photobooth-backend/internal/hub"
	"github.com/minhvt/photobooth-backend/internal/model"
	"github.com/minhvt/photobooth-backend/internal/repository"
	"github.com/minhvt/photobooth-backend/internal/service"
)

// stubSessionStore backs a coordinator with canned sessions; only the
// methods the removal path touches do real work.
type stubSessionStore struct {
	sessions map[string]model.Session
}

func (s *stubSessionStore) Get(_ context.Context, id string) (model.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return model.Session{}, repository.ErrSessionNotFound
	}
	return sess, nil
}

func (s *stubSessionStore) Create(context.Context, *model.Session) error { return nil }
func (s *stubSessionStore) SetStarted(context.Context, string, time.Time) error {
	return nil
}
func (s *stubSessionStore) SetCompleted(context.Context, string, time.Time) error {
	return nil
}
func (s *stubSessionStore) SetCancelled(context.Context, string) error { return nil }
func (s *stubSessionStore) MarkExpired(context.Context, string) (bool, error) {
	return false, nil
}

func (s *stubSessionStore) Delete(_ context.Context, id string) error {
	if _, ok := s.sessions[id]; !ok {
		return repository.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *stubSessionStore) HasActive(context.Context, string) (bool, error) { return false, nil }
func (s *stubSessionStore) ExpiredPending(context.Context, time.Time) ([]model.Session, error) {
	return nil, nil
}
func (s *stubSessionStore) AddFilter(context.Context, string, string) error    { return nil }
func (s *stubSessionStore) RemoveFilter(context.Context, string, string) error { return nil }

type stubBoothStore struct{}

func (stubBoothStore) Get(context.Context, string) (model.Photobooth, error) {
	return model.Photobooth{}, nil
}
func (stubBoothStore) Acquire(context.Context, string, string) error          { return nil }
func (stubBoothStore) Release(context.Context, string) error                  { return nil }
func (stubBoothStore) ReleaseIfSession(context.Context, string, string) error { return nil }

// eventRecorder captures hub publishes for assertions.
type eventRecorder struct {
	events []hub.Event
}

func (r *eventRecorder) Publish(ev hub.Event) { r.events = append(r.events, ev) }

func deleteContext(t *testing.T, id string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c, rec
}

func TestAdminDeletePublishesStopSession(t *testing.T) {
	st := &stubSessionStore{sessions: map[string]model.Session{
		"s-1": {ID: "s-1", UserID: "user-1", PhotoboothID: "b-1", Status: model.SessionCompleted},
	}}
	coord := service.NewCoordinator(st, stubBoothStore{}, 30*time.Minute)
	events := &eventRecorder{}
	h := NewAdminSessionHandler(coord, nil, events)

	c, rec := deleteContext(t, "s-1")
	if err := h.Delete(c); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if _, ok := st.sessions["s-1"]; ok {
		t.Fatal("session row survived delete")
	}

	if len(events.events) != 1 {
		t.Fatalf("published %d events, want 1", len(events.events))
	}
	ev := events.events[0]
	if ev.Type != hub.EventStopSession {
		t.Errorf("event type = %q, want %q", ev.Type, hub.EventStopSession)
	}
	data, ok := ev.Data.(echo.Map)
	if !ok {
		t.Fatalf("event data type %T", ev.Data)
	}
	if data["user_id"] != "user-1" {
		t.Errorf("user_id = %v, want user-1", data["user_id"])
	}
}

func TestAdminDeleteActiveSessionPublishesNothing(t *testing.T) {
	st := &stubSessionStore{sessions: map[string]model.Session{
		"s-1": {ID: "s-1", UserID: "user-1", PhotoboothID: "b-1", Status: model.SessionActive},
	}}
	coord := service.NewCoordinator(st, stubBoothStore{}, 30*time.Minute)
	events := &eventRecorder{}
	h := NewAdminSessionHandler(coord, nil, events)

	c, rec := deleteContext(t, "s-1")
	if err := h.Delete(c); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(events.events) != 0 {
		t.Fatalf("published %d events on a refused delete, want 0", len(events.events))
	}
}
