package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/minhvt/photobooth-backend/internal/model"
	"github.com/minhvt/photobooth-backend/internal/repository"
)

// storeState is shared in-memory backing for the fake stores.
type storeState struct {
	mu          sync.Mutex
	sessions    map[string]model.Session
	booths      map[string]model.Photobooth
	filters     map[string][]string
	failAcquire error
}

func newStoreState() *storeState {
	return &storeState{
		sessions: map[string]model.Session{},
		booths:   map[string]model.Photobooth{},
		filters:  map[string][]string{},
	}
}

type fakeSessions struct{ st *storeState }

func (f *fakeSessions) Get(_ context.Context, id string) (model.Session, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	s, ok := f.st.sessions[id]
	if !ok {
		return model.Session{}, repository.ErrSessionNotFound
	}
	s.FilterIDs = append([]string(nil), f.st.filters[id]...)
	return s, nil
}

func (f *fakeSessions) Create(_ context.Context, s *model.Session) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	f.st.sessions[s.ID] = *s
	return nil
}

func (f *fakeSessions) SetStarted(_ context.Context, id string, at time.Time) error {
	return f.mutate(id, func(s *model.Session) {
		s.Status = model.SessionActive
		s.StartedAt = &at
	})
}

func (f *fakeSessions) SetCompleted(_ context.Context, id string, at time.Time) error {
	return f.mutate(id, func(s *model.Session) {
		s.Status = model.SessionCompleted
		s.CompletedAt = &at
	})
}

func (f *fakeSessions) SetCancelled(_ context.Context, id string) error {
	return f.mutate(id, func(s *model.Session) { s.Status = model.SessionCancelled })
}

func (f *fakeSessions) MarkExpired(_ context.Context, id string) (bool, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	s, ok := f.st.sessions[id]
	if !ok {
		return false, repository.ErrSessionNotFound
	}
	if s.Status != model.SessionPending {
		return false, nil
	}
	s.Status = model.SessionExpired
	f.st.sessions[id] = s
	return true, nil
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if _, ok := f.st.sessions[id]; !ok {
		return repository.ErrSessionNotFound
	}
	delete(f.st.sessions, id)
	delete(f.st.filters, id)
	return nil
}

func (f *fakeSessions) HasActive(_ context.Context, userID string) (bool, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	for _, s := range f.st.sessions {
		if s.UserID == userID && s.Status == model.SessionActive {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSessions) ExpiredPending(_ context.Context, now time.Time) ([]model.Session, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	var out []model.Session
	for _, s := range f.st.sessions {
		if s.Status == model.SessionPending && s.ExpiresAt != nil && s.ExpiresAt.Before(now) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessions) AddFilter(_ context.Context, sessionID, filterID string) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	for _, id := range f.st.filters[sessionID] {
		if id == filterID {
			return repository.ErrFilterExists
		}
	}
	f.st.filters[sessionID] = append(f.st.filters[sessionID], filterID)
	return nil
}

func (f *fakeSessions) RemoveFilter(_ context.Context, sessionID, filterID string) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	ids := f.st.filters[sessionID]
	for i, id := range ids {
		if id == filterID {
			f.st.filters[sessionID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return repository.ErrFilterNotFound
}

func (f *fakeSessions) mutate(id string, fn func(*model.Session)) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	s, ok := f.st.sessions[id]
	if !ok {
		return repository.ErrSessionNotFound
	}
	fn(&s)
	f.st.sessions[id] = s
	return nil
}

type fakeBooths struct{ st *storeState }

func (f *fakeBooths) Get(_ context.Context, id string) (model.Photobooth, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	b, ok := f.st.booths[id]
	if !ok {
		return model.Photobooth{}, repository.ErrBoothNotFound
	}
	return b, nil
}

func (f *fakeBooths) Acquire(_ context.Context, id, sessionID string) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if f.st.failAcquire != nil {
		return f.st.failAcquire
	}
	b, ok := f.st.booths[id]
	if !ok {
		return repository.ErrBoothNotFound
	}
	if b.Status != model.BoothAvailable || !b.IsActive || b.CurrentSessionID != nil {
		return repository.ErrBoothUnavailable
	}
	b.Status = model.BoothBusy
	b.CurrentSessionID = &sessionID
	f.st.booths[id] = b
	return nil
}

func (f *fakeBooths) Release(_ context.Context, id string) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	b := f.st.booths[id]
	b.Status = model.BoothAvailable
	b.CurrentSessionID = nil
	f.st.booths[id] = b
	return nil
}

func (f *fakeBooths) ReleaseIfSession(_ context.Context, boothID, sessionID string) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	b, ok := f.st.booths[boothID]
	if !ok {
		return nil
	}
	if b.CurrentSessionID != nil && *b.CurrentSessionID == sessionID {
		b.Status = model.BoothAvailable
		b.CurrentSessionID = nil
		f.st.booths[boothID] = b
	}
	return nil
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestCoordinator(t *testing.T) (*Coordinator, *storeState, *fakeClock) {
	t.Helper()
	st := newStoreState()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	st.booths["booth-1"] = model.Photobooth{
		ID: "booth-1", Name: "Lobby", Status: model.BoothAvailable, IsActive: true,
	}
	c := NewCoordinator(&fakeSessions{st: st}, &fakeBooths{st: st}, 30*time.Minute)
	c.now = clock.Now
	return c, st, clock
}

func owner() Actor { return Actor{UserID: "user-1"} }

func TestCreateReservesBooth(t *testing.T) {
	c, st, clock := newTestCoordinator(t)

	s, err := c.Create(context.Background(), "user-1", "booth-1", 5, "birthday")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if s.Status != model.SessionPending {
		t.Errorf("status = %s, want PENDING", s.Status)
	}
	if s.ExpiresAt == nil || !s.ExpiresAt.Equal(clock.Now().Add(30*time.Minute)) {
		t.Errorf("expiresAt = %v, want now+30m", s.ExpiresAt)
	}

	b := st.booths["booth-1"]
	if b.Status != model.BoothBusy {
		t.Errorf("booth status = %s, want BUSY", b.Status)
	}
	if b.CurrentSessionID == nil || *b.CurrentSessionID != s.ID {
		t.Errorf("booth currentSessionID = %v, want %s", b.CurrentSessionID, s.ID)
	}
}

func TestCreateRejectsHeldBooth(t *testing.T) {
	c, _, _ := newTestCoordinator(t)

	if _, err := c.Create(context.Background(), "user-1", "booth-1", 5, ""); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := c.Create(context.Background(), "user-2", "booth-1", 5, "")
	if !errors.Is(err, repository.ErrBoothUnavailable) {
		t.Fatalf("second create err = %v, want ErrBoothUnavailable", err)
	}
}

func TestCreateRejectsInactiveBooth(t *testing.T) {
	c, st, _ := newTestCoordinator(t)
	b := st.booths["booth-1"]
	b.IsActive = false
	st.booths["booth-1"] = b

	_, err := c.Create(context.Background(), "user-1", "booth-1", 5, "")
	if !errors.Is(err, repository.ErrBoothUnavailable) {
		t.Fatalf("err = %v, want ErrBoothUnavailable", err)
	}
}

func TestCreateRejectsUnknownBooth(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	_, err := c.Create(context.Background(), "user-1", "missing", 5, "")
	if !errors.Is(err, repository.ErrBoothNotFound) {
		t.Fatalf("err = %v, want ErrBoothNotFound", err)
	}
}

func TestCreateRejectsSecondActiveSession(t *testing.T) {
	c, st, _ := newTestCoordinator(t)
	st.booths["booth-2"] = model.Photobooth{
		ID: "booth-2", Name: "Annex", Status: model.BoothAvailable, IsActive: true,
	}

	s, err := c.Create(context.Background(), "user-1", "booth-1", 5, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := c.Start(context.Background(), s.ID, owner(), nil); err != nil {
		t.Fatalf("start: %v", err)
	}

	_, err = c.Create(context.Background(), "user-1", "booth-2", 5, "")
	if !errors.Is(err, ErrUserHasActiveSession) {
		t.Fatalf("err = %v, want ErrUserHasActiveSession", err)
	}
}

func TestCreateSecondPendingAllowed(t *testing.T) {
	// Only ACTIVE sessions block a user; a second reservation while
	// the first is still PENDING is legal.
	c, st, _ := newTestCoordinator(t)
	st.booths["booth-2"] = model.Photobooth{
		ID: "booth-2", Name: "Annex", Status: model.BoothAvailable, IsActive: true,
	}

	if _, err := c.Create(context.Background(), "user-1", "booth-1", 5, ""); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := c.Create(context.Background(), "user-1", "booth-2", 5, ""); err != nil {
		t.Fatalf("second create: %v", err)
	}
}

func TestCreateCompensatesFailedAcquire(t *testing.T) {
	c, st, _ := newTestCoordinator(t)
	st.failAcquire = repository.ErrBoothUnavailable

	_, err := c.Create(context.Background(), "user-1", "booth-1", 5, "")
	if !errors.Is(err, repository.ErrBoothUnavailable) {
		t.Fatalf("err = %v, want ErrBoothUnavailable", err)
	}
	if len(st.sessions) != 0 {
		t.Errorf("session row leaked after failed acquire: %d rows", len(st.sessions))
	}
}

func TestStartActivatesPending(t *testing.T) {
	c, _, clock := newTestCoordinator(t)
	s, _ := c.Create(context.Background(), "user-1", "booth-1", 5, "")

	got, err := c.Start(context.Background(), s.ID, owner(), nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if got.Status != model.SessionActive {
		t.Errorf("status = %s, want ACTIVE", got.Status)
	}
	if got.StartedAt == nil || !got.StartedAt.Equal(clock.Now()) {
		t.Errorf("startedAt = %v, want %v", got.StartedAt, clock.Now())
	}
}

func TestStartAtDeadlineStillAllowed(t *testing.T) {
	c, _, clock := newTestCoordinator(t)
	s, _ := c.Create(context.Background(), "user-1", "booth-1", 5, "")

	// Land exactly on the deadline: not yet expired.
	clock.Advance(30 * time.Minute)
	if _, err := c.Start(context.Background(), s.ID, owner(), nil); err != nil {
		t.Fatalf("start at deadline: %v", err)
	}
}

func TestStartPastDeadlineExpires(t *testing.T) {
	c, st, clock := newTestCoordinator(t)
	s, _ := c.Create(context.Background(), "user-1", "booth-1", 5, "")

	clock.Advance(30*time.Minute + time.Second)
	_, err := c.Start(context.Background(), s.ID, owner(), nil)
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
	if st.sessions[s.ID].Status != model.SessionExpired {
		t.Errorf("status = %s, want EXPIRED", st.sessions[s.ID].Status)
	}
	if st.booths["booth-1"].Status != model.BoothAvailable {
		t.Errorf("booth not released after expiry")
	}
}

func TestStartRejectsNonPending(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	s, _ := c.Create(context.Background(), "user-1", "booth-1", 5, "")
	if _, err := c.Start(context.Background(), s.ID, owner(), nil); err != nil {
		t.Fatalf("start: %v", err)
	}

	_, err := c.Start(context.Background(), s.ID, owner(), nil)
	if !errors.Is(err, ErrSessionNotPending) {
		t.Fatalf("second start err = %v, want ErrSessionNotPending", err)
	}
}

func TestStartHonorsCallerTimestamp(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	s, _ := c.Create(context.Background(), "user-1", "booth-1", 5, "")

	at := time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC)
	got, err := c.Start(context.Background(), s.ID, owner(), &at)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if got.StartedAt == nil || !got.StartedAt.Equal(at) {
		t.Errorf("startedAt = %v, want %v", got.StartedAt, at)
	}
}

func TestCompleteReleasesBooth(t *testing.T) {
	c, st, _ := newTestCoordinator(t)
	s, _ := c.Create(context.Background(), "user-1", "booth-1", 5, "")
	if _, err := c.Start(context.Background(), s.ID, owner(), nil); err != nil {
		t.Fatalf("start: %v", err)
	}

	got, err := c.Complete(context.Background(), s.ID, owner(), nil)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got.Status != model.SessionCompleted {
		t.Errorf("status = %s, want COMPLETED", got.Status)
	}
	b := st.booths["booth-1"]
	if b.Status != model.BoothAvailable || b.CurrentSessionID != nil {
		t.Errorf("booth not released: status=%s current=%v", b.Status, b.CurrentSessionID)
	}
}

func TestCompleteRejectsPending(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	s, _ := c.Create(context.Background(), "user-1", "booth-1", 5, "")

	_, err := c.Complete(context.Background(), s.ID, owner(), nil)
	if !errors.Is(err, ErrSessionNotActive) {
		t.Fatalf("err = %v, want ErrSessionNotActive", err)
	}
}

func TestCancelPendingAndActive(t *testing.T) {
	c, st, _ := newTestCoordinator(t)

	s1, _ := c.Create(context.Background(), "user-1", "booth-1", 5, "")
	if _, err := c.Cancel(context.Background(), s1.ID, owner()); err != nil {
		t.Fatalf("cancel pending: %v", err)
	}
	if st.booths["booth-1"].Status != model.BoothAvailable {
		t.Fatalf("booth not released after pending cancel")
	}

	s2, _ := c.Create(context.Background(), "user-1", "booth-1", 5, "")
	if _, err := c.Start(context.Background(), s2.ID, owner(), nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	got, err := c.Cancel(context.Background(), s2.ID, owner())
	if err != nil {
		t.Fatalf("cancel active: %v", err)
	}
	if got.Status != model.SessionCancelled {
		t.Errorf("status = %s, want CANCELLED", got.Status)
	}
	if st.booths["booth-1"].Status != model.BoothAvailable {
		t.Errorf("booth not released after active cancel")
	}
}

func TestCancelRejectsTerminal(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	s, _ := c.Create(context.Background(), "user-1", "booth-1", 5, "")
	if _, err := c.Start(context.Background(), s.ID, owner(), nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := c.Complete(context.Background(), s.ID, owner(), nil); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if _, err := c.Cancel(context.Background(), s.ID, owner()); !errors.Is(err, ErrSessionCompleted) {
		t.Errorf("cancel completed err = %v, want ErrSessionCompleted", err)
	}
	if _, err := c.Cancel(context.Background(), s.ID, owner()); !errors.Is(err, ErrSessionCompleted) {
		t.Errorf("repeat cancel err = %v, want ErrSessionCompleted", err)
	}
}

func TestOwnershipEnforced(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	s, _ := c.Create(context.Background(), "user-1", "booth-1", 5, "")

	stranger := Actor{UserID: "user-2"}
	if _, err := c.Start(context.Background(), s.ID, stranger, nil); !errors.Is(err, repository.ErrForbidden) {
		t.Errorf("stranger start err = %v, want ErrForbidden", err)
	}

	admin := Actor{UserID: "user-2", Admin: true}
	if _, err := c.Start(context.Background(), s.ID, admin, nil); err != nil {
		t.Errorf("admin start err = %v", err)
	}
}

func TestRemoveRejectsActive(t *testing.T) {
	c, st, _ := newTestCoordinator(t)
	s, _ := c.Create(context.Background(), "user-1", "booth-1", 5, "")
	if _, err := c.Start(context.Background(), s.ID, owner(), nil); err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := c.Remove(context.Background(), s.ID); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("remove active err = %v, want ErrSessionActive", err)
	}

	if _, err := c.Complete(context.Background(), s.ID, owner(), nil); err != nil {
		t.Fatalf("complete: %v", err)
	}
	removed, err := c.Remove(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("remove completed: %v", err)
	}
	if removed.UserID != "user-1" {
		t.Errorf("removed.UserID = %s, want user-1", removed.UserID)
	}
	if len(st.sessions) != 0 {
		t.Errorf("session not deleted")
	}
}

func TestRemovePendingReleasesBooth(t *testing.T) {
	c, st, _ := newTestCoordinator(t)
	s, _ := c.Create(context.Background(), "user-1", "booth-1", 5, "")

	if _, err := c.Remove(context.Background(), s.ID); err != nil {
		t.Fatalf("remove pending: %v", err)
	}
	if st.booths["booth-1"].Status != model.BoothAvailable {
		t.Errorf("booth not released on remove")
	}
}

func TestFiltersFollowSessionState(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	s, _ := c.Create(context.Background(), "user-1", "booth-1", 5, "")

	if err := c.AddFilter(context.Background(), s.ID, "filter-a", owner()); err != nil {
		t.Fatalf("add filter: %v", err)
	}
	if err := c.AddFilter(context.Background(), s.ID, "filter-a", owner()); !errors.Is(err, repository.ErrFilterExists) {
		t.Errorf("duplicate add err = %v, want ErrFilterExists", err)
	}
	if err := c.RemoveFilter(context.Background(), s.ID, "filter-b", owner()); !errors.Is(err, repository.ErrFilterNotFound) {
		t.Errorf("remove absent err = %v, want ErrFilterNotFound", err)
	}

	if _, err := c.Cancel(context.Background(), s.ID, owner()); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := c.AddFilter(context.Background(), s.ID, "filter-b", owner()); !errors.Is(err, ErrSessionTerminal) {
		t.Errorf("add on cancelled err = %v, want ErrSessionTerminal", err)
	}
}

func TestCleanupExpiredIsIdempotent(t *testing.T) {
	c, st, clock := newTestCoordinator(t)
	st.booths["booth-2"] = model.Photobooth{
		ID: "booth-2", Name: "Annex", Status: model.BoothAvailable, IsActive: true,
	}

	s1, _ := c.Create(context.Background(), "user-1", "booth-1", 5, "")
	s2, _ := c.Create(context.Background(), "user-2", "booth-2", 5, "")

	clock.Advance(31 * time.Minute)

	n, err := c.CleanupExpired(context.Background())
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if n != 2 {
		t.Fatalf("expired = %d, want 2", n)
	}
	for _, id := range []string{s1.ID, s2.ID} {
		if st.sessions[id].Status != model.SessionExpired {
			t.Errorf("session %s status = %s, want EXPIRED", id, st.sessions[id].Status)
		}
	}
	for _, id := range []string{"booth-1", "booth-2"} {
		if st.booths[id].Status != model.BoothAvailable {
			t.Errorf("booth %s not released", id)
		}
	}

	n, err = c.CleanupExpired(context.Background())
	if err != nil {
		t.Fatalf("second cleanup: %v", err)
	}
	if n != 0 {
		t.Errorf("second sweep expired = %d, want 0", n)
	}
}

func TestBoothReusableAfterCompletion(t *testing.T) {
	c, _, _ := newTestCoordinator(t)

	s, _ := c.Create(context.Background(), "user-1", "booth-1", 5, "")
	if _, err := c.Start(context.Background(), s.ID, owner(), nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := c.Complete(context.Background(), s.ID, owner(), nil); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if _, err := c.Create(context.Background(), "user-2", "booth-1", 5, ""); err != nil {
		t.Fatalf("create after release: %v", err)
	}
}
