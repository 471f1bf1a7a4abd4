// Package service hosts the session lifecycle coordinator, the points
// ledger and the broker publisher.  The coordinator is the single
// writer of session status and of the booth status/current_session_id
// pair; handlers never mutate those columns directly.
package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/minhvt/photobooth-backend/internal/model"
	"github.com/minhvt/photobooth-backend/internal/repository"
)

// Lifecycle-state errors.  Handlers translate these into 4xx responses.
var (
	ErrSessionExpired       = errors.New("session has expired")
	ErrSessionNotPending    = errors.New("session is not pending")
	ErrSessionNotActive     = errors.New("session is not active")
	ErrSessionCompleted     = errors.New("session is already completed")
	ErrSessionTerminal      = errors.New("session is in a terminal state")
	ErrSessionActive        = errors.New("session is still active")
	ErrUserHasActiveSession = errors.New("user already has an active session")
)

// SessionStore is the persistence surface the coordinator needs for
// sessions.  *repository.SessionRepo implements it.
type SessionStore interface {
	Get(ctx context.Context, id string) (model.Session, error)
	Create(ctx context.Context, s *model.Session) error
	SetStarted(ctx context.Context, id string, at time.Time) error
	SetCompleted(ctx context.Context, id string, at time.Time) error
	SetCancelled(ctx context.Context, id string) error
	MarkExpired(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
	HasActive(ctx context.Context, userID string) (bool, error)
	ExpiredPending(ctx context.Context, now time.Time) ([]model.Session, error)
	AddFilter(ctx context.Context, sessionID, filterID string) error
	RemoveFilter(ctx context.Context, sessionID, filterID string) error
}

// BoothStore is the persistence surface the coordinator needs for
// booths.  *repository.PhotoboothRepo implements it.
type BoothStore interface {
	Get(ctx context.Context, id string) (model.Photobooth, error)
	Acquire(ctx context.Context, id, sessionID string) error
	Release(ctx context.Context, id string) error
	ReleaseIfSession(ctx context.Context, boothID, sessionID string) error
}

// keyedMutex serializes work per logical entity (booth, user, session)
// without one big lock.  Entries are refcounted and removed when the
// last holder releases, so the map does not grow with history.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	m    sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{entries: map[string]*lockEntry{}}
}

// lock acquires all keys in sorted order and returns a release func.
// Sorting makes multi-key acquisition deadlock-free.
func (k *keyedMutex) lock(keys ...string) func() {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	held := make([]*lockEntry, 0, len(sorted))
	for _, key := range sorted {
		k.mu.Lock()
		e := k.entries[key]
		if e == nil {
			e = &lockEntry{}
			k.entries[key] = e
		}
		e.refs++
		k.mu.Unlock()
		e.m.Lock()
		held = append(held, e)
	}
	released := sorted
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].m.Unlock()
			k.mu.Lock()
			held[i].refs--
			if held[i].refs == 0 {
				delete(k.entries, released[i])
			}
			k.mu.Unlock()
		}
	}
}

// Actor identifies who is performing a lifecycle operation.  Admins
// may operate on any session; regular users only on their own.
type Actor struct {
	UserID string
	Admin  bool
}

// Coordinator owns the session state machine:
//
//	PENDING -> ACTIVE -> COMPLETED
//	PENDING -> EXPIRED
//	PENDING, ACTIVE -> CANCELLED
//
// COMPLETED, CANCELLED and EXPIRED are terminal.  At most one
// non-terminal session holds a booth, and a user has at most one
// ACTIVE session.  Both invariants are guarded by per-entity locks
// plus conditional SQL underneath, so handler-level races cannot
// violate them.
type Coordinator struct {
	sessions SessionStore
	booths   BoothStore
	ttl      time.Duration
	locks    *keyedMutex
	now      func() time.Time
}

// NewCoordinator builds a coordinator whose PENDING sessions expire
// after ttl.
func NewCoordinator(sessions SessionStore, booths BoothStore, ttl time.Duration) *Coordinator {
	return &Coordinator{
		sessions: sessions,
		booths:   booths,
		ttl:      ttl,
		locks:    newKeyedMutex(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create reserves a booth for the user and inserts a PENDING session
// with an expiry deadline.  The booth is acquired after the session
// row exists; if the conditional acquire loses a race the session row
// is removed again so nothing leaks.
func (c *Coordinator) Create(ctx context.Context, userID, boothID string, maxPhotos int, notes string) (model.Session, error) {
	unlock := c.locks.lock("booth:"+boothID, "user:"+userID)
	defer unlock()

	booth, err := c.booths.Get(ctx, boothID)
	if err != nil {
		return model.Session{}, err
	}
	if booth.Status != model.BoothAvailable || !booth.IsActive || booth.CurrentSessionID != nil {
		return model.Session{}, repository.ErrBoothUnavailable
	}

	active, err := c.sessions.HasActive(ctx, userID)
	if err != nil {
		return model.Session{}, err
	}
	if active {
		return model.Session{}, ErrUserHasActiveSession
	}

	expires := c.now().Add(c.ttl)
	s := model.Session{
		ID:           uuid.NewString(),
		Status:       model.SessionPending,
		UserID:       userID,
		PhotoboothID: boothID,
		MaxPhotos:    maxPhotos,
		ExpiresAt:    &expires,
		Notes:        notes,
	}
	if err := c.sessions.Create(ctx, &s); err != nil {
		return model.Session{}, err
	}
	if err := c.booths.Acquire(ctx, boothID, s.ID); err != nil {
		_ = c.sessions.Delete(ctx, s.ID)
		return model.Session{}, err
	}
	return c.sessions.Get(ctx, s.ID)
}

// Start moves a PENDING session to ACTIVE.  A session whose deadline
// has strictly passed is transitioned to EXPIRED instead, its booth
// freed, and ErrSessionExpired returned.  The deadline instant itself
// still counts as startable.
func (c *Coordinator) Start(ctx context.Context, sessionID string, actor Actor, at *time.Time) (model.Session, error) {
	unlock := c.locks.lock("session:" + sessionID)
	defer unlock()

	s, err := c.getOwned(ctx, sessionID, actor)
	if err != nil {
		return model.Session{}, err
	}
	if s.Status != model.SessionPending {
		return model.Session{}, ErrSessionNotPending
	}
	if s.ExpiresAt != nil && s.ExpiresAt.Before(c.now()) {
		if err := c.expire(ctx, &s); err != nil {
			return model.Session{}, err
		}
		return model.Session{}, ErrSessionExpired
	}

	started := c.now()
	if at != nil {
		started = at.UTC()
	}
	if err := c.sessions.SetStarted(ctx, sessionID, started); err != nil {
		return model.Session{}, err
	}
	return c.sessions.Get(ctx, sessionID)
}

// Complete moves an ACTIVE session to COMPLETED and frees its booth.
func (c *Coordinator) Complete(ctx context.Context, sessionID string, actor Actor, at *time.Time) (model.Session, error) {
	unlock := c.locks.lock("session:" + sessionID)
	defer unlock()

	s, err := c.getOwned(ctx, sessionID, actor)
	if err != nil {
		return model.Session{}, err
	}
	if s.Status != model.SessionActive {
		return model.Session{}, ErrSessionNotActive
	}

	completed := c.now()
	if at != nil {
		completed = at.UTC()
	}
	if err := c.sessions.SetCompleted(ctx, sessionID, completed); err != nil {
		return model.Session{}, err
	}
	if err := c.releaseBooth(ctx, s.PhotoboothID, s.ID); err != nil {
		return model.Session{}, err
	}
	return c.sessions.Get(ctx, sessionID)
}

// Cancel aborts a PENDING or ACTIVE session and frees its booth.
// Terminal sessions cannot be cancelled; a completed one gets its own
// error so callers can word the rejection precisely.
func (c *Coordinator) Cancel(ctx context.Context, sessionID string, actor Actor) (model.Session, error) {
	unlock := c.locks.lock("session:" + sessionID)
	defer unlock()

	s, err := c.getOwned(ctx, sessionID, actor)
	if err != nil {
		return model.Session{}, err
	}
	switch s.Status {
	case model.SessionCompleted:
		return model.Session{}, ErrSessionCompleted
	case model.SessionCancelled, model.SessionExpired:
		return model.Session{}, ErrSessionTerminal
	}

	if err := c.sessions.SetCancelled(ctx, sessionID); err != nil {
		return model.Session{}, err
	}
	if err := c.releaseBooth(ctx, s.PhotoboothID, s.ID); err != nil {
		return model.Session{}, err
	}
	return c.sessions.Get(ctx, sessionID)
}

// Remove deletes a session record entirely and returns the removed
// session so callers can announce the removal.  ACTIVE sessions must
// be completed or cancelled first.  The booth is released only if it
// still references this session.
func (c *Coordinator) Remove(ctx context.Context, sessionID string) (model.Session, error) {
	unlock := c.locks.lock("session:" + sessionID)
	defer unlock()

	s, err := c.sessions.Get(ctx, sessionID)
	if err != nil {
		return model.Session{}, err
	}
	if s.Status == model.SessionActive {
		return model.Session{}, ErrSessionActive
	}
	if err := c.releaseBooth(ctx, s.PhotoboothID, s.ID); err != nil {
		return model.Session{}, err
	}
	if err := c.sessions.Delete(ctx, sessionID); err != nil {
		return model.Session{}, err
	}
	return s, nil
}

// AddFilter attaches a filter to a session that is not COMPLETED or
// CANCELLED.  Duplicate attachments surface as ErrFilterExists.
func (c *Coordinator) AddFilter(ctx context.Context, sessionID, filterID string, actor Actor) error {
	unlock := c.locks.lock("session:" + sessionID)
	defer unlock()

	s, err := c.getOwned(ctx, sessionID, actor)
	if err != nil {
		return err
	}
	if s.Status == model.SessionCompleted || s.Status == model.SessionCancelled {
		return ErrSessionTerminal
	}
	return c.sessions.AddFilter(ctx, sessionID, filterID)
}

// RemoveFilter detaches a filter under the same state rules as AddFilter.
func (c *Coordinator) RemoveFilter(ctx context.Context, sessionID, filterID string, actor Actor) error {
	unlock := c.locks.lock("session:" + sessionID)
	defer unlock()

	s, err := c.getOwned(ctx, sessionID, actor)
	if err != nil {
		return err
	}
	if s.Status == model.SessionCompleted || s.Status == model.SessionCancelled {
		return ErrSessionTerminal
	}
	return c.sessions.RemoveFilter(ctx, sessionID, filterID)
}

// CleanupExpired sweeps PENDING sessions whose deadline has strictly
// passed, expiring each and freeing its booth.  The PENDING guard sits
// in the conditional update, so concurrent sweeps and a racing Start
// count each expiry exactly once.
func (c *Coordinator) CleanupExpired(ctx context.Context) (int, error) {
	stale, err := c.sessions.ExpiredPending(ctx, c.now())
	if err != nil {
		return 0, err
	}
	expired := 0
	for i := range stale {
		s := stale[i]
		unlock := c.locks.lock("session:" + s.ID)
		did, err := c.sessions.MarkExpired(ctx, s.ID)
		if err != nil {
			unlock()
			return expired, err
		}
		if did {
			if err := c.releaseBooth(ctx, s.PhotoboothID, s.ID); err != nil {
				unlock()
				return expired, err
			}
			expired++
		}
		unlock()
	}
	return expired, nil
}

// expire flips a session to EXPIRED (if still PENDING) and frees its
// booth.  Called under the session lock.
func (c *Coordinator) expire(ctx context.Context, s *model.Session) error {
	did, err := c.sessions.MarkExpired(ctx, s.ID)
	if err != nil {
		return err
	}
	if did {
		return c.releaseBooth(ctx, s.PhotoboothID, s.ID)
	}
	return nil
}

func (c *Coordinator) releaseBooth(ctx context.Context, boothID, sessionID string) error {
	unlock := c.locks.lock("booth:" + boothID)
	defer unlock()
	return c.booths.ReleaseIfSession(ctx, boothID, sessionID)
}

// getOwned loads a session and enforces ownership for non-admin actors.
func (c *Coordinator) getOwned(ctx context.Context, sessionID string, actor Actor) (model.Session, error) {
	s, err := c.sessions.Get(ctx, sessionID)
	if err != nil {
		return model.Session{}, err
	}
	if !actor.Admin && s.UserID != actor.UserID {
		return model.Session{}, repository.ErrForbidden
	}
	return s, nil
}
