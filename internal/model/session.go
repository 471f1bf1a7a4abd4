package model

import "time"

// SessionStatus enumerates the states of a photo session.  The state
// machine is: PENDING -> ACTIVE -> COMPLETED, PENDING -> EXPIRED and
// {PENDING, ACTIVE} -> CANCELLED.  COMPLETED, CANCELLED and EXPIRED
// are terminal; no transition leaves them.
type SessionStatus string

const (
	SessionPending   SessionStatus = "PENDING"
	SessionActive    SessionStatus = "ACTIVE"
	SessionCompleted SessionStatus = "COMPLETED"
	SessionCancelled SessionStatus = "CANCELLED"
	SessionExpired   SessionStatus = "EXPIRED"
)

// Terminal reports whether the status permits no further transitions.
func (s SessionStatus) Terminal() bool {
	switch s {
	case SessionCompleted, SessionCancelled, SessionExpired:
		return true
	}
	return false
}

// ValidSessionStatus reports whether s is one of the known session states.
func ValidSessionStatus(s SessionStatus) bool {
	switch s {
	case SessionPending, SessionActive, SessionCompleted, SessionCancelled, SessionExpired:
		return true
	}
	return false
}

// MaxPhotos bounds applied at input validation time.
const (
	MinPhotosPerSession     = 1
	MaxPhotosPerSession     = 20
	DefaultPhotosPerSession = 5
)

// Session represents one reservation+capture cycle binding a user to a
// booth, as stored in the `sessions` table.  Status is written only by
// the session lifecycle coordinator.  PhotoCount is mutated only by
// photo creation and removal.  FilterIDs is the ordered filter list
// loaded from the session_filters table.
//
// Fields:
//  ID           – UUID primary key.
//  Status       – current lifecycle state.
//  UserID       – owning user; always taken from the authenticated caller.
//  PhotoboothID – booth exclusively held while the session is PENDING/ACTIVE.
//  PhotoCount   – number of photos captured so far.
//  MaxPhotos    – per-session photo limit (1–20, default 5).
//  StartedAt    – set when the session transitions to ACTIVE.
//  CompletedAt  – set when the session transitions to COMPLETED.
//  ExpiresAt    – deadline for starting a PENDING session.
//  Notes        – free-text notes.
//  FilterIDs    – ordered filter asset references.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Session struct {
	ID           string        `json:"id"`
	Status       SessionStatus `json:"status"`
	UserID       string        `json:"userId"`
	PhotoboothID string        `json:"photoboothId"`
	PhotoCount   int           `json:"photoCount"`
	MaxPhotos    int           `json:"maxPhotos"`
	StartedAt    *time.Time    `json:"startedAt,omitempty"`
	CompletedAt  *time.Time    `json:"completedAt,omitempty"`
	ExpiresAt    *time.Time    `json:"expiresAt,omitempty"`
	Notes        string        `json:"notes,omitempty"`
	FilterIDs    []string      `json:"filterIds"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// SessionStatusCounts aggregates session counts per status for the
// system status endpoint and admin stats.
type SessionStatusCounts struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
	Expired   int64 `json:"expired"`
}
