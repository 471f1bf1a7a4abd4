// Package queue defines message payloads exchanged over the message broker.
package queue

// SessionLifecycleEvent is published on every session state transition.
// It contains enough information for downstream consumers to log, notify,
// or trigger analytics without querying the primary database.
type SessionLifecycleEvent struct {
	SessionID    string `json:"session_id"`
	UserID       string `json:"user_id"`
	PhotoboothID string `json:"photobooth_id"`
	Status       string `json:"status"`
	Transition   string `json:"transition"` // created, started, completed, cancelled, expired
	PhotoCount   int    `json:"photo_count"`
	MaxPhotos    int    `json:"max_photos"`
	OccurredAt   string `json:"occurred_at"`
}
