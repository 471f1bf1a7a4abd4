package model

import "time"

// BoothStatus enumerates the lifecycle states of a physical kiosk.
// AVAILABLE and BUSY are driven by the session coordinator; MAINTENANCE
// and OFFLINE are operator-controlled and independent of sessions.
type BoothStatus string

const (
	BoothAvailable   BoothStatus = "AVAILABLE"
	BoothBusy        BoothStatus = "BUSY"
	BoothMaintenance BoothStatus = "MAINTENANCE"
	BoothOffline     BoothStatus = "OFFLINE"
)

// ValidBoothStatus reports whether s is one of the known booth states.
func ValidBoothStatus(s BoothStatus) bool {
	switch s {
	case BoothAvailable, BoothBusy, BoothMaintenance, BoothOffline:
		return true
	}
	return false
}

// Photobooth represents a physical kiosk as stored in the
// `photobooths` table.  CurrentSessionID is a soft back-reference to
// the session currently occupying the booth; the authoritative owner
// of a session is always the sessions row.  The invariant maintained
// by the coordinator: CurrentSessionID is set iff Status is BUSY due
// to a pending/active session.
//
// Fields:
//  ID               – UUID primary key.
//  Name             – unique booth name.
//  Description      – free-text description.
//  Location         – free-text location.
//  Status           – one of the BoothStatus values.
//  IsActive         – whether the booth participates in allocation.
//  CurrentSessionID – session currently holding the booth (nullable).
//  CreatedAt        – timestamp of creation.
//  UpdatedAt        – timestamp of last update.
type Photobooth struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Description      string      `json:"description,omitempty"`
	Location         string      `json:"location,omitempty"`
	Status           BoothStatus `json:"status"`
	IsActive         bool        `json:"isActive"`
	CurrentSessionID *string     `json:"currentSessionId,omitempty"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// BoothStatusCounts aggregates booth counts per status for the system
// status endpoint.  Available counts only active booths.
type BoothStatusCounts struct {
	Total       int64 `json:"total"`
	Available   int64 `json:"available"`
	Busy        int64 `json:"busy"`
	Maintenance int64 `json:"maintenance"`
	Offline     int64 `json:"offline"`
}
