package model

import "time"

// Photo represents one captured image belonging to a session, as
// stored in the `photos` table.  Rows are created only while the
// owning session is ACTIVE and are deleted in cascade with it.
// ProcessedAt is stamped on the first transition of IsProcessed to
// true and never cleared afterwards.
//
// Fields:
//  ID           – UUID primary key.
//  SessionID    – owning session.
//  ImageURL     – caller-supplied image location.
//  PublicID     – external storage identifier (nullable).
//  ThumbnailURL – caller-supplied thumbnail location (nullable).
//  SortOrder    – position within the session, assigned on capture.
//  Caption      – free-text caption.
//  IsProcessed  – whether post-processing finished.
//  ProcessedAt  – when IsProcessed first became true.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Photo struct {
	ID           string     `json:"id"`
	SessionID    string     `json:"sessionId"`
	ImageURL     string     `json:"imageUrl"`
	PublicID     *string    `json:"publicId,omitempty"`
	ThumbnailURL *string    `json:"thumbnailUrl,omitempty"`
	SortOrder    int        `json:"sortOrder"`
	Caption      string     `json:"caption,omitempty"`
	IsProcessed  bool       `json:"isProcessed"`
	ProcessedAt  *time.Time `json:"processedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
