package model

import "time"

// AssetType enumerates the kinds of overlay assets served to kiosks.
type AssetType string

const (
	AssetFrame   AssetType = "frame"
	AssetFilter  AssetType = "filter"
	AssetSticker AssetType = "sticker"
)

// ValidAssetType reports whether t is one of the known asset kinds.
func ValidAssetType(t AssetType) bool {
	switch t {
	case AssetFrame, AssetFilter, AssetSticker:
		return true
	}
	return false
}

// Asset represents a row in the `assets` table.  The layout fields
// (FilterType, Scale, OffsetY, AnchorIdx, LeftIdx, RightIdx) are
// meaningful only when Type is filter; for frames and stickers they
// must all be null.  That constraint is enforced at validation time,
// not by the schema.
//
// Fields:
//  ID         – UUID primary key.
//  Type       – frame, filter or sticker.
//  ImageURL   – location of the asset image.
//  PublicID   – external storage identifier.
//  FilterType – rendering mode of a filter (e.g. face overlay).
//  Scale      – overlay scale factor relative to the anchor span.
//  OffsetY    – vertical offset relative to the anchor point.
//  AnchorIdx  – landmark index the overlay is pinned to.
//  LeftIdx    – left landmark index used to compute the span.
//  RightIdx   – right landmark index used to compute the span.
//  CreatedAt  – timestamp of creation.
//  UpdatedAt  – timestamp of last update.
type Asset struct {
	ID         string     `json:"id"`
	Type       AssetType  `json:"type"`
	ImageURL   string     `json:"imageUrl"`
	PublicID   string     `json:"publicId"`
	FilterType *string    `json:"filterType,omitempty"`
	Scale      *float64   `json:"scale,omitempty"`
	OffsetY    *float64   `json:"offsetY,omitempty"`
	AnchorIdx  *int       `json:"anchorIdx,omitempty"`
	LeftIdx    *int       `json:"leftIdx,omitempty"`
	RightIdx   *int       `json:"rightIdx,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// HasLayout reports whether any filter layout field is set.
func (a *Asset) HasLayout() bool {
	return a.FilterType != nil || a.Scale != nil || a.OffsetY != nil ||
		a.AnchorIdx != nil || a.LeftIdx != nil || a.RightIdx != nil
}
