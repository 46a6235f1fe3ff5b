package domain

import "time"

// Tag is a shared, canonical label. Tags have no owner: the same tag row
// is referenced by every photo it applies to, and tags survive photo
// deletion.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"` // Canonical, case-folded, unique
	CreatedAt time.Time `json:"created_at"`
}

// TagStats is a tag with aggregate usage data for admin reporting.
type TagStats struct {
	Tag
	PhotoCount    int      `json:"photo_count"`
	AvgConfidence *float64 `json:"avg_confidence,omitempty"`
}

// RelatedTag is a tag that co-occurs with another tag on the same photos.
type RelatedTag struct {
	Name        string `json:"name"`
	Correlation int    `json:"correlation"` // Number of shared photos
}
