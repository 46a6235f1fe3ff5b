package domain

import "time"

// PhotoState tracks the tagging pipeline lifecycle of a photo.
// A photo is created pending, and transitions exactly once per
// processing run to tagged or tag_failed. The uploaded file persists
// regardless of the outcome.
type PhotoState string

const (
	// PhotoStatePending means the photo is stored but not yet analyzed.
	PhotoStatePending PhotoState = "pending"
	// PhotoStateTagged means captioning/tagging completed (possibly with
	// empty results when models are disabled).
	PhotoStateTagged PhotoState = "tagged"
	// PhotoStateTagFailed means the model step errored; the photo and
	// file persist, untagged.
	PhotoStateTagFailed PhotoState = "tag_failed"
)

// Photo represents an uploaded image and its derived metadata.
type Photo struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	FileKey     string     `json:"file_key"` // Blob store reference
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Caption     *string    `json:"caption,omitempty"` // Model-generated, nil until processed
	IsPublic    bool       `json:"is_public"`
	State       PhotoState `json:"state"`

	// Derived at upload time, best-effort.
	ContentType string `json:"content_type,omitempty"`
	SizeBytes   int64  `json:"size_bytes,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	BlurHash    string `json:"blur_hash,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Tags associated with this photo, with model confidence.
	Tags []TagDetail `json:"tags"`
}

// TagDetail is a tag as attached to a specific photo.
// Confidence is 0 for tags that were not model-derived.
type TagDetail struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Matched    string  `json:"matched,omitempty"` // Name variant actually matched by the model
}

// OwnedBy reports whether the photo belongs to the given user ID.
func (p *Photo) OwnedBy(userID string) bool {
	return userID != "" && p.OwnerID == userID
}
