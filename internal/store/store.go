// Package store defines the persistence interface consumed by services
// and the sentinel errors implementations must return.
package store

import (
	"context"

	"github.com/campuslens/campuslens-server/internal/domain"
	"github.com/campuslens/campuslens-server/internal/errors"
)

// Sentinel errors. Implementations return these (possibly wrapped with
// errors.WithCause) so callers can branch with errors.Is.
var (
	ErrNotFound      = errors.NotFound("resource not found")
	ErrAlreadyExists = errors.Conflict("resource already exists")
)

// Sort is a photo listing sort order.
type Sort string

const (
	// SortNewest orders by creation time descending (default).
	SortNewest Sort = "newest"
	// SortOldest orders by creation time ascending.
	SortOldest Sort = "oldest"
	// SortTitle orders by title, lexicographic ascending.
	SortTitle Sort = "title"
)

// DefaultLimit is applied when a photo query does not set one.
const DefaultLimit = 100

// PhotoQuery describes a filtered, paginated photo listing.
// Zero-value fields are unset; all set filters compose with AND.
type PhotoQuery struct {
	OwnerID    string // Restrict to a single owner
	PublicOnly bool   // Restrict to is_public photos
	Tag        string // Exact canonical tag name
	Search     string // Lowercased substring, matched against title OR description OR caption
	Sort       Sort
	Skip       int
	Limit      int
}

// PhotoTagParams is one tag attachment written by SetPhotoTags.
type PhotoTagParams struct {
	TagID      string
	Confidence float64
	Matched    string // Name variant the model actually scored
}

// DayCount is an upload count for a single calendar day (UTC).
type DayCount struct {
	Day   string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// ConfidenceBucket is a count of tag attachments whose confidence rounds
// to the given bucket (one decimal place).
type ConfidenceBucket struct {
	Confidence float64 `json:"confidence"`
	Count      int     `json:"count"`
}

// Totals is the aggregate photo/tag summary used by analytics.
type Totals struct {
	Photos          int     `json:"total_photos"`
	Tags            int     `json:"total_tags"`
	AvgTagsPerPhoto float64 `json:"avg_tags_per_photo"`
}

// Store is the durable record store for users, photos, tags, and
// photo-tag associations.
type Store interface {
	// Users
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserBySubject(ctx context.Context, subject string) (*domain.User, error)
	// GetOrCreateUserBySubject creates a user with role "user" on first
	// sight of a subject. Returns created=true when a row was inserted.
	// Concurrent first sightings of the same subject are serialized by
	// the unique constraint on subject (insert-and-retry-on-conflict).
	GetOrCreateUserBySubject(ctx context.Context, subject, email, displayName string) (user *domain.User, created bool, err error)
	// UpdateUserRole is an out-of-band administrative action; no API
	// endpoint exposes it.
	UpdateUserRole(ctx context.Context, userID string, role domain.Role) error

	// Photos
	CreatePhoto(ctx context.Context, p *domain.Photo) error
	// GetPhotoByID returns the photo with its tag details attached.
	GetPhotoByID(ctx context.Context, id string) (*domain.Photo, error)
	// UpdatePhotoMeta persists title, description, and is_public.
	UpdatePhotoMeta(ctx context.Context, p *domain.Photo) error
	// SetPhotoProcessed records the outcome of a tagging run: caption
	// (nil when none was produced) and the terminal state.
	SetPhotoProcessed(ctx context.Context, photoID string, caption *string, state domain.PhotoState) error
	// DeletePhoto removes the photo row; association rows cascade.
	// Tag rows are never deleted.
	DeletePhoto(ctx context.Context, id string) error
	// ListPhotos returns photos matching the query, tags attached.
	ListPhotos(ctx context.Context, q PhotoQuery) ([]*domain.Photo, error)

	// Tags
	// FindOrCreateTag upserts by canonical name using insert-and-retry
	// on the unique constraint, closing the concurrent-create race.
	FindOrCreateTag(ctx context.Context, name string) (tag *domain.Tag, created bool, err error)
	// SetPhotoTags replaces the photo's full association set in one
	// transaction. At most one row per (photo, tag) pair survives.
	SetPhotoTags(ctx context.Context, photoID string, tags []PhotoTagParams) error
	GetPhotoTags(ctx context.Context, photoID string) ([]domain.TagDetail, error)
	ListTagStats(ctx context.Context, limit int) ([]domain.TagStats, error)
	RelatedTags(ctx context.Context, name string, minCorrelation int) ([]domain.RelatedTag, error)

	// Analytics
	GetTotals(ctx context.Context) (*Totals, error)
	UploadCounts(ctx context.Context, days int) ([]DayCount, error)
	ConfidenceDistribution(ctx context.Context) ([]ConfidenceBucket, error)

	Close() error
}
