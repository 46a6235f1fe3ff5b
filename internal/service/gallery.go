package service

import (
	"context"
	"log/slog"

	"github.com/campuslens/campuslens-server/internal/domain"
	"github.com/campuslens/campuslens-server/internal/errors"
	"github.com/campuslens/campuslens-server/internal/normalize"
	"github.com/campuslens/campuslens-server/internal/store"
)

// maxPageSize caps how many photos one listing request may return.
const maxPageSize = 100

// GalleryService answers the visibility-scoped photo listings: a user's
// own gallery, the public explore feed, and the admin overview.
type GalleryService struct {
	store  store.Store
	logger *slog.Logger
}

// NewGalleryService creates a new gallery service.
func NewGalleryService(st store.Store, logger *slog.Logger) *GalleryService {
	return &GalleryService{store: st, logger: logger}
}

// ListOptions are the shared listing filters. All are optional and
// compose with AND.
type ListOptions struct {
	Tag    string
	Search string
	Sort   string
	Skip   int
	Limit  int
}

func (o ListOptions) query() (store.PhotoQuery, error) {
	q := store.PhotoQuery{
		Tag:    normalize.TagName(o.Tag),
		Search: normalize.SearchTerm(o.Search),
		Skip:   max(o.Skip, 0),
		Limit:  o.Limit,
	}
	if q.Limit <= 0 || q.Limit > maxPageSize {
		q.Limit = maxPageSize
	}

	switch o.Sort {
	case "", string(store.SortNewest):
		q.Sort = store.SortNewest
	case string(store.SortOldest):
		q.Sort = store.SortOldest
	case string(store.SortTitle):
		q.Sort = store.SortTitle
	default:
		return store.PhotoQuery{}, errors.Validationf("unknown sort %q", o.Sort)
	}
	return q, nil
}

// ListOwn returns the user's own photos, private ones included.
func (s *GalleryService) ListOwn(ctx context.Context, user *domain.User, opts ListOptions) ([]*domain.Photo, error) {
	q, err := opts.query()
	if err != nil {
		return nil, err
	}
	q.OwnerID = user.ID
	return s.store.ListPhotos(ctx, q)
}

// Explore returns public photos from every user. Anonymous viewers get
// the same answer as authenticated ones.
func (s *GalleryService) Explore(ctx context.Context, opts ListOptions) ([]*domain.Photo, error) {
	q, err := opts.query()
	if err != nil {
		return nil, err
	}
	q.PublicOnly = true
	return s.store.ListPhotos(ctx, q)
}

// ListAll returns every photo regardless of owner or visibility.
// Callers gate this behind the admin role. ownerID optionally narrows
// to one user's photos.
func (s *GalleryService) ListAll(ctx context.Context, ownerID string, opts ListOptions) ([]*domain.Photo, error) {
	q, err := opts.query()
	if err != nil {
		return nil, err
	}
	q.OwnerID = ownerID
	return s.store.ListPhotos(ctx, q)
}
