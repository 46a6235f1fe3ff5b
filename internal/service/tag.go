package service

import (
	"context"
	"log/slog"

	"github.com/campuslens/campuslens-server/internal/domain"
	"github.com/campuslens/campuslens-server/internal/errors"
	"github.com/campuslens/campuslens-server/internal/normalize"
	"github.com/campuslens/campuslens-server/internal/store"
)

// TagService reports on the shared tag namespace. Tags have no owner;
// these views are admin-facing.
type TagService struct {
	store  store.Store
	logger *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(st store.Store, logger *slog.Logger) *TagService {
	return &TagService{store: st, logger: logger}
}

// Stats returns per-tag usage counts, most used first.
func (s *TagService) Stats(ctx context.Context, limit int) ([]domain.TagStats, error) {
	return s.store.ListTagStats(ctx, limit)
}

// Related returns tags that co-occur with the named tag on at least
// minCorrelation photos.
func (s *TagService) Related(ctx context.Context, name string, minCorrelation int) ([]domain.RelatedTag, error) {
	canonical := normalize.TagName(name)
	if canonical == "" {
		return nil, errors.Validation("tag name is required")
	}
	return s.store.RelatedTags(ctx, canonical, minCorrelation)
}
