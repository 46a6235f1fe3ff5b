package service

import (
	"context"
	"log/slog"

	"github.com/campuslens/campuslens-server/internal/domain"
	"github.com/campuslens/campuslens-server/internal/store"
)

// popularTagCount is how many top tags the summary includes.
const popularTagCount = 10

// uploadWindowDays is the daily-upload window the summary covers.
const uploadWindowDays = 30

// recentUploadCount is how many latest photos the summary includes.
const recentUploadCount = 10

// AnalyticsService assembles the admin usage summary.
type AnalyticsService struct {
	store  store.Store
	logger *slog.Logger
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(st store.Store, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{store: st, logger: logger}
}

// Summary is the aggregate usage report.
type Summary struct {
	Totals                 *store.Totals            `json:"totals"`
	UploadsPerDay          []store.DayCount         `json:"uploads_per_day"`
	ConfidenceDistribution []store.ConfidenceBucket `json:"confidence_distribution"`
	PopularTags            []domain.TagStats        `json:"popular_tags"`
	RecentUploads          []*domain.Photo          `json:"recent_uploads"`
}

// Summarize collects totals, the recent upload trend, the tag
// confidence distribution, the most used tags, and the latest uploads.
func (s *AnalyticsService) Summarize(ctx context.Context) (*Summary, error) {
	totals, err := s.store.GetTotals(ctx)
	if err != nil {
		return nil, err
	}
	uploads, err := s.store.UploadCounts(ctx, uploadWindowDays)
	if err != nil {
		return nil, err
	}
	confidence, err := s.store.ConfidenceDistribution(ctx)
	if err != nil {
		return nil, err
	}
	popular, err := s.store.ListTagStats(ctx, popularTagCount)
	if err != nil {
		return nil, err
	}
	recent, err := s.store.ListPhotos(ctx, store.PhotoQuery{
		Sort:  store.SortNewest,
		Limit: recentUploadCount,
	})
	if err != nil {
		return nil, err
	}

	return &Summary{
		Totals:                 totals,
		UploadsPerDay:          uploads,
		ConfidenceDistribution: confidence,
		PopularTags:            popular,
		RecentUploads:          recent,
	}, nil
}
