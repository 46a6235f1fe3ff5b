package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/campuslens/campuslens-server/internal/domain"
	"github.com/campuslens/campuslens-server/internal/store"
)

// startOfDaysAgo returns UTC midnight of the day (days-1) before today,
// so days=1 covers today only.
func startOfDaysAgo(days int) time.Time {
	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.AddDate(0, 0, -(days - 1))
}

// ListTagStats returns per-tag usage counts ordered by photo count
// descending, then name. Tags with no attachments are included with a
// zero count and a nil average.
func (s *Store) ListTagStats(ctx context.Context, limit int) ([]domain.TagStats, error) {
	if limit <= 0 {
		limit = store.DefaultLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.created_at,
			COUNT(pt.photo_id) AS photo_count,
			AVG(pt.confidence) AS avg_confidence
		FROM tags t
		LEFT JOIN photo_tags pt ON pt.tag_id = t.id
		GROUP BY t.id
		ORDER BY photo_count DESC, t.name ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query tag stats: %w", err)
	}
	defer rows.Close()

	stats := []domain.TagStats{}
	for rows.Next() {
		var (
			st        domain.TagStats
			createdAt string
		)
		if err := rows.Scan(&st.ID, &st.Name, &createdAt, &st.PhotoCount, &st.AvgConfidence); err != nil {
			return nil, err
		}
		st.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// RelatedTags returns tags that co-occur with the named tag on at least
// minCorrelation photos, ordered by co-occurrence count descending.
func (s *Store) RelatedTags(ctx context.Context, name string, minCorrelation int) ([]domain.RelatedTag, error) {
	if minCorrelation < 1 {
		minCorrelation = 1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT t2.name, COUNT(*) AS correlation
		FROM tags t1
		JOIN photo_tags pt1 ON pt1.tag_id = t1.id
		JOIN photo_tags pt2 ON pt2.photo_id = pt1.photo_id AND pt2.tag_id != t1.id
		JOIN tags t2 ON t2.id = pt2.tag_id
		WHERE t1.name = ?
		GROUP BY t2.id
		HAVING correlation >= ?
		ORDER BY correlation DESC, t2.name ASC`, name, minCorrelation)
	if err != nil {
		return nil, fmt.Errorf("query related tags: %w", err)
	}
	defer rows.Close()

	related := []domain.RelatedTag{}
	for rows.Next() {
		var r domain.RelatedTag
		if err := rows.Scan(&r.Name, &r.Correlation); err != nil {
			return nil, err
		}
		related = append(related, r)
	}
	return related, rows.Err()
}

// GetTotals returns the aggregate photo and tag counts.
func (s *Store) GetTotals(ctx context.Context) (*store.Totals, error) {
	var t store.Totals

	row := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM photos),
			(SELECT COUNT(*) FROM tags),
			(SELECT COUNT(*) FROM photo_tags)`)

	var attachments int
	if err := row.Scan(&t.Photos, &t.Tags, &attachments); err != nil {
		return nil, fmt.Errorf("query totals: %w", err)
	}

	if t.Photos > 0 {
		t.AvgTagsPerPhoto = float64(attachments) / float64(t.Photos)
	}
	return &t, nil
}

// UploadCounts returns per-day upload counts for the most recent days,
// newest day first. Days with no uploads are omitted.
func (s *Store) UploadCounts(ctx context.Context, days int) ([]store.DayCount, error) {
	if days <= 0 {
		days = 30
	}

	// Timestamps are fixed-width so the date is always the first 10 bytes.
	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(created_at, 1, 10) AS day, COUNT(*)
		FROM photos
		WHERE created_at >= ?
		GROUP BY day
		ORDER BY day DESC`,
		formatTime(startOfDaysAgo(days)))
	if err != nil {
		return nil, fmt.Errorf("query upload counts: %w", err)
	}
	defer rows.Close()

	counts := []store.DayCount{}
	for rows.Next() {
		var c store.DayCount
		if err := rows.Scan(&c.Day, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// ConfidenceDistribution buckets tag attachment confidences to one
// decimal place and counts each bucket.
func (s *Store) ConfidenceDistribution(ctx context.Context) ([]store.ConfidenceBucket, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ROUND(confidence, 1) AS bucket, COUNT(*)
		FROM photo_tags
		GROUP BY bucket
		ORDER BY bucket ASC`)
	if err != nil {
		return nil, fmt.Errorf("query confidence distribution: %w", err)
	}
	defer rows.Close()

	buckets := []store.ConfidenceBucket{}
	for rows.Next() {
		var b store.ConfidenceBucket
		if err := rows.Scan(&b.Confidence, &b.Count); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}
