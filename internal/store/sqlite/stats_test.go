package sqlite

import (
	"context"
	"math"
	"testing"
	"time"
)

func TestListTagStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "idp|alice")
	base := time.Now().UTC()
	p1 := seedPhoto(t, s, owner.ID, "One", false, base)
	p2 := seedPhoto(t, s, owner.ID, "Two", false, base.Add(time.Minute))

	tagPhoto(t, s, p1.ID, map[string]float64{"campus": 0.8, "sunset": 0.6})
	tagPhoto(t, s, p2.ID, map[string]float64{"campus": 0.4})
	if _, _, err := s.FindOrCreateTag(ctx, "unused"); err != nil {
		t.Fatalf("FindOrCreateTag failed: %v", err)
	}

	stats, err := s.ListTagStats(ctx, 10)
	if err != nil {
		t.Fatalf("ListTagStats failed: %v", err)
	}
	if len(stats) != 3 {
		t.Fatalf("expected 3 tags, got %d", len(stats))
	}

	if stats[0].Name != "campus" || stats[0].PhotoCount != 2 {
		t.Errorf("expected campus with 2 photos first, got %+v", stats[0])
	}
	if stats[0].AvgConfidence == nil || math.Abs(*stats[0].AvgConfidence-0.6) > 1e-9 {
		t.Errorf("campus avg confidence = %v, want 0.6", stats[0].AvgConfidence)
	}

	last := stats[2]
	if last.Name != "unused" || last.PhotoCount != 0 {
		t.Errorf("expected unused tag last with 0 photos, got %+v", last)
	}
	if last.AvgConfidence != nil {
		t.Errorf("unattached tag avg confidence should be nil, got %v", *last.AvgConfidence)
	}
}

func TestRelatedTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "idp|alice")
	base := time.Now().UTC()
	p1 := seedPhoto(t, s, owner.ID, "One", false, base)
	p2 := seedPhoto(t, s, owner.ID, "Two", false, base.Add(time.Minute))
	p3 := seedPhoto(t, s, owner.ID, "Three", false, base.Add(2*time.Minute))

	tagPhoto(t, s, p1.ID, map[string]float64{"campus": 0.8, "sunset": 0.6, "trees": 0.5})
	tagPhoto(t, s, p2.ID, map[string]float64{"campus": 0.7, "sunset": 0.5})
	tagPhoto(t, s, p3.ID, map[string]float64{"trees": 0.9})

	related, err := s.RelatedTags(ctx, "campus", 1)
	if err != nil {
		t.Fatalf("RelatedTags failed: %v", err)
	}
	if len(related) != 2 {
		t.Fatalf("expected 2 related tags, got %d", len(related))
	}
	if related[0].Name != "sunset" || related[0].Correlation != 2 {
		t.Errorf("expected sunset with correlation 2, got %+v", related[0])
	}
	if related[1].Name != "trees" || related[1].Correlation != 1 {
		t.Errorf("expected trees with correlation 1, got %+v", related[1])
	}

	strong, err := s.RelatedTags(ctx, "campus", 2)
	if err != nil {
		t.Fatalf("RelatedTags failed: %v", err)
	}
	if len(strong) != 1 || strong[0].Name != "sunset" {
		t.Errorf("min correlation filter failed: %+v", strong)
	}

	none, err := s.RelatedTags(ctx, "missing", 1)
	if err != nil {
		t.Fatalf("RelatedTags failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("unknown tag should have no relations, got %d", len(none))
	}
}

func TestGetTotals(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	empty, err := s.GetTotals(ctx)
	if err != nil {
		t.Fatalf("GetTotals failed: %v", err)
	}
	if empty.Photos != 0 || empty.Tags != 0 || empty.AvgTagsPerPhoto != 0 {
		t.Errorf("empty totals = %+v", empty)
	}

	owner := seedUser(t, s, "idp|alice")
	base := time.Now().UTC()
	p1 := seedPhoto(t, s, owner.ID, "One", false, base)
	seedPhoto(t, s, owner.ID, "Two", false, base.Add(time.Minute))
	tagPhoto(t, s, p1.ID, map[string]float64{"campus": 0.8, "sunset": 0.6, "trees": 0.5})

	totals, err := s.GetTotals(ctx)
	if err != nil {
		t.Fatalf("GetTotals failed: %v", err)
	}
	if totals.Photos != 2 || totals.Tags != 3 {
		t.Errorf("totals = %+v", totals)
	}
	if math.Abs(totals.AvgTagsPerPhoto-1.5) > 1e-9 {
		t.Errorf("avg tags per photo = %v, want 1.5", totals.AvgTagsPerPhoto)
	}
}

func TestUploadCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "idp|alice")
	now := time.Now().UTC()
	seedPhoto(t, s, owner.ID, "Today A", false, now)
	seedPhoto(t, s, owner.ID, "Today B", false, now.Add(-time.Minute))
	seedPhoto(t, s, owner.ID, "Old", false, now.AddDate(0, 0, -40))

	counts, err := s.UploadCounts(ctx, 30)
	if err != nil {
		t.Fatalf("UploadCounts failed: %v", err)
	}
	if len(counts) != 1 {
		t.Fatalf("expected 1 day bucket, got %d", len(counts))
	}
	if counts[0].Day != now.Format("2006-01-02") || counts[0].Count != 2 {
		t.Errorf("today's bucket = %+v", counts[0])
	}
}

func TestConfidenceDistribution(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "idp|alice")
	base := time.Now().UTC()
	p1 := seedPhoto(t, s, owner.ID, "One", false, base)
	p2 := seedPhoto(t, s, owner.ID, "Two", false, base.Add(time.Minute))

	tagPhoto(t, s, p1.ID, map[string]float64{"a": 0.92, "b": 0.88})
	tagPhoto(t, s, p2.ID, map[string]float64{"c": 0.31})

	buckets, err := s.ConfidenceDistribution(ctx)
	if err != nil {
		t.Fatalf("ConfidenceDistribution failed: %v", err)
	}
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	if buckets[0].Confidence != 0.3 || buckets[0].Count != 1 {
		t.Errorf("first bucket = %+v", buckets[0])
	}
	if buckets[1].Confidence != 0.9 || buckets[1].Count != 2 {
		t.Errorf("second bucket = %+v", buckets[1])
	}
}
