package sqlite

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/campuslens/campuslens-server/internal/domain"
	"github.com/campuslens/campuslens-server/internal/store"
)

func TestCreateAndGetPhoto(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "idp|alice")
	now := time.Now().UTC()
	p := seedPhoto(t, s, owner.ID, "Quad at dusk", false, now)

	got, err := s.GetPhotoByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPhotoByID failed: %v", err)
	}
	if got.Title != "Quad at dusk" {
		t.Errorf("title = %q, want %q", got.Title, "Quad at dusk")
	}
	if got.State != domain.PhotoStatePending {
		t.Errorf("state = %q, want pending", got.State)
	}
	if got.Caption != nil {
		t.Errorf("expected nil caption, got %q", *got.Caption)
	}
	if got.IsPublic {
		t.Error("expected private photo")
	}
	if got.Tags == nil || len(got.Tags) != 0 {
		t.Errorf("expected empty tag slice, got %v", got.Tags)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, now)
	}
}

func TestGetPhotoNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetPhotoByID(context.Background(), "photo-missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdatePhotoMeta(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "idp|alice")
	p := seedPhoto(t, s, owner.ID, "Before", false, time.Now().UTC())

	p.Title = "After"
	p.Description = "Library steps"
	p.IsPublic = true
	if err := s.UpdatePhotoMeta(ctx, p); err != nil {
		t.Fatalf("UpdatePhotoMeta failed: %v", err)
	}

	got, err := s.GetPhotoByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPhotoByID failed: %v", err)
	}
	if got.Title != "After" || got.Description != "Library steps" || !got.IsPublic {
		t.Errorf("update not persisted: %+v", got)
	}
	// State and caption must be untouched by a metadata update.
	if got.State != domain.PhotoStatePending || got.Caption != nil {
		t.Errorf("metadata update touched processing fields: %+v", got)
	}
}

func TestSetPhotoProcessed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "idp|alice")
	p := seedPhoto(t, s, owner.ID, "Photo", false, time.Now().UTC())

	caption := "a group of students on a lawn"
	if err := s.SetPhotoProcessed(ctx, p.ID, &caption, domain.PhotoStateTagged); err != nil {
		t.Fatalf("SetPhotoProcessed failed: %v", err)
	}

	got, err := s.GetPhotoByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPhotoByID failed: %v", err)
	}
	if got.State != domain.PhotoStateTagged {
		t.Errorf("state = %q, want tagged", got.State)
	}
	if got.Caption == nil || *got.Caption != caption {
		t.Errorf("caption not persisted: %v", got.Caption)
	}

	// A failed run records tag_failed with no caption.
	p2 := seedPhoto(t, s, owner.ID, "Photo 2", false, time.Now().UTC())
	if err := s.SetPhotoProcessed(ctx, p2.ID, nil, domain.PhotoStateTagFailed); err != nil {
		t.Fatalf("SetPhotoProcessed failed: %v", err)
	}
	got2, err := s.GetPhotoByID(ctx, p2.ID)
	if err != nil {
		t.Fatalf("GetPhotoByID failed: %v", err)
	}
	if got2.State != domain.PhotoStateTagFailed || got2.Caption != nil {
		t.Errorf("failed run not recorded: state=%q caption=%v", got2.State, got2.Caption)
	}
}

func TestDeletePhotoCascadesAssociations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "idp|alice")
	p := seedPhoto(t, s, owner.ID, "Photo", false, time.Now().UTC())
	tagPhoto(t, s, p.ID, map[string]float64{"campus": 0.9, "lawn": 0.5})

	if err := s.DeletePhoto(ctx, p.ID); err != nil {
		t.Fatalf("DeletePhoto failed: %v", err)
	}

	_, err := s.GetPhotoByID(ctx, p.ID)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	var count int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM photo_tags WHERE photo_id = ?`, p.ID).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected associations to cascade, found %d rows", count)
	}

	// Tag rows survive photo deletion.
	if _, err := s.getTagByName(ctx, "campus"); err != nil {
		t.Errorf("tag row should survive photo deletion: %v", err)
	}

	if err := s.DeletePhoto(ctx, p.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestListPhotosOwnerAndVisibility(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, s, "idp|alice")
	bob := seedUser(t, s, "idp|bob")

	base := time.Now().UTC().Add(-time.Hour)
	seedPhoto(t, s, alice.ID, "Alice private", false, base)
	alicePublic := seedPhoto(t, s, alice.ID, "Alice public", true, base.Add(time.Minute))
	bobPublic := seedPhoto(t, s, bob.ID, "Bob public", true, base.Add(2*time.Minute))

	mine, err := s.ListPhotos(ctx, store.PhotoQuery{OwnerID: alice.ID})
	if err != nil {
		t.Fatalf("ListPhotos failed: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("owner listing returned %d photos, want 2", len(mine))
	}

	public, err := s.ListPhotos(ctx, store.PhotoQuery{PublicOnly: true})
	if err != nil {
		t.Fatalf("ListPhotos failed: %v", err)
	}
	if len(public) != 2 {
		t.Fatalf("public listing returned %d photos, want 2", len(public))
	}
	// Default sort is newest first.
	if public[0].ID != bobPublic.ID || public[1].ID != alicePublic.ID {
		t.Errorf("unexpected order: %q, %q", public[0].Title, public[1].Title)
	}
}

func TestListPhotosSorts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "idp|alice")
	base := time.Now().UTC().Add(-time.Hour)
	first := seedPhoto(t, s, owner.ID, "zebra", false, base)
	second := seedPhoto(t, s, owner.ID, "apple", false, base.Add(time.Minute))

	oldest, err := s.ListPhotos(ctx, store.PhotoQuery{OwnerID: owner.ID, Sort: store.SortOldest})
	if err != nil {
		t.Fatalf("ListPhotos failed: %v", err)
	}
	if oldest[0].ID != first.ID {
		t.Errorf("oldest sort: got %q first", oldest[0].Title)
	}

	byTitle, err := s.ListPhotos(ctx, store.PhotoQuery{OwnerID: owner.ID, Sort: store.SortTitle})
	if err != nil {
		t.Fatalf("ListPhotos failed: %v", err)
	}
	if byTitle[0].ID != second.ID {
		t.Errorf("title sort: got %q first", byTitle[0].Title)
	}
}

// Photos created within the same instant keep a stable order.
func TestListPhotosTieBreak(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "idp|alice")
	at := time.Now().UTC()
	a := seedPhoto(t, s, owner.ID, "first insert", false, at)
	b := seedPhoto(t, s, owner.ID, "second insert", false, at)

	oldest, err := s.ListPhotos(ctx, store.PhotoQuery{OwnerID: owner.ID, Sort: store.SortOldest})
	if err != nil {
		t.Fatalf("ListPhotos failed: %v", err)
	}
	if oldest[0].ID != a.ID || oldest[1].ID != b.ID {
		t.Errorf("tie break unstable: %q, %q", oldest[0].Title, oldest[1].Title)
	}
}

func TestListPhotosTagFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "idp|alice")
	base := time.Now().UTC()
	tagged := seedPhoto(t, s, owner.ID, "Tagged", false, base)
	seedPhoto(t, s, owner.ID, "Untagged", false, base.Add(time.Minute))
	tagPhoto(t, s, tagged.ID, map[string]float64{"sunset": 0.8, "campus": 0.6})

	got, err := s.ListPhotos(ctx, store.PhotoQuery{OwnerID: owner.ID, Tag: "sunset"})
	if err != nil {
		t.Fatalf("ListPhotos failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != tagged.ID {
		t.Fatalf("tag filter returned %d photos, want the tagged one", len(got))
	}
	if len(got[0].Tags) != 2 {
		t.Errorf("expected 2 tag details, got %d", len(got[0].Tags))
	}
	// Tag details come back ordered by confidence descending.
	if got[0].Tags[0].Name != "sunset" {
		t.Errorf("highest-confidence tag first, got %q", got[0].Tags[0].Name)
	}

	none, err := s.ListPhotos(ctx, store.PhotoQuery{OwnerID: owner.ID, Tag: "winter"})
	if err != nil {
		t.Fatalf("ListPhotos failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("unknown tag returned %d photos, want 0", len(none))
	}
}

// Every selected column must carry the table alias; an unqualified one
// becomes ambiguous as soon as the tag filter joins photo_tags and tags,
// which both have created_at.
func TestQualifyColumnsCoversWrappedList(t *testing.T) {
	for _, col := range strings.Split(photoColumnsQualified, ",") {
		col = strings.TrimSpace(col)
		if !strings.HasPrefix(col, "p.") {
			t.Errorf("column %q is not alias-qualified", col)
		}
	}
	if !strings.Contains(photoColumnsQualified, "p.is_public") {
		t.Error("is_public lost its alias")
	}
	if !strings.Contains(photoColumnsQualified, "p.created_at") {
		t.Error("created_at lost its alias")
	}
}

func TestListPhotosSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "idp|alice")
	base := time.Now().UTC()

	byTitle := seedPhoto(t, s, owner.ID, "Sunset over the stadium", false, base)
	byDesc := seedPhoto(t, s, owner.ID, "Evening", false, base.Add(time.Minute))
	byDesc.Description = "the SUNSET from my dorm"
	if err := s.UpdatePhotoMeta(ctx, byDesc); err != nil {
		t.Fatalf("UpdatePhotoMeta failed: %v", err)
	}
	byCaption := seedPhoto(t, s, owner.ID, "Untitled", false, base.Add(2*time.Minute))
	caption := "a sunset behind trees"
	if err := s.SetPhotoProcessed(ctx, byCaption.ID, &caption, domain.PhotoStateTagged); err != nil {
		t.Fatalf("SetPhotoProcessed failed: %v", err)
	}
	seedPhoto(t, s, owner.ID, "Morning fog", false, base.Add(3*time.Minute))

	got, err := s.ListPhotos(ctx, store.PhotoQuery{OwnerID: owner.ID, Search: "sunset"})
	if err != nil {
		t.Fatalf("ListPhotos failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("search returned %d photos, want 3", len(got))
	}
	found := map[string]bool{}
	for _, p := range got {
		found[p.ID] = true
	}
	for _, want := range []*domain.Photo{byTitle, byDesc, byCaption} {
		if !found[want.ID] {
			t.Errorf("search missed photo %q", want.Title)
		}
	}
}

func TestListPhotosPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "idp|alice")
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		seedPhoto(t, s, owner.ID, "Photo", false, base.Add(time.Duration(i)*time.Minute))
	}

	page, err := s.ListPhotos(ctx, store.PhotoQuery{OwnerID: owner.ID, Skip: 2, Limit: 2})
	if err != nil {
		t.Fatalf("ListPhotos failed: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("page returned %d photos, want 2", len(page))
	}

	tail, err := s.ListPhotos(ctx, store.PhotoQuery{OwnerID: owner.ID, Skip: 4})
	if err != nil {
		t.Fatalf("ListPhotos failed: %v", err)
	}
	if len(tail) != 1 {
		t.Errorf("tail returned %d photos, want 1", len(tail))
	}
}

func TestListPhotosEmpty(t *testing.T) {
	s := newTestStore(t)

	got, err := s.ListPhotos(context.Background(), store.PhotoQuery{PublicOnly: true})
	if err != nil {
		t.Fatalf("ListPhotos failed: %v", err)
	}
	if got == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(got) != 0 {
		t.Errorf("expected no photos, got %d", len(got))
	}
}
