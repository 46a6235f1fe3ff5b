package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/campuslens/campuslens-server/internal/errors"
	"github.com/campuslens/campuslens-server/internal/tagger"
)

func TestListOwnIncludesPrivate(t *testing.T) {
	env := newTestEnv(t, tagger.Disabled{})
	ctx := context.Background()

	alice := env.user(t, "idp|alice")
	bob := env.user(t, "idp|bob")

	env.mustIngest(t, alice, UploadParams{Title: "Private"})
	env.mustIngest(t, alice, UploadParams{Title: "Public", IsPublic: true})
	env.mustIngest(t, bob, UploadParams{Title: "Bob public", IsPublic: true})

	own, err := env.gallery.ListOwn(ctx, alice, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, own, 2)
	for _, p := range own {
		assert.Equal(t, alice.ID, p.OwnerID)
	}
}

func TestExplorePublicOnly(t *testing.T) {
	env := newTestEnv(t, tagger.Disabled{})
	ctx := context.Background()

	alice := env.user(t, "idp|alice")
	bob := env.user(t, "idp|bob")

	env.mustIngest(t, alice, UploadParams{Title: "Private"})
	env.mustIngest(t, alice, UploadParams{Title: "Alice public", IsPublic: true})
	env.mustIngest(t, bob, UploadParams{Title: "Bob public", IsPublic: true})

	explore, err := env.gallery.Explore(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, explore, 2)
	for _, p := range explore {
		assert.True(t, p.IsPublic)
	}
}

func TestListAllSeesEverything(t *testing.T) {
	env := newTestEnv(t, tagger.Disabled{})
	ctx := context.Background()

	alice := env.user(t, "idp|alice")
	bob := env.user(t, "idp|bob")

	env.mustIngest(t, alice, UploadParams{Title: "Private"})
	env.mustIngest(t, bob, UploadParams{Title: "Bob public", IsPublic: true})

	all, err := env.gallery.ListAll(ctx, "", ListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scoped, err := env.gallery.ListAll(ctx, bob.ID, ListOptions{})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, bob.ID, scoped[0].OwnerID)
}

func TestListTagFilterExactMatch(t *testing.T) {
	adapter := taggedAdapter()
	env := newTestEnv(t, adapter)
	ctx := context.Background()
	alice := env.user(t, "idp|alice")

	tagged := env.mustIngest(t, alice, UploadParams{Title: "Sunset shot"})

	adapter.scores = []tagger.ScoredTag{{Name: "library", Confidence: 0.9}}
	adapter.caption = "the library"
	env.mustIngest(t, alice, UploadParams{Title: "Library shot"})

	// Tag filter returns exactly the matching photo; the filter is
	// case-folded before matching.
	got, err := env.gallery.ListOwn(ctx, alice, ListOptions{Tag: "  SUNSET "})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, tagged.ID, got[0].ID)
}

func TestListSearchFilter(t *testing.T) {
	env := newTestEnv(t, tagger.Disabled{})
	ctx := context.Background()
	alice := env.user(t, "idp|alice")

	match := env.mustIngest(t, alice, UploadParams{Title: "Sunset over the stadium", IsPublic: true})
	env.mustIngest(t, alice, UploadParams{Title: "Morning fog", IsPublic: true})

	got, err := env.gallery.Explore(ctx, ListOptions{Search: "SUNSET"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, match.ID, got[0].ID)
}

func TestListRejectsUnknownSort(t *testing.T) {
	env := newTestEnv(t, tagger.Disabled{})

	_, err := env.gallery.Explore(context.Background(), ListOptions{Sort: "popularity"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestListSortsAndPaginates(t *testing.T) {
	env := newTestEnv(t, tagger.Disabled{})
	ctx := context.Background()
	alice := env.user(t, "idp|alice")

	env.mustIngest(t, alice, UploadParams{Title: "banana", IsPublic: true})
	env.mustIngest(t, alice, UploadParams{Title: "apple", IsPublic: true})
	env.mustIngest(t, alice, UploadParams{Title: "cherry", IsPublic: true})

	byTitle, err := env.gallery.Explore(ctx, ListOptions{Sort: "title"})
	require.NoError(t, err)
	require.Len(t, byTitle, 3)
	assert.Equal(t, "apple", byTitle[0].Title)
	assert.Equal(t, "cherry", byTitle[2].Title)

	page, err := env.gallery.Explore(ctx, ListOptions{Sort: "title", Skip: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "banana", page[0].Title)
}
