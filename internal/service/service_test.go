package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campuslens/campuslens-server/internal/blob"
	"github.com/campuslens/campuslens-server/internal/domain"
	"github.com/campuslens/campuslens-server/internal/store/sqlite"
	"github.com/campuslens/campuslens-server/internal/tagger"
	"github.com/campuslens/campuslens-server/internal/validation"
)

// fakeAdapter scripts the model backend for service tests.
type fakeAdapter struct {
	caption    string
	captionErr error
	scores     []tagger.ScoredTag
	scoreErr   error
}

func (f *fakeAdapter) Enabled() bool { return true }

func (f *fakeAdapter) Caption(ctx context.Context, image []byte) (string, error) {
	return f.caption, f.captionErr
}

func (f *fakeAdapter) ScoreTags(ctx context.Context, image []byte, labels []string) ([]tagger.ScoredTag, error) {
	return f.scores, f.scoreErr
}

type testEnv struct {
	store      *sqlite.Store
	blobs      *blob.Store
	uploadsDir string
	photos     *PhotoService
	gallery    *GalleryService
}

const testMaxUploadBytes = 1 << 20

// newTestEnv wires a photo service against a real store and blob dir,
// with the given model adapter.
func newTestEnv(t *testing.T, adapter tagger.Adapter) *testEnv {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	dir := t.TempDir()

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	uploadsDir := filepath.Join(dir, "uploads")
	blobs, err := blob.NewStore(uploadsDir)
	require.NoError(t, err)

	pipeline := tagger.NewPipeline(adapter, nil, nil, 0.1, logger)

	return &testEnv{
		store:      st,
		blobs:      blobs,
		uploadsDir: uploadsDir,
		photos:     NewPhotoService(st, blobs, pipeline, validation.New(), testMaxUploadBytes, logger),
		gallery:    NewGalleryService(st, logger),
	}
}

// storedFileCount returns how many files sit in the uploads directory.
func (e *testEnv) storedFileCount(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(e.uploadsDir)
	require.NoError(t, err)
	return len(entries)
}

func (e *testEnv) user(t *testing.T, subject string) *domain.User {
	t.Helper()
	u, _, err := e.store.GetOrCreateUserBySubject(context.Background(), subject, subject+"@example.edu", "")
	require.NoError(t, err)
	return u
}

func (e *testEnv) admin(t *testing.T, subject string) *domain.User {
	t.Helper()
	u := e.user(t, subject)
	require.NoError(t, e.store.UpdateUserRole(context.Background(), u.ID, domain.RoleAdmin))
	u.Role = domain.RoleAdmin
	return u
}

// countPhotos returns how many photos the store holds, any owner.
func (e *testEnv) countPhotos(t *testing.T) int {
	t.Helper()
	totals, err := e.store.GetTotals(context.Background())
	require.NoError(t, err)
	return totals.Photos
}

// testImage encodes a small PNG.
func testImage(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 24, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 24; x++ {
			img.Set(x, y, color.RGBA{R: uint8(10 * x), G: 90, B: 60, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// taggedAdapter returns an adapter that captions and scores two labels.
func taggedAdapter() *fakeAdapter {
	return &fakeAdapter{
		caption: "a sunset over the campus quad",
		scores: []tagger.ScoredTag{
			{Name: "sunset", Confidence: 0.8},
			{Name: "campus", Confidence: 0.6},
		},
	}
}

// mustIngest uploads a test image and fails the test on error.
func (e *testEnv) mustIngest(t *testing.T, owner *domain.User, params UploadParams) *domain.Photo {
	t.Helper()
	photo, err := e.photos.Ingest(context.Background(), owner, "upload.png", testImage(t), params)
	require.NoError(t, err)
	return photo
}
