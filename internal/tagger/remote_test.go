package tagger

import (
	"context"
	"encoding/json/v2"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteCaption(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/caption", r.URL.Path)

		var req captionRequest
		require.NoError(t, json.UnmarshalRead(r.Body, &req))
		assert.Equal(t, []byte("image bytes"), req.Image)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"caption": "a cat on a desk"}`))
	}))
	defer srv.Close()

	remote := NewRemote(srv.URL, 5*time.Second, discard())
	assert.True(t, remote.Enabled())

	caption, err := remote.Caption(context.Background(), []byte("image bytes"))
	require.NoError(t, err)
	assert.Equal(t, "a cat on a desk", caption)
}

func TestRemoteScoreTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/score", r.URL.Path)

		var req scoreRequest
		require.NoError(t, json.UnmarshalRead(r.Body, &req))
		assert.Equal(t, []string{"cat", "desk"}, req.Labels)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"scores": [{"label": "cat", "score": 0.91}, {"label": "desk", "score": 0.42}]}`))
	}))
	defer srv.Close()

	remote := NewRemote(srv.URL, 5*time.Second, discard())

	tags, err := remote.ScoreTags(context.Background(), []byte("image bytes"), []string{"cat", "desk"})
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, ScoredTag{Name: "cat", Confidence: 0.91, Matched: "cat"}, tags[0])
}

func TestRemoteScoreTagsNoLabels(t *testing.T) {
	remote := NewRemote("http://unreachable.invalid", time.Second, discard())

	tags, err := remote.ScoreTags(context.Background(), []byte("img"), nil)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestRemoteBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	remote := NewRemote(srv.URL, 5*time.Second, discard())

	_, err := remote.Caption(context.Background(), []byte("img"))
	assert.ErrorContains(t, err, "status 503")
}
