package tagger

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAdapter is a scripted backend for pipeline tests.
type fakeAdapter struct {
	caption    string
	captionErr error
	scores     []ScoredTag
	scoreErr   error

	scoredLabels []string
}

func (f *fakeAdapter) Enabled() bool { return true }

func (f *fakeAdapter) Caption(ctx context.Context, image []byte) (string, error) {
	return f.caption, f.captionErr
}

func (f *fakeAdapter) ScoreTags(ctx context.Context, image []byte, labels []string) ([]ScoredTag, error) {
	f.scoredLabels = labels
	return f.scores, f.scoreErr
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestPostprocess(t *testing.T) {
	got := Postprocess([]ScoredTag{
		{Name: "Sunset", Confidence: 0.8, Matched: "Sunset"},
		{Name: "  sunset ", Confidence: 0.5, Matched: "sunset"},
		{Name: "campus", Confidence: 1.7},
		{Name: "noise", Confidence: 0.05},
		{Name: "negative", Confidence: -0.3},
		{Name: "", Confidence: 0.9},
	}, 0.1)

	require.Len(t, got, 2)
	// Clamped to 1.0, so campus sorts first.
	assert.Equal(t, ScoredTag{Name: "campus", Confidence: 1, Matched: "campus"}, got[0])
	// Case variants collapse keeping the highest score.
	assert.Equal(t, ScoredTag{Name: "sunset", Confidence: 0.8, Matched: "Sunset"}, got[1])
}

func TestPostprocessTieOrder(t *testing.T) {
	got := Postprocess([]ScoredTag{
		{Name: "b", Confidence: 0.5},
		{Name: "a", Confidence: 0.5},
	}, 0.1)

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, "b", got[1].Name)
}

func TestCaptionKeywords(t *testing.T) {
	got := CaptionKeywords("A group of Students sitting on the grass near the library, students talking")
	assert.Equal(t, []string{"group", "students", "sitting", "grass", "library", "talking"}, got)

	assert.Empty(t, CaptionKeywords(""))
	assert.Empty(t, CaptionKeywords("a an of"))
}

func TestPipelineDisabled(t *testing.T) {
	p := NewPipeline(Disabled{}, nil, nil, 0.1, discard())
	assert.False(t, p.Enabled())

	result, err := p.Analyze(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Nil(t, result.Caption)
	assert.Empty(t, result.Tags)
	assert.NotNil(t, result.Tags)
}

func TestPipelineScoresCaptionKeywords(t *testing.T) {
	adapter := &fakeAdapter{
		caption: "a sunset over the campus quad",
		scores: []ScoredTag{
			{Name: "sunset", Confidence: 0.8},
			{Name: "campus", Confidence: 0.6},
			{Name: "quad", Confidence: 0.04},
		},
	}
	p := NewPipeline(adapter, nil, []string{"library"}, 0.1, discard())

	result, err := p.Analyze(context.Background(), []byte("img"))
	require.NoError(t, err)

	require.NotNil(t, result.Caption)
	assert.Equal(t, "a sunset over the campus quad", *result.Caption)

	// Static vocabulary comes first, then caption keywords.
	assert.Equal(t, []string{"library", "sunset", "campus", "quad"}, adapter.scoredLabels)

	// The below-floor score is dropped.
	require.Len(t, result.Tags, 2)
	assert.Equal(t, "sunset", result.Tags[0].Name)
	assert.Equal(t, "campus", result.Tags[1].Name)
}

func TestPipelineKeywordFallback(t *testing.T) {
	// Scoring returns nothing usable; caption keywords survive as
	// low-confidence tags.
	adapter := &fakeAdapter{caption: "students on the lawn"}
	p := NewPipeline(adapter, nil, nil, 0.1, discard())

	result, err := p.Analyze(context.Background(), []byte("img"))
	require.NoError(t, err)

	require.Len(t, result.Tags, 2)
	for _, tag := range result.Tags {
		assert.Equal(t, 0.1, tag.Confidence)
	}
}

func TestPipelineErrors(t *testing.T) {
	boom := errors.New("model host down")

	p := NewPipeline(&fakeAdapter{captionErr: boom}, nil, nil, 0.1, discard())
	_, err := p.Analyze(context.Background(), []byte("img"))
	assert.ErrorIs(t, err, boom)

	p = NewPipeline(&fakeAdapter{caption: "a dog", scoreErr: boom}, nil, nil, 0.1, discard())
	_, err = p.Analyze(context.Background(), []byte("img"))
	assert.ErrorIs(t, err, boom)
}
