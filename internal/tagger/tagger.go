// Package tagger derives captions and confidence-scored tags from photo
// bytes via an inference backend.
package tagger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/campuslens/campuslens-server/internal/normalize"
)

// ScoredTag is one label scored by the model against an image.
type ScoredTag struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Matched    string  `json:"matched,omitempty"` // Raw label variant the model scored
}

// Result is the outcome of one analysis run.
type Result struct {
	Caption *string     `json:"caption"`
	Tags    []ScoredTag `json:"tags"`
}

// Adapter is the model backend contract: captioning and zero-shot label
// scoring. Implementations must be safe for concurrent use.
type Adapter interface {
	// Enabled reports whether the backend can serve requests.
	Enabled() bool
	// Caption generates a caption for the image. Empty means the model
	// produced none.
	Caption(ctx context.Context, image []byte) (string, error)
	// ScoreTags scores each label against the image. Scores come back
	// raw; the pipeline canonicalizes them.
	ScoreTags(ctx context.Context, image []byte, labels []string) ([]ScoredTag, error)
}

// Pipeline runs the full analysis flow: caption the image, extract
// candidate labels from the caption, score them, and canonicalize the
// results. Results are cached by image content when a cache is set.
type Pipeline struct {
	adapter       Adapter
	cache         *Cache
	vocabulary    []string
	minConfidence float64
	logger        *slog.Logger
}

// NewPipeline creates a Pipeline. cache may be nil to disable caching;
// vocabulary lists static labels scored in addition to caption keywords.
func NewPipeline(adapter Adapter, cache *Cache, vocabulary []string, minConfidence float64, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		adapter:       adapter,
		cache:         cache,
		vocabulary:    vocabulary,
		minConfidence: minConfidence,
		logger:        logger,
	}
}

// Enabled reports whether the underlying backend is configured.
func (p *Pipeline) Enabled() bool {
	return p.adapter.Enabled()
}

// Analyze runs the pipeline on the image bytes.
// With a disabled backend it returns an empty Result without error, so
// uploads complete untagged rather than failing.
func (p *Pipeline) Analyze(ctx context.Context, image []byte) (*Result, error) {
	if !p.adapter.Enabled() {
		return &Result{Tags: []ScoredTag{}}, nil
	}

	if p.cache != nil {
		if cached, err := p.cache.Get(image); err != nil {
			p.logger.Warn("inference cache read failed", "error", err)
		} else if cached != nil {
			p.logger.Debug("inference cache hit", "image_bytes", len(image))
			return cached, nil
		}
	}

	caption, err := p.adapter.Caption(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("caption: %w", err)
	}

	labels := mergeLabels(p.vocabulary, CaptionKeywords(caption))

	var scored []ScoredTag
	if len(labels) > 0 {
		scored, err = p.adapter.ScoreTags(ctx, image, labels)
		if err != nil {
			return nil, fmt.Errorf("score tags: %w", err)
		}
	}

	tags := Postprocess(scored, p.minConfidence)
	if len(tags) == 0 && caption != "" {
		// Model scored nothing usable; keep caption keywords as
		// low-confidence tags so the photo stays findable.
		tags = Postprocess(keywordTags(caption), p.minConfidence)
	}

	result := &Result{Tags: tags}
	if caption != "" {
		c := caption
		result.Caption = &c
	}

	if p.cache != nil {
		if err := p.cache.Put(image, result); err != nil {
			p.logger.Warn("inference cache write failed", "error", err)
		}
	}
	return result, nil
}

// mergeLabels unions the static vocabulary with caption keywords,
// preserving order and dropping duplicates.
func mergeLabels(vocabulary, keywords []string) []string {
	seen := make(map[string]bool, len(vocabulary)+len(keywords))
	out := make([]string, 0, len(vocabulary)+len(keywords))
	for _, label := range append(append([]string{}, vocabulary...), keywords...) {
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		out = append(out, label)
	}
	return out
}

// Postprocess canonicalizes scored tags: names are case-folded, scores
// clamped to [0, 1], entries below minConfidence dropped, and duplicates
// collapsed keeping the highest score. Output is ordered by confidence
// descending, name ascending on ties.
func Postprocess(tags []ScoredTag, minConfidence float64) []ScoredTag {
	best := make(map[string]ScoredTag, len(tags))
	for _, t := range tags {
		name := normalize.TagName(t.Name)
		if name == "" {
			continue
		}

		conf := min(max(t.Confidence, 0), 1)
		if conf < minConfidence {
			continue
		}

		matched := t.Matched
		if matched == "" {
			matched = t.Name
		}

		if prev, ok := best[name]; !ok || conf > prev.Confidence {
			best[name] = ScoredTag{Name: name, Confidence: conf, Matched: matched}
		}
	}

	out := make([]ScoredTag, 0, len(best))
	for _, t := range best {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Name < out[j].Name
	})
	return out
}
