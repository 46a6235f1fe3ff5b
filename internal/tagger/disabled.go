package tagger

import "context"

// Disabled is the adapter used when no inference backend is configured.
// Uploads still succeed; photos complete processing with no caption and
// no tags.
type Disabled struct{}

func (Disabled) Enabled() bool { return false }

func (Disabled) Caption(ctx context.Context, image []byte) (string, error) {
	return "", nil
}

func (Disabled) ScoreTags(ctx context.Context, image []byte, labels []string) ([]ScoredTag, error) {
	return nil, nil
}
