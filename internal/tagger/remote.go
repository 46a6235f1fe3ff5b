package tagger

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Remote talks to an HTTP inference sidecar exposing captioning and
// zero-shot label scoring endpoints.
type Remote struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// NewRemote creates a Remote adapter for the given base URL.
// Requests are rate limited to keep a slow model host from piling up
// concurrent inference work.
func NewRemote(baseURL string, timeout time.Duration, logger *slog.Logger) *Remote {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		// 2 requests per second, burst of 4
		rateLimiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 4),
		logger:      logger,
	}
}

func (r *Remote) Enabled() bool {
	return r.baseURL != ""
}

type captionRequest struct {
	Image []byte `json:"image"` // Base64 on the wire
}

type captionResponse struct {
	Caption string `json:"caption"`
}

type scoreRequest struct {
	Image  []byte   `json:"image"`
	Labels []string `json:"labels"`
}

type scoreResponse struct {
	Scores []struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	} `json:"scores"`
}

// Caption asks the backend's /caption endpoint for a caption.
func (r *Remote) Caption(ctx context.Context, image []byte) (string, error) {
	var parsed captionResponse
	if err := r.post(ctx, "/caption", captionRequest{Image: image}, &parsed); err != nil {
		return "", err
	}
	return parsed.Caption, nil
}

// ScoreTags asks the backend's /score endpoint to score each label
// against the image.
func (r *Remote) ScoreTags(ctx context.Context, image []byte, labels []string) ([]ScoredTag, error) {
	if len(labels) == 0 {
		return nil, nil
	}

	var parsed scoreResponse
	if err := r.post(ctx, "/score", scoreRequest{Image: image, Labels: labels}, &parsed); err != nil {
		return nil, err
	}

	tags := make([]ScoredTag, 0, len(parsed.Scores))
	for _, s := range parsed.Scores {
		tags = append(tags, ScoredTag{
			Name:       s.Label,
			Confidence: s.Score,
			Matched:    s.Label,
		})
	}
	return tags, nil
}

func (r *Remote) post(ctx context.Context, path string, payload, out any) error {
	if err := r.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("inference request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference failed: status %d", resp.StatusCode)
	}

	if err := json.UnmarshalRead(resp.Body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	r.logger.Debug("inference call complete",
		"path", path,
		"duration", time.Since(start),
	)
	return nil
}
