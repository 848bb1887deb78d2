// Package ai is the outbound client for the external essay scoring
// service. The service grades free-text answers on the 0-9 band scale
// and judges translation similarity; scaling the band into question
// points is the scoring engine's job, not this client's.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// ScoreRequest asks for a band score on one essay.
type ScoreRequest struct {
	Prompt        string `json:"prompt"`
	Essay         string `json:"essay"`
	ScoringPrompt string `json:"scoringPrompt,omitempty"`
}

// ScoreResponse is the scorer's verdict: a 0-9 band and feedback text.
type ScoreResponse struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// SimilarityRequest asks how close a candidate answer is to a
// reference, for translation and word-form acceptance.
type SimilarityRequest struct {
	Reference string `json:"reference"`
	Candidate string `json:"candidate"`
}

// SimilarityResponse carries a 0..1 similarity score.
type SimilarityResponse struct {
	Similarity float64 `json:"similarity"`
}

// StatusError is a non-2xx reply from the scoring service. It is
// retryable from the caller's point of view; no answer state changes
// on the way out.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ai scorer returned status %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
}

func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     logger,
	}
}

// ScoreEssay requests a band score. Timeouts and non-2xx replies come
// back as errors and leave nothing partially applied.
func (c *Client) ScoreEssay(ctx context.Context, req *ScoreRequest) (*ScoreResponse, error) {
	var resp ScoreResponse
	if err := c.post(ctx, "/v1/score", req, &resp); err != nil {
		return nil, err
	}
	if resp.Score < 0 || resp.Score > 9 {
		return nil, fmt.Errorf("ai scorer returned band %.2f outside the 0-9 scale", resp.Score)
	}
	return &resp, nil
}

// Similarity scores a candidate against a reference answer.
func (c *Client) Similarity(ctx context.Context, req *SimilarityRequest) (*SimilarityResponse, error) {
	var resp SimilarityResponse
	if err := c.post(ctx, "/v1/similarity", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	started := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("ai scorer request failed", "path", path, "error", err)
		return fmt.Errorf("ai scorer request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		var buf bytes.Buffer
		buf.ReadFrom(httpResp.Body)
		c.logger.Warn("ai scorer rejected request",
			"path", path,
			"status", httpResp.StatusCode,
			"duration", time.Since(started).String())
		return &StatusError{StatusCode: httpResp.StatusCode, Body: buf.String()}
	}

	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return fmt.Errorf("malformed ai scorer response: %w", err)
	}

	c.logger.Debug("ai scorer responded",
		"path", path,
		"duration", time.Since(started).String())
	return nil
}
