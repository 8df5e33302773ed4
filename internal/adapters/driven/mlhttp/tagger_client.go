// Package mlhttp implements the TaggerClient and RecognizerClient ports
// over plain HTTP JSON calls to an external inference service. The
// model, its weights, and its runtime live outside this process; this
// package only owns the request/response shape of the inference call.
package mlhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/pii-detect-core/internal/core/ports/driven"
)

var _ driven.TaggerClient = (*TaggerClient)(nil)

// TaggerClient drives a single-label token-classification model exposed
// over HTTP.
type TaggerClient struct {
	endpoint          string
	maxSequenceLength int
	client            *http.Client
}

// NewTaggerClient builds a TaggerClient against the given endpoint base
// URL. maxSequenceLength should match the model's configured window.
func NewTaggerClient(endpoint string, maxSequenceLength int) *TaggerClient {
	return &TaggerClient{
		endpoint:          endpoint,
		maxSequenceLength: maxSequenceLength,
		client:            &http.Client{Timeout: 30 * time.Second},
	}
}

type tagRequest struct {
	Text string `json:"text"`
}

type tagResponse struct {
	Spans []driven.TaggedSpan `json:"spans"`
	Error string               `json:"error,omitempty"`
}

// Tag runs token classification over text and returns local spans.
func (c *TaggerClient) Tag(ctx context.Context, text string) ([]driven.TaggedSpan, error) {
	body, err := json.Marshal(tagRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal tag request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/tag", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build tag request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tag request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tag response: %w", err)
	}

	var tr tagResponse
	if err := json.Unmarshal(raw, &tr); err != nil {
		return nil, fmt.Errorf("parse tag response: %w", err)
	}
	if tr.Error != "" {
		return nil, fmt.Errorf("tagger service error: %s", tr.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tagger service returned status %d", resp.StatusCode)
	}

	return tr.Spans, nil
}

// MaxSequenceLength is the model's maximum input window, in tokens.
func (c *TaggerClient) MaxSequenceLength() int {
	return c.maxSequenceLength
}

// HealthCheck verifies the backing model is loaded and reachable.
func (c *TaggerClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("build tagger health request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("tagger health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tagger health check returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources held by the client.
func (c *TaggerClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
