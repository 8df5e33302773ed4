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

var _ driven.RecognizerClient = (*RecognizerClient)(nil)

// RecognizerClient drives a multi-label span-recognition model exposed
// over HTTP.
type RecognizerClient struct {
	endpoint         string
	maxLabelsPerCall int
	client           *http.Client
}

// NewRecognizerClient builds a RecognizerClient against the given
// endpoint base URL. maxLabelsPerCall should match the model's
// recommended label-batch ceiling.
func NewRecognizerClient(endpoint string, maxLabelsPerCall int) *RecognizerClient {
	return &RecognizerClient{
		endpoint:         endpoint,
		maxLabelsPerCall: maxLabelsPerCall,
		client:           &http.Client{Timeout: 30 * time.Second},
	}
}

type recognizeRequest struct {
	Text   string   `json:"text"`
	Labels []string `json:"labels"`
}

type recognizeResponse struct {
	Spans []driven.TaggedSpan `json:"spans"`
	Error string               `json:"error,omitempty"`
}

// Recognize runs the model over text restricted to the given candidate
// labels and returns local spans.
func (c *RecognizerClient) Recognize(ctx context.Context, text string, labels []string) ([]driven.TaggedSpan, error) {
	body, err := json.Marshal(recognizeRequest{Text: text, Labels: labels})
	if err != nil {
		return nil, fmt.Errorf("marshal recognize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/recognize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build recognize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recognize request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read recognize response: %w", err)
	}

	var rr recognizeResponse
	if err := json.Unmarshal(raw, &rr); err != nil {
		return nil, fmt.Errorf("parse recognize response: %w", err)
	}
	if rr.Error != "" {
		return nil, fmt.Errorf("recognizer service error: %s", rr.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recognizer service returned status %d", resp.StatusCode)
	}

	return rr.Spans, nil
}

// MaxLabelsPerCall is the model's recommended label-batch ceiling.
func (c *RecognizerClient) MaxLabelsPerCall() int {
	return c.maxLabelsPerCall
}

// HealthCheck verifies the backing model is loaded and reachable.
func (c *RecognizerClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("build recognizer health request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("recognizer health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("recognizer health check returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources held by the client.
func (c *RecognizerClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
