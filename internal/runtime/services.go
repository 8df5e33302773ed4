// Package runtime holds the process-wide registry of hot-swappable ML
// client connections backing the tagger and recognizer detector families.
package runtime

import (
	"context"
	"sync"

	"github.com/custodia-labs/pii-detect-core/internal/core/domain"
	"github.com/custodia-labs/pii-detect-core/internal/core/ports/driven"
)

// Services holds references to the dynamically configurable ML clients.
// The process starts with neither client wired and hot-loads them once an
// operator points it at a tagger/recognizer endpoint; thread-safe for
// concurrent access from request-handling goroutines.
type Services struct {
	mu sync.RWMutex

	config *domain.RuntimeConfig

	taggerClient     driven.TaggerClient
	recognizerClient driven.RecognizerClient
}

// NewServices creates a new Services registry.
func NewServices(config *domain.RuntimeConfig) *Services {
	return &Services{
		config: config,
	}
}

// Config returns the runtime configuration.
func (s *Services) Config() *domain.RuntimeConfig {
	return s.config
}

// TaggerClient returns the current tagger client (may be nil).
func (s *Services) TaggerClient() driven.TaggerClient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.taggerClient
}

// RecognizerClient returns the current recognizer client (may be nil).
func (s *Services) RecognizerClient() driven.RecognizerClient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recognizerClient
}

// SetTaggerClient updates the tagger client, closing the previous one if
// present, and updates the associated availability flag.
func (s *Services) SetTaggerClient(client driven.TaggerClient) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.taggerClient != nil {
		_ = s.taggerClient.Close()
	}

	s.taggerClient = client
	s.config.SetTaggerAvailable(client != nil)
}

// SetRecognizerClient updates the recognizer client, closing the previous
// one if present, and updates the associated availability flag.
func (s *Services) SetRecognizerClient(client driven.RecognizerClient) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recognizerClient != nil {
		_ = s.recognizerClient.Close()
	}

	s.recognizerClient = client
	s.config.SetRecognizerAvailable(client != nil)
}

// Close shuts down all wired clients.
func (s *Services) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.taggerClient != nil {
		_ = s.taggerClient.Close()
		s.taggerClient = nil
	}
	if s.recognizerClient != nil {
		_ = s.recognizerClient.Close()
		s.recognizerClient = nil
	}

	s.config.SetTaggerAvailable(false)
	s.config.SetRecognizerAvailable(false)

	return nil
}

// ValidateAndSetTagger health-checks client before swapping it in. On
// failure the old client is left in place and client is closed.
func (s *Services) ValidateAndSetTagger(ctx context.Context, client driven.TaggerClient) error {
	if client == nil {
		s.SetTaggerClient(nil)
		return nil
	}

	if err := client.HealthCheck(ctx); err != nil {
		_ = client.Close()
		return err
	}

	s.SetTaggerClient(client)
	return nil
}

// ValidateAndSetRecognizer health-checks client before swapping it in. On
// failure the old client is left in place and client is closed.
func (s *Services) ValidateAndSetRecognizer(ctx context.Context, client driven.RecognizerClient) error {
	if client == nil {
		s.SetRecognizerClient(nil)
		return nil
	}

	if err := client.HealthCheck(ctx); err != nil {
		_ = client.Close()
		return err
	}

	s.SetRecognizerClient(client)
	return nil
}
