package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/pii-detect-core/internal/core/domain"
	"github.com/custodia-labs/pii-detect-core/internal/core/ports/driven"
)

// mockTaggerClient is a local mock so this package's tests stay
// self-contained (avoids an import cycle with ports/driven/mocks).
type mockTaggerClient struct {
	healthCheckErr error
	closed         bool
}

func (m *mockTaggerClient) Tag(ctx context.Context, text string) ([]driven.TaggedSpan, error) {
	return nil, nil
}

func (m *mockTaggerClient) MaxSequenceLength() int {
	return 512
}

func (m *mockTaggerClient) HealthCheck(ctx context.Context) error {
	return m.healthCheckErr
}

func (m *mockTaggerClient) Close() error {
	m.closed = true
	return nil
}

// mockRecognizerClient is a local mock for the same reason.
type mockRecognizerClient struct {
	healthCheckErr error
	closed         bool
}

func (m *mockRecognizerClient) Recognize(ctx context.Context, text string, labels []string) ([]driven.TaggedSpan, error) {
	return nil, nil
}

func (m *mockRecognizerClient) MaxLabelsPerCall() int {
	return 10
}

func (m *mockRecognizerClient) HealthCheck(ctx context.Context) error {
	return m.healthCheckErr
}

func (m *mockRecognizerClient) Close() error {
	m.closed = true
	return nil
}

func TestNewServices(t *testing.T) {
	config := domain.NewRuntimeConfig()
	services := NewServices(config)

	if services == nil {
		t.Fatal("expected non-nil services")
	}
	if services.Config() != config {
		t.Error("expected config to match")
	}
}

func TestServices_TaggerClient(t *testing.T) {
	config := domain.NewRuntimeConfig()
	services := NewServices(config)

	if services.TaggerClient() != nil {
		t.Error("expected nil tagger client initially")
	}

	mock := &mockTaggerClient{}
	services.SetTaggerClient(mock)

	if services.TaggerClient() == nil {
		t.Error("expected non-nil tagger client after set")
	}
	if !config.TaggerAvailable() {
		t.Error("expected tagger to be available")
	}

	services.SetTaggerClient(nil)
	if services.TaggerClient() != nil {
		t.Error("expected nil tagger client after clearing")
	}
	if config.TaggerAvailable() {
		t.Error("expected tagger to be unavailable")
	}
	if !mock.closed {
		t.Error("expected old client to be closed")
	}
}

func TestServices_RecognizerClient(t *testing.T) {
	config := domain.NewRuntimeConfig()
	services := NewServices(config)

	if services.RecognizerClient() != nil {
		t.Error("expected nil recognizer client initially")
	}

	mock := &mockRecognizerClient{}
	services.SetRecognizerClient(mock)

	if services.RecognizerClient() == nil {
		t.Error("expected non-nil recognizer client after set")
	}
	if !config.RecognizerAvailable() {
		t.Error("expected recognizer to be available")
	}

	services.SetRecognizerClient(nil)
	if services.RecognizerClient() != nil {
		t.Error("expected nil recognizer client after clearing")
	}
	if config.RecognizerAvailable() {
		t.Error("expected recognizer to be unavailable")
	}
	if !mock.closed {
		t.Error("expected old client to be closed")
	}
}

func TestServices_ValidateAndSetTagger(t *testing.T) {
	config := domain.NewRuntimeConfig()
	services := NewServices(config)
	ctx := context.Background()

	t.Run("successful validation", func(t *testing.T) {
		mock := &mockTaggerClient{}
		err := services.ValidateAndSetTagger(ctx, mock)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if services.TaggerClient() == nil {
			t.Error("expected tagger client to be set")
		}
	})

	t.Run("failed validation", func(t *testing.T) {
		mock := &mockTaggerClient{healthCheckErr: errors.New("connection failed")}
		err := services.ValidateAndSetTagger(ctx, mock)
		if err == nil {
			t.Error("expected error")
		}
		if !mock.closed {
			t.Error("expected failed client to be closed")
		}
	})

	t.Run("nil client", func(t *testing.T) {
		err := services.ValidateAndSetTagger(ctx, nil)
		if err != nil {
			t.Errorf("unexpected error for nil client: %v", err)
		}
	})
}

func TestServices_ValidateAndSetRecognizer(t *testing.T) {
	config := domain.NewRuntimeConfig()
	services := NewServices(config)
	ctx := context.Background()

	t.Run("successful validation", func(t *testing.T) {
		mock := &mockRecognizerClient{}
		err := services.ValidateAndSetRecognizer(ctx, mock)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if services.RecognizerClient() == nil {
			t.Error("expected recognizer client to be set")
		}
	})

	t.Run("failed validation", func(t *testing.T) {
		mock := &mockRecognizerClient{healthCheckErr: errors.New("connection failed")}
		err := services.ValidateAndSetRecognizer(ctx, mock)
		if err == nil {
			t.Error("expected error")
		}
		if !mock.closed {
			t.Error("expected failed client to be closed")
		}
	})

	t.Run("nil client", func(t *testing.T) {
		err := services.ValidateAndSetRecognizer(ctx, nil)
		if err != nil {
			t.Errorf("unexpected error for nil client: %v", err)
		}
	})
}

func TestServices_Close(t *testing.T) {
	config := domain.NewRuntimeConfig()
	services := NewServices(config)

	taggerMock := &mockTaggerClient{}
	recognizerMock := &mockRecognizerClient{}

	services.SetTaggerClient(taggerMock)
	services.SetRecognizerClient(recognizerMock)

	err := services.Close()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if !taggerMock.closed {
		t.Error("expected tagger client to be closed")
	}
	if !recognizerMock.closed {
		t.Error("expected recognizer client to be closed")
	}
}

func TestServices_ReplaceClient_ClosesOld(t *testing.T) {
	config := domain.NewRuntimeConfig()
	services := NewServices(config)

	old := &mockTaggerClient{}
	newClient := &mockTaggerClient{}

	services.SetTaggerClient(old)
	services.SetTaggerClient(newClient)

	if !old.closed {
		t.Error("expected old client to be closed when replaced")
	}
	if newClient.closed {
		t.Error("expected new client to remain open")
	}
}
