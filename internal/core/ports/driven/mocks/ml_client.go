package mocks

import (
	"context"

	"github.com/custodia-labs/pii-detect-core/internal/core/ports/driven"
)

// MockTaggerClient is a mock implementation of driven.TaggerClient for testing.
type MockTaggerClient struct {
	TagFn               func(ctx context.Context, text string) ([]driven.TaggedSpan, error)
	MaxSequenceLengthFn func() int
	HealthCheckFn       func(ctx context.Context) error
	CloseFn             func() error
}

func NewMockTaggerClient() *MockTaggerClient {
	return &MockTaggerClient{}
}

func (m *MockTaggerClient) Tag(ctx context.Context, text string) ([]driven.TaggedSpan, error) {
	if m.TagFn != nil {
		return m.TagFn(ctx, text)
	}
	return nil, nil
}

func (m *MockTaggerClient) MaxSequenceLength() int {
	if m.MaxSequenceLengthFn != nil {
		return m.MaxSequenceLengthFn()
	}
	return 512
}

func (m *MockTaggerClient) HealthCheck(ctx context.Context) error {
	if m.HealthCheckFn != nil {
		return m.HealthCheckFn(ctx)
	}
	return nil
}

func (m *MockTaggerClient) Close() error {
	if m.CloseFn != nil {
		return m.CloseFn()
	}
	return nil
}

// MockRecognizerClient is a mock implementation of driven.RecognizerClient for testing.
type MockRecognizerClient struct {
	RecognizeFn      func(ctx context.Context, text string, labels []string) ([]driven.TaggedSpan, error)
	MaxLabelsPerCallFn func() int
	HealthCheckFn    func(ctx context.Context) error
	CloseFn          func() error
}

func NewMockRecognizerClient() *MockRecognizerClient {
	return &MockRecognizerClient{}
}

func (m *MockRecognizerClient) Recognize(ctx context.Context, text string, labels []string) ([]driven.TaggedSpan, error) {
	if m.RecognizeFn != nil {
		return m.RecognizeFn(ctx, text, labels)
	}
	return nil, nil
}

func (m *MockRecognizerClient) MaxLabelsPerCall() int {
	if m.MaxLabelsPerCallFn != nil {
		return m.MaxLabelsPerCallFn()
	}
	return 10
}

func (m *MockRecognizerClient) HealthCheck(ctx context.Context) error {
	if m.HealthCheckFn != nil {
		return m.HealthCheckFn(ctx)
	}
	return nil
}

func (m *MockRecognizerClient) Close() error {
	if m.CloseFn != nil {
		return m.CloseFn()
	}
	return nil
}

// MockSemanticChunker is a mock implementation of driven.SemanticChunker for testing.
type MockSemanticChunker struct {
	SplitFn func(text string, maxTokens, overlapTokens int) ([]driven.ChunkWindow, error)
}

func NewMockSemanticChunker() *MockSemanticChunker {
	return &MockSemanticChunker{}
}

func (m *MockSemanticChunker) Split(text string, maxTokens, overlapTokens int) ([]driven.ChunkWindow, error) {
	if m.SplitFn != nil {
		return m.SplitFn(text, maxTokens, overlapTokens)
	}
	return []driven.ChunkWindow{{Text: text, Start: 0, End: len(text)}}, nil
}

// MockMLClientFactory is a mock implementation of driven.MLClientFactory for testing.
type MockMLClientFactory struct {
	CreateTaggerClientFn     func(endpoint string) (driven.TaggerClient, error)
	CreateRecognizerClientFn func(endpoint string) (driven.RecognizerClient, error)
}

func NewMockMLClientFactory() *MockMLClientFactory {
	return &MockMLClientFactory{}
}

func (m *MockMLClientFactory) CreateTaggerClient(endpoint string) (driven.TaggerClient, error) {
	if m.CreateTaggerClientFn != nil {
		return m.CreateTaggerClientFn(endpoint)
	}
	if endpoint == "" {
		return nil, nil
	}
	return NewMockTaggerClient(), nil
}

func (m *MockMLClientFactory) CreateRecognizerClient(endpoint string) (driven.RecognizerClient, error) {
	if m.CreateRecognizerClientFn != nil {
		return m.CreateRecognizerClientFn(endpoint)
	}
	if endpoint == "" {
		return nil, nil
	}
	return NewMockRecognizerClient(), nil
}
