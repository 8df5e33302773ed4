package mocks

import (
	"context"

	"github.com/custodia-labs/pii-detect-core/internal/core/domain"
)

// MockDetector is a mock implementation of driven.Detector for testing.
type MockDetector struct {
	SourceFn func() domain.DetectorSource
	DetectFn func(ctx context.Context, text string, snapshot *domain.ConfigSnapshot) ([]domain.Entity, error)

	source domain.DetectorSource
}

// NewMockDetector creates a mock detector reporting the given source by
// default; override DetectFn/SourceFn for specific behavior.
func NewMockDetector(source domain.DetectorSource) *MockDetector {
	return &MockDetector{source: source}
}

func (m *MockDetector) Source() domain.DetectorSource {
	if m.SourceFn != nil {
		return m.SourceFn()
	}
	return m.source
}

func (m *MockDetector) Detect(ctx context.Context, text string, snapshot *domain.ConfigSnapshot) ([]domain.Entity, error) {
	if m.DetectFn != nil {
		return m.DetectFn(ctx, text, snapshot)
	}
	return nil, nil
}
