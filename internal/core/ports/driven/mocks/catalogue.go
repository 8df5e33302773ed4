package mocks

import (
	"context"

	"github.com/custodia-labs/pii-detect-core/internal/core/domain"
	"github.com/custodia-labs/pii-detect-core/internal/core/ports/driven"
)

// MockCatalogueStore is a mock implementation of driven.CatalogueStore for testing.
type MockCatalogueStore struct {
	LoadPatternsFn        func(ctx context.Context) ([]driven.PatternSpec, error)
	LoadConflictGroupsFn  func(ctx context.Context) ([]domain.ConflictGroup, error)
	LoadCategoryPriorityFn func(ctx context.Context) (domain.CategoryPriority, error)
}

func NewMockCatalogueStore() *MockCatalogueStore {
	return &MockCatalogueStore{}
}

func (m *MockCatalogueStore) LoadPatterns(ctx context.Context) ([]driven.PatternSpec, error) {
	if m.LoadPatternsFn != nil {
		return m.LoadPatternsFn(ctx)
	}
	return nil, nil
}

func (m *MockCatalogueStore) LoadConflictGroups(ctx context.Context) ([]domain.ConflictGroup, error) {
	if m.LoadConflictGroupsFn != nil {
		return m.LoadConflictGroupsFn(ctx)
	}
	return nil, nil
}

func (m *MockCatalogueStore) LoadCategoryPriority(ctx context.Context) (domain.CategoryPriority, error) {
	if m.LoadCategoryPriorityFn != nil {
		return m.LoadCategoryPriorityFn(ctx)
	}
	return domain.CategoryPriority{}, nil
}
