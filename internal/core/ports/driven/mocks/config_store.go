package mocks

import (
	"context"

	"github.com/custodia-labs/pii-detect-core/internal/core/domain"
)

// MockConfigStore is a mock implementation of driven.ConfigStore for testing.
type MockConfigStore struct {
	FetchSnapshotFn func(ctx context.Context) (*domain.ConfigSnapshot, error)
}

func NewMockConfigStore() *MockConfigStore {
	return &MockConfigStore{}
}

func (m *MockConfigStore) FetchSnapshot(ctx context.Context) (*domain.ConfigSnapshot, error) {
	if m.FetchSnapshotFn != nil {
		return m.FetchSnapshotFn(ctx)
	}
	return &domain.ConfigSnapshot{PerType: map[string]domain.PerTypeConfig{}}, nil
}
