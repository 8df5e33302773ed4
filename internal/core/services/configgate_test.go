package services

import (
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/pii-detect-core/internal/core/domain"
	"github.com/custodia-labs/pii-detect-core/internal/core/ports/driven/mocks"
)

func TestConfigGate_Fetch_ReturnsStoreSnapshot(t *testing.T) {
	want := &domain.ConfigSnapshot{Global: domain.GlobalSettings{DefaultThreshold: 0.7}}
	store := mocks.NewMockConfigStore()
	store.FetchSnapshotFn = func(ctx context.Context) (*domain.ConfigSnapshot, error) {
		return want, nil
	}
	gate := NewConfigGate(store, nil)

	got, err := gate.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("expected the store's snapshot to pass through unchanged, got %+v", got)
	}
}

func TestConfigGate_Fetch_NoFallbackSurfacesError(t *testing.T) {
	store := mocks.NewMockConfigStore()
	store.FetchSnapshotFn = func(ctx context.Context) (*domain.ConfigSnapshot, error) {
		return nil, errors.New("connection refused")
	}
	gate := NewConfigGate(store, nil)

	_, err := gate.Fetch(context.Background())
	if !errors.Is(err, domain.ErrConfigUnavailable) {
		t.Errorf("expected ErrConfigUnavailable, got %v", err)
	}
}

func TestConfigGate_Fetch_FallbackSuppressesError(t *testing.T) {
	fallback := &domain.ConfigSnapshot{Global: domain.GlobalSettings{DefaultThreshold: 0.5}}
	store := mocks.NewMockConfigStore()
	store.FetchSnapshotFn = func(ctx context.Context) (*domain.ConfigSnapshot, error) {
		return nil, errors.New("connection refused")
	}
	gate := NewConfigGate(store, fallback)

	got, err := gate.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != fallback {
		t.Errorf("expected the fallback snapshot, got %+v", got)
	}
}
