package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pii-detect-core/internal/core/domain"
	"github.com/custodia-labs/pii-detect-core/internal/core/ports/driven"
)

// ConfigGate fetches a fresh per-type configuration snapshot at the start
// of every request. It never caches between requests: the spec mandates
// exactly one fetch per request, shared by every detector and pipeline
// stage that request serves.
type ConfigGate struct {
	store    driven.ConfigStore
	fallback *domain.ConfigSnapshot // compile-time default, nil disables the fallback policy
}

// NewConfigGate builds a ConfigGate. fallback may be nil: with no
// fallback configured, a store fetch failure surfaces ErrConfigUnavailable
// unconditionally.
func NewConfigGate(store driven.ConfigStore, fallback *domain.ConfigSnapshot) *ConfigGate {
	return &ConfigGate{store: store, fallback: fallback}
}

// Fetch returns the current snapshot. On store failure, it returns the
// compile-time fallback snapshot if one was configured; otherwise it
// surfaces ErrConfigUnavailable.
func (g *ConfigGate) Fetch(ctx context.Context) (*domain.ConfigSnapshot, error) {
	snapshot, err := g.store.FetchSnapshot(ctx)
	if err == nil {
		return snapshot, nil
	}

	if g.fallback != nil {
		return g.fallback, nil
	}

	return nil, fmt.Errorf("%w: %v", domain.ErrConfigUnavailable, err)
}
