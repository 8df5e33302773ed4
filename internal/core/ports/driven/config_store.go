package driven

import (
	"context"

	"github.com/custodia-labs/pii-detect-core/internal/core/domain"
)

// ConfigStore is the external, per-type configuration source consulted
// once per request by the Configuration Gate. It is opaque to the core:
// its own format, authentication, and caching are implementation-defined,
// but the core requires read-through semantics — no intermediate cache
// inside the core itself.
type ConfigStore interface {
	// FetchSnapshot reads current global settings and per-type config and
	// returns them as a single, request-scoped, immutable snapshot.
	FetchSnapshot(ctx context.Context) (*domain.ConfigSnapshot, error)
}
