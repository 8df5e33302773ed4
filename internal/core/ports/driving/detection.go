package driving

import (
	"context"

	"github.com/custodia-labs/pii-detect-core/internal/core/domain"
)

// DetectRequest carries a unary detection request. FetchFreshConfig is a
// wire-compatibility shim from the RPC layer: configuration is always
// fetched fresh per request regardless of its value (see DESIGN.md).
//
// SourceOverrides lets a single request force a detector family on or off
// for that call only, independent of the per-type config snapshot: a
// caller debugging a pattern-only false positive can ask for
// {SourceMLTagger: false, SourceMLRecognizer: false} without touching the
// configured defaults any other request still relies on. A family absent
// from the map runs exactly as the snapshot says.
type DetectRequest struct {
	Text             string
	Threshold        float64
	FetchFreshConfig bool
	SourceOverrides  map[domain.DetectorSource]bool
}

// DetectResponse is the unary detection result.
type DetectResponse struct {
	Entities   []domain.Entity
	Summary    map[string]int // canonical uppercase type tag -> count
	MaskedText string
}

// ChunkUpdate is one progress update in the streaming detection path.
// Non-final updates carry only this chunk's entities; the final update
// additionally carries MaskedText and Summary.
type ChunkUpdate struct {
	ChunkIndex      int
	TotalChunks     int
	ProgressPercent float64
	EntitiesInChunk []domain.Entity
	Final           bool
	MaskedText      string
	Summary         map[string]int
}

// DetectionService is the driving port the RPC adapter calls into. It is
// transport-agnostic: the gRPC unary/streaming split is a projection of
// this single service, not a second implementation.
type DetectionService interface {
	// Detect runs the full pipeline and returns the unary result.
	Detect(ctx context.Context, req DetectRequest) (*DetectResponse, error)

	// StreamDetect runs the same pipeline but emits one ChunkUpdate per
	// chunk boundary via onUpdate, finishing with a Final update. onUpdate
	// returning an error (e.g. because the client disconnected) aborts
	// remaining work.
	StreamDetect(ctx context.Context, text string, threshold float64, onUpdate func(ChunkUpdate) error) error
}
