package driven

import (
	"context"

	"github.com/custodia-labs/pii-detect-core/internal/core/domain"
)

// Detector is the uniform contract all three detector families expose:
// the single-label token tagger, the multi-label span recognizer, and
// the pattern matcher. Adapters own all pre/post-processing that makes
// their results comparable; the Orchestrator never branches on concrete
// type.
type Detector interface {
	// Detect runs this detector family over text using snapshot to decide
	// which types/labels are in scope and at what threshold. Returns
	// entities tagged with this detector's Source.
	Detect(ctx context.Context, text string, snapshot *domain.ConfigSnapshot) ([]domain.Entity, error)

	// Source identifies which detector family this adapter implements.
	Source() domain.DetectorSource
}
