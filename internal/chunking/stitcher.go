package chunking

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pii-detect-core/internal/core/domain"
	"github.com/custodia-labs/pii-detect-core/internal/core/ports/driven"
	"github.com/custodia-labs/pii-detect-core/internal/pool"
)

// ChunkDetectFunc runs a chunked detector over one window and returns
// entities in the window's local offsets.
type ChunkDetectFunc func(ctx context.Context, window driven.ChunkWindow) ([]domain.Entity, error)

// RunChunked splits text via chunker, runs detect over every resulting
// window (up to maxConcurrency windows in flight), stitches local offsets
// back to global ones, and drops duplicates introduced by overlap.
//
// A single chunk failure discards the whole contribution rather than
// returning a partial list with holes in it; the caller (an Orchestrator
// detector slot) is expected to treat this the same as a detector-level
// failure.
func RunChunked(ctx context.Context, chunker driven.SemanticChunker, text string, maxTokens, overlapTokens, maxConcurrency int, detect ChunkDetectFunc) ([]domain.Entity, error) {
	windows, err := chunker.Split(text, maxTokens, overlapTokens)
	if err != nil {
		return nil, err
	}

	jobs := make([]pool.Job[[]domain.Entity], len(windows))
	for i, w := range windows {
		w := w
		jobs[i] = func(ctx context.Context) ([]domain.Entity, error) {
			return detect(ctx, w)
		}
	}

	results := pool.Run(ctx, jobs, maxConcurrency)

	type dedupKey struct {
		start, end int
		typeTag    string
	}
	seen := make(map[dedupKey]struct{})
	var stitched []domain.Entity

	for i, res := range results {
		if res.Err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, res.Err)
		}
		w := windows[i]
		for _, local := range res.Value {
			global := local
			global.Start = local.Start + w.Start
			global.End = local.End + w.Start
			global.Text = domain.ExtractText(text, global.Start, global.End)

			key := dedupKey{global.Start, global.End, global.Type}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			stitched = append(stitched, global)
		}
	}

	return stitched, nil
}
