package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/pii-detect-core/internal/core/domain"
	"github.com/custodia-labs/pii-detect-core/internal/core/ports/driven"
	"github.com/custodia-labs/pii-detect-core/internal/core/ports/driving"
	"github.com/custodia-labs/pii-detect-core/internal/masking"
	"github.com/custodia-labs/pii-detect-core/internal/merger"
)

var _ driving.DetectionService = (*Orchestrator)(nil)

// MaxInputBytes bounds the text the Orchestrator accepts in a single
// request; this mirrors whatever limit the transport layer enforces, but
// the core re-checks it so a direct caller cannot bypass it.
const MaxInputBytes = 5 * 1024 * 1024 // 5 MiB

// defaultGlobalThreshold is applied when the caller supplies no
// threshold and the snapshot carries no global default either.
const defaultGlobalThreshold = 0.5

// Orchestrator runs the full detection pipeline: Configuration Gate,
// concurrent fan-out across active detector families, merge, post-filter,
// and masking. It holds no per-request state; everything it needs for a
// single call is either an argument or fetched fresh via the gate. The
// one exception is the entity-slice pool used to cut allocations across
// requests; Reclaim drops it for an external memory watchdog.
type Orchestrator struct {
	gate      *ConfigGate
	detectors []driven.Detector
	logger    *slog.Logger

	poolMu sync.Mutex
	pool   *sync.Pool
}

// OrchestratorConfig wires an Orchestrator's collaborators.
type OrchestratorConfig struct {
	Gate      *ConfigGate
	Detectors []driven.Detector
	Logger    *slog.Logger
}

// NewOrchestrator builds an Orchestrator. Detectors are tried in the
// order given, but fan out concurrently and are merged without regard to
// that order.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{gate: cfg.Gate, detectors: cfg.Detectors, logger: logger}
	o.pool = newEntityPool()
	return o
}

func newEntityPool() *sync.Pool {
	return &sync.Pool{New: func() any { buf := make([]domain.Entity, 0, 32); return &buf }}
}

// Detect runs the full pipeline and returns the unary result.
func (o *Orchestrator) Detect(ctx context.Context, req driving.DetectRequest) (*driving.DetectResponse, error) {
	if len(req.Text) > MaxInputBytes {
		return nil, fmt.Errorf("%w: input is %d bytes, exceeds the %d byte limit", domain.ErrInvalidInput, len(req.Text), MaxInputBytes)
	}
	if req.Text == "" {
		return &driving.DetectResponse{Entities: []domain.Entity{}, Summary: map[string]int{}}, nil
	}

	snapshot, err := o.gate.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	normalized := norm.NFC.String(req.Text)
	threshold := req.Threshold
	if threshold <= 0 {
		threshold = defaultGlobalThreshold
	}
	if snapshot.Global.DefaultThreshold <= 0 {
		snapshot.Global.DefaultThreshold = threshold
	}

	entities, err := o.runDetectors(ctx, normalized, snapshot, req.SourceOverrides)
	if err != nil {
		return nil, err
	}

	merged := merger.Merge(entities)
	filtered := postFilter(normalized, merged, snapshot)

	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Start < filtered[j].Start })

	maskedText := masking.Mask(normalized, filtered)

	o.releaseScratch(entities)

	return &driving.DetectResponse{
		Entities:   filtered,
		Summary:    summarize(filtered),
		MaskedText: maskedText,
	}, nil
}

// StreamDetect runs the same pipeline over chunk boundaries reported by
// the active chunked detectors, emitting one ChunkUpdate per input chunk
// and a final update carrying the masked text and summary. Because the
// Orchestrator's own detectors already own their internal chunking, the
// unit of progress reporting here is the whole-request result delivered
// as a single final chunk — callers that need finer-grained progress
// should prefer the per-detector chunk callbacks each adapter exposes
// internally.
func (o *Orchestrator) StreamDetect(ctx context.Context, text string, threshold float64, onUpdate func(driving.ChunkUpdate) error) error {
	resp, err := o.Detect(ctx, driving.DetectRequest{Text: text, Threshold: threshold})
	if err != nil {
		return err
	}

	return onUpdate(driving.ChunkUpdate{
		ChunkIndex:      0,
		TotalChunks:     1,
		ProgressPercent: 100,
		EntitiesInChunk: resp.Entities,
		Final:           true,
		MaskedText:      resp.MaskedText,
		Summary:         resp.Summary,
	})
}

// runDetectors fans out over the active detector families. A detector
// that fails contributes nothing and is logged; only if every detector
// fails does the request fail with ErrAllDetectorsFailed. overrides
// forces specific families on or off for this call only; a family absent
// from it runs unconditionally (the snapshot's per-type gating still
// applies downstream in postFilter).
func (o *Orchestrator) runDetectors(ctx context.Context, text string, snapshot *domain.ConfigSnapshot, overrides map[domain.DetectorSource]bool) ([]domain.Entity, error) {
	active := o.detectors
	if len(overrides) > 0 {
		active = make([]driven.Detector, 0, len(o.detectors))
		for _, d := range o.detectors {
			if enabled, overridden := overrides[d.Source()]; overridden && !enabled {
				continue
			}
			active = append(active, d)
		}
	}
	if len(active) == 0 {
		return nil, nil
	}

	type outcome struct {
		entities []domain.Entity
		err      error
		source   domain.DetectorSource
	}

	results := make([]outcome, len(active))
	var wg sync.WaitGroup
	wg.Add(len(active))
	for i, d := range active {
		go func(i int, d driven.Detector) {
			defer wg.Done()
			entities, err := d.Detect(ctx, text, snapshot)
			results[i] = outcome{entities: entities, err: err, source: d.Source()}
		}(i, d)
	}
	wg.Wait()

	merged := o.acquireScratch()
	failures := 0
	for _, r := range results {
		if r.err != nil {
			failures++
			if errors.Is(r.err, context.Canceled) || errors.Is(r.err, context.DeadlineExceeded) {
				o.logger.Warn("detector cancelled", "source", r.source, "error", r.err)
				continue
			}
			o.logger.Error("detector failed, contributing empty result", "source", r.source, "error", r.err)
			continue
		}
		merged = append(merged, r.entities...)
	}

	if failures == len(active) {
		o.releaseScratch(merged)
		return nil, fmt.Errorf("%w", domain.ErrAllDetectorsFailed)
	}

	if ctx.Err() != nil {
		o.releaseScratch(merged)
		return nil, fmt.Errorf("%w: %v", domain.ErrCancelled, ctx.Err())
	}

	return merged, nil
}

// postFilter drops entities disabled in the snapshot or below the
// effective threshold for their type, then re-extracts text to guarantee
// the text == input[start:end] invariant.
func postFilter(input string, entities []domain.Entity, snapshot *domain.ConfigSnapshot) []domain.Entity {
	out := make([]domain.Entity, 0, len(entities))
	for _, e := range entities {
		if snapshot != nil && !snapshot.IsEnabled(e.Type) {
			continue
		}
		threshold := defaultGlobalThreshold
		if snapshot != nil {
			threshold = snapshot.EffectiveThreshold(e.Type)
		}
		if e.Score < threshold {
			continue
		}
		e.Text = domain.ExtractText(input, e.Start, e.End)
		out = append(out, e)
	}
	return out
}

// summarize counts entities by canonical uppercase type tag.
func summarize(entities []domain.Entity) map[string]int {
	summary := make(map[string]int, len(entities))
	for _, e := range entities {
		summary[e.Type]++
	}
	return summary
}

// acquireScratch draws a zero-length entity slice from the pool for a
// single request's detector fan-out accumulator.
func (o *Orchestrator) acquireScratch() []domain.Entity {
	o.poolMu.Lock()
	p := o.pool
	o.poolMu.Unlock()
	buf := p.Get().(*[]domain.Entity)
	return (*buf)[:0]
}

// releaseScratch returns a request's scratch slice to the pool for reuse
// by the next request.
func (o *Orchestrator) releaseScratch(buf []domain.Entity) {
	o.poolMu.Lock()
	p := o.pool
	o.poolMu.Unlock()
	p.Put(&buf)
}

// Reclaim is the idempotent hook an external memory watchdog calls
// between requests: it discards the scratch-buffer pool outright so
// every buffer it held becomes eligible for garbage collection, and
// installs a fresh empty pool for subsequent requests.
func (o *Orchestrator) Reclaim() {
	o.poolMu.Lock()
	defer o.poolMu.Unlock()
	o.pool = newEntityPool()
}
