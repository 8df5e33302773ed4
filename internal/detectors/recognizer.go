package detectors

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/pii-detect-core/internal/conflict"
	"github.com/custodia-labs/pii-detect-core/internal/core/domain"
	"github.com/custodia-labs/pii-detect-core/internal/core/ports/driven"
	"github.com/custodia-labs/pii-detect-core/internal/pool"
)

var _ driven.Detector = (*Recognizer)(nil)

// Recognizer adapts an external multi-label span recognizer
// (RecognizerClient) behind the uniform Detector contract. Because the
// model's accuracy degrades with too many candidate labels, it runs the
// model in multiple passes over disjoint label batches, aggregates all
// results sharing the exact same span, and resolves any span proposing
// more than one distinct type via the conflict Resolver.
type Recognizer struct {
	client         driven.RecognizerClient
	resolver       *conflict.Resolver
	maxConcurrency int
}

// NewRecognizer builds a Recognizer adapter. resolver may be nil if no
// conflict groups/category priorities are configured; spans with
// multiple types then fall straight to the resolver's score tiebreak via
// a zero-value Resolver.
func NewRecognizer(client driven.RecognizerClient, resolver *conflict.Resolver, maxConcurrency int) *Recognizer {
	if resolver == nil {
		resolver = conflict.New(nil, nil)
	}
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}
	return &Recognizer{client: client, resolver: resolver, maxConcurrency: maxConcurrency}
}

func (r *Recognizer) Source() domain.DetectorSource {
	return domain.SourceMLRecognizer
}

func (r *Recognizer) Detect(ctx context.Context, text string, snapshot *domain.ConfigSnapshot) ([]domain.Entity, error) {
	if r.client == nil {
		return nil, fmt.Errorf("%w: recognizer client not wired", domain.ErrDetectorUnavailable)
	}
	if text == "" {
		return nil, nil
	}

	labels := activeLabels(snapshot)
	if len(labels) == 0 {
		return nil, nil
	}

	batchSize := r.client.MaxLabelsPerCall()
	if snapshot != nil && snapshot.Global.BatchLabelLimit > 0 && snapshot.Global.BatchLabelLimit < batchSize {
		batchSize = snapshot.Global.BatchLabelLimit
	}
	batches := batchLabels(labels, batchSize)

	jobs := make([]pool.Job[[]driven.TaggedSpan], len(batches))
	for i, batch := range batches {
		batch := batch
		jobs[i] = func(ctx context.Context) ([]driven.TaggedSpan, error) {
			return r.client.Recognize(ctx, text, batch)
		}
	}
	results := pool.Run(ctx, jobs, r.maxConcurrency)

	var spans []driven.TaggedSpan
	for i, res := range results {
		if res.Err != nil {
			return nil, fmt.Errorf("label batch %d: %w", i, res.Err)
		}
		spans = append(spans, res.Value...)
	}

	aggregated := aggregateSpans(text, spans)

	var stats domain.ResolutionStats
	var resolved []domain.Entity
	for _, span := range aggregated {
		var label domain.LabelScore
		if span.HasConflict() {
			categoryOf := categoryLookup(snapshot)
			label = r.resolver.Resolve(span, categoryOf, &stats)
		} else {
			label = domain.LabelScore{Type: span.Labels[0].Type, Score: span.Labels[0].Score}
		}
		resolved = append(resolved, domain.Entity{
			Text:   span.Text,
			Type:   label.Type,
			Start:  span.Start,
			End:    span.End,
			Score:  label.Score,
			Source: domain.SourceMLRecognizer,
		})
	}

	resolved = filterBySnapshot(resolved, snapshot, domain.DetectorScopeRecognizer)

	return sweepOverlaps(resolved), nil
}

// activeLabels gathers type tags from the snapshot scoped to the
// recognizer family (or ALL) and enabled, sorted deterministically; this
// is computed once per request rather than per batch.
func activeLabels(snapshot *domain.ConfigSnapshot) []string {
	if snapshot == nil {
		return nil
	}
	return snapshot.ActiveLabelsFor(domain.DetectorScopeRecognizer)
}

// batchLabels chunks labels into batches of at most size, preserving
// sorted order.
func batchLabels(labels []string, size int) [][]string {
	if size <= 0 {
		size = len(labels)
	}
	var batches [][]string
	for i := 0; i < len(labels); i += size {
		end := i + size
		if end > len(labels) {
			end = len(labels)
		}
		batches = append(batches, labels[i:end])
	}
	return batches
}

// aggregateSpans groups same-(start,end) spans across all passes into
// AggregatedSpans.
func aggregateSpans(text string, spans []driven.TaggedSpan) []domain.AggregatedSpan {
	type key struct{ start, end int }
	groups := make(map[key]*domain.AggregatedSpan)
	var order []key

	for _, s := range spans {
		k := key{s.Start, s.End}
		g, ok := groups[k]
		if !ok {
			g = &domain.AggregatedSpan{Start: s.Start, End: s.End, Text: domain.ExtractText(text, s.Start, s.End)}
			groups[k] = g
			order = append(order, k)
		}
		g.Labels = append(g.Labels, domain.LabelScore{Type: s.Label, Score: s.Score})
	}

	out := make([]domain.AggregatedSpan, 0, len(order))
	for _, k := range order {
		out = append(out, *groups[k])
	}
	return out
}

// categoryLookup adapts the snapshot's per-type category field into the
// categoryOf function the conflict Resolver expects.
func categoryLookup(snapshot *domain.ConfigSnapshot) func(string) string {
	if snapshot == nil {
		return nil
	}
	return func(typeTag string) string {
		return snapshot.PerType[typeTag].Category
	}
}

// sweepOverlaps applies the post-resolution overlap pass: sort by start
// ascending then width descending, keep an entity only if its start is
// at or past the furthest end already kept.
func sweepOverlaps(entities []domain.Entity) []domain.Entity {
	if len(entities) <= 1 {
		return entities
	}

	sorted := make([]domain.Entity, len(entities))
	copy(sorted, entities)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].Len() > sorted[j].Len()
	})

	var kept []domain.Entity
	maxEnd := -1
	for _, e := range sorted {
		if e.Start >= maxEnd {
			kept = append(kept, e)
			maxEnd = e.End
		}
	}
	return kept
}
