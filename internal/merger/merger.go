// Package merger combines entities gathered from multiple detector
// families into one duplicate-free, overlap-free list.
package merger

import (
	"sort"

	"github.com/custodia-labs/pii-detect-core/internal/core/domain"
)

// Merge deduplicates identical detections across producers (keeping the
// highest score), then resolves overlapping spans within each type tag,
// preferring wider spans and higher scores. Merge is idempotent and
// commutative over the order entities are supplied in.
func Merge(entities []domain.Entity) []domain.Entity {
	deduped := dedupe(entities)

	byType := make(map[string][]domain.Entity)
	var typeOrder []string
	for _, e := range deduped {
		if _, ok := byType[e.Type]; !ok {
			typeOrder = append(typeOrder, e.Type)
		}
		byType[e.Type] = append(byType[e.Type], e)
	}
	sort.Strings(typeOrder)

	var result []domain.Entity
	for _, t := range typeOrder {
		result = append(result, resolveOverlaps(byType[t])...)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Start != result[j].Start {
			return result[i].Start < result[j].Start
		}
		return result[i].End < result[j].End
	})

	return result
}

type dedupeKey struct {
	start, end int
	typeTag    string
	text       string
}

// dedupe keys each entity by (start, end, type, text) and keeps the
// highest-scoring entity per key.
func dedupe(entities []domain.Entity) []domain.Entity {
	best := make(map[dedupeKey]domain.Entity)
	var order []dedupeKey

	for _, e := range entities {
		key := dedupeKey{e.Start, e.End, e.Type, e.Text}
		existing, ok := best[key]
		if !ok {
			order = append(order, key)
			best[key] = e
			continue
		}
		if e.Score > existing.Score {
			best[key] = e
		}
	}

	out := make([]domain.Entity, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out
}

// resolveOverlaps implements the sweep-line containment/overlap contract:
// sort by (start asc, width desc, score desc), then sweep keeping an
// entity only if it is not subsumed by (and does not partially collide
// with) an already-kept, wider-or-equal entity. A strictly wider
// candidate evicts any narrower kept entity it contains.
func resolveOverlaps(entities []domain.Entity) []domain.Entity {
	sorted := make([]domain.Entity, len(entities))
	copy(sorted, entities)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		wi, wj := sorted[i].Len(), sorted[j].Len()
		if wi != wj {
			return wi > wj
		}
		return sorted[i].Score > sorted[j].Score
	})

	var kept []domain.Entity
	for _, c := range sorted {
		discard := false
		evicted := make(map[int]bool)

		for i, k := range kept {
			if k.End <= c.Start || c.End <= k.Start {
				continue
			}
			if c.Contains(k) {
				evicted[i] = true
				continue
			}
			// k contains c, or they overlap partially: c loses.
			discard = true
		}

		if discard {
			continue
		}

		var survivors []domain.Entity
		for i, k := range kept {
			if !evicted[i] {
				survivors = append(survivors, k)
			}
		}
		kept = append(survivors, c)
	}

	return kept
}
