// Package conflict implements the priority ladder that picks exactly one
// (type, score) label out of an AggregatedSpan bearing multiple candidate
// types proposed by the multi-label recognizer.
package conflict

import (
	"sort"

	"github.com/custodia-labs/pii-detect-core/internal/core/domain"
)

// Resolver picks one label per conflicted AggregatedSpan using compiled
// conflict groups, then category priority, then a score tiebreaker. It is
// CPU-only: no suspension points, no shared mutable state across requests.
type Resolver struct {
	groups           []domain.ConflictGroup
	categoryPriority domain.CategoryPriority
}

// New builds a Resolver over boot-time-immutable conflict groups and
// category priority table.
func New(groups []domain.ConflictGroup, categoryPriority domain.CategoryPriority) *Resolver {
	return &Resolver{groups: groups, categoryPriority: categoryPriority}
}

// Resolve picks exactly one label for span. categoryOf maps a type tag to
// its configured category (from the request's ConfigSnapshot); stats
// accumulates the per-request counters the Orchestrator reads and resets
// for logging. stats may be nil if the caller does not need counters.
func (r *Resolver) Resolve(span domain.AggregatedSpan, categoryOf func(typeTag string) string, stats *domain.ResolutionStats) domain.LabelScore {
	if stats != nil {
		stats.TotalConflicts++
	}

	if label, byFallback, ok := r.resolveByGroup(span); ok {
		if stats != nil {
			if byFallback {
				stats.ResolvedByFallback++
			} else {
				stats.ResolvedByPattern++
			}
		}
		return label
	}

	if label, ok := r.resolveByCategory(span, categoryOf); ok {
		if stats != nil {
			stats.ResolvedByCategory++
		}
		return label
	}

	if stats != nil {
		stats.ResolvedByTiebreak++
	}
	return r.resolveByScoreTiebreak(span)
}

// resolveByGroup tries every configured ConflictGroup whose group_pattern
// matches the span text and which offers at least one candidate type; the
// first matching group owns the span. Within it, the first type_pattern
// (in TypeOrder) that matches the span text and names a real candidate
// wins; otherwise the group's fallback_order picks the earliest candidate.
// The second return value reports whether the win came via fallback, for
// the caller's statistics.
func (r *Resolver) resolveByGroup(span domain.AggregatedSpan) (domain.LabelScore, bool, bool) {
	for _, group := range r.groups {
		if group.GroupPattern == nil || !group.GroupPattern.MatchString(span.Text) {
			continue
		}
		if !groupHasCandidate(group, span) {
			continue
		}

		for _, typeTag := range group.TypeOrder {
			pattern, ok := group.TypePatterns[typeTag]
			if !ok || pattern == nil || !pattern.MatchString(span.Text) {
				continue
			}
			if score, found := span.BestScore(typeTag); found {
				return domain.LabelScore{Type: typeTag, Score: score}, false, true
			}
		}

		for _, typeTag := range group.FallbackOrder {
			if score, found := span.BestScore(typeTag); found {
				return domain.LabelScore{Type: typeTag, Score: score}, true, true
			}
		}

		// Group claimed the span but neither type patterns nor fallback
		// order named an actual candidate: fall through to category
		// priority.
		return domain.LabelScore{}, false, false
	}

	return domain.LabelScore{}, false, false
}

func (r *Resolver) resolveByCategory(span domain.AggregatedSpan, categoryOf func(typeTag string) string) (domain.LabelScore, bool) {
	if categoryOf == nil {
		return domain.LabelScore{}, false
	}

	bestPriority := -1
	var candidates []domain.LabelScore
	for _, label := range span.Labels {
		priority := r.categoryPriority.PriorityOf(categoryOf(label.Type))
		if priority > bestPriority {
			bestPriority = priority
			candidates = []domain.LabelScore{label}
		} else if priority == bestPriority {
			candidates = append(candidates, label)
		}
	}

	if len(candidates) == 0 {
		return domain.LabelScore{}, false
	}
	if len(candidates) == 1 {
		return bestOfSameType(span, candidates[0].Type), true
	}

	return tiebreak(candidates), true
}

func (r *Resolver) resolveByScoreTiebreak(span domain.AggregatedSpan) domain.LabelScore {
	return tiebreak(span.Labels)
}

// groupHasCandidate reports whether any of the span's proposed types
// appears in the group's type_patterns map.
func groupHasCandidate(group domain.ConflictGroup, span domain.AggregatedSpan) bool {
	for _, label := range span.Labels {
		if _, ok := group.TypePatterns[label.Type]; ok {
			return true
		}
	}
	return false
}

// bestOfSameType collapses duplicate labels of typeTag within span down
// to its single best score.
func bestOfSameType(span domain.AggregatedSpan, typeTag string) domain.LabelScore {
	score, _ := span.BestScore(typeTag)
	return domain.LabelScore{Type: typeTag, Score: score}
}

// tiebreak picks the highest score; ties broken by lexicographic type tag.
func tiebreak(labels []domain.LabelScore) domain.LabelScore {
	sorted := make([]domain.LabelScore, len(labels))
	copy(sorted, labels)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Type < sorted[j].Type
	})
	return sorted[0]
}
