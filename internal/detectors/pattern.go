package detectors

import (
	"context"
	"sort"

	"github.com/custodia-labs/pii-detect-core/internal/core/domain"
	"github.com/custodia-labs/pii-detect-core/internal/core/ports/driven"
)

var _ driven.Detector = (*PatternMatcher)(nil)

// Validator is a named algorithmic check applied to a raw regex match
// before it is accepted as an entity.
type Validator func(rawMatch string) bool

// PatternMatcher runs a boot-time-compiled catalogue of regex patterns
// against the input, validates candidates with an optional algorithmic
// validator, and resolves same-type overlaps by priority then base score.
// Positions are original: no chunking is needed since regexp.FindAllIndex
// runs over the whole input directly.
type PatternMatcher struct {
	patterns   []driven.PatternSpec
	validators map[string]Validator
}

// NewPatternMatcher builds a matcher from a boot-time-immutable pattern
// catalogue and named validators (e.g. "luhn").
func NewPatternMatcher(patterns []driven.PatternSpec, validators map[string]Validator) *PatternMatcher {
	return &PatternMatcher{patterns: patterns, validators: validators}
}

func (p *PatternMatcher) Source() domain.DetectorSource {
	return domain.SourcePattern
}

func (p *PatternMatcher) Detect(ctx context.Context, text string, snapshot *domain.ConfigSnapshot) ([]domain.Entity, error) {
	var candidates []domain.Entity

	for _, spec := range p.patterns {
		if spec.Pattern == nil {
			continue
		}
		if snapshot != nil && !snapshot.IsEnabled(spec.TypeTag) {
			continue
		}

		threshold := 0.5
		if snapshot != nil {
			threshold = snapshot.EffectiveThreshold(spec.TypeTag)
		}
		if spec.BaseScore < threshold {
			continue
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		for _, loc := range spec.Pattern.FindAllStringIndex(text, -1) {
			start, end := loc[0], loc[1]
			raw := text[start:end]

			if spec.Validator != "" {
				validate, ok := p.validators[spec.Validator]
				if !ok || !validate(raw) {
					continue
				}
			}

			candidates = append(candidates, domain.Entity{
				Text:   raw,
				Type:   spec.TypeTag,
				Start:  start,
				End:    end,
				Score:  spec.BaseScore,
				Source: domain.SourcePattern,
			})
		}
	}

	return resolvePatternOverlaps(candidates, p.patternMeta()), nil
}

// patternMeta indexes the highest configured priority per type tag so the
// overlap pass can compare priorities without re-scanning the catalogue.
func (p *PatternMatcher) patternMeta() map[string]driven.PatternPriority {
	m := make(map[string]driven.PatternPriority, len(p.patterns))
	for _, spec := range p.patterns {
		if existing, ok := m[spec.TypeTag]; !ok || spec.Priority > existing {
			m[spec.TypeTag] = spec.Priority
		}
	}
	return m
}

// resolvePatternOverlaps keeps, among overlapping matches of any type,
// the one with the higher priority; ties broken by higher base_score
// (captured here as Score, since the matcher stamps Score=base_score).
func resolvePatternOverlaps(candidates []domain.Entity, priorityByType map[string]driven.PatternPriority) []domain.Entity {
	if len(candidates) <= 1 {
		return candidates
	}

	sorted := make([]domain.Entity, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool {
		pi, pj := priorityByType[sorted[i].Type], priorityByType[sorted[j].Type]
		if pi != pj {
			return pi > pj
		}
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Start < sorted[j].Start
	})

	var kept []domain.Entity
	for _, c := range sorted {
		overlaps := false
		for _, k := range kept {
			if k.Overlaps(c) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, c)
		}
	}

	sort.Slice(kept, func(i, j int) bool {
		return kept[i].Start < kept[j].Start
	})
	return kept
}
