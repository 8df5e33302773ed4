package detectors

import (
	"context"
	"fmt"
	"sort"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/pii-detect-core/internal/chunking"
	"github.com/custodia-labs/pii-detect-core/internal/core/domain"
	"github.com/custodia-labs/pii-detect-core/internal/core/ports/driven"
)

var _ driven.Detector = (*Tagger)(nil)

// defaultOverlapTokens mirrors the spec's typical stride for the
// windowed tagger: large enough to avoid losing an entity split across a
// window boundary, small enough to keep duplicate work bounded.
const defaultOverlapTokens = 100

// Tagger adapts an external single-label token-classification model
// (TaggerClient) behind the uniform Detector contract. It normalizes
// input to NFC, splits it into overlapping token windows via a
// SemanticChunker, stitches per-window spans back to global offsets, and
// applies three post-processing fixups the upstream model is known to
// need: email-domain expansion, zipcode/city splitting, and
// adjacent-same-type merging.
type Tagger struct {
	client         driven.TaggerClient
	chunker        driven.SemanticChunker
	maxConcurrency int
}

// NewTagger builds a Tagger adapter. chunker defaults to the in-process
// chunking.Chunker when nil.
func NewTagger(client driven.TaggerClient, chunker driven.SemanticChunker, maxConcurrency int) *Tagger {
	if chunker == nil {
		chunker = chunking.New()
	}
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}
	return &Tagger{client: client, chunker: chunker, maxConcurrency: maxConcurrency}
}

func (t *Tagger) Source() domain.DetectorSource {
	return domain.SourceMLTagger
}

func (t *Tagger) Detect(ctx context.Context, text string, snapshot *domain.ConfigSnapshot) ([]domain.Entity, error) {
	if t.client == nil {
		return nil, fmt.Errorf("%w: tagger client not wired", domain.ErrDetectorUnavailable)
	}
	if text == "" {
		return nil, nil
	}

	normalized := norm.NFC.String(text)
	maxTokens := t.client.MaxSequenceLength()

	entities, err := chunking.RunChunked(ctx, t.chunker, normalized, maxTokens, defaultOverlapTokens, t.maxConcurrency,
		func(ctx context.Context, w driven.ChunkWindow) ([]domain.Entity, error) {
			spans, err := t.client.Tag(ctx, w.Text)
			if err != nil {
				return nil, err
			}
			out := make([]domain.Entity, 0, len(spans))
			for _, s := range spans {
				out = append(out, domain.Entity{
					Text:   domain.ExtractText(w.Text, s.Start, s.End),
					Type:   s.Label,
					Start:  s.Start,
					End:    s.End,
					Score:  s.Score,
					Source: domain.SourceMLTagger,
				})
			}
			return out, nil
		})
	if err != nil {
		return nil, err
	}

	entities = applyFixups(normalized, entities)
	entities = dedupeByTypeSpan(entities)

	return filterBySnapshot(entities, snapshot, domain.DetectorScopeTagger), nil
}

// applyFixups runs the three post-processing rules in the order the
// upstream model requires them: email expansion first (it can change
// span boundaries that the zipcode split and merge rules then see),
// then zipcode/city splitting, then adjacent-same-type merging.
func applyFixups(input string, entities []domain.Entity) []domain.Entity {
	entities = expandEmailDomains(input, entities)
	entities = splitZipcodeCity(input, entities)
	entities = mergeAdjacentSameType(input, entities)
	return entities
}

// expandEmailDomains repairs EMAIL entities the tagger clipped before the
// '@': if an EMAIL entity has no '@', look forward up to 50 characters
// for one, then greedily extend the local part backward and the domain
// forward, accepting the expansion only if it contains exactly one '@'
// and the domain has a '.'.
func expandEmailDomains(input string, entities []domain.Entity) []domain.Entity {
	out := make([]domain.Entity, len(entities))
	copy(out, entities)

	for i, e := range out {
		if e.Type != "EMAIL" || containsByte(e.Text, '@') {
			continue
		}

		lookahead := e.End + 50
		if lookahead > len(input) {
			lookahead = len(input)
		}
		window := input[e.Start:lookahead]
		at := indexByte(window, '@')
		if at < 0 {
			continue
		}
		atPos := e.Start + at

		localStart := atPos
		for localStart > 0 && isLocalPartChar(rune(input[localStart-1])) {
			localStart--
		}
		domainEnd := atPos + 1
		for domainEnd < len(input) && isDomainChar(rune(input[domainEnd])) {
			domainEnd++
		}
		for domainEnd > atPos+1 && isTrailingPunct(input[domainEnd-1]) {
			domainEnd--
		}

		candidate := input[localStart:domainEnd]
		if countByte(candidate, '@') != 1 {
			continue
		}
		domainPart := candidate[indexByte(candidate, '@')+1:]
		if !containsByte(domainPart, '.') {
			continue
		}

		out[i].Start = localStart
		out[i].End = domainEnd
		out[i].Text = candidate
	}

	return out
}

// splitZipcodeCity splits a ZIPCODE entity that actually spans a postal
// code and a capitalized city name into a ZIPCODE entity and a CITY
// entity, preferring a split at the first comma, else at the first
// transition from (alphanumeric, space, dash) into a capitalized word.
func splitZipcodeCity(input string, entities []domain.Entity) []domain.Entity {
	var out []domain.Entity

	for _, e := range entities {
		if e.Type != "ZIPCODE" {
			out = append(out, e)
			continue
		}

		text := e.Text
		splitAt := -1
		if idx := indexByte(text, ','); idx >= 0 {
			splitAt = idx
		} else {
			splitAt = findCapitalizedWordStart(text)
		}

		if splitAt <= 0 || splitAt >= len(text) {
			out = append(out, e)
			continue
		}

		zipTextEnd := splitAt
		for zipTextEnd > 0 && (text[zipTextEnd-1] == ' ' || text[zipTextEnd-1] == ',' || text[zipTextEnd-1] == '-') {
			zipTextEnd--
		}
		zipEnd := e.Start + zipTextEnd

		cityStart := e.Start + splitAt
		for cityStart < e.End && (input[cityStart] == ',' || input[cityStart] == ' ') {
			cityStart++
		}
		if cityStart >= e.End || zipEnd <= e.Start {
			out = append(out, e)
			continue
		}

		out = append(out,
			domain.Entity{Type: "ZIPCODE", Start: e.Start, End: zipEnd, Text: domain.ExtractText(input, e.Start, zipEnd), Score: e.Score, Source: e.Source},
			domain.Entity{Type: "CITY", Start: cityStart, End: e.End, Text: domain.ExtractText(input, cityStart, e.End), Score: e.Score, Source: e.Source},
		)
	}

	return out
}

// mergeAdjacentSameType merges two consecutive same-type entities that
// are strictly adjacent or separated by a single apostrophe or dash.
func mergeAdjacentSameType(input string, entities []domain.Entity) []domain.Entity {
	if len(entities) < 2 {
		return entities
	}

	sorted := make([]domain.Entity, len(entities))
	copy(sorted, entities)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var out []domain.Entity
	current := sorted[0]
	for _, next := range sorted[1:] {
		gap := next.Start - current.End
		sameType := next.Type == current.Type
		adjacent := gap == 0 || (gap == 1 && isMergeSeparator(input[current.End]))

		if sameType && adjacent {
			score := current.Score
			if next.Score > score {
				score = next.Score
			}
			current = domain.Entity{
				Type:   current.Type,
				Start:  current.Start,
				End:    next.End,
				Text:   domain.ExtractText(input, current.Start, next.End),
				Score:  score,
				Source: current.Source,
			}
			continue
		}

		out = append(out, current)
		current = next
	}
	out = append(out, current)

	return out
}

func dedupeByTypeSpan(entities []domain.Entity) []domain.Entity {
	type key struct {
		typeTag    string
		start, end int
	}
	seen := make(map[key]struct{}, len(entities))
	var out []domain.Entity
	for _, e := range entities {
		k := key{e.Type, e.Start, e.End}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
	}
	return out
}

func isLocalPartChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' || r == '+' || r == '-'
}

func isDomainChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-'
}

func isTrailingPunct(b byte) bool {
	switch b {
	case '.', ',', ';', ':', '!', '?':
		return true
	default:
		return false
	}
}

func isMergeSeparator(b byte) bool {
	return b == '\'' || b == '-'
}

func findCapitalizedWordStart(text string) int {
	runes := []rune(text)
	byteOffset := 0
	for i, r := range runes {
		if unicode.IsUpper(r) && (i == 0 || runes[i-1] == ' ' || runes[i-1] == ',' || runes[i-1] == '-') {
			// Require at least one preceding digit/space/dash so the
			// whole text isn't just a capitalized word by itself.
			if byteOffset > 0 {
				return byteOffset
			}
		}
		byteOffset += len(string(r))
	}
	return -1
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

func countByte(s string, b byte) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			n++
		}
	}
	return n
}

func containsByte(s string, b byte) bool {
	return indexByte(s, b) >= 0
}

// filterBySnapshot applies the snapshot's per-type enabled flag and
// effective threshold, and re-extracts text to re-establish the
// text == input[start:end] invariant is the caller's job downstream
// (post-filter); here it only scopes by detector family and drops
// entities the snapshot disables outright, leaving scoring to the
// shared post-filter stage.
func filterBySnapshot(entities []domain.Entity, snapshot *domain.ConfigSnapshot, scope domain.DetectorScope) []domain.Entity {
	if snapshot == nil {
		return entities
	}
	var out []domain.Entity
	for _, e := range entities {
		cfg, ok := snapshot.PerType[e.Type]
		if ok && !cfg.Detector.Matches(scope) {
			continue
		}
		if !snapshot.IsEnabled(e.Type) {
			continue
		}
		out = append(out, e)
	}
	return out
}
