// Package chunking provides the default, in-process semantic chunker used
// when no external chunking service is wired, plus the stitching logic
// that re-maps chunk-local detector output back to global offsets.
package chunking

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/pii-detect-core/internal/core/domain"
	"github.com/custodia-labs/pii-detect-core/internal/core/ports/driven"
)

// avgCharsPerToken approximates a subword tokenizer without depending on
// one: the chunker operates on character windows sized in token units so
// its semantics match detector-declared sequence limits (typically given
// in tokens) without requiring the real tokenizer vocabulary.
const avgCharsPerToken = 4

var _ driven.SemanticChunker = (*Chunker)(nil)

// Chunker splits text into overlapping windows along semantic boundaries,
// preferring paragraph breaks, then sentence breaks, then word breaks.
// It never silently truncates: if the input cannot be windowed (maxTokens
// too small to make progress), Split returns ErrChunkingUnavailable.
type Chunker struct{}

// New creates the default semantic chunker.
func New() *Chunker {
	return &Chunker{}
}

// Split implements driven.SemanticChunker.
func (c *Chunker) Split(text string, maxTokens, overlapTokens int) ([]driven.ChunkWindow, error) {
	if maxTokens <= 0 {
		return nil, fmt.Errorf("%w: maxTokens must be positive, got %d", domain.ErrChunkingUnavailable, maxTokens)
	}
	if overlapTokens < 0 || overlapTokens >= maxTokens {
		return nil, fmt.Errorf("%w: overlapTokens (%d) must be smaller than maxTokens (%d)", domain.ErrChunkingUnavailable, overlapTokens, maxTokens)
	}

	maxChars := maxTokens * avgCharsPerToken
	overlapChars := overlapTokens * avgCharsPerToken

	if len(text) <= maxChars {
		return []driven.ChunkWindow{
			{Text: text, Start: 0, End: len(text), TokenCount: approxTokenCount(text)},
		}, nil
	}

	var windows []driven.ChunkWindow
	start := 0
	for start < len(text) {
		end := start + maxChars
		if end > len(text) {
			end = len(text)
		}

		if end < len(text) {
			if bp := findBreakPoint(text, start, end); bp > start {
				end = bp
			}
		}

		chunkText := text[start:end]
		windows = append(windows, driven.ChunkWindow{
			Text:       chunkText,
			Start:      start,
			End:        end,
			TokenCount: approxTokenCount(chunkText),
		})

		if end >= len(text) {
			break
		}

		nextStart := end - overlapChars
		if nextStart <= start {
			nextStart = start + 1
		}
		start = nextStart
	}

	return windows, nil
}

// findBreakPoint looks backward from maxEnd for a semantic boundary,
// preferring paragraph breaks, then sentence breaks, then whitespace.
func findBreakPoint(text string, start, maxEnd int) int {
	searchWindow := maxEnd - start
	searchStart := maxEnd - searchWindow/4
	if searchStart < start {
		searchStart = start
	}
	search := text[searchStart:maxEnd]

	if idx := strings.LastIndex(search, "\n\n"); idx != -1 {
		return searchStart + idx + 2
	}

	sentenceEnders := []string{". ", "! ", "? ", ".\n", "!\n", "?\n"}
	best := -1
	for _, ender := range sentenceEnders {
		if idx := strings.LastIndex(search, ender); idx != -1 {
			end := idx + len(ender)
			if end > best {
				best = end
			}
		}
	}
	if best > 0 {
		return searchStart + best
	}

	if idx := strings.LastIndex(search, " "); idx != -1 {
		return searchStart + idx + 1
	}

	return maxEnd
}

func approxTokenCount(s string) int {
	return len(strings.Fields(s))
}
