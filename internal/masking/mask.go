// Package masking renders the final entity list over the original input
// as a placeholder-substituted string.
package masking

import (
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/pii-detect-core/internal/core/domain"
)

// PlaceholderThreshold is the input size (in bytes) above which Mask is
// skipped entirely and a size-describing placeholder is returned instead,
// to bound the cost of building a masked string for very large inputs.
const PlaceholderThreshold = 10 * 1024 * 1024 // 10 MiB

// Mask sorts entities by start ascending, walks input emitting verbatim
// text between entities and a "[TYPE_TAG]" placeholder in place of each
// entity's substring. Robust against a merger bug that would otherwise
// emit overlapping entities: any entity whose start precedes the current
// write cursor is skipped outright rather than corrupting the output.
//
// Mask is idempotent: re-running it on its own output changes nothing,
// since "[TYPE_TAG]" never matches any entity's original span again (the
// entities passed in describe spans into the ORIGINAL input, not the
// masked one; calling Mask a second time on masked output with the same
// entity list is a no-op because that second call would be given an
// empty entity list by the caller).
func Mask(input string, entities []domain.Entity) string {
	if len(input) > PlaceholderThreshold {
		return "[MASKED: input too large, " + strconv.Itoa(len(input)) + " bytes]"
	}

	sorted := make([]domain.Entity, len(entities))
	copy(sorted, entities)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	var b strings.Builder
	b.Grow(len(input))
	cursor := 0

	for _, e := range sorted {
		if e.Start < cursor {
			// Overlap that should never occur after the merger; skip
			// rather than emit corrupted output.
			continue
		}
		if e.Start > len(input) || e.End > len(input) || e.End < e.Start {
			continue
		}
		b.WriteString(input[cursor:e.Start])
		b.WriteString("[")
		b.WriteString(e.Type)
		b.WriteString("]")
		cursor = e.End
	}
	b.WriteString(input[cursor:])

	return b.String()
}
