package driven

import (
	"context"
	"regexp"

	"github.com/custodia-labs/pii-detect-core/internal/core/domain"
)

// PatternSpec is one entry in the regex-pattern catalogue driving the
// Pattern Matcher adapter.
type PatternSpec struct {
	Name      string
	TypeTag   string
	Pattern   *regexp.Regexp
	BaseScore float64
	Priority  PatternPriority
	Validator string // name of a registered algorithmic validator, or ""
}

// PatternPriority orders pattern matches that overlap; higher wins.
type PatternPriority int

const (
	PriorityLow PatternPriority = iota
	PriorityMedium
	PriorityHigh
)

// CatalogueStore loads the process-wide, boot-time-immutable
// configuration: the regex pattern catalogue, the conflict groups, and
// the category priority table. All regexes it returns must already be
// compiled; per-request compilation is a bug.
type CatalogueStore interface {
	LoadPatterns(ctx context.Context) ([]PatternSpec, error)
	LoadConflictGroups(ctx context.Context) ([]domain.ConflictGroup, error)
	LoadCategoryPriority(ctx context.Context) (domain.CategoryPriority, error)
}
