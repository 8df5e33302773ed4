// Package catalogue loads the process-wide, boot-time-immutable
// detector configuration: the regex pattern catalogue, conflict groups,
// and category priority table. It is read once at startup; nothing in
// this package is re-read or re-compiled during request handling.
package catalogue

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/lib/pq"

	"github.com/custodia-labs/pii-detect-core/internal/core/domain"
	"github.com/custodia-labs/pii-detect-core/internal/core/ports/driven"
)

var _ driven.CatalogueStore = (*Store)(nil)

// Store implements driven.CatalogueStore over PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore builds a PostgreSQL-backed catalogue Store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// LoadPatterns reads and compiles the full pattern catalogue for the
// Pattern Matcher adapter.
func (s *Store) LoadPatterns(ctx context.Context) ([]driven.PatternSpec, error) {
	const query = `
		SELECT name, type_tag, pattern, base_score, priority, validator
		FROM pattern_catalogue
		ORDER BY priority DESC, name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pattern catalogue: %w", err)
	}
	defer rows.Close()

	var specs []driven.PatternSpec
	for rows.Next() {
		var name, typeTag, pattern string
		var baseScore float64
		var priority int
		var validator sql.NullString

		if err := rows.Scan(&name, &typeTag, &pattern, &baseScore, &priority, &validator); err != nil {
			return nil, fmt.Errorf("scan pattern catalogue row: %w", err)
		}

		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", name, err)
		}

		specs = append(specs, driven.PatternSpec{
			Name:      name,
			TypeTag:   typeTag,
			Pattern:   compiled,
			BaseScore: baseScore,
			Priority:  driven.PatternPriority(priority),
			Validator: validator.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pattern catalogue: %w", err)
	}

	return specs, nil
}

// LoadConflictGroups reads and compiles the conflict-group table used by
// the multi-label recognizer's conflict resolver.
func (s *Store) LoadConflictGroups(ctx context.Context) ([]domain.ConflictGroup, error) {
	const groupQuery = `
		SELECT id, name, group_pattern, fallback_order
		FROM conflict_groups
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, groupQuery)
	if err != nil {
		return nil, fmt.Errorf("list conflict groups: %w", err)
	}
	defer rows.Close()

	type groupRow struct {
		id            int
		name          string
		groupPattern  string
		fallbackOrder []string
	}
	var groupRows []groupRow
	for rows.Next() {
		var g groupRow
		var fallback []string
		if err := rows.Scan(&g.id, &g.name, &g.groupPattern, pq.Array(&fallback)); err != nil {
			return nil, fmt.Errorf("scan conflict group row: %w", err)
		}
		g.fallbackOrder = fallback
		groupRows = append(groupRows, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conflict groups: %w", err)
	}

	groups := make([]domain.ConflictGroup, 0, len(groupRows))
	for _, g := range groupRows {
		compiledGroup, err := regexp.Compile(g.groupPattern)
		if err != nil {
			return nil, fmt.Errorf("compile group pattern %q: %w", g.name, err)
		}

		typePatterns, typeOrder, err := s.loadTypePatterns(ctx, g.id)
		if err != nil {
			return nil, err
		}

		groups = append(groups, domain.ConflictGroup{
			Name:          g.name,
			GroupPattern:  compiledGroup,
			TypePatterns:  typePatterns,
			TypeOrder:     typeOrder,
			FallbackOrder: g.fallbackOrder,
		})
	}

	return groups, nil
}

func (s *Store) loadTypePatterns(ctx context.Context, groupID int) (map[string]*regexp.Regexp, []string, error) {
	const query = `
		SELECT type_tag, pattern
		FROM conflict_group_type_patterns
		WHERE group_id = $1
		ORDER BY trial_order
	`

	rows, err := s.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, nil, fmt.Errorf("list conflict group type patterns: %w", err)
	}
	defer rows.Close()

	typePatterns := make(map[string]*regexp.Regexp)
	var typeOrder []string
	for rows.Next() {
		var typeTag, pattern string
		if err := rows.Scan(&typeTag, &pattern); err != nil {
			return nil, nil, fmt.Errorf("scan conflict group type pattern row: %w", err)
		}

		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return nil, nil, fmt.Errorf("compile type pattern %q for %q: %w", typeTag, pattern, err)
		}

		typePatterns[typeTag] = compiled
		typeOrder = append(typeOrder, typeTag)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate conflict group type patterns: %w", err)
	}

	return typePatterns, typeOrder, nil
}

// LoadCategoryPriority reads the category-priority tiebreak table.
func (s *Store) LoadCategoryPriority(ctx context.Context) (domain.CategoryPriority, error) {
	const query = `SELECT category, priority FROM category_priority`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list category priority: %w", err)
	}
	defer rows.Close()

	priority := make(domain.CategoryPriority)
	for rows.Next() {
		var category string
		var value int
		if err := rows.Scan(&category, &value); err != nil {
			return nil, fmt.Errorf("scan category priority row: %w", err)
		}
		priority[category] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category priority: %w", err)
	}

	return priority, nil
}
