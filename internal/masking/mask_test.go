package masking

import (
	"strings"
	"testing"

	"github.com/custodia-labs/pii-detect-core/internal/core/domain"
)

func TestMask_SingleEntity(t *testing.T) {
	input := "Contact john.doe@example.com now"
	entities := []domain.Entity{
		{Type: "EMAIL", Start: 8, End: 28},
	}
	got := Mask(input, entities)
	want := "Contact [EMAIL] now"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMask_MultipleEntitiesSortedByStart(t *testing.T) {
	input := "aaaaa bbbbb ccccc"
	entities := []domain.Entity{
		{Type: "C", Start: 12, End: 17},
		{Type: "A", Start: 0, End: 5},
	}
	got := Mask(input, entities)
	want := "[A] bbbbb [C]"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMask_NoEntities(t *testing.T) {
	input := "nothing to mask here"
	got := Mask(input, nil)
	if got != input {
		t.Errorf("expected unchanged input, got %q", got)
	}
}

func TestMask_SkipsEntityOverlappingPriorCursor(t *testing.T) {
	input := "abcdefghij"
	entities := []domain.Entity{
		{Type: "A", Start: 0, End: 5},
		{Type: "B", Start: 3, End: 8}, // overlaps previously-masked region
	}
	got := Mask(input, entities)
	want := "[A]fghij"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMask_LargeInputUsesPlaceholder(t *testing.T) {
	input := strings.Repeat("x", PlaceholderThreshold+1)
	got := Mask(input, nil)
	if !strings.HasPrefix(got, "[MASKED:") {
		t.Errorf("expected placeholder output, got prefix %q", got[:20])
	}
}

func TestMask_IdempotentOnEmptyEntityList(t *testing.T) {
	input := "Contact john.doe@example.com now"
	entities := []domain.Entity{{Type: "EMAIL", Start: 8, End: 28}}

	once := Mask(input, entities)
	twice := Mask(once, nil)

	if once != twice {
		t.Errorf("re-masking already-masked output with no entities changed it: %q vs %q", once, twice)
	}
}
