package chunking

import (
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/pii-detect-core/internal/core/domain"
	"github.com/custodia-labs/pii-detect-core/internal/core/ports/driven"
)

func TestRunChunked_StitchesLocalOffsetsToGlobal(t *testing.T) {
	text := "aaaa EMAIL1 bbbb EMAIL2 cccc"
	chunker := New()

	detect := func(ctx context.Context, w driven.ChunkWindow) ([]domain.Entity, error) {
		var out []domain.Entity
		if idx := indexOf(w.Text, "EMAIL1"); idx >= 0 {
			out = append(out, domain.Entity{Type: "EMAIL", Start: idx, End: idx + len("EMAIL1"), Score: 0.9})
		}
		if idx := indexOf(w.Text, "EMAIL2"); idx >= 0 {
			out = append(out, domain.Entity{Type: "EMAIL", Start: idx, End: idx + len("EMAIL2"), Score: 0.9})
		}
		return out, nil
	}

	entities, err := RunChunked(context.Background(), chunker, text, 1000, 0, 4, detect)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entities) != 2 {
		t.Fatalf("expected 2 entities, got %d: %+v", len(entities), entities)
	}
	for _, e := range entities {
		got := text[e.Start:e.End]
		if got != e.Text {
			t.Errorf("entity text mismatch: stored %q, input slice %q", e.Text, got)
		}
	}
}

func TestRunChunked_DropsOverlapDuplicates(t *testing.T) {
	text := "123456789012345678901234567890"
	chunker := New()

	calls := 0
	detect := func(ctx context.Context, w driven.ChunkWindow) ([]domain.Entity, error) {
		calls++
		// Every chunk reports the same first 3 chars as an entity; the
		// overlap region should collapse these to one global entity.
		return []domain.Entity{{Type: "DIGITS", Start: 0, End: 3, Score: 0.5}}, nil
	}

	entities, err := RunChunked(context.Background(), chunker, text, 3, 1, 2, detect)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls < 2 {
		t.Fatalf("expected multiple chunks to be processed, got %d calls", calls)
	}

	seen := make(map[[2]int]bool)
	for _, e := range entities {
		key := [2]int{e.Start, e.End}
		if seen[key] {
			t.Errorf("duplicate entity at (%d,%d) survived stitching", e.Start, e.End)
		}
		seen[key] = true
	}
}

func TestRunChunked_ChunkFailureDiscardsContribution(t *testing.T) {
	text := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	chunker := New()

	boom := errors.New("boom")
	calls := 0
	detect := func(ctx context.Context, w driven.ChunkWindow) ([]domain.Entity, error) {
		calls++
		if calls == 2 {
			return nil, boom
		}
		return []domain.Entity{{Type: "X", Start: 0, End: 1, Score: 0.9}}, nil
	}

	entities, err := RunChunked(context.Background(), chunker, text, 5, 1, 1, detect)
	if err == nil {
		t.Fatal("expected error from failing chunk")
	}
	if entities != nil {
		t.Errorf("expected no partial entities on failure, got %+v", entities)
	}
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}
