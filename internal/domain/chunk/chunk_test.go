package chunk

import (
	"fmt"
	"strconv"
	"strings"
	"testing"
)

// wordTokenizer maps whitespace-separated words to sequential ids.
type wordTokenizer struct{}

func (wordTokenizer) Encode(text string) []int {
	words := strings.Fields(text)
	ids := make([]int, len(words))
	for i, w := range words {
		id, _ := strconv.Atoi(strings.TrimPrefix(w, "w"))
		ids[i] = id
	}
	return ids
}

func (wordTokenizer) Decode(ids []int) string {
	words := make([]string, len(ids))
	for i, id := range ids {
		words[i] = "w" + strconv.Itoa(id)
	}
	return strings.Join(words, " ")
}

// numberedText produces "w0 w1 ... w{n-1}".
func numberedText(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = "w" + strconv.Itoa(i)
	}
	return strings.Join(words, " ")
}

func mustChunker(t *testing.T, maxTokens, overlap int) *Chunker {
	t.Helper()
	c, err := New(wordTokenizer{}, maxTokens, overlap)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(nil, 450, 50); err == nil {
		t.Error("expected error for nil tokenizer")
	}
	if _, err := New(wordTokenizer{}, 0, 0); err == nil {
		t.Error("expected error for zero max_tokens")
	}
	if _, err := New(wordTokenizer{}, 100, 100); err == nil {
		t.Error("expected error for overlap == max_tokens")
	}
	if _, err := New(wordTokenizer{}, 100, -1); err == nil {
		t.Error("expected error for negative overlap")
	}
}

func TestSplit_WindowOffsets(t *testing.T) {
	c := mustChunker(t, 450, 50)
	chunks := c.Split(numberedText(1000))

	if len(chunks) != 3 {
		t.Fatalf("expected 3 windows for 1000 tokens, got %d", len(chunks))
	}
	// Windows start at 0, 400, 800.
	for i, wantStart := range []int{0, 400, 800} {
		first := strings.Fields(chunks[i])[0]
		if first != fmt.Sprintf("w%d", wantStart) {
			t.Errorf("window %d starts at %s, want w%d", i, first, wantStart)
		}
	}
	// Last window holds the 200-token remainder.
	if got := len(strings.Fields(chunks[2])); got != 200 {
		t.Errorf("last window has %d tokens, want 200", got)
	}
}

func TestSplit_NoWindowExceedsMax(t *testing.T) {
	c := mustChunker(t, 450, 50)
	for _, n := range []int{1, 449, 450, 451, 900, 1300} {
		for i, chunk := range c.Split(numberedText(n)) {
			if got := len(strings.Fields(chunk)); got > 450 {
				t.Errorf("n=%d window %d has %d tokens", n, i, got)
			}
		}
	}
}

func TestSplit_OverlapRepeatsTokens(t *testing.T) {
	c := mustChunker(t, 450, 50)
	chunks := c.Split(numberedText(500))

	if len(chunks) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(chunks))
	}
	first := strings.Fields(chunks[0])
	second := strings.Fields(chunks[1])
	// Tokens 400..449 appear in both windows.
	if first[400] != second[0] {
		t.Errorf("overlap mismatch: first[400]=%s second[0]=%s", first[400], second[0])
	}
}

func TestSplit_EmptyText(t *testing.T) {
	c := mustChunker(t, 450, 50)
	if got := c.Split(""); got != nil {
		t.Errorf("expected no chunks for empty text, got %v", got)
	}
}

func TestSplit_ShortText(t *testing.T) {
	c := mustChunker(t, 450, 50)
	chunks := c.Split(numberedText(10))
	if len(chunks) != 1 {
		t.Fatalf("expected 1 window, got %d", len(chunks))
	}
	if chunks[0] != numberedText(10) {
		t.Errorf("short text should round-trip, got %q", chunks[0])
	}
}

func TestPair_EqualLengths(t *testing.T) {
	pairs := Pair([]string{"e0", "e1"}, []string{"a0", "a1"})
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	if pairs[0].EN != "e0" || pairs[0].AR != "a0" {
		t.Errorf("pair 0 = %+v", pairs[0])
	}
	if pairs[1].EN != "e1" || pairs[1].AR != "a1" {
		t.Errorf("pair 1 = %+v", pairs[1])
	}
}

func TestPair_UnevenLengths_AbsentNotBorrowed(t *testing.T) {
	pairs := Pair([]string{"e0", "e1", "e2"}, []string{"a0"})
	if len(pairs) != 3 {
		t.Fatalf("expected 3 pairs, got %d", len(pairs))
	}
	for i := 1; i < 3; i++ {
		if pairs[i].AR != "" {
			t.Errorf("pair %d: ar must be absent, got %q", i, pairs[i].AR)
		}
		if pairs[i].EN == "" {
			t.Errorf("pair %d: en must be present", i)
		}
	}
}

func TestPair_OneSideEmpty(t *testing.T) {
	pairs := Pair(nil, []string{"a0", "a1"})
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	for i, p := range pairs {
		if p.EN != "" {
			t.Errorf("pair %d: en must be absent", i)
		}
	}
	if Pair(nil, nil) != nil {
		t.Error("expected nil for two empty lists")
	}
}
