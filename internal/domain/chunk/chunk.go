// Package chunk splits document text into overlapping token windows for
// per-chunk embedding. Window boundaries are measured in model tokens, not
// characters, so every chunk fits the embedding model's input budget.
package chunk

import (
	"fmt"

	"github.com/kailas-cloud/qanat/internal/domain"
)

// Tokenizer encodes text to model token ids and back.
type Tokenizer interface {
	Encode(text string) []int
	Decode(ids []int) string
}

// Window geometry defaults, matched to a 512-token embedding model.
const (
	DefaultMaxTokens = 450
	DefaultOverlap   = 50
)

// Chunker cuts text into token windows of maxTokens, each window starting
// maxTokens-overlap after the previous one.
type Chunker struct {
	tok       Tokenizer
	maxTokens int
	overlap   int
}

// New validates the window geometry and builds a Chunker.
func New(tok Tokenizer, maxTokens, overlap int) (*Chunker, error) {
	if tok == nil {
		return nil, fmt.Errorf("tokenizer is required")
	}
	if maxTokens <= 0 {
		return nil, fmt.Errorf("max_tokens must be positive, got %d", maxTokens)
	}
	if overlap < 0 || overlap >= maxTokens {
		return nil, fmt.Errorf("overlap must be in [0, max_tokens), got %d", overlap)
	}
	return &Chunker{tok: tok, maxTokens: maxTokens, overlap: overlap}, nil
}

// Split returns the decoded token windows of text in order. Empty text
// yields no chunks; text up to maxTokens yields the tail windows produced
// by the fixed step, never a window longer than maxTokens.
func (c *Chunker) Split(text string) []string {
	if text == "" {
		return nil
	}

	ids := c.tok.Encode(text)
	if len(ids) == 0 {
		return nil
	}

	step := c.maxTokens - c.overlap
	var chunks []string
	for start := 0; start < len(ids); start += step {
		end := start + c.maxTokens
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, c.tok.Decode(ids[start:end]))
	}
	return chunks
}

// Pair aligns the two language chunk lists by index into localized texts.
// When one language has fewer chunks the other side is simply absent for
// the trailing pairs; text is never borrowed across languages.
func Pair(en, ar []string) []domain.LocalizedText {
	n := len(en)
	if len(ar) > n {
		n = len(ar)
	}
	if n == 0 {
		return nil
	}

	pairs := make([]domain.LocalizedText, n)
	for i := 0; i < n; i++ {
		if i < len(en) {
			pairs[i].EN = en[i]
		}
		if i < len(ar) {
			pairs[i].AR = ar[i]
		}
	}
	return pairs
}
