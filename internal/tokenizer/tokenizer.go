// Package tokenizer adapts a tiktoken BPE encoding to the chunker contract.
package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is used when no encoding is configured. cl100k_base
// tokenizes Arabic without per-byte fallback explosions, so chunk windows
// stay comparable across both languages.
const DefaultEncoding = "cl100k_base"

// Tokenizer wraps a loaded tiktoken encoding.
type Tokenizer struct {
	enc *tiktoken.Tiktoken
}

// New loads the named encoding. The vocabulary is fetched on first use and
// cached under TIKTOKEN_CACHE_DIR when set.
func New(encoding string) (*Tokenizer, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %q: %w", encoding, err)
	}
	return &Tokenizer{enc: enc}, nil
}

// Encode converts text to token ids. Special-token markup in document text
// is tokenized literally.
func (t *Tokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

// Decode converts token ids back to text.
func (t *Tokenizer) Decode(ids []int) string {
	return t.enc.Decode(ids)
}
