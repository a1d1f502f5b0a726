// Package textnorm normalizes query and document text. The query side strips
// extracted signal phrases so the embedding input carries topical content
// only; the ingest side flattens repository HTML into clean plain text.
package textnorm

import (
	"html"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/kailas-cloud/qanat/internal/domain/temporal"
)

var (
	multiSpace       = regexp.MustCompile(`\s+`)
	spaceBeforePunct = regexp.MustCompile(`\s+([,.;:!?])`)
	controlChars     = regexp.MustCompile(`[\x00-\x1f\x7f-\x9f]`)
	// Go's \s is ASCII; repository HTML is full of &nbsp;
	unicodeSpace = regexp.MustCompile(`[\s\p{Zs}]+`)

	stripPolicy = bluemonday.StrictPolicy()
)

// CleanQueryText removes every phrase in the given groups from the query:
// whole-word, case-insensitive, longest phrase first so contained phrases
// ("Gaza" inside "Gaza Strip") cannot leave fragments. Whitespace is
// collapsed and space before punctuation is closed up afterwards.
//
// Go's \b is ASCII-only, so the word boundary is emulated with letter/digit
// delimiter classes; Arabic phrases remove cleanly.
func CleanQueryText(query string, phraseGroups ...[]string) string {
	phrases := collectPhrases(phraseGroups)

	for _, p := range phrases {
		re, err := phrasePattern(p)
		if err != nil {
			continue
		}
		// The pattern consumes its delimiters, so adjacent occurrences
		// need another pass.
		for {
			replaced := re.ReplaceAllString(query, "$1 $3")
			if replaced == query {
				break
			}
			query = replaced
		}
	}

	query = multiSpace.ReplaceAllString(query, " ")
	query = spaceBeforePunct.ReplaceAllString(query, "$1")
	return strings.TrimSpace(query)
}

// LexicalText builds the BM25 input: noisy temporal phrases (those that
// would not survive the year filter) are removed, location phrases stay as
// strong lexical evidence, and every year-like token is stripped at the end.
func LexicalText(query string, temporals []string) string {
	safe := make(map[string]struct{})
	for _, t := range temporal.FilterSafe(temporals) {
		safe[t] = struct{}{}
	}

	var noisy []string
	for _, t := range temporals {
		if _, ok := safe[strings.TrimSpace(t)]; !ok {
			noisy = append(noisy, t)
		}
	}

	text := CleanQueryText(query, noisy)
	return temporal.StripYearTokens(text)
}

// Sanitize flattens repository HTML into plain text: tags stripped (script
// and style lose their content too), entities unescaped, control characters
// removed, whitespace collapsed.
func Sanitize(raw string) string {
	// Before parsing too: the HTML5 tokenizer turns NUL into U+FFFD.
	text := controlChars.ReplaceAllString(raw, " ")
	text = stripPolicy.Sanitize(text)
	text = html.UnescapeString(text)
	text = controlChars.ReplaceAllString(text, " ")
	text = unicodeSpace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// collectPhrases merges the groups, drops blanks and duplicates, and orders
// longest first (rune length, then lexicographic for determinism).
func collectPhrases(groups [][]string) []string {
	seen := make(map[string]struct{})
	var phrases []string
	for _, group := range groups {
		for _, p := range group {
			if strings.TrimSpace(p) == "" {
				continue
			}
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			phrases = append(phrases, p)
		}
	}
	sort.Slice(phrases, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(phrases[i]), utf8.RuneCountInString(phrases[j])
		if li != lj {
			return li > lj
		}
		return phrases[i] < phrases[j]
	})
	return phrases
}

func phrasePattern(phrase string) (*regexp.Regexp, error) {
	const nonWord = `[^\p{L}\p{N}_]`
	return regexp.Compile(`(?i)(^|` + nonWord + `)(` + regexp.QuoteMeta(phrase) + `)(` + nonWord + `|$)`)
}
