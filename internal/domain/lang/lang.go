// Package lang routes text between the two indexed languages. Detection is
// best-effort; the query path always resolves to a usable language, the
// ingestion path can reject what it cannot place.
package lang

import (
	"github.com/abadojack/whatlanggo"

	"github.com/kailas-cloud/qanat/internal/domain"
)

// Detect returns the retrieval language for text. Arabic maps to ar,
// everything else, including undetectable input, falls back to en.
func Detect(text string) string {
	if whatlanggo.Detect(text).Lang == whatlanggo.Arb {
		return domain.LangAR
	}
	return domain.LangEN
}

// DetectStrict reports the detected language only when it is one of the two
// indexed ones. Ingestion uses this to route localized values by their
// actual language rather than the key they arrived under; values in any
// other language are dropped by the caller.
func DetectStrict(text string) (string, bool) {
	switch whatlanggo.Detect(text).Lang {
	case whatlanggo.Arb:
		return domain.LangAR, true
	case whatlanggo.Eng:
		return domain.LangEN, true
	}
	return "", false
}
