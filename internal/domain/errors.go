package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyText signals that a text operation received empty input.
	ErrEmptyText = errors.New("empty text")
	// ErrUnsupportedLanguage signals a language outside the en/ar pair.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)

// UnsupportedLanguageError wraps ErrUnsupportedLanguage with the offending code.
type UnsupportedLanguageError struct {
	Lang string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("%s: %q (expected en or ar)", ErrUnsupportedLanguage.Error(), e.Lang)
}

func (e *UnsupportedLanguageError) Unwrap() error { return ErrUnsupportedLanguage }

// NewUnsupportedLanguage creates an unsupported language error.
func NewUnsupportedLanguage(lang string) error {
	return &UnsupportedLanguageError{Lang: lang}
}
