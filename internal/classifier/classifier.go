// Package classifier decides whether raw user input is a Brazilian postal code (CEP)
// or a free-text address.
package classifier

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/UnknownOlympus/locus/internal/models"
)

// Classify tags raw input as a postal code when exactly eight digits remain after
// stripping every non-digit character, and as free text otherwise.
// Empty or whitespace-only input yields models.ErrEmptyQuery.
func Classify(raw string) (models.Query, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return models.Query{}, models.ErrEmptyQuery
	}

	if digits := digitsOnly(trimmed); len(digits) == models.PostalCodeLength {
		return models.Query{Kind: models.QueryPostalCode, Value: digits}, nil
	}

	return models.Query{Kind: models.QueryFreeText, Value: trimmed}, nil
}

// NormalizePostalCode is the strict variant used where only a CEP is acceptable.
// It returns the eight digits or models.ErrInvalidPostalCodeFormat.
func NormalizePostalCode(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", models.ErrEmptyQuery
	}

	digits := digitsOnly(trimmed)
	if len(digits) != models.PostalCodeLength {
		return "", fmt.Errorf("%w: %q has %d digits", models.ErrInvalidPostalCodeFormat, raw, len(digits))
	}

	return digits, nil
}

// IsPostalCode reports whether code is already in canonical form (eight ASCII digits).
func IsPostalCode(code string) bool {
	if len(code) != models.PostalCodeLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}

	return b.String()
}
