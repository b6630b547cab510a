package usecase

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/anyvolt/assistant-backend/internal/domain"
)

// SanitizeMessage normalizes raw user input: control characters are stripped,
// whitespace is collapsed, and the result is trimmed. Messages that are empty
// after cleaning or longer than maxLen never reach retrieval.
func SanitizeMessage(raw string, maxLen int) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, raw)

	cleaned = strings.Join(strings.Fields(cleaned), " ")

	if cleaned == "" {
		return "", fmt.Errorf("%w: empty message", domain.ErrInvalidRequest)
	}
	// The cap counts characters, not encoded bytes
	if utf8.RuneCountInString(cleaned) > maxLen {
		return "", fmt.Errorf("%w: message exceeds %d characters", domain.ErrInvalidRequest, maxLen)
	}
	return cleaned, nil
}

// NormalizeCacheKey reduces a sanitized message to a cache key: lowercase
// alphanumerics with single spaces.
func NormalizeCacheKey(message string) string {
	var b strings.Builder
	b.Grow(len(message))
	for _, r := range strings.ToLower(message) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return "reply:" + strings.Join(strings.Fields(b.String()), " ")
}
