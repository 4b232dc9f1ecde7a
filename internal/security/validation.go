// Package security sanitizes untrusted input before it is stored or logged.
package security

import (
	"strings"
	"unicode/utf8"

	apperrors "signal-dashboard/internal/errors"
)

// MaxFieldLength bounds stored request metadata.
const MaxFieldLength = 256

// SanitizeText removes control characters and truncates to maxLen runes.
func SanitizeText(text string, maxLen int) string {
	var result strings.Builder
	n := 0
	for _, r := range strings.TrimSpace(text) {
		if r < 32 || r == 127 || r == utf8.RuneError {
			continue
		}
		if maxLen > 0 && n == maxLen {
			break
		}
		result.WriteRune(r)
		n++
	}
	return result.String()
}

// ValidateQueryParam rejects query values that are too long or carry
// control characters.
func ValidateQueryParam(field, value string, maxLen int) error {
	if utf8.RuneCountInString(value) > maxLen {
		return apperrors.Wrapf(apperrors.ErrInvalidQuery, "%s too long (max %d characters)", field, maxLen)
	}
	if !utf8.ValidString(value) || SanitizeText(value, 0) != strings.TrimSpace(value) {
		return apperrors.Wrapf(apperrors.ErrInvalidQuery, "%s contains control characters", field)
	}
	return nil
}
