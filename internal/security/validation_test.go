package security

import (
	"testing"
	"unicode/utf8"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	apperrors "signal-dashboard/internal/errors"
)

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "curl/8.0", SanitizeText("  curl/8.0\r\n", 0))
	assert.Equal(t, "abc", SanitizeText("a\x00b\x1bc", 0))
	assert.Equal(t, "₹₹", SanitizeText("₹₹₹", 2))
	assert.Equal(t, "", SanitizeText("\t\n", 10))
}

func TestValidateQueryParam(t *testing.T) {
	assert.NoError(t, ValidateQueryParam("symbol", "ABC", 64))
	assert.NoError(t, ValidateQueryParam("symbol", "", 64))

	err := ValidateQueryParam("symbol", "AB\x00C", 64)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidQuery))

	err = ValidateQueryParam("symbol", "ABCDEFGHIJ", 5)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidQuery))
}

// Property: sanitized text is bounded, valid UTF-8 and free of control
// characters.
func TestProperty_SanitizeTextBounded(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("sanitized text is bounded and printable", prop.ForAll(
		func(text string, maxLen int) bool {
			out := SanitizeText(text, maxLen)
			if !utf8.ValidString(out) || utf8.RuneCountInString(out) > maxLen {
				return false
			}
			for _, r := range out {
				if r < 32 || r == 127 {
					return false
				}
			}
			return true
		},
		gen.AnyString(),
		gen.IntRange(1, 64),
	))

	properties.TestingRun(t)
}
