// Package phone validates and masks phone numbers used for SMS verification.
package phone

import "strings"

const (
	// MinDigits and MaxDigits bound an international phone number in
	// E.164-like digit form (country code included, no formatting).
	MinDigits = 10
	MaxDigits = 15

	maskSuffix = "****"
)

// Normalize strips all non-digit characters from a raw phone number.
func Normalize(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValid reports whether a normalized phone number is acceptable for
// verification: between 10 and 15 digits inclusive, digits only.
func IsValid(normalized string) bool {
	if len(normalized) < MinDigits || len(normalized) > MaxDigits {
		return false
	}
	for _, r := range normalized {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Mask hides all but the last four digits of a phone number by dropping
// them and appending "****", e.g. "16193278653" -> "1619327****".
func Mask(number string) string {
	if len(number) <= 4 {
		return maskSuffix
	}
	return number[:len(number)-4] + maskSuffix
}
