// Package validation holds the input checks for the login form. The service
// is the authority on every field; these checks only catch obvious typos
// before a round trip.
package validation

import (
	"fmt"
	"strings"
)

// IsValidRUT reports whether rut is a plausible Chilean tax identifier.
// Accepts formatted ("12.345.678-5") and bare ("123456785") spellings and
// verifies the mod-11 check digit.
func IsValidRUT(rut string) bool {
	clean := cleanRUT(rut)
	if len(clean) < 2 {
		return false
	}
	body, dv := clean[:len(clean)-1], clean[len(clean)-1]
	if len(body) < 1 || len(body) > 8 {
		return false
	}
	for _, r := range body {
		if r < '0' || r > '9' {
			return false
		}
	}
	return checkDigit(body) == dv
}

// ValidateRUT validates rut and reports a field error suitable for display.
func ValidateRUT(rut string) error {
	if strings.TrimSpace(rut) == "" {
		return fmt.Errorf("rut is required")
	}
	if !IsValidRUT(rut) {
		return fmt.Errorf("rut %q is not valid", rut)
	}
	return nil
}

// cleanRUT strips formatting and normalizes the verifier to upper case.
func cleanRUT(rut string) string {
	var b strings.Builder
	for _, r := range rut {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'k' || r == 'K':
			b.WriteByte('K')
		case r == '.' || r == '-' || r == ' ':
			// separator, drop
		default:
			return ""
		}
	}
	return b.String()
}

// checkDigit computes the mod-11 verifier for a digit-only RUT body.
func checkDigit(body string) byte {
	sum := 0
	factor := 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * factor
		factor++
		if factor > 7 {
			factor = 2
		}
	}
	switch rest := 11 - sum%11; rest {
	case 11:
		return '0'
	case 10:
		return 'K'
	default:
		return byte('0' + rest)
	}
}
