// Package quality runs the source, contract and target checks that gate a
// migration release.
package quality

import (
	"strings"
	"unicode"

	"nhs-dm-tool/internal/dates"
)

// NHSCheckDigit computes the Mod-11 check digit for the first nine digits of
// an NHS number. ok is false when the digits can never form a valid number.
func NHSCheckDigit(base9 string) (int, bool) {
	if len(base9) != 9 {
		return 0, false
	}
	total := 0
	for i, r := range base9 {
		if r < '0' || r > '9' {
			return 0, false
		}
		total += int(r-'0') * (10 - i)
	}
	expected := 11 - total%11
	switch expected {
	case 11:
		return 0, true
	case 10:
		return 0, false
	}
	return expected, true
}

// IsValidNHSNumber strips non-digits and checks the Mod-11 check digit.
func IsValidNHSNumber(value string) bool {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, value)
	if len(digits) != 10 {
		return false
	}
	check, ok := NHSCheckDigit(digits[:9])
	return ok && int(digits[9]-'0') == check
}

// IsValidDate accepts blank or DD/MM/YYYY.
func IsValidDate(value string) bool {
	return dates.Valid(value)
}
