// Package dates handles the DD/MM/YYYY convention used by LOAD_ tables.
package dates

import (
	"strings"
	"time"
)

// Layout is the canonical target date format.
const Layout = "02/01/2006"

var reparseLayouts = []string{"2/1/2006", "2006-1-2"}

// Parse reads a DD/MM/YYYY value. Single-digit day and month are accepted.
func Parse(v string) (time.Time, bool) {
	t, err := time.Parse("2/1/2006", strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Format renders t as DD/MM/YYYY.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Valid reports whether v is blank or a real DD/MM/YYYY date.
func Valid(v string) bool {
	if v == "" {
		return true
	}
	_, ok := Parse(v)
	return ok
}

// Normalize converts CCYYMMDDHHMM and CCYYMMDD digit strings, D/M/YYYY and
// YYYY-MM-DD to DD/MM/YYYY. Anything else is returned trimmed but otherwise
// unchanged.
func Normalize(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}
	if (len(v) == 12 || len(v) == 8) && isDigits(v) {
		return v[6:8] + "/" + v[4:6] + "/" + v[0:4]
	}
	for _, layout := range reparseLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return Format(t)
		}
	}
	return v
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// AddDays shifts a DD/MM/YYYY value. ok is false when v does not parse.
func AddDays(v string, days int) (string, bool) {
	t, ok := Parse(v)
	if !ok {
		return "", false
	}
	return Format(t.AddDate(0, 0, days)), true
}
