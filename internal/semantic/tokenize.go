// Package semantic scores target LOAD_ fields against the source catalog and
// produces the semantic mapping matrix.
package semantic

import (
	"regexp"
	"strings"
)

var (
	nonIdent  = regexp.MustCompile(`[^A-Za-z0-9_]`)
	camelEdge = regexp.MustCompile(`([a-z])([A-Z])`)
)

// tokenEquiv maps PAS abbreviations onto canonical tokens. An empty value
// drops the token; an underscore in a value expands into several tokens.
var tokenEquiv = map[string]string{
	"mrn":       "internalpatientnumber",
	"crn":       "internalpatientnumber",
	"main":      "",
	"pat":       "patient",
	"pt":        "patient",
	"dob":       "dateofbirth",
	"of":        "",
	"date10":    "date",
	"dttime":    "datetime",
	"dtime":     "datetime",
	"dt":        "date",
	"dtm":       "datetime",
	"int":       "internal",
	"gp":        "gp",
	"gdp":       "gdp",
	"nhs":       "nhs",
	"wl":        "waitlist",
	"appt":      "appointment",
	"adm":       "admission",
	"disch":     "discharge",
	"cons":      "consultant",
	"addr":      "address",
	"postcd":    "postcode",
	"post_code": "postcode",
	"sex":       "sex",
	"ethnic":    "ethnic",
	"diag":      "diagnosis",
	"proc":      "procedure",
	"rtt":       "rtt",
	"hosp":      "hospital",
}

// Tokenize splits a field name into normalized semantic tokens, in order.
//
//	Tokenize("PatNameFamily") // [patient name family]
//	Tokenize("DOB")           // [dateofbirth]
func Tokenize(name string) []string {
	raw := nonIdent.ReplaceAllString(name, "_")
	raw = camelEdge.ReplaceAllString(raw, "${1}_${2}")

	var out []string
	for _, part := range strings.Split(raw, "_") {
		if part == "" {
			continue
		}
		tok := strings.ToLower(part)
		mapped, ok := tokenEquiv[tok]
		if !ok {
			mapped = tok
		}
		for _, m := range strings.Split(mapped, "_") {
			if m != "" {
				out = append(out, m)
			}
		}
	}
	return out
}
