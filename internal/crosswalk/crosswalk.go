// Package crosswalk translates PAS code values into their target code sets.
package crosswalk

import (
	"fmt"
	"strings"

	"nhs-dm-tool/internal/csvio"
)

// Crosswalk names.
const (
	Sex               = "sex"
	Ethnicity         = "ethnicity"
	RTTStatus         = "rtt_status"
	AdmissionMethod   = "admission_method"
	DischargeMethod   = "discharge_method"
	SourceDestination = "source_destination"
)

var sourceDestinationFields = map[string]bool{
	"source_of_admission":      true,
	"destination_on_discharge": true,
	"admit_from":               true,
}

// InferName returns the crosswalk that applies to a target field, or "" when
// none does.
func InferName(targetTable, targetField string) string {
	tt := strings.ToLower(targetTable)
	tf := strings.ToLower(targetField)
	switch {
	case strings.Contains(tf, "sex"):
		return Sex
	case strings.Contains(tf, "ethnic"):
		return Ethnicity
	case strings.Contains(tt, "rtt") && strings.Contains(tf, "status"):
		return RTTStatus
	case strings.Contains(tf, "method_of_admission"):
		return AdmissionMethod
	case strings.Contains(tf, "method_of_discharge"):
		return DischargeMethod
	case sourceDestinationFields[tf]:
		return SourceDestination
	}
	return ""
}

// Outcome tells the caller what Apply did with a value.
type Outcome int

const (
	// Blank input passes through as blank.
	Blank Outcome = iota
	// NotApplicable means no table is loaded for the name; keep the value.
	NotApplicable
	// Rejected means the table has no entry for the value.
	Rejected
	// Translated means the returned value is the mapped target code, which
	// may itself be empty.
	Translated
)

func (o Outcome) String() string {
	switch o {
	case Blank:
		return "blank"
	case NotApplicable:
		return "not_applicable"
	case Rejected:
		return "rejected"
	case Translated:
		return "translated"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Set holds the loaded crosswalk tables keyed by lowercase name.
type Set map[string]map[string]string

// Load reads every CSV in dir as a crosswalk named after its file stem. A
// missing directory yields an empty set.
func Load(dir string) (Set, error) {
	files, err := csvio.Glob(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list crosswalks: %w", err)
	}
	set := make(Set, len(files))
	for _, p := range files {
		tbl, err := csvio.Read(p)
		if err != nil {
			return nil, fmt.Errorf("failed to load crosswalk %s: %w", p, err)
		}
		m := make(map[string]string, len(tbl.Rows))
		for _, r := range tbl.Rows {
			src := strings.TrimSpace(r["source_value"])
			if src == "" {
				continue
			}
			m[src] = strings.TrimSpace(r["target_value"])
		}
		set[strings.ToLower(csvio.Stem(p))] = m
	}
	return set, nil
}

// Apply translates value through the named crosswalk.
func (s Set) Apply(value, name string) (string, Outcome) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", Blank
	}
	table := s[strings.ToLower(name)]
	if len(table) == 0 {
		return value, NotApplicable
	}
	if tgt, ok := table[v]; ok {
		return tgt, Translated
	}
	return "", Rejected
}
