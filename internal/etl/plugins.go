package etl

import (
	"fmt"
	"strings"
	"unicode"

	"nhs-dm-tool/internal/csvio"
	"nhs-dm-tool/internal/dates"
)

type fieldDefault struct {
	field string
	value string
}

// prefixDefaults fill blanks on every table whose name starts with the key.
var prefixDefaults = map[string][]fieldDefault{
	"LOAD_PMI": {
		{"main_crn_type", "PAS"},
		{"date_registered", "01/01/2000"},
	},
}

// tableDefaults fill blanks on exactly one table.
var tableDefaults = map[string][]fieldDefault{
	"LOAD_PMIADDRS": {
		{"address_type", "H"},
		{"applies_start", "01/01/2000"},
		{"applies_end", "31/12/9999"},
	},
	"LOAD_PMICONTACTS": {
		{"contact_type", "NOK"},
		{"applies_start", "01/01/2000"},
		{"applies_end", "31/12/9999"},
	},
	"LOAD_ADT_ADMISSIONS": {
		{"admission_type", "ELEC"},
		{"admit_type", "E"},
	},
	"LOAD_ADT_EPISODES": {
		{"episode_order", "1"},
		{"duration_of_episode", "3"},
	},
	"LOAD_ADT_WARDSTAYS": {
		{"is_home_stay", "N"},
		{"is_awol", "N"},
	},
	"LOAD_OPD_APPOINTMENTS": {
		{"walkin_flag", "N"},
		{"time_arrived", "09:00"},
		{"time_seen", "09:20"},
		{"time_complete", "09:40"},
	},
	"LOAD_OPDWAITLISTDEF": {
		{"deferral_start", "01/01/2024"},
		{"deferral_end", "08/01/2024"},
	},
}

// Plugin post-processes one built target row.
type Plugin func(table string, row, src csvio.Row, rowNum int)

// Plugins run in order after every row is built.
var Plugins = []Plugin{
	defaultsPlugin,
	pmiPlugin,
	admissionsPlugin,
	wardStaysPlugin,
}

func applyPlugins(table string, row, src csvio.Row, rowNum int) {
	tt := strings.ToUpper(table)
	for _, p := range Plugins {
		p(tt, row, src, rowNum)
	}
}

// fill sets field only when the row carries it and it is blank.
func fill(row csvio.Row, field, value string) {
	if v, ok := row[field]; ok && v == "" {
		row[field] = value
	}
}

func defaultsPlugin(table string, row, _ csvio.Row, _ int) {
	for prefix, defs := range prefixDefaults {
		if strings.HasPrefix(table, prefix) {
			for _, d := range defs {
				fill(row, d.field, d.value)
			}
		}
	}
	for _, d := range tableDefaults[table] {
		fill(row, d.field, d.value)
	}
}

func defaultTitle(sex string) string {
	switch strings.ToUpper(strings.TrimSpace(sex)) {
	case "1", "M":
		return "MR"
	case "2", "F":
		return "MRS"
	}
	return "MX"
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

func pmiPlugin(table string, row, src csvio.Row, _ int) {
	if !strings.HasPrefix(table, "LOAD_PMI") {
		return
	}
	id := strings.TrimSpace(src["InternalPatientNumber"])
	if id == "" {
		id = strings.TrimSpace(src["Intpatno"])
	}
	fill(row, "main_crn", id)
	if v, ok := row["nhs_number"]; ok {
		row["nhs_number"] = digitsOnly(v)
	}
	fill(row, "title", defaultTitle(row["sex"]))
	for _, f := range []string{"pat_name_1", "pat_name_family", "post_code"} {
		if v, ok := row[f]; ok {
			row[f] = strings.ToUpper(strings.TrimSpace(v))
		}
	}
}

func admissionsPlugin(table string, row, _ csvio.Row, _ int) {
	if table != "LOAD_ADT_ADMISSIONS" {
		return
	}
	due, ok := dates.AddDays(row["admit_date"], 3)
	if !ok {
		return
	}
	fill(row, "estimated_discharge_date", due)
	fill(row, "discharge_date", due)
}

func wardStaysPlugin(table string, row, _ csvio.Row, rowNum int) {
	if table != "LOAD_ADT_WARDSTAYS" {
		return
	}
	fill(row, "bed_location", fmt.Sprintf("BED%03d", rowNum))
}
