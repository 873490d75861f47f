package etl

import (
	"fmt"
	"strings"

	"nhs-dm-tool/internal/csvio"
	"nhs-dm-tool/internal/domain"
	"nhs-dm-tool/internal/dates"
)

// SystemCode is written to every system_code column.
const SystemCode = "SRC_PAS_V83"

// syntheticRows is the row count of a table with no base source.
const syntheticRows = 20

// fkFields are the LOAD_ parent links synthesized from the row ordinal.
var fkFields = map[string]bool{
	"loadpmi_record_number":    true,
	"loadrttpwy_record_number": true,
	"loadref_record_number":    true,
	"loadrttprd_record_number": true,
	"loadowl_record_number":    true,
	"loadiwl_record_number":    true,
	"adt_adm_record_number":    true,
	"adt_eps_record_number":    true,
	"mh_dm_record_number":      true,
	"mh_cm_record_number":      true,
}

var sourceIDCandidates = []string{
	"InternalPatientNumber",
	"Intpatno",
	"main_crn",
	"DistrictNumber",
	"NhsNumber",
}

func sourceID(src csvio.Row) string {
	for _, k := range sourceIDCandidates {
		if v := strings.TrimSpace(src[k]); v != "" {
			return v
		}
	}
	return ""
}

// fieldValue resolves a target value from its contract rule.
func fieldValue(targetField string, rule domain.ContractRow, src csvio.Row, fold csvio.FoldIndex, rowNum int) string {
	tf := strings.ToLower(targetField)
	sf := strings.TrimSpace(rule.PrimarySourceField)

	switch domain.MappingClass(strings.TrimSpace(string(rule.MappingClass))) {
	case domain.DirectSource, domain.LookupTranslation, domain.Derived:
		if sf == "" {
			return ""
		}
		return dates.Normalize(fold.Get(src, sf))
	case domain.SurrogateETL:
		switch {
		case tf == "system_code":
			return SystemCode
		case tf == "external_system_id":
			return sourceID(src)
		default:
			// record_number, fkFields and anything else carry the ordinal.
			return fmt.Sprint(rowNum)
		}
	case domain.ReferenceMasterFeed:
		switch {
		case strings.Contains(tf, "code"):
			return fmt.Sprintf("REF%04d", rowNum)
		case strings.Contains(tf, "name"), strings.Contains(tf, "description"):
			return fmt.Sprintf("Reference Value %d", rowNum)
		}
	}
	return ""
}

type fallbackRule struct {
	match func(tf string) bool
	value func(src csvio.Row, rowNum int) string
}

func contains(keys ...string) func(string) bool {
	return func(tf string) bool {
		for _, k := range keys {
			if strings.Contains(tf, k) {
				return true
			}
		}
		return false
	}
}

func constant(v string) func(csvio.Row, int) string {
	return func(csvio.Row, int) string { return v }
}

var nameSources = []string{"Forenames", "Surname", "name_1", "pat_name_1"}

// fallbackRules impute blanks in pre_production mode. First match wins.
var fallbackRules = []fallbackRule{
	{contains("date"), constant("01/01/2024")},
	{contains("time"), constant("09:00")},
	{
		func(tf string) bool {
			return strings.HasSuffix(tf, "_flag") || strings.HasPrefix(tf, "is_") ||
				strings.HasPrefix(tf, "allow_") || strings.Contains(tf, "permission")
		},
		constant("N"),
	},
	{contains("status"), constant("ACTIVE")},
	{
		func(tf string) bool {
			return strings.Contains(tf, "code") || strings.HasSuffix(tf, "_id") ||
				strings.Contains(tf, "number") || strings.HasSuffix(tf, "_no")
		},
		func(_ csvio.Row, n int) string { return fmt.Sprintf("AUTO%04d", n) },
	},
	{
		contains("name"),
		func(src csvio.Row, n int) string {
			for _, k := range nameSources {
				if v := strings.TrimSpace(src[k]); v != "" {
					return strings.ToUpper(v)
				}
			}
			return fmt.Sprintf("AUTO_NAME_%03d", n)
		},
	},
	{contains("comment", "note", "text", "description"), constant("Auto-derived value")},
	{contains("type"), constant("GEN")},
	{contains("post_code", "postcode"), constant("ZZ1 1ZZ")},
	{contains("email"), func(_ csvio.Row, n int) string { return fmt.Sprintf("user%03d@example.nhs.uk", n) }},
	{contains("phone", "telephone"), constant("00000000000")},
	{func(tf string) bool { return strings.Contains(tf, "gender") || tf == "sex" }, constant("U")},
}

// fallbackValue returns the imputed value for a blank field, "" when no
// rule matches.
func fallbackValue(targetField string, src csvio.Row, rowNum int) string {
	tf := strings.ToLower(targetField)
	for _, r := range fallbackRules {
		if r.match(tf) {
			return r.value(src, rowNum)
		}
	}
	return ""
}
