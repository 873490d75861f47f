package etl

import (
	"testing"

	"nhs-dm-tool/internal/csvio"
	"nhs-dm-tool/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestFallbackValue(t *testing.T) {
	src := csvio.Row{"Forenames": " jane "}
	tests := []struct {
		field string
		want  string
	}{
		{"admit_date", "01/01/2024"},
		{"appt_time", "09:00"},
		{"walkin_flag", "N"},
		{"is_awol", "N"},
		{"referral_status", "ACTIVE"},
		{"spec_code", "AUTO0007"},
		{"gp_id", "AUTO0007"},
		{"pat_name_family", "JANE"},
		{"free_text", "Auto-derived value"},
		{"address_type", "GEN"},
		{"post_town_zone", ""},
		{"email", "user007@example.nhs.uk"},
		{"telephone", "00000000000"},
		{"gender", "U"},
		{"sex", "U"},
		{"height", ""},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, fallbackValue(tt.field, src, 7))
		})
	}
	assert.Equal(t, "AUTO_NAME_003", fallbackValue("consultant_name", csvio.Row{}, 3))
}

func TestFieldValue(t *testing.T) {
	src := csvio.Row{"InternalPatientNumber": "M9", "AdmitDate": "202401311530"}
	fold := csvio.NewFoldIndex([]string{"InternalPatientNumber", "AdmitDate"})

	direct := domain.ContractRow{MappingClass: domain.DirectSource, PrimarySourceField: "admitdate"}
	assert.Equal(t, "31/01/2024", fieldValue("admit_date", direct, src, fold, 1))

	noSource := domain.ContractRow{MappingClass: domain.Derived}
	assert.Equal(t, "", fieldValue("anything", noSource, src, fold, 1))

	sur := domain.ContractRow{MappingClass: domain.SurrogateETL}
	assert.Equal(t, "4", fieldValue("record_number", sur, src, fold, 4))
	assert.Equal(t, "4", fieldValue("loadpmi_record_number", sur, src, fold, 4))
	assert.Equal(t, SystemCode, fieldValue("SYSTEM_CODE", sur, src, fold, 4))
	assert.Equal(t, "M9", fieldValue("external_system_id", sur, src, fold, 4))

	ref := domain.ContractRow{MappingClass: domain.ReferenceMasterFeed}
	assert.Equal(t, "REF0012", fieldValue("site_code", ref, src, fold, 12))
	assert.Equal(t, "Reference Value 12", fieldValue("site_description", ref, src, fold, 12))
	assert.Equal(t, "", fieldValue("active_from", ref, src, fold, 12))

	oos := domain.ContractRow{MappingClass: domain.OutOfScope, PrimarySourceField: "AdmitDate"}
	assert.Equal(t, "", fieldValue("admit_date", oos, src, fold, 1))
}

func TestPluginsOnlyFillBlanks(t *testing.T) {
	row := csvio.Row{"main_crn_type": "", "title": "DR", "sex": "2", "date_registered": "05/05/2005"}
	applyPlugins("load_pmi", row, csvio.Row{}, 1)
	assert.Equal(t, "PAS", row["main_crn_type"])
	assert.Equal(t, "DR", row["title"])
	assert.Equal(t, "05/05/2005", row["date_registered"])
	_, added := row["post_code"]
	assert.False(t, added, "plugins never add columns")
}

func TestPMIPluginNormalises(t *testing.T) {
	row := csvio.Row{"main_crn": "", "nhs_number": "943-476-5919", "title": "", "sex": "F", "pat_name_family": " smith ", "post_code": "ls1 4ab"}
	applyPlugins("LOAD_PMI", row, csvio.Row{"Intpatno": "X12"}, 1)
	assert.Equal(t, "X12", row["main_crn"])
	assert.Equal(t, "9434765919", row["nhs_number"])
	assert.Equal(t, "MRS", row["title"])
	assert.Equal(t, "SMITH", row["pat_name_family"])
	assert.Equal(t, "LS1 4AB", row["post_code"])
}

func TestTableDefaults(t *testing.T) {
	addrs := csvio.Row{"address_type": "", "applies_end": "", "main_crn_type": ""}
	applyPlugins("LOAD_PMIADDRS", addrs, csvio.Row{}, 1)
	assert.Equal(t, csvio.Row{"address_type": "H", "applies_end": "31/12/9999", "main_crn_type": "PAS"}, addrs)

	appt := csvio.Row{"time_arrived": "", "time_seen": "10:15", "time_complete": ""}
	applyPlugins("LOAD_OPD_APPOINTMENTS", appt, csvio.Row{}, 1)
	assert.Equal(t, csvio.Row{"time_arrived": "09:00", "time_seen": "10:15", "time_complete": "09:40"}, appt)
}

func TestAdmissionsPluginDerivesDischarge(t *testing.T) {
	row := csvio.Row{"admit_date": "30/12/2023", "discharge_date": "", "estimated_discharge_date": "", "admit_type": ""}
	applyPlugins("LOAD_ADT_ADMISSIONS", row, csvio.Row{}, 1)
	assert.Equal(t, "02/01/2024", row["discharge_date"])
	assert.Equal(t, "02/01/2024", row["estimated_discharge_date"])
	assert.Equal(t, "E", row["admit_type"])

	bad := csvio.Row{"admit_date": "2023-12-30", "discharge_date": ""}
	applyPlugins("LOAD_ADT_ADMISSIONS", bad, csvio.Row{}, 1)
	assert.Equal(t, "", bad["discharge_date"])
}

func TestWardStaysPlugin(t *testing.T) {
	row := csvio.Row{"bed_location": "", "is_awol": ""}
	applyPlugins("LOAD_ADT_WARDSTAYS", row, csvio.Row{}, 42)
	assert.Equal(t, "BED042", row["bed_location"])
	assert.Equal(t, "N", row["is_awol"])
}

func TestFieldRulesPreferHighConfidence(t *testing.T) {
	rows := []domain.ContractRow{
		{TargetField: "a", PrimarySourceField: "first", Confidence: domain.ConfidenceMedium},
		{TargetField: "a", PrimarySourceField: "second", Confidence: domain.ConfidenceLow},
		{TargetField: "a", PrimarySourceField: "third", Confidence: "high"},
		{TargetField: "b", PrimarySourceField: "only", Confidence: domain.ConfidenceLow},
	}
	rules := fieldRules(rows)
	assert.Equal(t, "third", rules["a"].PrimarySourceField)
	assert.Equal(t, "only", rules["b"].PrimarySourceField)
}

func TestFieldValueCollidingHeaders(t *testing.T) {
	src := csvio.Row{"NHSNUMBER": "A", "nhsnumber": "B"}
	fold := csvio.NewFoldIndex([]string{"NHSNUMBER", "nhsnumber"})
	direct := domain.ContractRow{MappingClass: domain.DirectSource, PrimarySourceField: "NhsNumber"}
	for i := 0; i < 100; i++ {
		assert.Equal(t, "B", fieldValue("nhs_number", direct, src, fold, 1))
	}
}
