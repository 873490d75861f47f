package contract_test

import (
	"os"
	"path/filepath"
	"testing"

	"nhs-dm-tool/internal/catalog"
	"nhs-dm-tool/internal/contract"
	"nhs-dm-tool/internal/domain"
	"nhs-dm-tool/internal/report"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sourceCatalog() *catalog.Catalog {
	c := catalog.New()
	c.AddTable("PATDATA", []string{"InternalPatientNumber", "NhsNumber", "Sex", "Forenames", "Surname", "DateOfBirth"})
	c.AddTable("ADMITDISCH", []string{"AdmissionDate", "Consultant"})
	return c
}

func targetCatalog() *catalog.Catalog {
	c := catalog.New()
	c.AddTable("LOAD_PMI", []string{"record_number", "main_crn", "nhs_number", "sex", "title", "must", "patient_age", "consultant"})
	c.AddTable("LOAD_STAFF", []string{"staff_code"})
	c.AddTable("LOAD_ADT_ADMISSIONS", []string{"admit_date", "consultant_code"})
	c.AddTable("LOAD_OPD_ARCHIVE", []string{"widget"})
	return c
}

func byKey(rows []domain.ContractRow) map[string]domain.ContractRow {
	out := make(map[string]domain.ContractRow, len(rows))
	for _, r := range rows {
		out[r.TargetTable+"."+r.TargetField] = r
	}
	return out
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "internalpatientnumber", contract.Normalize("main_crn"))
	assert.Equal(t, "surname", contract.Normalize("Pat-Name-Family"))
	assert.Equal(t, "forenames", contract.Normalize("Forenames"))
}

func TestFindSourceField(t *testing.T) {
	sf, ok := contract.FindSourceField("pat_name_family", []string{"Forenames", "Surname"})
	require.True(t, ok)
	assert.Equal(t, "Surname", sf)

	sf, ok = contract.FindSourceField("forename", []string{"Forenames"})
	require.True(t, ok)
	assert.Equal(t, "Forenames", sf)

	_, ok = contract.FindSourceField("title", []string{"Forenames", "__"})
	assert.False(t, ok)
}

func TestIsSurrogate(t *testing.T) {
	assert.True(t, contract.IsSurrogate("record_number"))
	assert.True(t, contract.IsSurrogate("SYSTEM_CODE"))
	assert.True(t, contract.IsSurrogate("loadpmi_record_number"))
	assert.True(t, contract.IsSurrogate("adt_recno"))
	assert.False(t, contract.IsSurrogate("nhs_number"))
}

func TestClassifyBusiness(t *testing.T) {
	cls, _ := contract.ClassifyBusiness("LOAD_PMI", "ethnic_category")
	assert.Equal(t, domain.LookupTranslation, cls)
	cls, _ = contract.ClassifyBusiness("LOAD_PMI", "comments")
	assert.Equal(t, domain.Derived, cls)
	cls, _ = contract.ClassifyBusiness("LOAD_OPD_ARCHIVE", "appt_date")
	assert.Equal(t, domain.Derived, cls)
	cls, _ = contract.ClassifyBusiness("LOAD_PMI", "nhs_number")
	assert.Equal(t, domain.DirectSource, cls)
}

func TestClassifierDecisionOrder(t *testing.T) {
	cls := contract.NewClassifier(sourceCatalog())
	c := contract.NewBuilder(cls, zerolog.Nop()).Build(targetCatalog())
	rows := byKey(c.Rows)
	require.Len(t, c.Rows, 12)

	assert.Equal(t, domain.SurrogateETL, rows["LOAD_PMI.record_number"].MappingClass)

	crn := rows["LOAD_PMI.main_crn"]
	assert.Equal(t, domain.DirectSource, crn.MappingClass)
	assert.Equal(t, domain.ConfidenceHigh, crn.Confidence)
	assert.Equal(t, "PATDATA.InternalPatientNumber -> LOAD_PMI.main_crn", crn.MappingRule)

	must := rows["LOAD_PMI.must"]
	assert.Equal(t, domain.OutOfScope, must.MappingClass)
	assert.Contains(t, must.MappingRule, "parse artefact")

	title := rows["LOAD_PMI.title"]
	assert.Equal(t, domain.OutOfScope, title.MappingClass)
	assert.Equal(t, domain.ConfidenceLow, title.Confidence)
	assert.Equal(t, "Business mapping unresolved.", title.Notes)

	age := rows["LOAD_PMI.patient_age"]
	assert.Equal(t, domain.Derived, age.MappingClass)
	assert.Equal(t, domain.ConfidenceMedium, age.Confidence)

	consultant := rows["LOAD_PMI.consultant"]
	assert.Equal(t, domain.DirectSource, consultant.MappingClass)
	assert.Equal(t, "ADMITDISCH", consultant.PrimarySourceTable)
	assert.Equal(t, domain.ConfidenceMedium, consultant.Confidence)

	assert.Equal(t, domain.ReferenceMasterFeed, rows["LOAD_STAFF.staff_code"].MappingClass)

	admit := rows["LOAD_ADT_ADMISSIONS.admit_date"]
	assert.Equal(t, domain.DirectSource, admit.MappingClass)
	assert.Equal(t, "AdmissionDate", admit.PrimarySourceField)

	code := rows["LOAD_ADT_ADMISSIONS.consultant_code"]
	assert.Equal(t, domain.LookupTranslation, code.MappingClass)
	assert.Equal(t, "Consultant", code.PrimarySourceField)

	archive := rows["LOAD_OPD_ARCHIVE.widget"]
	assert.Equal(t, domain.Derived, archive.MappingClass)
	assert.Equal(t, domain.ConfidenceMedium, archive.Confidence)

	s := c.Summary()
	assert.Equal(t, 4, s.TargetTableCount)
	assert.Equal(t, 12, s.TargetFieldCount)
	assert.Equal(t, 2, s.MappingClassCounts[string(domain.OutOfScope)])
	assert.Equal(t, 1, s.TargetTableClassBreakdown["LOAD_STAFF"][string(domain.ReferenceMasterFeed)])

	unresolved := c.Unresolved()
	require.Len(t, unresolved, 1)
	assert.Equal(t, "title", unresolved[0].TargetField)
}

func writePolicy(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mapping_policy.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestPolicyOverrideTakesPrecedence(t *testing.T) {
	path := writePolicy(t, `{"overrides": [
		{"target_table": "LOAD_PMI", "target_field": "title", "mapping_class": "DERIVED", "notes": "Derive from sex."},
		{"target_table": "LOAD_PMI", "target_field": "sex", "confidence": "MEDIUM"},
		{"target_table": "LOAD_PMI", "mapping_class": "OUT_OF_SCOPE"}
	]}`)
	policy, err := contract.LoadPolicy(path)
	require.NoError(t, err)

	b := contract.NewBuilder(contract.NewClassifier(sourceCatalog()), zerolog.Nop())
	b.Policy = policy
	c := b.Build(targetCatalog())
	rows := byKey(c.Rows)

	title := rows["LOAD_PMI.title"]
	assert.Equal(t, domain.Derived, title.MappingClass)
	assert.Equal(t, "Derive from sex.", title.Notes)
	assert.Equal(t, domain.ConfidenceLow, title.Confidence, "attributes the override omits stay untouched")

	sex := rows["LOAD_PMI.sex"]
	assert.Equal(t, domain.DirectSource, sex.MappingClass)
	assert.Equal(t, domain.ConfidenceMedium, sex.Confidence)

	assert.Equal(t, 2, c.OverrideCount)
	assert.Equal(t, 1, c.ClassCounts[string(domain.OutOfScope)])
	assert.Equal(t, 1, c.TableBreakdown["LOAD_PMI"][string(domain.OutOfScope)])
	assert.Equal(t, 2, c.TableBreakdown["LOAD_PMI"][string(domain.Derived)])
}

func TestPolicyEmptySourceKeepsClassifiedSource(t *testing.T) {
	path := writePolicy(t, `{"overrides": [
		{"target_table": "LOAD_PMI", "target_field": "nhs_number", "primary_source_table": "", "primary_source_field": "", "notes": "Checked."},
		{"target_table": "LOAD_PMI", "target_field": "sex", "primary_source_table": "PATDATA", "primary_source_field": "Forenames"}
	]}`)
	policy, err := contract.LoadPolicy(path)
	require.NoError(t, err)

	b := contract.NewBuilder(contract.NewClassifier(sourceCatalog()), zerolog.Nop())
	b.Policy = policy
	rows := byKey(b.Build(targetCatalog()).Rows)

	nhs := rows["LOAD_PMI.nhs_number"]
	assert.Equal(t, "PATDATA", nhs.PrimarySourceTable)
	assert.Equal(t, "NhsNumber", nhs.PrimarySourceField)
	assert.Equal(t, "Checked.", nhs.Notes)

	assert.Equal(t, "Forenames", rows["LOAD_PMI.sex"].PrimarySourceField)
}

func TestLoadPolicy(t *testing.T) {
	p, err := contract.LoadPolicy(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Empty(t, p.Overrides)

	_, err = contract.LoadPolicy(writePolicy(t, `{"overrides": [{"target_table": "LOAD_PMI", "target_field": "x", "mapping_class": "GUESS"}]}`))
	assert.ErrorContains(t, err, "unknown mapping_class")

	_, err = contract.LoadPolicy(writePolicy(t, `{not json`))
	assert.Error(t, err)
}

func TestContractIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	build := func(name string) []byte {
		c := contract.NewBuilder(contract.NewClassifier(sourceCatalog()), zerolog.Nop()).Build(targetCatalog())
		path := filepath.Join(dir, name)
		require.NoError(t, contract.Write(path, c.Rows))
		b, err := os.ReadFile(path)
		require.NoError(t, err)
		return b
	}
	assert.Equal(t, build("first.csv"), build("second.csv"))
}

func TestContractRoundTrip(t *testing.T) {
	c := contract.NewBuilder(contract.NewClassifier(sourceCatalog()), zerolog.Nop()).Build(targetCatalog())
	dir := t.TempDir()
	path := filepath.Join(dir, "mapping_contract.csv")
	require.NoError(t, contract.Write(path, c.Rows))

	got, err := contract.Read(path)
	require.NoError(t, err)
	assert.Equal(t, c.Rows, got)

	summaryPath := filepath.Join(dir, "mapping_contract_summary.json")
	require.NoError(t, c.WriteSummary(summaryPath))
	var s contract.Summary
	require.NoError(t, report.ReadJSON(summaryPath, &s))
	assert.Equal(t, 12, s.TargetFieldCount)
}

func TestReadMissingContract(t *testing.T) {
	_, err := contract.Read(filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, domain.ErrMissingInput)
}
