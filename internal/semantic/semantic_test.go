package semantic_test

import (
	"path/filepath"
	"testing"

	"nhs-dm-tool/internal/catalog"
	"nhs-dm-tool/internal/csvio"
	"nhs-dm-tool/internal/semantic"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"PatNameFamily", []string{"patient", "name", "family"}},
		{"pat_name_family", []string{"patient", "name", "family"}},
		{"DOB", []string{"dateofbirth"}},
		{"main_crn", []string{"internalpatientnumber"}},
		{"AdmitDate10", []string{"admit", "date"}},
		{"NhsNumber", []string{"nhs", "number"}},
		{"Date of Birth", []string{"date", "birth"}},
		{"wl-appt.dt", []string{"waitlist", "appointment", "date"}},
		{"", nil},
		{"__", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, semantic.Tokenize(tt.name))
		})
	}
}

func TestTokenizeIsFormatInsensitive(t *testing.T) {
	assert.Equal(t, semantic.Tokenize("PatNameFamily"), semantic.Tokenize("pat_name_family"))
	assert.Equal(t, semantic.Tokenize("ConsultantCode"), semantic.Tokenize("CONSULTANT_CODE"))
}

func TestScore(t *testing.T) {
	assert.Equal(t, 1.0, semantic.Score("NhsNumber", "NhsNumber"))
	assert.Equal(t, 1.0, semantic.Score("nhs_number", "NhsNumber"))
	assert.InDelta(t, 0.35, semantic.Score("main_crn", "InternalPatientNumber"), 1e-9)
	assert.InDelta(t, 1.0/3.0+0.05, semantic.Score("admit_date", "AdmissionDate"), 1e-9)
	assert.Equal(t, 0.0, semantic.Score("of", "PtDoB"))
	assert.Equal(t, 0.0, semantic.Score("zzz", ""))
}

func TestScoreIsBounded(t *testing.T) {
	names := []string{"NhsNumber", "nhs_number", "PtDoB", "date_of_birth", "EpisodeNumber", "episode_number_dt", "x"}
	for _, a := range names {
		for _, b := range names {
			s := semantic.Score(a, b)
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0)
		}
	}
}

func sourceCatalog() *catalog.Catalog {
	c := catalog.New()
	c.AddTable("PATDATA", []string{"InternalPatientNumber", "NhsNumber", "Forenames"})
	c.AddTable("ADMITDISCH", []string{"AdmitDate"})
	c.AddTable("OTHER", []string{"PatNameFamily"})
	return c
}

func newResolver(c *catalog.Catalog) *semantic.HintedResolver {
	return semantic.NewHintedResolver(semantic.NewIndex(c), semantic.TargetHintTables, semantic.PriorityTables)
}

func TestControllerPrefersHintedTables(t *testing.T) {
	ctl := semantic.NewController(newResolver(sourceCatalog()))

	best := ctl.Resolve("LOAD_PMI", "nhs_number")
	assert.Equal(t, "PATDATA", best.Field.TableName)
	assert.Equal(t, "NhsNumber", best.Field.FieldName)
	assert.Equal(t, 1.0, best.Score)
}

func TestControllerEscalatesWeakHintedMatch(t *testing.T) {
	r := newResolver(sourceCatalog())
	ctl := semantic.NewController(r)

	restricted, used := r.ResolveRestricted("LOAD_PMI", "pat_name_family")
	require.True(t, used)
	assert.Less(t, restricted.Score, semantic.EscalationThreshold)

	best := ctl.Resolve("LOAD_PMI", "pat_name_family")
	assert.Equal(t, "OTHER", best.Field.TableName)
	assert.Equal(t, "PatNameFamily", best.Field.FieldName)
	assert.GreaterOrEqual(t, best.Score, r.ResolveGlobal("LOAD_PMI", "pat_name_family").Score)
}

func TestControllerUnhintedTableSearchesEverything(t *testing.T) {
	r := newResolver(sourceCatalog())
	_, used := r.ResolveRestricted("LOAD_UNKNOWN", "AdmitDate")
	assert.False(t, used)

	best := semantic.NewController(r).Resolve("LOAD_UNKNOWN", "AdmitDate")
	assert.Equal(t, "ADMITDISCH", best.Field.TableName)
	assert.Equal(t, 1.0, best.Score)
}

func TestHintedTablesMissingFromCatalogFallBackWithoutEscalation(t *testing.T) {
	r := semantic.NewHintedResolver(semantic.NewIndex(sourceCatalog()), map[string][]string{"LOAD_X": {"MISSING"}}, nil)
	best, used := r.ResolveRestricted("LOAD_X", "Forenames")
	assert.False(t, used)
	assert.Equal(t, "Forenames", best.Field.FieldName)
}

func TestResolverKeepsFirstOnTies(t *testing.T) {
	c := catalog.New()
	c.AddTable("ALPHA", []string{"Ward"})
	c.AddTable("BETA", []string{"Ward"})
	best := semantic.NewController(semantic.NewHintedResolver(semantic.NewIndex(c), nil, nil)).Resolve("LOAD_Y", "ward")
	assert.Equal(t, "ALPHA", best.Field.TableName)
}

func TestResolverOnEmptyCatalog(t *testing.T) {
	best := semantic.NewController(newResolver(catalog.New())).Resolve("LOAD_PMI", "nhs_number")
	assert.False(t, best.Found())
	assert.Equal(t, 0.0, best.Score)
}

type stubResolver struct {
	restricted   semantic.Candidate
	used         bool
	global       semantic.Candidate
	globalCalled int
}

func (s *stubResolver) ResolveRestricted(string, string) (semantic.Candidate, bool) {
	return s.restricted, s.used
}

func (s *stubResolver) ResolveGlobal(string, string) semantic.Candidate {
	s.globalCalled++
	return s.global
}

func TestControllerCallsGlobalOnlyWhenRestrictedIsWeak(t *testing.T) {
	strong := &stubResolver{restricted: semantic.Candidate{Score: 0.55}, used: true}
	semantic.NewController(strong).Resolve("T", "f")
	assert.Equal(t, 0, strong.globalCalled)

	unrestricted := &stubResolver{restricted: semantic.Candidate{Score: 0.1}, used: false}
	semantic.NewController(unrestricted).Resolve("T", "f")
	assert.Equal(t, 0, unrestricted.globalCalled)

	weak := &stubResolver{
		restricted: semantic.Candidate{Score: 0.4},
		used:       true,
		global:     semantic.Candidate{Score: 0.4, Field: catalog.SchemaField{TableName: "G", FieldName: "g"}},
	}
	got := semantic.NewController(weak).Resolve("T", "f")
	assert.Equal(t, 1, weak.globalCalled)
	assert.Equal(t, "", got.Field.TableName, "equal global score must not replace the hinted candidate")
}

func TestClassify(t *testing.T) {
	assert.Equal(t, semantic.StatusSystemField, semantic.Classify(0, "LOAD_STAFF", "record_number"))
	assert.Equal(t, semantic.StatusReferenceRequired, semantic.Classify(1, "LOAD_STAFF", "staff_code"))
	assert.Equal(t, semantic.StatusHighConfidence, semantic.Classify(0.86, "LOAD_PMI", "x"))
	assert.Equal(t, semantic.StatusProbable, semantic.Classify(0.70, "LOAD_PMI", "x"))
	assert.Equal(t, semantic.StatusLowConfidence, semantic.Classify(0.55, "LOAD_PMI", "x"))
	assert.Equal(t, semantic.StatusUnmapped, semantic.Classify(0.5499, "LOAD_PMI", "x"))
}

func TestAnalyzerRun(t *testing.T) {
	target := catalog.New()
	target.AddTable("LOAD_PMI", []string{"record_number", "nhs_number", "pat_name_family", "zzz_unknown"})
	target.AddTable("LOAD_STAFF", []string{"staff_code"})

	m := semantic.NewAnalyzer(sourceCatalog(), zerolog.Nop()).Run(target)
	require.Len(t, m.Rows, 5)

	byField := map[string]semantic.MatrixRow{}
	for _, r := range m.Rows {
		byField[r.TargetField] = r
	}

	assert.Equal(t, semantic.StatusSystemField, byField["record_number"].Status)

	nhs := byField["nhs_number"]
	assert.Equal(t, semantic.StatusHighConfidence, nhs.Status)
	assert.True(t, nhs.InPriority)
	assert.True(t, nhs.InHintTables)
	assert.Empty(t, nhs.Notes)

	fam := byField["pat_name_family"]
	assert.Equal(t, "OTHER", fam.BestSourceTable)
	assert.False(t, fam.InHintTables)

	unk := byField["zzz_unknown"]
	assert.Equal(t, semantic.StatusUnmapped, unk.Status)
	assert.Equal(t, "No reliable semantic candidate in source catalog; requires manual mapping decision.", unk.Notes)

	staff := byField["staff_code"]
	assert.Equal(t, semantic.StatusReferenceRequired, staff.Status)
	assert.Contains(t, staff.Notes, "reference datasets")

	s := m.Summary
	assert.Equal(t, 2, s.TargetTableCount)
	assert.Equal(t, 5, s.TargetFieldCount)
	assert.Equal(t, 3, s.SourceTableCount)
	assert.Equal(t, 5, s.SourceFieldCount)
	assert.Equal(t, 2, s.StatusCounts[semantic.StatusHighConfidence])
	assert.Equal(t, 1, s.StatusCounts[semantic.StatusUnmapped])
	assert.Len(t, s.PrioritySourceCoverage, len(semantic.PriorityTables))
	assert.Equal(t, semantic.Coverage{TotalFields: 3, MappedFields: 1, UnmappedFields: 2, CoveragePct: 33.3}, s.PrioritySourceCoverage["PATDATA"])
	assert.Equal(t, semantic.Coverage{}, s.PrioritySourceCoverage["AEA"])

	assert.Equal(t, []string{"LOAD_PMI"}, m.MostUnmapped(1))
}

func TestMatrixWriteCSV(t *testing.T) {
	target := catalog.New()
	target.AddTable("LOAD_PMI", []string{"nhs_number"})
	m := semantic.NewAnalyzer(sourceCatalog(), zerolog.Nop()).Run(target)

	path := filepath.Join(t.TempDir(), "semantic_mapping_matrix.csv")
	require.NoError(t, m.WriteCSV(path))

	tbl, err := csvio.Read(path)
	require.NoError(t, err)
	assert.Equal(t, semantic.MatrixColumns, tbl.Header)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "1.000", tbl.Rows[0]["score"])
	assert.Equal(t, "Y", tbl.Rows[0]["source_in_13_priority"])
}
