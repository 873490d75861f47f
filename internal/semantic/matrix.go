package semantic

import (
	"fmt"
	"math"
	"sort"

	"nhs-dm-tool/internal/catalog"
	"nhs-dm-tool/internal/csvio"
	"nhs-dm-tool/internal/domain"
	"nhs-dm-tool/internal/report"

	"github.com/rs/zerolog"
)

// Matrix statuses.
const (
	StatusSystemField       = "SYSTEM_FIELD"
	StatusReferenceRequired = "REFERENCE_REQUIRED"
	StatusHighConfidence    = "HIGH_CONFIDENCE"
	StatusProbable          = "PROBABLE"
	StatusLowConfidence     = "LOW_CONFIDENCE"
	StatusUnmapped          = "UNMAPPED"
)

const (
	noteReference = "Target table is likely mastered from PAS setup/reference datasets, not V83 transactional extracts."
	noteUnmapped  = "No reliable semantic candidate in source catalog; requires manual mapping decision."
	noteOutside   = "Best candidate is outside the 13 priority source tables."
)

// Output file names under the report directory.
const (
	MatrixFile  = "semantic_mapping_matrix.csv"
	SummaryFile = "semantic_mapping_summary.json"
)

// MatrixColumns is the header of semantic_mapping_matrix.csv.
var MatrixColumns = []string{
	"target_table",
	"target_field",
	"best_source_table",
	"best_source_field",
	"score",
	"status",
	"source_in_13_priority",
	"source_in_target_hint_tables",
	"notes",
}

// Classify maps a resolver score onto a matrix status.
func Classify(score float64, targetTable, targetField string) string {
	switch {
	case domain.SystemFields[targetField]:
		return StatusSystemField
	case domain.ReferenceTargetTables[targetTable]:
		return StatusReferenceRequired
	case score >= 0.86:
		return StatusHighConfidence
	case score >= 0.70:
		return StatusProbable
	case score >= EscalationThreshold:
		return StatusLowConfidence
	default:
		return StatusUnmapped
	}
}

// MatrixRow is one evaluated target field.
type MatrixRow struct {
	TargetTable     string
	TargetField     string
	BestSourceTable string
	BestSourceField string
	Score           float64
	Status          string
	InPriority      bool
	InHintTables    bool
	Notes           string
}

// Record renders the row in MatrixColumns order.
func (r MatrixRow) Record() []string {
	return []string{
		r.TargetTable,
		r.TargetField,
		r.BestSourceTable,
		r.BestSourceField,
		fmt.Sprintf("%.3f", r.Score),
		r.Status,
		yn(r.InPriority),
		yn(r.InHintTables),
		r.Notes,
	}
}

func yn(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}

// Coverage is the share of a priority table's fields chosen by confident matches.
type Coverage struct {
	TotalFields    int     `json:"total_fields"`
	MappedFields   int     `json:"mapped_fields"`
	UnmappedFields int     `json:"unmapped_fields"`
	CoveragePct    float64 `json:"coverage_pct"`
}

// Summary is written to semantic_mapping_summary.json.
type Summary struct {
	TargetTableCount       int                 `json:"target_table_count"`
	TargetFieldCount       int                 `json:"target_field_count"`
	SourceTableCount       int                 `json:"source_table_count"`
	SourceFieldCount       int                 `json:"source_field_count"`
	StatusCounts           map[string]int      `json:"status_counts"`
	PrioritySourceCoverage map[string]Coverage `json:"priority_source_coverage"`
}

// Matrix is the analyzer output.
type Matrix struct {
	Rows     []MatrixRow
	Summary  Summary
	PerTable map[string]map[string]int
}

// Analyzer builds the semantic mapping matrix.
type Analyzer struct {
	Source     *catalog.Catalog
	Controller *Controller
	Hints      map[string][]string
	Priority   map[string]bool
	Logger     zerolog.Logger
}

// NewAnalyzer wires the default hinted resolver over src.
func NewAnalyzer(src *catalog.Catalog, logger zerolog.Logger) *Analyzer {
	resolver := NewHintedResolver(NewIndex(src), TargetHintTables, PriorityTables)
	return &Analyzer{
		Source:     src,
		Controller: NewController(resolver),
		Hints:      TargetHintTables,
		Priority:   PriorityTables,
		Logger:     logger,
	}
}

// Run evaluates every field of every target table in catalog order.
func (a *Analyzer) Run(target *catalog.Catalog) *Matrix {
	m := &Matrix{PerTable: make(map[string]map[string]int)}
	counts := make(map[string]int)
	used := make(map[domain.FieldKey]bool)

	for _, tt := range target.Tables() {
		hinted := toSet(a.Hints[tt])
		for _, tf := range target.Fields(tt) {
			best := a.Controller.Resolve(tt, tf)
			status := Classify(best.Score, tt, tf)

			row := MatrixRow{
				TargetTable:     tt,
				TargetField:     tf,
				BestSourceTable: best.Field.TableName,
				BestSourceField: best.Field.FieldName,
				Score:           best.Score,
				Status:          status,
				InPriority:      a.Priority[best.Field.TableName],
				InHintTables:    hinted[best.Field.TableName],
			}
			switch {
			case status == StatusHighConfidence || status == StatusProbable:
				used[domain.FieldKey{Table: row.BestSourceTable, Field: row.BestSourceField}] = true
			case status == StatusReferenceRequired:
				row.Notes = noteReference
			case status == StatusUnmapped:
				row.Notes = noteUnmapped
			case !row.InPriority:
				row.Notes = noteOutside
			}

			m.Rows = append(m.Rows, row)
			counts[status]++
			if m.PerTable[tt] == nil {
				m.PerTable[tt] = make(map[string]int)
			}
			m.PerTable[tt][status]++
		}
		a.Logger.Debug().Str("table", tt).Int("fields", len(target.Fields(tt))).Msg("target table scored")
	}

	m.Summary = Summary{
		TargetTableCount:       len(target.Tables()),
		TargetFieldCount:       target.FieldCount(),
		SourceTableCount:       len(a.Source.Tables()),
		SourceFieldCount:       a.Source.FieldCount(),
		StatusCounts:           counts,
		PrioritySourceCoverage: a.coverage(used),
	}
	return m
}

func (a *Analyzer) coverage(used map[domain.FieldKey]bool) map[string]Coverage {
	out := make(map[string]Coverage, len(a.Priority))
	for _, t := range domain.SortedKeys(a.Priority) {
		total := len(a.Source.Fields(t))
		mapped := 0
		for _, f := range a.Source.Fields(t) {
			if used[domain.FieldKey{Table: t, Field: f}] {
				mapped++
			}
		}
		pct := 0.0
		if total > 0 {
			pct = math.Round(float64(mapped)/float64(total)*1000) / 10
		}
		out[t] = Coverage{
			TotalFields:    total,
			MappedFields:   mapped,
			UnmappedFields: total - mapped,
			CoveragePct:    pct,
		}
	}
	return out
}

// MostUnmapped returns up to n target tables ordered by UNMAPPED count
// descending, then by name.
func (m *Matrix) MostUnmapped(n int) []string {
	tables := domain.SortedKeys(m.PerTable)
	sort.SliceStable(tables, func(i, j int) bool {
		return m.PerTable[tables[i]][StatusUnmapped] > m.PerTable[tables[j]][StatusUnmapped]
	})
	if len(tables) > n {
		tables = tables[:n]
	}
	return tables
}

// WriteCSV writes the matrix rows.
func (m *Matrix) WriteCSV(path string) error {
	records := make([][]string, 0, len(m.Rows))
	for _, r := range m.Rows {
		records = append(records, r.Record())
	}
	return csvio.WriteRecords(path, MatrixColumns, records)
}

// WriteSummary writes the summary JSON.
func (m *Matrix) WriteSummary(path string) error {
	return report.WriteJSON(path, m.Summary)
}
