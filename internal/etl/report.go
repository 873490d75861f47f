package etl

import (
	"fmt"
	"path/filepath"
	"time"

	"nhs-dm-tool/internal/csvio"
	"nhs-dm-tool/internal/domain"
	"nhs-dm-tool/internal/report"
)

// Report file names written under the report directory.
const (
	StatsFile   = "contract_migration_table_stats.csv"
	IssuesFile  = "contract_migration_issues.csv"
	RejectsFile = "contract_migration_rejects.csv"
	ReportFile  = "contract_migration_report.json"
)

// StatsColumns is the header of the table stats CSV.
var StatsColumns = []string{
	"target_table",
	"source_table",
	"rows_written",
	"columns_total",
	"columns_populated",
	"mapped_fields",
	"column_population_ratio",
}

// RejectColumns is the header of the rejects CSV.
var RejectColumns = []string{
	"severity",
	"category",
	"table_name",
	"field_name",
	"record_id",
	"source_value",
	"crosswalk_name",
	"message",
}

// PopulationRatio is populated over total columns, rounded to 4 dp.
func (s TableStats) PopulationRatio() float64 {
	return report.Ratio(s.ColumnsPopulated, s.ColumnsTotal)
}

// Record renders the stats row in StatsColumns order.
func (s TableStats) Record() []string {
	return []string{
		s.TargetTable,
		s.SourceTable,
		fmt.Sprint(s.RowsWritten),
		fmt.Sprint(s.ColumnsTotal),
		fmt.Sprint(s.ColumnsPopulated),
		fmt.Sprint(s.MappedFields),
		fmt.Sprint(s.PopulationRatio()),
	}
}

// Record renders the reject in RejectColumns order.
func (r Reject) Record() []string {
	return []string{
		string(r.Severity),
		r.Category,
		r.TableName,
		r.FieldName,
		r.RecordID,
		r.SourceValue,
		r.CrosswalkName,
		r.Message,
	}
}

// Report is contract_migration_report.json.
type Report struct {
	RunAtUTC                     string         `json:"run_at_utc"`
	Status                       string         `json:"status"`
	SourceDir                    string         `json:"source_dir"`
	OutputDir                    string         `json:"output_dir"`
	ContractFile                 string         `json:"contract_file"`
	TargetCatalogFile            string         `json:"target_catalog_file"`
	CrosswalkDir                 string         `json:"crosswalk_dir"`
	ImputeMode                   ImputeMode     `json:"impute_mode"`
	TablesWritten                int            `json:"tables_written"`
	RowsWrittenTotal             int            `json:"rows_written_total"`
	ColumnsTotal                 int            `json:"columns_total"`
	ColumnsPopulated             int            `json:"columns_populated"`
	OverallColumnPopulationRatio float64        `json:"overall_column_population_ratio"`
	IssueCounts                  map[string]int `json:"issue_counts"`
	CrosswalkRejectCount         int            `json:"crosswalk_reject_count"`
	TableStatsCSV                string         `json:"table_stats_csv"`
	IssuesCSV                    string         `json:"issues_csv"`
	RejectsCSV                   string         `json:"rejects_csv"`
}

// NewReport totals res for opts. Status is FAIL when any issue is an ERROR.
func NewReport(opts Options, res *Result, reportDir string, now time.Time) *Report {
	r := &Report{
		RunAtUTC:             report.Timestamp(now),
		Status:               domain.RunStatus(res.Issues),
		SourceDir:            opts.SourceDir,
		OutputDir:            opts.OutputDir,
		ContractFile:         opts.ContractFile,
		TargetCatalogFile:    opts.TargetCatalogFile,
		CrosswalkDir:         opts.CrosswalkDir,
		ImputeMode:           opts.ImputeMode,
		TablesWritten:        len(res.Stats),
		IssueCounts:          domain.SeverityCounts(res.Issues),
		CrosswalkRejectCount: len(res.Rejects),
		TableStatsCSV:        filepath.Join(reportDir, StatsFile),
		IssuesCSV:            filepath.Join(reportDir, IssuesFile),
		RejectsCSV:           filepath.Join(reportDir, RejectsFile),
	}
	for _, s := range res.Stats {
		r.RowsWrittenTotal += s.RowsWritten
		r.ColumnsTotal += s.ColumnsTotal
		r.ColumnsPopulated += s.ColumnsPopulated
	}
	r.OverallColumnPopulationRatio = report.Ratio(r.ColumnsPopulated, r.ColumnsTotal)
	return r
}

// WriteReports writes the stats, issues and rejects CSVs plus the JSON
// report into reportDir and returns the report.
func WriteReports(reportDir string, opts Options, res *Result, now time.Time) (*Report, error) {
	r := NewReport(opts, res, reportDir, now)

	stats := make([][]string, 0, len(res.Stats))
	for _, s := range res.Stats {
		stats = append(stats, s.Record())
	}
	if err := csvio.WriteRecords(r.TableStatsCSV, StatsColumns, stats); err != nil {
		return nil, err
	}
	if err := report.WriteIssues(r.IssuesCSV, res.Issues); err != nil {
		return nil, err
	}
	rejects := make([][]string, 0, len(res.Rejects))
	for _, rj := range res.Rejects {
		rejects = append(rejects, rj.Record())
	}
	if err := csvio.WriteRecords(r.RejectsCSV, RejectColumns, rejects); err != nil {
		return nil, err
	}
	if err := report.WriteJSON(filepath.Join(reportDir, ReportFile), r); err != nil {
		return nil, err
	}
	return r, nil
}
