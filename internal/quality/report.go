package quality

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"nhs-dm-tool/internal/contract"
	"nhs-dm-tool/internal/domain"
	"nhs-dm-tool/internal/report"
)

// Report file names written under the report directory.
const (
	IssuesFile = "enterprise_pipeline_issues.csv"
	ReportFile = "enterprise_pipeline_report.json"
)

// Options locate the inputs of a quality run.
type Options struct {
	SourceDir    string
	TargetDir    string
	ContractFile string
	MinRows      int
}

// Run executes the source, contract and target checks in that order. Only a
// missing contract or an unreadable file is an error.
func Run(opts Options, logger zerolog.Logger) ([]domain.DataIssue, error) {
	issues, err := CheckSource(opts.SourceDir, opts.MinRows)
	if err != nil {
		return nil, fmt.Errorf("source checks: %w", err)
	}
	logger.Debug().Int("issues", len(issues)).Msg("Source checks done")

	rows, err := contract.Read(opts.ContractFile)
	if err != nil {
		return nil, err
	}
	issues = append(issues, CheckContract(rows)...)

	ri, err := CheckTargetIntegrity(opts.TargetDir, domain.TargetRelationships)
	if err != nil {
		return nil, fmt.Errorf("target checks: %w", err)
	}
	issues = append(issues, ri...)

	logger.Info().
		Int("issues", len(issues)).
		Str("status", domain.RunStatus(issues)).
		Msg("Quality checks finished")
	return issues, nil
}

// Report is enterprise_pipeline_report.json.
type Report struct {
	RunAtUTC        string         `json:"run_at_utc"`
	Status          string         `json:"status"`
	MinRowsRequired int            `json:"min_patients_required"`
	IssueCount      int            `json:"issue_count"`
	SeverityCounts  map[string]int `json:"severity_counts"`
	CategoryCounts  map[string]int `json:"category_counts"`
	IssuesCSV       string         `json:"issues_csv"`
}

// WriteReports writes the issues CSV and the JSON report into reportDir.
func WriteReports(reportDir string, minRows int, issues []domain.DataIssue, now time.Time) (*Report, error) {
	r := &Report{
		RunAtUTC:        report.Timestamp(now),
		Status:          domain.RunStatus(issues),
		MinRowsRequired: minRows,
		IssueCount:      len(issues),
		SeverityCounts:  domain.SeverityCounts(issues),
		CategoryCounts:  domain.CategoryCounts(issues),
		IssuesCSV:       filepath.Join(reportDir, IssuesFile),
	}
	if err := report.WriteIssues(r.IssuesCSV, issues); err != nil {
		return nil, err
	}
	if err := report.WriteJSON(filepath.Join(reportDir, ReportFile), r); err != nil {
		return nil, err
	}
	return r, nil
}
