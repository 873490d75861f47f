// Package report writes the JSON and CSV artifacts shared by pipeline stages.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"nhs-dm-tool/internal/csvio"
	"nhs-dm-tool/internal/domain"
)

// WriteJSON writes v as two-space indented JSON, creating the parent directory.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return os.WriteFile(path, b, 0o644)
}

// ReadJSON decodes path into v.
func ReadJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// WriteIssues writes issues under domain.IssueColumns.
func WriteIssues(path string, issues []domain.DataIssue) error {
	records := make([][]string, 0, len(issues))
	for _, i := range issues {
		records = append(records, i.Record())
	}
	return csvio.WriteRecords(path, domain.IssueColumns, records)
}

// ReadIssues loads an issue CSV written by WriteIssues.
func ReadIssues(path string) ([]domain.DataIssue, error) {
	tbl, err := csvio.Read(path)
	if err != nil {
		return nil, err
	}
	out := make([]domain.DataIssue, 0, len(tbl.Rows))
	for _, r := range tbl.Rows {
		out = append(out, domain.NewIssue(
			domain.Severity(r["severity"]),
			r["category"],
			r["table_name"],
			r["field_name"],
			r["record_id"],
			r["message"],
		))
	}
	return out, nil
}

// Timestamp is the run_at_utc value of every report.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// Ratio returns num/den rounded to 4 decimal places, 0 when den is 0.
func Ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return math.Round(float64(num)/float64(den)*10000) / 10000
}
