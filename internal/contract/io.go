package contract

import (
	"errors"
	"fmt"
	"io/fs"

	"nhs-dm-tool/internal/csvio"
	"nhs-dm-tool/internal/domain"
)

// Columns is the header of mapping_contract.csv.
var Columns = []string{
	"target_table",
	"target_field",
	"mapping_class",
	"primary_source_table",
	"primary_source_field",
	"mapping_rule",
	"confidence",
	"notes",
}

func record(r domain.ContractRow) []string {
	return []string{
		r.TargetTable,
		r.TargetField,
		string(r.MappingClass),
		r.PrimarySourceTable,
		r.PrimarySourceField,
		r.MappingRule,
		r.Confidence,
		r.Notes,
	}
}

// Write stores rows as mapping_contract.csv.
func Write(path string, rows []domain.ContractRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, record(r))
	}
	if err := csvio.WriteRecords(path, Columns, records); err != nil {
		return fmt.Errorf("failed to write contract: %w", err)
	}
	return nil
}

// Read loads a contract CSV. A missing file wraps domain.ErrMissingInput.
func Read(path string) ([]domain.ContractRow, error) {
	tbl, err := csvio.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("contract %s: %w", path, domain.ErrMissingInput)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read contract: %w", err)
	}
	rows := make([]domain.ContractRow, 0, len(tbl.Rows))
	for _, r := range tbl.Rows {
		rows = append(rows, domain.ContractRow{
			TargetTable:        r["target_table"],
			TargetField:        r["target_field"],
			MappingClass:       domain.MappingClass(r["mapping_class"]),
			PrimarySourceTable: r["primary_source_table"],
			PrimarySourceField: r["primary_source_field"],
			MappingRule:        r["mapping_rule"],
			Confidence:         r["confidence"],
			Notes:              r["notes"],
		})
	}
	return rows, nil
}
