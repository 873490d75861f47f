package quality

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"nhs-dm-tool/internal/csvio"
	"nhs-dm-tool/internal/domain"
)

// RequiredSourceTables must exist in every source extract.
var RequiredSourceTables = []string{"PATDATA", "ADMITDISCH", "HWSAPP", "AEA"}

// MaxMissingKeys bounds the keys reported per relationship.
const MaxMissingKeys = 200

const (
	mrnField = "InternalPatientNumber"
	nhsField = "NhsNumber"
	dobField = "PtDoB"
)

func readOptional(path string) ([]csvio.Row, error) {
	tbl, err := csvio.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return tbl.Rows, nil
}

// CheckSource validates the extract in dir: required tables, row counts,
// duplicate and invalid identifiers, and ADMITDISCH to PATDATA linkage.
func CheckSource(dir string, minRows int) ([]domain.DataIssue, error) {
	var issues []domain.DataIssue
	for _, t := range RequiredSourceTables {
		if !csvio.Exists(filepath.Join(dir, t+".csv")) {
			issues = append(issues, domain.NewIssue(domain.SeverityError, domain.CategorySourceMissingTable,
				t, "", "", "Required source table is missing."))
		}
	}

	files, err := csvio.Glob(dir)
	if err != nil {
		return nil, err
	}
	for _, p := range files {
		tbl, err := csvio.Read(p)
		if err != nil {
			return nil, err
		}
		if n := len(tbl.Rows); n < minRows {
			issues = append(issues, domain.NewIssue(domain.SeverityError, domain.CategorySourceRowCount,
				csvio.Stem(p), "", "", fmt.Sprintf("Row count %d is below required minimum %d.", n, minRows)))
		}
	}

	patPath := filepath.Join(dir, "PATDATA.csv")
	if !csvio.Exists(patPath) {
		return issues, nil
	}
	patients, err := readOptional(patPath)
	if err != nil {
		return nil, err
	}
	issues = append(issues, checkPatients(patients)...)

	admissions, err := readOptional(filepath.Join(dir, "ADMITDISCH.csv"))
	if err != nil {
		return nil, err
	}
	return append(issues, checkAdmissionLinks(patients, admissions)...), nil
}

func checkPatients(rows []csvio.Row) []domain.DataIssue {
	var issues []domain.DataIssue

	counts := make(map[string]int)
	var order []string
	for _, r := range rows {
		mrn := strings.TrimSpace(r[mrnField])
		if counts[mrn] == 0 {
			order = append(order, mrn)
		}
		counts[mrn]++
	}
	for _, mrn := range order {
		if mrn != "" && counts[mrn] > 1 {
			issues = append(issues, domain.NewIssue(domain.SeverityWarn, domain.CategorySourceDuplicateMRN,
				"PATDATA", mrnField, mrn, fmt.Sprintf("Duplicate MRN appears %d times.", counts[mrn])))
		}
	}

	for i, r := range rows {
		id := fmt.Sprint(i + 1)
		if nhs := strings.TrimSpace(r[nhsField]); nhs != "" && !IsValidNHSNumber(nhs) {
			issues = append(issues, domain.NewIssue(domain.SeverityError, domain.CategorySourceInvalidNHS,
				"PATDATA", nhsField, id, fmt.Sprintf("Invalid NHS number '%s'", nhs)))
		}
		if dob := strings.TrimSpace(r[dobField]); dob != "" && !IsValidDate(dob) {
			issues = append(issues, domain.NewIssue(domain.SeverityError, domain.CategorySourceInvalidDate,
				"PATDATA", dobField, id, fmt.Sprintf("Invalid DOB '%s'", dob)))
		}
	}
	return issues
}

func checkAdmissionLinks(patients, admissions []csvio.Row) []domain.DataIssue {
	known := make(map[string]bool, len(patients))
	for _, r := range patients {
		known[strings.TrimSpace(r[mrnField])] = true
	}
	var issues []domain.DataIssue
	for i, r := range admissions {
		mrn := strings.TrimSpace(r[mrnField])
		if mrn != "" && !known[mrn] {
			issues = append(issues, domain.NewIssue(domain.SeverityError, domain.CategorySourceRefIntegrity,
				"ADMITDISCH", mrnField, fmt.Sprint(i+1), fmt.Sprintf("MRN '%s' not found in PATDATA.", mrn)))
		}
	}
	return issues
}

// CheckContract warns about every business field still OUT_OF_SCOPE.
func CheckContract(rows []domain.ContractRow) []domain.DataIssue {
	var issues []domain.DataIssue
	for _, r := range rows {
		if r.MappingClass == domain.OutOfScope && !domain.IsPhantomField(r.TargetField) {
			issues = append(issues, domain.NewIssue(domain.SeverityWarn, domain.CategoryMappingUnresolved,
				r.TargetTable, r.TargetField, "",
				"Business field remains OUT_OF_SCOPE and needs explicit SME/default decision."))
		}
	}
	return issues
}

func keySet(rows []csvio.Row, col string) map[string]bool {
	set := make(map[string]bool)
	for _, r := range rows {
		if v := strings.TrimSpace(r[col]); v != "" {
			set[v] = true
		}
	}
	return set
}

// CheckTargetIntegrity verifies every child key in dir resolves to a parent
// key. Missing table files count as empty tables.
func CheckTargetIntegrity(dir string, rels []domain.Relationship) ([]domain.DataIssue, error) {
	cache := make(map[string][]csvio.Row)
	load := func(table string) ([]csvio.Row, error) {
		if rows, ok := cache[table]; ok {
			return rows, nil
		}
		rows, err := readOptional(filepath.Join(dir, table+".csv"))
		if err != nil {
			return nil, err
		}
		cache[table] = rows
		return rows, nil
	}

	var issues []domain.DataIssue
	for _, rel := range rels {
		children, err := load(rel.ChildTable)
		if err != nil {
			return nil, err
		}
		parents, err := load(rel.ParentTable)
		if err != nil {
			return nil, err
		}
		parentKeys := keySet(parents, rel.ParentField)
		var missing []string
		for k := range keySet(children, rel.ChildField) {
			if !parentKeys[k] {
				missing = append(missing, k)
			}
		}
		sort.Strings(missing)
		if len(missing) > MaxMissingKeys {
			missing = missing[:MaxMissingKeys]
		}
		for _, m := range missing {
			issues = append(issues, domain.NewIssue(domain.SeverityError, domain.CategoryTargetRefIntegrity,
				rel.ChildTable, rel.ChildField, m,
				fmt.Sprintf("Key '%s' not found in parent %s.%s.", m, rel.ParentTable, rel.ParentField)))
		}
	}
	return issues, nil
}
