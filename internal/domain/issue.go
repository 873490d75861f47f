package domain

import "sort"

// Severity of a DataIssue. ERROR counts gate releases, WARN is tallied only.
type Severity string

const (
	SeverityError Severity = "ERROR"
	SeverityWarn  Severity = "WARN"
	SeverityInfo  Severity = "INFO"
)

// Issue categories.
const (
	CategorySourceMissingTable   = "SOURCE_MISSING_TABLE"
	CategorySourceRowCount       = "SOURCE_ROW_COUNT"
	CategorySourceDuplicateMRN   = "SOURCE_DUPLICATE_MRN"
	CategorySourceInvalidNHS     = "SOURCE_INVALID_NHS"
	CategorySourceInvalidDate    = "SOURCE_INVALID_DATE"
	CategorySourceRefIntegrity   = "SOURCE_REF_INTEGRITY"
	CategoryMappingUnresolved    = "MAPPING_UNRESOLVED"
	CategoryTargetRefIntegrity   = "TARGET_REF_INTEGRITY"
	CategoryTargetHeaderMissing  = "TARGET_HEADER_MISSING"
	CategorySourceBaseUnresolved = "SOURCE_BASE_UNRESOLVED"
	CategoryCrosswalkReject      = "CROSSWALK_REJECT"
	CategoryETLTableFailed       = "ETL_TABLE_FAILED"
)

// IssueColumns is the CSV header of every issue report.
var IssueColumns = []string{"severity", "category", "table_name", "field_name", "record_id", "message"}

// DataIssue is an immutable finding produced by a check or the ETL executor.
type DataIssue struct {
	Severity  Severity `json:"severity"`
	Category  string   `json:"category"`
	TableName string   `json:"table_name"`
	FieldName string   `json:"field_name"`
	RecordID  string   `json:"record_id"`
	Message   string   `json:"message"`
}

// Record renders the issue in IssueColumns order.
func (i DataIssue) Record() []string {
	return []string{string(i.Severity), i.Category, i.TableName, i.FieldName, i.RecordID, i.Message}
}

// NewIssue builds a DataIssue.
func NewIssue(sev Severity, category, table, field, recordID, message string) DataIssue {
	return DataIssue{
		Severity:  sev,
		Category:  category,
		TableName: table,
		FieldName: field,
		RecordID:  recordID,
		Message:   message,
	}
}

// SeverityCounts tallies issues per severity. ERROR, WARN and INFO are always present.
func SeverityCounts(issues []DataIssue) map[string]int {
	counts := map[string]int{
		string(SeverityError): 0,
		string(SeverityWarn):  0,
		string(SeverityInfo):  0,
	}
	for _, i := range issues {
		counts[string(i.Severity)]++
	}
	return counts
}

// CategoryCounts tallies issues per category.
func CategoryCounts(issues []DataIssue) map[string]int {
	counts := make(map[string]int)
	for _, i := range issues {
		counts[i.Category]++
	}
	return counts
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RunStatus is PASS when no ERROR issue is present.
func RunStatus(issues []DataIssue) string {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return "FAIL"
		}
	}
	return "PASS"
}
