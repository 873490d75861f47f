// Package domain holds the vocabulary shared by every pipeline stage: mapping
// classes, contract rows, policy overrides and data issues.
package domain

import "errors"

// ErrMissingInput marks a required input artifact (catalog, contract, header
// directory) that a stage cannot run without.
var ErrMissingInput = errors.New("required input artifact missing")

// MappingClass is the treatment a target field receives in the contract.
type MappingClass string

const (
	DirectSource        MappingClass = "DIRECT_SOURCE"
	Derived             MappingClass = "DERIVED"
	LookupTranslation   MappingClass = "LOOKUP_TRANSLATION"
	SurrogateETL        MappingClass = "SURROGATE_ETL"
	ReferenceMasterFeed MappingClass = "REFERENCE_MASTER_FEED"
	OutOfScope          MappingClass = "OUT_OF_SCOPE"
)

// MappingClasses lists every class in contract documentation order.
var MappingClasses = []MappingClass{
	DirectSource,
	Derived,
	LookupTranslation,
	SurrogateETL,
	ReferenceMasterFeed,
	OutOfScope,
}

// Valid reports whether c is one of the six contract classes.
func (c MappingClass) Valid() bool {
	for _, k := range MappingClasses {
		if c == k {
			return true
		}
	}
	return false
}

// SourceBacked reports whether the class reads its value from a source field.
func (c MappingClass) SourceBacked() bool {
	return c == DirectSource || c == LookupTranslation || c == Derived
}

// Confidence levels written to the contract.
const (
	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)

// ContractRow is the authoritative mapping for one target field.
type ContractRow struct {
	TargetTable        string
	TargetField        string
	MappingClass       MappingClass
	PrimarySourceTable string
	PrimarySourceField string
	MappingRule        string
	Confidence         string
	Notes              string
}

// Key identifies the row inside a contract.
func (r ContractRow) Key() FieldKey {
	return FieldKey{Table: r.TargetTable, Field: r.TargetField}
}

// FieldKey is the composite (table, field) identity used across stages.
type FieldKey struct {
	Table string
	Field string
}

// PolicyOverride is a sparse patch over a ContractRow. Nil pointers leave the
// corresponding attribute untouched.
type PolicyOverride struct {
	TargetTable        string        `json:"target_table"`
	TargetField        string        `json:"target_field"`
	MappingClass       *MappingClass `json:"mapping_class,omitempty"`
	MappingRule        *string       `json:"mapping_rule,omitempty"`
	Confidence         *string       `json:"confidence,omitempty"`
	Notes              *string       `json:"notes,omitempty"`
	PrimarySourceTable *string       `json:"primary_source_table,omitempty"`
	PrimarySourceField *string       `json:"primary_source_field,omitempty"`
}

// Key identifies the contract row the override patches.
func (o PolicyOverride) Key() FieldKey {
	return FieldKey{Table: o.TargetTable, Field: o.TargetField}
}
