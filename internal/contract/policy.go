package contract

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"nhs-dm-tool/internal/domain"
	"nhs-dm-tool/internal/report"
)

// Policy is the override document read from the policy JSON file.
type Policy struct {
	Overrides []domain.PolicyOverride `json:"overrides"`
}

// LoadPolicy reads the policy file. A missing file is an empty policy.
func LoadPolicy(path string) (*Policy, error) {
	if path == "" {
		return &Policy{}, nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return &Policy{}, nil
	}
	var p Policy
	if err := report.ReadJSON(path, &p); err != nil {
		return nil, err
	}
	for i, o := range p.Overrides {
		if o.MappingClass != nil && !o.MappingClass.Valid() {
			return nil, fmt.Errorf("override %d (%s.%s): unknown mapping_class %q", i, o.TargetTable, o.TargetField, *o.MappingClass)
		}
	}
	return &p, nil
}

// Index keys the overrides by target field. Entries without both table and
// field are ignored and a later entry replaces an earlier one.
func (p *Policy) Index() map[domain.FieldKey]domain.PolicyOverride {
	idx := make(map[domain.FieldKey]domain.PolicyOverride, len(p.Overrides))
	for _, o := range p.Overrides {
		if o.TargetTable == "" || o.TargetField == "" {
			continue
		}
		idx[o.Key()] = o
	}
	return idx
}

// Apply patches row with every attribute the override sets.
func Apply(row *domain.ContractRow, o domain.PolicyOverride) {
	if o.MappingClass != nil {
		row.MappingClass = *o.MappingClass
	}
	if o.MappingRule != nil {
		row.MappingRule = *o.MappingRule
	}
	if o.Confidence != nil {
		row.Confidence = *o.Confidence
	}
	if o.Notes != nil {
		row.Notes = *o.Notes
	}
	if o.PrimarySourceTable != nil && *o.PrimarySourceTable != "" {
		row.PrimarySourceTable = *o.PrimarySourceTable
	}
	if o.PrimarySourceField != nil && *o.PrimarySourceField != "" {
		row.PrimarySourceField = *o.PrimarySourceField
	}
}
