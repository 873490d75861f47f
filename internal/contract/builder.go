package contract

import (
	"github.com/rs/zerolog"

	"nhs-dm-tool/internal/catalog"
	"nhs-dm-tool/internal/domain"
	"nhs-dm-tool/internal/report"
)

// SummaryFile is written next to the contract CSV's reports.
const SummaryFile = "mapping_contract_summary.json"

// Contract is the classified target schema plus its running tallies.
type Contract struct {
	Rows           []domain.ContractRow
	ClassCounts    map[string]int
	TableBreakdown map[string]map[string]int
	OverrideCount  int
	TableCount     int
}

// Summary is the JSON document describing a contract.
type Summary struct {
	TargetTableCount          int                       `json:"target_table_count"`
	TargetFieldCount          int                       `json:"target_field_count"`
	MappingClassCounts        map[string]int            `json:"mapping_class_counts"`
	PolicyOverrideCount       int                       `json:"policy_override_count"`
	TargetTableClassBreakdown map[string]map[string]int `json:"target_table_class_breakdown"`
}

// Builder classifies every target field and applies policy overrides.
type Builder struct {
	Classifier *Classifier
	Policy     *Policy
	Logger     zerolog.Logger
}

// NewBuilder returns a builder with an empty policy.
func NewBuilder(cls *Classifier, logger zerolog.Logger) *Builder {
	return &Builder{Classifier: cls, Policy: &Policy{}, Logger: logger}
}

// Build walks the target catalog in table then field order.
func (b *Builder) Build(target *catalog.Catalog) *Contract {
	c := &Contract{
		ClassCounts:    make(map[string]int),
		TableBreakdown: make(map[string]map[string]int),
		TableCount:     len(target.Tables()),
	}
	for _, t := range target.Tables() {
		c.TableBreakdown[t] = make(map[string]int)
		for _, f := range target.Fields(t) {
			row := b.Classifier.Classify(t, f)
			c.Rows = append(c.Rows, row)
			c.tally(row, 1)
		}
	}

	idx := b.policy().Index()
	c.OverrideCount = len(idx)
	for i := range c.Rows {
		o, ok := idx[c.Rows[i].Key()]
		if !ok {
			continue
		}
		before := c.Rows[i]
		Apply(&c.Rows[i], o)
		if before.MappingClass != c.Rows[i].MappingClass {
			c.tally(before, -1)
			c.tally(c.Rows[i], 1)
			b.Logger.Debug().
				Str("table", before.TargetTable).
				Str("field", before.TargetField).
				Str("from", string(before.MappingClass)).
				Str("to", string(c.Rows[i].MappingClass)).
				Msg("Policy override changed mapping class")
		}
	}

	b.Logger.Info().
		Int("tables", c.TableCount).
		Int("fields", len(c.Rows)).
		Int("overrides", c.OverrideCount).
		Msg("Mapping contract built")
	return c
}

func (b *Builder) policy() *Policy {
	if b.Policy == nil {
		return &Policy{}
	}
	return b.Policy
}

func (c *Contract) tally(row domain.ContractRow, delta int) {
	cls := string(row.MappingClass)
	c.ClassCounts[cls] += delta
	tb, ok := c.TableBreakdown[row.TargetTable]
	if !ok {
		tb = make(map[string]int)
		c.TableBreakdown[row.TargetTable] = tb
	}
	tb[cls] += delta
}

// Summary renders the tallies for mapping_contract_summary.json.
func (c *Contract) Summary() Summary {
	return Summary{
		TargetTableCount:          c.TableCount,
		TargetFieldCount:          len(c.Rows),
		MappingClassCounts:        c.ClassCounts,
		PolicyOverrideCount:       c.OverrideCount,
		TargetTableClassBreakdown: c.TableBreakdown,
	}
}

// WriteSummary writes the summary JSON to path.
func (c *Contract) WriteSummary(path string) error {
	return report.WriteJSON(path, c.Summary())
}

// Unresolved returns the OUT_OF_SCOPE rows that are not parse artefacts.
func (c *Contract) Unresolved() []domain.ContractRow {
	var out []domain.ContractRow
	for _, r := range c.Rows {
		if r.MappingClass == domain.OutOfScope && !domain.IsPhantomField(r.TargetField) {
			out = append(out, r)
		}
	}
	return out
}
