// Package contract builds the authoritative mapping contract: one classified
// row per target field, patched by explicit policy overrides.
package contract

import (
	"fmt"
	"regexp"
	"strings"

	"nhs-dm-tool/internal/catalog"
	"nhs-dm-tool/internal/domain"
	"nhs-dm-tool/internal/semantic"
)

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]`)

// Normalize strips a name to lowercase alphanumerics and applies the field
// alias table.
func Normalize(name string) string {
	cleaned := strings.ToLower(nonAlnum.ReplaceAllString(name, ""))
	if a, ok := fieldAlias[cleaned]; ok {
		return a
	}
	return cleaned
}

// FindSourceField returns the first candidate whose normalized name equals
// the target's, else the first whose normalized name contains or is contained
// by it.
func FindSourceField(targetField string, candidates []string) (string, bool) {
	tf := Normalize(targetField)
	for _, sf := range candidates {
		if Normalize(sf) == tf {
			return sf, true
		}
	}
	if tf == "" {
		return "", false
	}
	for _, sf := range candidates {
		ns := Normalize(sf)
		if ns != "" && (strings.Contains(ns, tf) || strings.Contains(tf, ns)) {
			return sf, true
		}
	}
	return "", false
}

// IsSurrogate reports whether field is a generated key or system column.
func IsSurrogate(field string) bool {
	f := strings.ToLower(field)
	switch {
	case domain.SystemFields[f]:
		return true
	case strings.Contains(f, "record_number"), strings.Contains(f, "recno"):
		return true
	case strings.HasPrefix(f, "load") && strings.Contains(f, "record"):
		return true
	}
	return false
}

func containsAny(s string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// ClassifyBusiness picks the class of a source-backed target field from its
// name, returning the class and its explanatory note.
func ClassifyBusiness(targetTable, targetField string) (domain.MappingClass, string) {
	f := strings.ToLower(targetField)
	switch {
	case containsAny(f, lookupHints):
		return domain.LookupTranslation, noteLookup
	case containsAny(f, derivedHints):
		return domain.Derived, noteDerived
	case strings.HasSuffix(targetTable, "_ARCHIVE"):
		return domain.Derived, noteArchive
	default:
		return domain.DirectSource, noteDirect
	}
}

// Classifier assigns a mapping class to each target field.
type Classifier struct {
	Source         *catalog.Catalog
	PrimarySources map[string][]string
	// Nearest, when set, annotates unresolved rows with the closest semantic
	// candidate. It never changes the class.
	Nearest *semantic.Controller
}

// NewClassifier uses the built-in primary source lists.
func NewClassifier(src *catalog.Catalog) *Classifier {
	return &Classifier{Source: src, PrimarySources: PrimarySources}
}

func (c *Classifier) primarySources(targetTable string) []string {
	var out []string
	for _, s := range c.PrimarySources[targetTable] {
		if c.Source.HasTable(s) {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return c.Source.Tables()
	}
	return out
}

func (c *Classifier) search(targetField string, tables []string) (string, string, bool) {
	for _, t := range tables {
		if sf, ok := FindSourceField(targetField, c.Source.Fields(t)); ok {
			return t, sf, true
		}
	}
	return "", "", false
}

// Classify returns the contract row for one target field. First match wins:
// phantom field, surrogate key, reference table, curated source search,
// catalog-wide search, then derivation heuristics.
func (c *Classifier) Classify(targetTable, targetField string) domain.ContractRow {
	row := domain.ContractRow{
		TargetTable: targetTable,
		TargetField: targetField,
		Confidence:  domain.ConfidenceHigh,
	}
	f := strings.ToLower(targetField)

	switch {
	case domain.PhantomFields[f]:
		row.MappingClass = domain.OutOfScope
		row.MappingRule = rulePhantom
		return row
	case IsSurrogate(targetField):
		row.MappingClass = domain.SurrogateETL
		row.MappingRule = ruleSurrogate
		return row
	case domain.ReferenceTargetTables[targetTable]:
		row.MappingClass = domain.ReferenceMasterFeed
		row.MappingRule = ruleReference
		return row
	}

	if st, sf, ok := c.search(targetField, c.primarySources(targetTable)); ok {
		c.sourceBacked(&row, st, sf)
		return row
	}
	if st, sf, ok := c.search(targetField, c.Source.Tables()); ok {
		c.sourceBacked(&row, st, sf)
		row.Confidence = domain.ConfidenceMedium
		return row
	}

	switch {
	case strings.HasSuffix(targetTable, "_ARCHIVE") || strings.Contains(strings.ToLower(targetTable), "archive"):
		row.MappingClass = domain.Derived
		row.MappingRule = ruleArchive
		row.Notes = noteArchiveSyn
		row.Confidence = domain.ConfidenceMedium
	case containsAny(f, derivedHints):
		row.MappingClass = domain.Derived
		row.MappingRule = ruleDerived
		row.Notes = noteDerivedSyn
		row.Confidence = domain.ConfidenceMedium
	default:
		row.MappingClass = domain.OutOfScope
		row.MappingRule = ruleUnresolved
		row.Notes = noteUnresolved + c.nearestHint(targetTable, targetField)
		row.Confidence = domain.ConfidenceLow
	}
	return row
}

func (c *Classifier) sourceBacked(row *domain.ContractRow, st, sf string) {
	row.PrimarySourceTable = st
	row.PrimarySourceField = sf
	row.MappingClass, row.Notes = ClassifyBusiness(row.TargetTable, row.TargetField)
	row.MappingRule = fmt.Sprintf("%s.%s -> %s.%s", st, sf, row.TargetTable, row.TargetField)
}

func (c *Classifier) nearestHint(targetTable, targetField string) string {
	if c.Nearest == nil {
		return ""
	}
	best := c.Nearest.Resolve(targetTable, targetField)
	if !best.Found() || best.Score < semantic.EscalationThreshold {
		return ""
	}
	return fmt.Sprintf(" Nearest semantic candidate: %s.%s (%.3f).", best.Field.TableName, best.Field.FieldName, best.Score)
}
