// Package etl executes the mapping contract: it turns source CSVs into one
// CSV per LOAD_ target table.
package etl

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"nhs-dm-tool/internal/catalog"
	"nhs-dm-tool/internal/contract"
	"nhs-dm-tool/internal/crosswalk"
	"nhs-dm-tool/internal/csvio"
	"nhs-dm-tool/internal/domain"
)

// ImputeMode selects whether blanks are imputed.
type ImputeMode string

const (
	// Strict leaves unresolved values blank.
	Strict ImputeMode = "strict"
	// PreProduction applies fallback rules to blanks.
	PreProduction ImputeMode = "pre_production"
)

// ParseImputeMode accepts strict and pre_production, case-insensitively.
func ParseImputeMode(s string) (ImputeMode, error) {
	switch m := ImputeMode(strings.ToLower(strings.TrimSpace(s))); m {
	case Strict, PreProduction:
		return m, nil
	}
	return "", fmt.Errorf("unknown impute mode %q (want strict or pre_production)", s)
}

// Options are the input and output locations of one run.
type Options struct {
	SourceDir         string
	OutputDir         string
	ContractFile      string
	TargetCatalogFile string
	CrosswalkDir      string
	ImputeMode        ImputeMode
}

// TableStats summarises one written target table.
type TableStats struct {
	TargetTable      string
	SourceTable      string
	RowsWritten      int
	ColumnsTotal     int
	ColumnsPopulated int
	MappedFields     int
}

// Reject is a value a crosswalk refused to translate.
type Reject struct {
	domain.DataIssue
	SourceValue   string
	CrosswalkName string
}

// Result is everything a run produced besides the target CSVs.
type Result struct {
	Stats   []TableStats
	Issues  []domain.DataIssue
	Rejects []Reject
}

// Executor runs the contract against the source directory.
type Executor struct {
	Options Options
	Logger  zerolog.Logger
	// OnTable, when set, is called after each target table is processed.
	OnTable func(table string)
}

// New returns an executor for opts.
func New(opts Options, logger zerolog.Logger) *Executor {
	if opts.ImputeMode == "" {
		opts.ImputeMode = Strict
	}
	return &Executor{Options: opts, Logger: logger}
}

// Plan is the sorted list of target tables the contract covers.
func Plan(rows []domain.ContractRow) ([]string, map[string][]domain.ContractRow) {
	grouped := make(map[string][]domain.ContractRow)
	for _, r := range rows {
		grouped[r.TargetTable] = append(grouped[r.TargetTable], r)
	}
	return domain.SortedKeys(grouped), grouped
}

// Run reads the contract, target catalog and crosswalks, then builds every
// target table. A missing contract or target catalog is fatal. Failures
// inside one table become ETL_TABLE_FAILED issues.
func (e *Executor) Run(ctx context.Context) (*Result, error) {
	rows, err := contract.Read(e.Options.ContractFile)
	if err != nil {
		return nil, err
	}
	target, err := catalog.Load(e.Options.TargetCatalogFile)
	if err != nil {
		return nil, err
	}
	cws, err := crosswalk.Load(e.Options.CrosswalkDir)
	if err != nil {
		return nil, err
	}
	return e.Execute(ctx, rows, target, cws)
}

// Execute builds every target table from already loaded inputs.
func (e *Executor) Execute(ctx context.Context, rows []domain.ContractRow, target *catalog.Catalog, cws crosswalk.Set) (*Result, error) {
	res := &Result{}
	tables, grouped := Plan(rows)
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		headers := target.Fields(t)
		if len(headers) == 0 {
			res.Issues = append(res.Issues, domain.NewIssue(domain.SeverityWarn, domain.CategoryTargetHeaderMissing,
				t, "", "", "Target table headers not found in target schema catalog."))
			e.notify(t)
			continue
		}
		if err := e.runTable(t, headers, grouped[t], cws, res); err != nil {
			e.Logger.Error().Err(err).Str("table", t).Msg("Target table failed")
			res.Issues = append(res.Issues, domain.NewIssue(domain.SeverityError, domain.CategoryETLTableFailed,
				t, "", "", err.Error()))
		}
		e.notify(t)
	}
	e.Logger.Info().
		Int("tables", len(res.Stats)).
		Int("issues", len(res.Issues)).
		Int("rejects", len(res.Rejects)).
		Str("impute_mode", string(e.Options.ImputeMode)).
		Msg("Contract migration finished")
	return res, nil
}

func (e *Executor) notify(table string) {
	if e.OnTable != nil {
		e.OnTable(table)
	}
}

// BaseSource ranks the source tables referenced by source-backed rules and
// returns the most referenced one that has a CSV in sourceDir.
func BaseSource(rows []domain.ContractRow, sourceDir string) string {
	ranked := make(map[string]int)
	for _, r := range rows {
		src := strings.TrimSpace(r.PrimarySourceTable)
		switch domain.MappingClass(strings.TrimSpace(string(r.MappingClass))) {
		case domain.SurrogateETL, domain.OutOfScope, domain.ReferenceMasterFeed:
			continue
		}
		if src == "" {
			continue
		}
		ranked[src]++
	}
	choices := domain.SortedKeys(ranked)
	sort.SliceStable(choices, func(i, j int) bool { return ranked[choices[i]] > ranked[choices[j]] })
	for _, src := range choices {
		if csvio.Exists(filepath.Join(sourceDir, src+".csv")) {
			return src
		}
	}
	return ""
}

// fieldRules picks one rule per target field: the first seen, replaced by a
// later HIGH-confidence duplicate.
func fieldRules(rows []domain.ContractRow) map[string]domain.ContractRow {
	rules := make(map[string]domain.ContractRow, len(rows))
	for _, r := range rows {
		if _, ok := rules[r.TargetField]; !ok || strings.EqualFold(r.Confidence, domain.ConfidenceHigh) {
			rules[r.TargetField] = r
		}
	}
	return rules
}

func (e *Executor) sourceRows(table, base string, res *Result) (*csvio.Table, error) {
	if base != "" {
		tbl, err := csvio.Read(filepath.Join(e.Options.SourceDir, base+".csv"))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read source %s: %w", base, err)
		}
		if tbl != nil && len(tbl.Rows) > 0 {
			return tbl, nil
		}
	}
	res.Issues = append(res.Issues, domain.NewIssue(domain.SeverityWarn, domain.CategorySourceBaseUnresolved,
		table, "", "", fmt.Sprintf("No available base source table found. Using synthetic rows for %s.", table)))
	rows := make([]csvio.Row, syntheticRows)
	for i := range rows {
		rows[i] = csvio.Row{}
	}
	return &csvio.Table{Rows: rows}, nil
}

func (e *Executor) runTable(table string, headers []string, rows []domain.ContractRow, cws crosswalk.Set, res *Result) error {
	base := BaseSource(rows, e.Options.SourceDir)
	srcTbl, err := e.sourceRows(table, base, res)
	if err != nil {
		return err
	}
	src, fold := srcTbl.Rows, srcTbl.Fold()
	rules := fieldRules(rows)
	impute := e.Options.ImputeMode != Strict

	out := make([]csvio.Row, 0, len(src))
	for i, s := range src {
		rowNum := i + 1
		row := make(csvio.Row, len(headers))
		for _, h := range headers {
			row[h] = ""
		}
		for _, h := range headers {
			rule, ok := rules[h]
			if !ok {
				continue
			}
			v := fieldValue(h, rule, s, fold, rowNum)
			if domain.MappingClass(strings.TrimSpace(string(rule.MappingClass))) == domain.LookupTranslation {
				v = e.translate(table, h, v, rowNum, cws, res)
			}
			if impute && strings.TrimSpace(v) == "" {
				v = fallbackValue(h, s, rowNum)
			}
			row[h] = v
		}
		applyPlugins(table, row, s, rowNum)
		out = append(out, row)
	}

	if err := csvio.Write(filepath.Join(e.Options.OutputDir, table+".csv"), headers, out); err != nil {
		return fmt.Errorf("failed to write %s: %w", table, err)
	}

	stats := TableStats{
		TargetTable:  table,
		SourceTable:  base,
		RowsWritten:  len(out),
		ColumnsTotal: len(headers),
	}
	if base == "" {
		stats.SourceTable = "SYNTHETIC"
	}
	for _, h := range headers {
		if _, ok := rules[h]; ok {
			stats.MappedFields++
		}
		for _, r := range out {
			if strings.TrimSpace(r[h]) != "" {
				stats.ColumnsPopulated++
				break
			}
		}
	}
	res.Stats = append(res.Stats, stats)

	e.Logger.Debug().
		Str("table", table).
		Str("source", stats.SourceTable).
		Int("rows", stats.RowsWritten).
		Int("populated", stats.ColumnsPopulated).
		Msg("Target table written")
	return nil
}

func (e *Executor) translate(table, field, value string, rowNum int, cws crosswalk.Set, res *Result) string {
	name := crosswalk.InferName(table, field)
	if name == "" {
		return value
	}
	translated, outcome := cws.Apply(value, name)
	switch outcome {
	case crosswalk.NotApplicable:
		return value
	case crosswalk.Rejected:
		res.Rejects = append(res.Rejects, Reject{
			DataIssue: domain.NewIssue(domain.SeverityWarn, domain.CategoryCrosswalkReject, table, field, fmt.Sprint(rowNum),
				fmt.Sprintf("Value '%s' not found in crosswalk '%s'.", value, name)),
			SourceValue:   value,
			CrosswalkName: name,
		})
		return ""
	}
	return translated
}
