// Package load pushes contract output CSVs into a target database and
// clears it again.
package load

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"nhs-dm-tool/internal/csvio"
	"nhs-dm-tool/internal/dialect"
	"nhs-dm-tool/internal/schema"
)

// Table outcomes.
const (
	StatusOK      = "OK"
	StatusPartial = "PARTIAL"
	StatusFailed  = "FAILED"
	StatusSkipped = "SKIPPED"
)

// Result reports one table. For Clean, Rows is the number deleted.
type Result struct {
	Table    string `json:"table"`
	Rows     int    `json:"rows"`
	Inserted int    `json:"inserted"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

// Loader writes one transaction per table so a failing table never rolls
// back the others.
type Loader struct {
	DB      *sql.DB
	Dialect dialect.Dialect
	Logger  zerolog.Logger

	// OnRow is called after each row is written.
	OnRow func()
}

func New(db *sql.DB, d dialect.Dialect, logger zerolog.Logger) *Loader {
	return &Loader{DB: db, Dialect: d, Logger: logger}
}

// CountRows sums the data rows of the CSVs Load would read, for progress
// bars.
func CountRows(tables []*schema.Table, dir string) int {
	files := indexFiles(dir)
	total := 0
	for _, t := range tables {
		if p, ok := files[strings.ToUpper(t.Name)]; ok {
			if tbl, err := csvio.Read(p); err == nil {
				total += len(tbl.Rows)
			}
		}
	}
	return total
}

func indexFiles(dir string) map[string]string {
	paths, _ := csvio.Glob(dir)
	files := make(map[string]string, len(paths))
	for _, p := range paths {
		files[strings.ToUpper(csvio.Stem(p))] = p
	}
	return files
}

// Load inserts dir/<table>.csv into each table, in the given order. Tables
// without a file are skipped.
func (l *Loader) Load(ctx context.Context, tables []*schema.Table, dir string) []Result {
	files := indexFiles(dir)
	results := make([]Result, 0, len(tables))
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{Table: t.Name, Status: StatusFailed, Error: err.Error()})
			continue
		}
		path, ok := files[strings.ToUpper(t.Name)]
		if !ok {
			results = append(results, Result{Table: t.Name, Status: StatusSkipped, Error: "no load file"})
			continue
		}
		res := l.loadTable(ctx, t, path)
		ev := l.Logger.Info()
		if res.Status != StatusOK {
			ev = l.Logger.Warn().Str("error", res.Error)
		}
		ev.Str("table", t.Name).Int("rows", res.Rows).Int("inserted", res.Inserted).Str("status", res.Status).Msg("Table loaded")
		results = append(results, res)
	}
	return results
}

// insertColumns pairs CSV headers with DB columns, keeping header order.
func insertColumns(t *schema.Table, header []string) (headers, cols []string, hasIdentity bool) {
	for _, h := range header {
		c := t.Column(h)
		if c == nil {
			continue
		}
		headers = append(headers, h)
		cols = append(cols, c.Name)
		hasIdentity = hasIdentity || c.IsAutoInc
	}
	return headers, cols, hasIdentity
}

func (l *Loader) loadTable(ctx context.Context, t *schema.Table, path string) (res Result) {
	res = Result{Table: t.Name}
	data, err := csvio.Read(path)
	if err != nil {
		res.Status, res.Error = StatusFailed, err.Error()
		return res
	}
	res.Rows = len(data.Rows)

	headers, cols, hasIdentity := insertColumns(t, data.Header)
	if len(cols) == 0 {
		res.Status, res.Error = StatusFailed, fmt.Sprintf("no columns of %s match the table", filepath.Base(path))
		return res
	}

	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		res.Status, res.Error = StatusFailed, err.Error()
		return res
	}
	fail := func(err error) Result {
		_ = tx.Rollback()
		res.Inserted = 0
		res.Status, res.Error = StatusFailed, err.Error()
		return res
	}

	if err := l.Dialect.BeforeTable(tx, t.Name, hasIdentity); err != nil {
		return fail(fmt.Errorf("before table hook: %w", err))
	}

	query := l.Dialect.InsertQuery(t.Name, cols)
	for i, row := range data.Rows {
		args := make([]any, len(headers))
		for j, h := range headers {
			if v := strings.TrimSpace(row[h]); v != "" {
				args[j] = row[h]
			}
		}
		r, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fail(fmt.Errorf("row %d: %w", i+1, err))
		}
		if n, err := r.RowsAffected(); err != nil || n > 0 {
			res.Inserted++
		}
		if l.OnRow != nil {
			l.OnRow()
		}
	}

	if err := l.Dialect.AfterTable(tx, t.Name, hasIdentity); err != nil {
		return fail(fmt.Errorf("after table hook: %w", err))
	}
	if err := tx.Commit(); err != nil {
		return fail(fmt.Errorf("commit: %w", err))
	}

	res.Status = StatusOK
	if res.Inserted < res.Rows {
		res.Status = StatusPartial
		res.Error = fmt.Sprintf("%d rows ignored as duplicates", res.Rows-res.Inserted)
	}
	return res
}

// Clean deletes every row of tables, children first. tables must already be
// in load order.
func (l *Loader) Clean(ctx context.Context, tables []*schema.Table) []Result {
	results := make([]Result, 0, len(tables))
	for i := len(tables) - 1; i >= 0; i-- {
		t := tables[i]
		res := l.cleanTable(ctx, t)
		if res.Status == StatusOK {
			if q := l.Dialect.ResetIdentityQuery(t.Name); q != "" {
				if _, err := l.DB.ExecContext(ctx, q); err != nil {
					l.Logger.Warn().Err(err).Str("table", t.Name).Msg("Identity reset failed")
				}
			}
		}
		l.Logger.Info().Str("table", t.Name).Int("deleted", res.Rows).Str("status", res.Status).Msg("Table cleaned")
		results = append(results, res)
	}
	return results
}

func (l *Loader) cleanTable(ctx context.Context, t *schema.Table) Result {
	res := Result{Table: t.Name}
	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		res.Status, res.Error = StatusFailed, err.Error()
		return res
	}
	r, err := tx.ExecContext(ctx, l.Dialect.DeleteQuery(t.Name))
	if err != nil {
		_ = tx.Rollback()
		res.Status, res.Error = StatusFailed, err.Error()
		return res
	}
	if err := tx.Commit(); err != nil {
		res.Status, res.Error = StatusFailed, err.Error()
		return res
	}
	if n, err := r.RowsAffected(); err == nil {
		res.Rows = int(n)
	}
	res.Status = StatusOK
	return res
}

// Failed reports whether any table failed.
func Failed(results []Result) bool {
	for _, r := range results {
		if r.Status == StatusFailed {
			return true
		}
	}
	return false
}
