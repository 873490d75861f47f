// Package csvio reads and writes the header-keyed CSV files that every
// pipeline stage exchanges.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const bom = "\ufeff"

// Row is one data record keyed by header name.
type Row map[string]string

// FoldIndex maps lower-cased header names to the header they resolve to.
// When headers differ only by case the last one in file order wins.
type FoldIndex map[string]string

// NewFoldIndex indexes header in file order.
func NewFoldIndex(header []string) FoldIndex {
	ix := make(FoldIndex, len(header))
	for _, h := range header {
		ix[strings.ToLower(h)] = h
	}
	return ix
}

// Get returns r's value for field, trying the exact key before the header
// that matches case-insensitively. Missing fields yield "".
func (ix FoldIndex) Get(r Row, field string) string {
	if v, ok := r[field]; ok {
		return v
	}
	if h, ok := ix[strings.ToLower(field)]; ok {
		return r[h]
	}
	return ""
}

// Has reports whether the row carries field under its exact name.
func (r Row) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// Table is a parsed CSV file: header order plus rows.
type Table struct {
	Header []string
	Rows   []Row
}

// Fold indexes the table header for case-insensitive lookups.
func (t *Table) Fold() FoldIndex {
	return NewFoldIndex(t.Header)
}

// Column returns the trimmed values of col across all rows.
func (t *Table) Column(col string) []string {
	out := make([]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, strings.TrimSpace(r[col]))
	}
	return out
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

// Read parses the whole file at path. Short records are padded with blanks,
// surplus values beyond the header are dropped.
func Read(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := newReader(f)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	header = cleanHeader(header)

	t := &Table{Header: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		row := make(Row, len(header))
		for i, h := range header {
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ReadHeader returns only the first record of the file.
func ReadHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header, err := newReader(f).Read()
	if errors.Is(err, io.EOF) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	return cleanHeader(header), nil
}

func cleanHeader(h []string) []string {
	if len(h) > 0 {
		h[0] = strings.TrimPrefix(h[0], bom)
	}
	return h
}

// Write creates path (and its parent directory) with header followed by rows
// rendered in header order.
func Write(path string, header []string, rows []Row) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		rec := make([]string, len(header))
		for i, h := range header {
			rec[i] = r[h]
		}
		records = append(records, rec)
	}
	return WriteRecords(path, header, records)
}

// WriteRecords writes pre-ordered records under header.
func WriteRecords(path string, header []string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// Stem is the file name without directory or extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Glob returns the *.csv files of dir in lexical order. A missing directory
// yields no files and no error.
func Glob(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// Exists reports whether path is an existing regular file.
func Exists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
