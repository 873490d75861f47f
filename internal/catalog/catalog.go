// Package catalog models the source and target schema catalogs.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"nhs-dm-tool/internal/csvio"
	"nhs-dm-tool/internal/domain"
)

// SchemaField is one catalog entry.
type SchemaField struct {
	TableName       string
	FieldName       string
	Size            string
	DataType        string
	Description     string
	MandatoryHint   string
	ParseConfidence string
}

// Catalog groups fields by table. Table order and field order follow first
// appearance; a field repeated within a table is kept once.
type Catalog struct {
	tables []string
	fields map[string][]string
	seen   map[domain.FieldKey]bool
	rows   []SchemaField
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		fields: make(map[string][]string),
		seen:   make(map[domain.FieldKey]bool),
	}
}

// Add appends f unless its (table, field) pair is already present or either
// name is blank.
func (c *Catalog) Add(f SchemaField) {
	if f.TableName == "" || f.FieldName == "" {
		return
	}
	key := domain.FieldKey{Table: f.TableName, Field: f.FieldName}
	if c.seen[key] {
		return
	}
	c.seen[key] = true
	if _, ok := c.fields[f.TableName]; !ok {
		c.tables = append(c.tables, f.TableName)
	}
	c.fields[f.TableName] = append(c.fields[f.TableName], f.FieldName)
	c.rows = append(c.rows, f)
}

// AddTable registers a table with the given field order. Used for header-only
// catalogs where a table may legitimately have no fields.
func (c *Catalog) AddTable(table string, fields []string) {
	if _, ok := c.fields[table]; !ok {
		c.tables = append(c.tables, table)
		c.fields[table] = []string{}
	}
	for _, f := range fields {
		c.Add(SchemaField{TableName: table, FieldName: f})
	}
}

// Tables returns table names in insertion order.
func (c *Catalog) Tables() []string {
	return c.tables
}

// Fields returns the ordered fields of table.
func (c *Catalog) Fields(table string) []string {
	return c.fields[table]
}

// HasTable reports whether table is in the catalog.
func (c *Catalog) HasTable(table string) bool {
	_, ok := c.fields[table]
	return ok
}

// Rows returns every entry in insertion order.
func (c *Catalog) Rows() []SchemaField {
	return c.rows
}

// TableRows returns the entries of one table.
func (c *Catalog) TableRows(table string) []SchemaField {
	var out []SchemaField
	for _, r := range c.rows {
		if r.TableName == table {
			out = append(out, r)
		}
	}
	return out
}

// FieldCount is the number of distinct (table, field) pairs.
func (c *Catalog) FieldCount() int {
	return len(c.rows)
}

// Load reads a catalog CSV with at least table_name and field_name columns.
// Optional columns populate the remaining SchemaField attributes.
func Load(path string) (*Catalog, error) {
	tbl, err := csvio.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("catalog %s: %w", path, domain.ErrMissingInput)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", path, err)
	}

	c := New()
	for _, r := range tbl.Rows {
		c.Add(SchemaField{
			TableName:       strings.TrimSpace(r["table_name"]),
			FieldName:       strings.TrimSpace(r["field_name"]),
			Size:            r["size"],
			DataType:        firstNonBlank(r["data_type"], r["data_element"]),
			Description:     r["description"],
			MandatoryHint:   r["mandatory_hint"],
			ParseConfidence: r["parse_confidence"],
		})
	}
	return c, nil
}

// LoadHeaderDir builds a catalog from the header rows of every *.csv file in
// dir, one table per file stem, tables in lexical file order.
func LoadHeaderDir(dir string) (*Catalog, error) {
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("header directory %s: %w", dir, domain.ErrMissingInput)
	}
	files, err := csvio.Glob(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	c := New()
	for _, p := range files {
		header, err := csvio.ReadHeader(p)
		if err != nil {
			return nil, err
		}
		c.AddTable(csvio.Stem(p), header)
	}
	return c, nil
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
