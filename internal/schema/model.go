// Package schema introspects a target database and orders its tables for
// loading.
package schema

import "strings"

type Table struct {
	Name         string
	Columns      []*Column
	ForeignKeys  []*ForeignKey
	Dependencies []string // parent tables, loaded first
}

type Column struct {
	Name       string
	DataType   string
	Length     int
	IsNullable bool
	IsPK       bool
	IsAutoInc  bool
	IsUnique   bool
	Comment    string
}

type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// Column finds a column by name, ignoring case. Load files carry lowercase
// headers while Oracle reports uppercase names.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

func (t *Table) dependsOn(name string) bool {
	for _, d := range t.Dependencies {
		if strings.EqualFold(d, name) {
			return true
		}
	}
	return false
}
