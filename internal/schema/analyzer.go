package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"nhs-dm-tool/internal/dialect"
	"nhs-dm-tool/internal/domain"
)

// Analyze reads tables, columns and foreign keys of schemaName and returns
// the tables parents-first.
func Analyze(ctx context.Context, db *sql.DB, d dialect.Dialect, schemaName string) ([]*Table, error) {
	target := d.GetSchemaName(schemaName)

	// Keys are uppercased so Oracle's folded names still match.
	tableMap := make(map[string]*Table)
	var tables []*Table

	rows, err := db.QueryContext(ctx, d.GetTablesQuery(), target)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		t := &Table{Name: name, Dependencies: []string{}}
		tableMap[strings.ToUpper(name)] = t
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}

	if err := scanColumns(ctx, db, d, target, tableMap); err != nil {
		return nil, err
	}
	if err := scanForeignKeys(ctx, db, d, target, tableMap); err != nil {
		return nil, err
	}
	return SortByDependencies(tables), nil
}

func scanColumns(ctx context.Context, db *sql.DB, d dialect.Dialect, target string, tableMap map[string]*Table) error {
	colRows, err := db.QueryContext(ctx, d.GetColumnsQuery(), target)
	if err != nil {
		return fmt.Errorf("failed to query columns: %w", err)
	}
	defer colRows.Close()

	for colRows.Next() {
		var tName, cName, dType, cType, cLen, isNull, cKey, extra, isUnique, comment sql.NullString
		if err := colRows.Scan(&tName, &cName, &dType, &cType, &cLen, &isNull, &cKey, &extra, &isUnique, &comment); err != nil {
			return fmt.Errorf("failed to scan column (table: %s): %w", tName.String, err)
		}
		if !tName.Valid || !cName.Valid {
			continue
		}
		t, ok := tableMap[strings.ToUpper(tName.String)]
		if !ok {
			continue
		}

		extraLower := strings.ToLower(extra.String)
		col := &Column{
			Name:       cName.String,
			DataType:   d.NormalizeType(dType.String),
			IsNullable: strings.EqualFold(isNull.String, "YES"),
			IsPK:       strings.Contains(cKey.String, "PRI"),
			IsAutoInc: strings.Contains(extraLower, "auto_increment") ||
				strings.Contains(extraLower, "identity") ||
				strings.Contains(extraLower, "nextval"),
			IsUnique: strings.Contains(isUnique.String, "UNIQUE"),
			Comment:  comment.String,
		}
		if cLen.Valid && cLen.String != "" {
			var length float64
			if _, err := fmt.Sscanf(cLen.String, "%g", &length); err == nil {
				col.Length = int(length)
			}
		}
		t.Columns = append(t.Columns, col)
	}
	if err := colRows.Err(); err != nil {
		return fmt.Errorf("error iterating columns: %w", err)
	}
	return nil
}

// scanForeignKeys records only references between known tables; self
// references never order a load.
func scanForeignKeys(ctx context.Context, db *sql.DB, d dialect.Dialect, target string, tableMap map[string]*Table) error {
	fkRows, err := db.QueryContext(ctx, d.GetForeignKeysQuery(), target)
	if err != nil {
		return fmt.Errorf("failed to query foreign keys: %w", err)
	}
	defer fkRows.Close()

	for fkRows.Next() {
		var tName, cConst, cName, rTable, rCol sql.NullString
		if err := fkRows.Scan(&tName, &cConst, &cName, &rTable, &rCol); err != nil {
			return fmt.Errorf("failed to scan foreign key: %w", err)
		}
		if !tName.Valid || !rTable.Valid || strings.EqualFold(tName.String, rTable.String) {
			continue
		}
		t, ok := tableMap[strings.ToUpper(tName.String)]
		ref, refOK := tableMap[strings.ToUpper(rTable.String)]
		if !ok || !refOK {
			continue
		}
		if !t.dependsOn(ref.Name) {
			t.Dependencies = append(t.Dependencies, ref.Name)
		}
		t.ForeignKeys = append(t.ForeignKeys, &ForeignKey{
			Column:    cName.String,
			RefTable:  ref.Name,
			RefColumn: rCol.String,
		})
	}
	if err := fkRows.Err(); err != nil {
		return fmt.Errorf("error iterating foreign keys: %w", err)
	}
	return nil
}

// AddRelationships adds the known LOAD_ key chains as dependencies. Targets
// are often created without declared foreign keys.
func AddRelationships(tables []*Table, rels []domain.Relationship) {
	byName := make(map[string]*Table, len(tables))
	for _, t := range tables {
		byName[strings.ToUpper(t.Name)] = t
	}
	for _, r := range rels {
		child, ok := byName[strings.ToUpper(r.ChildTable)]
		parent, pok := byName[strings.ToUpper(r.ParentTable)]
		if !ok || !pok || child == parent || child.dependsOn(parent.Name) {
			continue
		}
		child.Dependencies = append(child.Dependencies, parent.Name)
	}
}

// LoadOrder returns tables parents-first using both declared foreign keys
// and rels.
func LoadOrder(tables []*Table, rels []domain.Relationship) []*Table {
	AddRelationships(tables, rels)
	return SortByDependencies(tables)
}

// Filter keeps the named tables, in their current order, and returns the
// names that matched nothing.
func Filter(tables []*Table, names []string) (kept []*Table, missing []string) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.ToUpper(strings.TrimSpace(n))] = true
	}
	found := make(map[string]bool)
	for _, t := range tables {
		if want[strings.ToUpper(t.Name)] {
			kept = append(kept, t)
			found[strings.ToUpper(t.Name)] = true
		}
	}
	for _, n := range names {
		if !found[strings.ToUpper(strings.TrimSpace(n))] {
			missing = append(missing, n)
		}
	}
	return kept, missing
}
