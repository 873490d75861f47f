package schema_test

import (
	"context"
	"testing"

	"nhs-dm-tool/internal/dialect"
	"nhs-dm-tool/internal/domain"
	"nhs-dm-tool/internal/schema"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(tables []*schema.Table) []string {
	var out []string
	for _, t := range tables {
		out = append(out, t.Name)
	}
	return out
}

func TestSortByDependencies_Simple(t *testing.T) {
	tables := []*schema.Table{
		{Name: "LOAD_RTT_EVENTS", Dependencies: []string{"LOAD_RTT_PERIODS"}},
		{Name: "LOAD_RTT_PERIODS", Dependencies: []string{"LOAD_RTT_PATHWAYS"}},
		{Name: "LOAD_RTT_PATHWAYS", Dependencies: []string{}},
	}
	sorted := schema.SortByDependencies(tables)
	assert.Equal(t, []string{"LOAD_RTT_PATHWAYS", "LOAD_RTT_PERIODS", "LOAD_RTT_EVENTS"}, names(sorted))
}

func TestSortByDependencies_ComplexCircular(t *testing.T) {
	// A -> B -> C -> D -> E -> A, F -> E, G independent
	tables := []*schema.Table{
		{Name: "A", Dependencies: []string{"B"}},
		{Name: "B", Dependencies: []string{"C"}},
		{Name: "C", Dependencies: []string{"D"}},
		{Name: "D", Dependencies: []string{"E"}},
		{Name: "E", Dependencies: []string{"A"}},
		{Name: "F", Dependencies: []string{"E"}},
		{Name: "G", Dependencies: []string{}},
	}
	sorted := schema.SortByDependencies(tables)
	assert.Equal(t, []string{"G", "A", "E", "F", "D", "C", "B"}, names(sorted))
}

func TestSortByDependencies_TwoWayCycleBrokenFirst(t *testing.T) {
	tables := []*schema.Table{
		{Name: "X", Dependencies: []string{"Z", "Y"}},
		{Name: "Y", Dependencies: []string{"Z"}},
		{Name: "Z", Dependencies: []string{"Y"}},
	}
	sorted := schema.SortByDependencies(tables)
	assert.Equal(t, []string{"Y", "Z", "X"}, names(sorted))
}

func TestSortByDependencies_UnknownParentDoesNotBlock(t *testing.T) {
	tables := []*schema.Table{{Name: "LOAD_PMIIDS", Dependencies: []string{"LOAD_PMI"}}}
	assert.Equal(t, []string{"LOAD_PMIIDS"}, names(schema.SortByDependencies(tables)))
}

func TestLoadOrderUsesRelationships(t *testing.T) {
	tables := []*schema.Table{
		{Name: "load_opd_appointments"},
		{Name: "LOAD_OPDWAITLIST"},
		{Name: "LOAD_RTT_PERIODS"},
		{Name: "LOAD_RTT_PATHWAYS"},
		{Name: "LOAD_STAFF"},
	}
	sorted := schema.LoadOrder(tables, domain.TargetRelationships)
	assert.Equal(t, []string{"LOAD_RTT_PATHWAYS", "LOAD_STAFF", "LOAD_RTT_PERIODS", "LOAD_OPDWAITLIST", "load_opd_appointments"}, names(sorted))
	assert.Equal(t, []string{"LOAD_OPDWAITLIST"}, tables[0].Dependencies)
}

func TestFilter(t *testing.T) {
	tables := []*schema.Table{{Name: "LOAD_PMI"}, {Name: "LOAD_PMIIDS"}, {Name: "LOAD_STAFF"}}
	kept, missing := schema.Filter(tables, []string{"load_staff", "LOAD_PMI", "LOAD_NOPE"})
	assert.Equal(t, []string{"LOAD_PMI", "LOAD_STAFF"}, names(kept))
	assert.Equal(t, []string{"LOAD_NOPE"}, missing)
}

func TestAnalyze(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	d := dialect.GetDialect("mysql")
	mock.ExpectQuery(d.GetTablesQuery()).WithArgs("nhs").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME"}).AddRow("LOAD_PMIIDS").AddRow("LOAD_PMI"))

	cols := []string{"TABLE_NAME", "COLUMN_NAME", "DATA_TYPE", "COLUMN_TYPE", "CHARACTER_MAXIMUM_LENGTH",
		"IS_NULLABLE", "COLUMN_KEY", "EXTRA", "IS_UNIQUE", "COLUMN_COMMENT"}
	mock.ExpectQuery(d.GetColumnsQuery()).WithArgs("nhs").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("LOAD_PMI", "record_number", "INT", "int(11)", nil, "NO", "PRI", "auto_increment", nil, "").
			AddRow("LOAD_PMI", "nhs_number", "varchar", "varchar(10)", "10", "YES", "UNI", "", "UNIQUE", "NHS number").
			AddRow("LOAD_PMIIDS", "loadpmi_record_number", "int", "int(11)", nil, "YES", "MUL", "", nil, "").
			AddRow("LOAD_GONE", "x", "int", "int(11)", nil, "YES", "", "", nil, ""))

	mock.ExpectQuery(d.GetForeignKeysQuery()).WithArgs("nhs").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME", "CONSTRAINT_NAME", "COLUMN_NAME", "REFERENCED_TABLE_NAME", "REFERENCED_COLUMN_NAME"}).
			AddRow("LOAD_PMIIDS", "fk_pmi", "loadpmi_record_number", "LOAD_PMI", "record_number").
			AddRow("LOAD_PMI", "fk_self", "merged_into", "LOAD_PMI", "record_number").
			AddRow("LOAD_PMIIDS", "fk_ext", "site", "EXTERNAL", "id"))

	tables, err := schema.Analyze(context.Background(), db, d, "nhs")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Equal(t, []string{"LOAD_PMI", "LOAD_PMIIDS"}, names(tables))
	pmi, ids := tables[0], tables[1]

	require.Len(t, pmi.Columns, 2)
	rec := pmi.Column("RECORD_NUMBER")
	require.NotNil(t, rec)
	assert.True(t, rec.IsPK)
	assert.True(t, rec.IsAutoInc)
	assert.False(t, rec.IsNullable)
	assert.Equal(t, "int", rec.DataType)

	nhs := pmi.Column("nhs_number")
	assert.True(t, nhs.IsUnique)
	assert.Equal(t, 10, nhs.Length)
	assert.Equal(t, "NHS number", nhs.Comment)
	assert.Empty(t, pmi.Dependencies)

	assert.Equal(t, []string{"LOAD_PMI"}, ids.Dependencies)
	require.Len(t, ids.ForeignKeys, 1)
	assert.Equal(t, schema.ForeignKey{Column: "loadpmi_record_number", RefTable: "LOAD_PMI", RefColumn: "record_number"}, *ids.ForeignKeys[0])
}

func TestAnalyzeQueryError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	d := dialect.GetDialect("postgres")
	mock.ExpectQuery(d.GetTablesQuery()).WithArgs("public").WillReturnError(assert.AnError)

	_, err = schema.Analyze(context.Background(), db, d, "")
	assert.ErrorIs(t, err, assert.AnError)
}
