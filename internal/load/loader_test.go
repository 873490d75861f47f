package load_test

import (
	"context"
	"path/filepath"
	"testing"

	"nhs-dm-tool/internal/csvio"
	"nhs-dm-tool/internal/dialect"
	"nhs-dm-tool/internal/load"
	"nhs-dm-tool/internal/schema"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func targetTables() []*schema.Table {
	return []*schema.Table{
		{Name: "LOAD_PMI", Columns: []*schema.Column{
			{Name: "record_number", IsPK: true},
			{Name: "NHS_NUMBER", IsNullable: true},
		}},
		{Name: "LOAD_PMIIDS", Columns: []*schema.Column{
			{Name: "record_number", IsPK: true},
			{Name: "loadpmi_record_number"},
		}, Dependencies: []string{"LOAD_PMI"}},
		{Name: "LOAD_STAFF", Columns: []*schema.Column{{Name: "record_number"}}},
	}
}

func newMock(t *testing.T) (*load.Loader, sqlmock.Sqlmock, dialect.Dialect) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	d := dialect.GetDialect("mysql")
	return load.New(db, d, zerolog.Nop()), mock, d
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, csvio.WriteRecords(filepath.Join(dir, "LOAD_PMI.csv"),
		[]string{"record_number", "nhs_number", "not_in_db"},
		[][]string{{"1", "9434765919", "x"}, {"2", " ", "y"}}))
	require.NoError(t, csvio.WriteRecords(filepath.Join(dir, "load_pmiids.csv"),
		[]string{"record_number", "loadpmi_record_number"},
		[][]string{{"1", "9"}}))

	l, mock, d := newMock(t)
	rows := 0
	l.OnRow = func() { rows++ }

	insertPMI := d.InsertQuery("LOAD_PMI", []string{"record_number", "NHS_NUMBER"})
	mock.ExpectBegin()
	mock.ExpectExec("SET FOREIGN_KEY_CHECKS = 0").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(insertPMI).WithArgs("1", "9434765919").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(insertPMI).WithArgs("2", nil).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SET FOREIGN_KEY_CHECKS = 1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec("SET FOREIGN_KEY_CHECKS = 0").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(d.InsertQuery("LOAD_PMIIDS", []string{"record_number", "loadpmi_record_number"})).
		WithArgs("1", "9").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	results := l.Load(context.Background(), targetTables(), dir)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, results, 3)
	assert.Equal(t, load.Result{Table: "LOAD_PMI", Rows: 2, Inserted: 1, Status: load.StatusPartial,
		Error: "1 rows ignored as duplicates"}, results[0])
	assert.Equal(t, load.StatusFailed, results[1].Status)
	assert.Contains(t, results[1].Error, "row 1:")
	assert.Equal(t, 0, results[1].Inserted)
	assert.Equal(t, load.Result{Table: "LOAD_STAFF", Status: load.StatusSkipped, Error: "no load file"}, results[2])
	assert.Equal(t, 2, rows)
	assert.True(t, load.Failed(results))
	assert.Equal(t, 3, load.CountRows(targetTables(), dir))
}

func TestLoadNoMatchingColumns(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, csvio.WriteRecords(filepath.Join(dir, "LOAD_STAFF.csv"), []string{"a", "b"}, [][]string{{"1", "2"}}))

	l, mock, _ := newMock(t)
	results := l.Load(context.Background(), targetTables()[2:], dir)
	require.NoError(t, mock.ExpectationsWereMet())
	require.Len(t, results, 1)
	assert.Equal(t, load.StatusFailed, results[0].Status)
	assert.Equal(t, 1, results[0].Rows)
}

func TestLoadCancelled(t *testing.T) {
	l, mock, _ := newMock(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := l.Load(ctx, targetTables(), t.TempDir())
	require.NoError(t, mock.ExpectationsWereMet())
	for _, r := range results {
		assert.Equal(t, load.StatusFailed, r.Status)
	}
}

func TestClean(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()
	d := dialect.GetDialect("sqlserver")
	l := load.New(db, d, zerolog.Nop())

	tables := targetTables()[:2]
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM LOAD_PMIIDS").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()
	mock.ExpectExec(d.ResetIdentityQuery("LOAD_PMIIDS")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM LOAD_PMI").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	results := l.Clean(context.Background(), tables)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, []load.Result{
		{Table: "LOAD_PMIIDS", Rows: 3, Status: load.StatusOK},
		{Table: "LOAD_PMI", Status: load.StatusFailed, Error: assert.AnError.Error()},
	}, results)
}
