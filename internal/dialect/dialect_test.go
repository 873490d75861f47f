package dialect_test

import (
	"testing"

	"nhs-dm-tool/internal/dialect"

	"github.com/stretchr/testify/assert"
)

func TestGetDialect(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{"mysql", "mysql"},
		{"postgres", "postgres"},
		{"sqlserver", "sqlserver"},
		{"mssql", "sqlserver"},
		{"oracle", "oracle"},
		{"unknown", "mysql"},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			assert.Equal(t, tt.want, dialect.GetDialect(tt.driver).Name())
		})
	}
}

func TestInsertQuery(t *testing.T) {
	cols := []string{"record_number", "nhs_number"}
	assert.Equal(t, "INSERT IGNORE INTO LOAD_PMI (record_number, nhs_number) VALUES (?, ?)",
		dialect.GetDialect("mysql").InsertQuery("LOAD_PMI", cols))
	assert.Equal(t, "INSERT INTO LOAD_PMI (record_number, nhs_number) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		dialect.GetDialect("postgres").InsertQuery("LOAD_PMI", cols))
	assert.Equal(t, "INSERT INTO LOAD_PMI (record_number, nhs_number) VALUES (@p1, @p2)",
		dialect.GetDialect("sqlserver").InsertQuery("LOAD_PMI", cols))
	assert.Equal(t, "INSERT INTO LOAD_PMI (record_number, nhs_number) VALUES (:1, :2)",
		dialect.GetDialect("oracle").InsertQuery("LOAD_PMI", cols))
}

func TestSchemaNameDefaults(t *testing.T) {
	assert.Equal(t, "public", dialect.GetDialect("postgres").GetSchemaName(""))
	assert.Equal(t, "dbo", dialect.GetDialect("sqlserver").GetSchemaName(""))
	assert.Equal(t, "USER", dialect.GetDialect("oracle").GetSchemaName(""))
	assert.Equal(t, "nhs", dialect.GetDialect("mysql").GetSchemaName("nhs"))
}

func TestNormalizeType(t *testing.T) {
	assert.Equal(t, "int", dialect.GetDialect("postgres").NormalizeType("INT4"))
	assert.Equal(t, "varchar", dialect.GetDialect("sqlserver").NormalizeType("nvarchar"))
	assert.Equal(t, "string", dialect.GetDialect("oracle").NormalizeType("VARCHAR2"))
	assert.Equal(t, "datetime", dialect.GetDialect("oracle").NormalizeType("DATE"))
}

func TestResetIdentityQuery(t *testing.T) {
	assert.Empty(t, dialect.GetDialect("postgres").ResetIdentityQuery("LOAD_PMI"))
	assert.Contains(t, dialect.GetDialect("sqlserver").ResetIdentityQuery("LOAD_PMI"), "DBCC CHECKIDENT ('LOAD_PMI', RESEED, 0)")
}
