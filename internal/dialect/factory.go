package dialect

import "strings"

// GetDialect returns the Dialect for a database/sql driver name. Unknown
// drivers fall back to MySQL.
func GetDialect(driver string) Dialect {
	switch strings.ToLower(driver) {
	case "postgres":
		return &PostgresDialect{}
	case "sqlserver", "mssql":
		return &MSSQLDialect{}
	case "oracle":
		return &OracleDialect{}
	default:
		return &MysqlDialect{}
	}
}

var (
	_ Dialect = (*MysqlDialect)(nil)
	_ Dialect = (*PostgresDialect)(nil)
	_ Dialect = (*MSSQLDialect)(nil)
	_ Dialect = (*OracleDialect)(nil)
)
