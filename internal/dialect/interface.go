// Package dialect hides the SQL differences between the target databases a
// migration can be loaded into.
package dialect

import "database/sql"

// Dialect abstracts database-specific operations.
type Dialect interface {
	// Metadata queries. Each takes the schema name as its single argument.
	GetTablesQuery() string
	GetColumnsQuery() string
	GetForeignKeysQuery() string

	// Table hooks relax constraints for the load transaction and restore
	// them afterwards. hasIdentity is set when explicit values are written
	// into an identity column.
	BeforeTable(tx *sql.Tx, tableName string, hasIdentity bool) error
	AfterTable(tx *sql.Tx, tableName string, hasIdentity bool) error

	// Query generation
	InsertQuery(table string, cols []string) string
	DeleteQuery(table string) string
	CountQuery(table string) string
	ResetIdentityQuery(table string) string // "" when not needed
	Placeholder(index int) string

	// Helpers
	Name() string
	NormalizeType(sqlType string) string
	GetSchemaName(input string) string
}
