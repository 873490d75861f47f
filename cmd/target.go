package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"nhs-dm-tool/internal/dialect"
	"nhs-dm-tool/internal/domain"
	"nhs-dm-tool/internal/schema"
)

// target is an open connection to the active database plus its LOAD_
// tables in load order.
type target struct {
	DB      *sql.DB
	Dialect dialect.Dialect
	Tables  []*schema.Table
}

// openTarget connects to the active database, introspects its schema and
// keeps the tables selectTables picks.
func openTarget(ctx context.Context, c *Config, names []string) (*target, error) {
	dbc, err := c.ActiveDB()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(dbc.Driver, dbc.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}

	d := dialect.GetDialect(dbc.Driver)
	schemaName := dbc.Schema
	if schemaName == "" && d.Name() == "mysql" {
		db.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&schemaName)
	}
	log.Info().Str("database", dbc.Name).Str("dialect", d.Name()).Str("schema", schemaName).Msg("Connected")

	all, err := schema.Analyze(ctx, db, d, schemaName)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to analyze schema: %w", err)
	}
	tables, missing := selectTables(schema.LoadOrder(all, domain.TargetRelationships), names)
	if len(missing) > 0 {
		log.Warn().Strs("tables", missing).Msg("Requested tables not found")
	}
	if len(tables) == 0 && len(names) > 0 {
		db.Close()
		return nil, fmt.Errorf("no matching tables found for inputs: %v", names)
	}
	return &target{DB: db, Dialect: d, Tables: tables}, nil
}

// selectTables keeps the LOAD_ tables of ordered, or exactly the named
// tables of any prefix when names is set.
func selectTables(ordered []*schema.Table, names []string) ([]*schema.Table, []string) {
	if len(names) == 0 {
		return loadTables(ordered), nil
	}
	return schema.Filter(ordered, names)
}

func loadTables(tables []*schema.Table) []*schema.Table {
	var out []*schema.Table
	for _, t := range tables {
		if strings.HasPrefix(strings.ToUpper(t.Name), "LOAD_") {
			out = append(out, t)
		}
	}
	return out
}
