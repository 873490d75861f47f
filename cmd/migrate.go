package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"nhs-dm-tool/internal/catalog"
	"nhs-dm-tool/internal/contract"
	"nhs-dm-tool/internal/crosswalk"
	"nhs-dm-tool/internal/etl"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run the mapping contract against the source extracts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd.Context(), cfg)
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().String("impute-mode", "", "strict or pre_production")
	migrateCmd.Flags().String("target-catalog-file", "", "target schema catalog CSV")
	migrateCmd.Flags().String("crosswalk-dir", "", "directory of crosswalk CSVs")
	bindFlag(migrateCmd, "impute-mode", "etl.impute_mode")
	bindFlag(migrateCmd, "target-catalog-file", "paths.target_catalog")
	bindFlag(migrateCmd, "crosswalk-dir", "paths.crosswalk_dir")
}

func runMigrate(ctx context.Context, c *Config) error {
	mode, err := etl.ParseImputeMode(c.ETL.ImputeMode)
	if err != nil {
		return err
	}
	opts := etl.Options{
		SourceDir:         c.Paths.SourceDir,
		OutputDir:         c.Paths.OutputDir,
		ContractFile:      c.Paths.ContractFile,
		TargetCatalogFile: c.Paths.TargetCatalog,
		CrosswalkDir:      c.Paths.CrosswalkDir,
		ImputeMode:        mode,
	}

	rows, err := contract.Read(opts.ContractFile)
	if err != nil {
		return err
	}
	target, err := catalog.Load(opts.TargetCatalogFile)
	if err != nil {
		return err
	}
	cws, err := crosswalk.Load(opts.CrosswalkDir)
	if err != nil {
		return err
	}

	tables, _ := etl.Plan(rows)
	log.Info().Int("tables", len(tables)).Str("impute_mode", string(mode)).Msg("Starting contract migration")

	ex := etl.New(opts, log.Logger)
	bar, stop := startBar("Migrating", len(tables))
	ex.OnTable = func(string) { bar.Incr() }
	res, err := ex.Execute(ctx, rows, target, cws)
	stop()
	if err != nil {
		return err
	}

	r, err := etl.WriteReports(c.Paths.ReportDir, opts, res, time.Now())
	if err != nil {
		return err
	}

	fmt.Println("Contract-driven migration pipeline completed.")
	fmt.Printf("Status: %s\n", r.Status)
	fmt.Printf("Tables written: %d\n", r.TablesWritten)
	fmt.Printf("Output directory: %s\n", opts.OutputDir)
	fmt.Printf("Report: %s\n", filepath.Join(c.Paths.ReportDir, etl.ReportFile))
	return nil
}
