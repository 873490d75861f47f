package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"nhs-dm-tool/internal/domain"
	"nhs-dm-tool/internal/quality"
)

var qualityCmd = &cobra.Command{
	Use:   "quality",
	Short: "Validate source extracts, the contract and migrated output",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuality(cmd.Context(), cfg)
	},
}

func init() {
	RootCmd.AddCommand(qualityCmd)
	qualityCmd.Flags().Int("min-rows", 0, "minimum source rows per core table")
	qualityCmd.Flags().String("target-dir", "", "directory of migrated CSVs to check (default output dir)")
	bindFlag(qualityCmd, "min-rows", "quality.min_rows")
	bindFlag(qualityCmd, "target-dir", "quality.target_dir")
}

func runQuality(_ context.Context, c *Config) error {
	issues, err := quality.Run(quality.Options{
		SourceDir:    c.Paths.SourceDir,
		TargetDir:    c.Quality.TargetDir,
		ContractFile: c.Paths.ContractFile,
		MinRows:      c.Quality.MinRows,
	}, log.Logger)
	if err != nil {
		return err
	}

	r, err := quality.WriteReports(c.Paths.ReportDir, c.Quality.MinRows, issues, time.Now())
	if err != nil {
		return err
	}

	fmt.Println("Enterprise migration quality pipeline completed.")
	fmt.Printf("Status: %s\n", r.Status)
	fmt.Printf("Errors: %d\n", r.SeverityCounts[string(domain.SeverityError)])
	fmt.Printf("Warnings: %d\n", r.SeverityCounts[string(domain.SeverityWarn)])
	fmt.Printf("Report: %s\n", filepath.Join(c.Paths.ReportDir, quality.ReportFile))
	fmt.Printf("Issues: %s\n", r.IssuesCSV)
	return nil
}
