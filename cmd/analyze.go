package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"nhs-dm-tool/internal/catalog"
	"nhs-dm-tool/internal/domain"
	"nhs-dm-tool/internal/semantic"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score every target field against the source catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd.Context(), cfg)
	},
}

func init() {
	RootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().String("source-catalog", "", "source schema catalog CSV")
	analyzeCmd.Flags().String("target-headers-dir", "", "directory of target header CSVs")
	bindFlag(analyzeCmd, "source-catalog", "paths.source_catalog")
	bindFlag(analyzeCmd, "target-headers-dir", "paths.target_headers_dir")
}

func runAnalyze(_ context.Context, c *Config) error {
	src, err := catalog.Load(c.Paths.SourceCatalog)
	if err != nil {
		return err
	}
	target, err := catalog.LoadHeaderDir(c.Paths.TargetHeadersDir)
	if err != nil {
		return err
	}

	m := semantic.NewAnalyzer(src, log.Logger).Run(target)
	matrixPath := filepath.Join(c.Paths.ReportDir, semantic.MatrixFile)
	summaryPath := filepath.Join(c.Paths.ReportDir, semantic.SummaryFile)
	if err := m.WriteCSV(matrixPath); err != nil {
		return err
	}
	if err := m.WriteSummary(summaryPath); err != nil {
		return err
	}

	fmt.Println("Semantic mapping analysis completed.")
	fmt.Printf("Target tables: %d, fields: %d\n", m.Summary.TargetTableCount, m.Summary.TargetFieldCount)
	for _, status := range domain.SortedKeys(m.Summary.StatusCounts) {
		fmt.Printf("  %-20s %d\n", status, m.Summary.StatusCounts[status])
	}
	fmt.Printf("Most unmapped tables: %s\n", strings.Join(m.MostUnmapped(5), ", "))
	fmt.Printf("Matrix: %s\n", matrixPath)
	fmt.Printf("Summary: %s\n", summaryPath)
	return nil
}
