package cmd

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"nhs-dm-tool/internal/load"
)

var (
	loadTableNames []string
	truncate       bool
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load migrated LOAD_ CSVs into the active target database",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		t, err := openTarget(ctx, cfg, loadTableNames)
		if err != nil {
			return err
		}
		defer t.DB.Close()

		l := load.New(t.DB, t.Dialect, log.Logger)
		if truncate {
			printResults("Cleaned", l.Clean(ctx, t.Tables), true)
		}

		total := load.CountRows(t.Tables, cfg.Paths.OutputDir)
		log.Info().Int("tables", len(t.Tables)).Int("rows", total).Str("dir", cfg.Paths.OutputDir).Msg("Starting load")
		start := time.Now()

		bar, stop := startBar("Loading", total)
		l.OnRow = func() { bar.Incr() }
		results := l.Load(ctx, t.Tables, cfg.Paths.OutputDir)
		stop()

		printResults("Loaded", results, false)
		log.Info().Dur("elapsed", time.Since(start)).Msg("Load finished")
		if load.Failed(results) {
			return fmt.Errorf("one or more tables failed to load")
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(loadCmd)
	loadCmd.Flags().StringSliceVarP(&loadTableNames, "tables", "t", nil, "tables to load (comma-separated, default all LOAD_ tables)")
	loadCmd.Flags().BoolVar(&truncate, "truncate", false, "delete existing rows before loading")
}

// printResults prints one line per table. Clean results report deleted rows.
func printResults(verb string, results []load.Result, deleted bool) {
	fmt.Printf("\n%s tables:\n", verb)
	total := 0
	for i, r := range results {
		icon := "✓"
		if r.Status != load.StatusOK {
			icon = "!"
		}
		n := r.Inserted
		if deleted {
			n = r.Rows
			fmt.Printf("[%s] [%02d/%02d] %-28s : %d rows - %s\n", icon, i+1, len(results), r.Table, n, r.Status)
		} else {
			fmt.Printf("[%s] [%02d/%02d] %-28s : %d/%d rows - %s\n", icon, i+1, len(results), r.Table, n, r.Rows, r.Status)
		}
		if r.Error != "" {
			fmt.Printf("    └ %s\n", r.Error)
		}
		total += n
	}
	fmt.Println("--------------------------------------------------")
	fmt.Printf("Total rows: %d\n", total)
}
