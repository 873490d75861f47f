package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"nhs-dm-tool/internal/load"
)

var cleanTableNames []string

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete all rows from the target LOAD_ tables, children first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		t, err := openTarget(ctx, cfg, cleanTableNames)
		if err != nil {
			return err
		}
		defer t.DB.Close()

		log.Info().Int("tables", len(t.Tables)).Msg("Cleaning target tables")
		results := load.New(t.DB, t.Dialect, log.Logger).Clean(ctx, t.Tables)
		printResults("Cleaned", results, true)
		if load.Failed(results) {
			return fmt.Errorf("one or more tables failed to clean")
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringSliceVarP(&cleanTableNames, "tables", "t", nil, "tables to clean (comma-separated, default all LOAD_ tables)")
}
