package cmd

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"nhs-dm-tool/internal/report"
)

// LifecycleFile is written into the report directory.
const LifecycleFile = "product_lifecycle_run.json"

// StepResult is one stage of a lifecycle run.
type StepResult struct {
	Name            string  `json:"name"`
	Status          string  `json:"status"`
	DurationSeconds float64 `json:"duration_seconds"`
	Error           string  `json:"error,omitempty"`
}

// LifecycleRun is product_lifecycle_run.json.
type LifecycleRun struct {
	RunAtUTC   string       `json:"run_at_utc"`
	Status     string       `json:"status"`
	Fixtures   bool         `json:"fixtures"`
	Rows       int          `json:"rows"`
	Seed       int64        `json:"seed"`
	MinRows    int          `json:"min_rows"`
	ImputeMode string       `json:"impute_mode"`
	Steps      []StepResult `json:"steps"`
}

type stage struct {
	name string
	run  func(ctx context.Context, c *Config) error
}

var withFixtures bool

var lifecycleCmd = &cobra.Command{
	Use:   "lifecycle",
	Short: "Run analyze, contract, migrate and quality in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		stages := []stage{
			{"analyze", runAnalyze},
			{"contract", runContract},
			{"migrate", runMigrate},
			{"quality", runQuality},
		}
		if withFixtures {
			fixtures := stage{"fixtures", func(ctx context.Context, c *Config) error {
				return runFixtures(ctx, c, nil)
			}}
			stages = append([]stage{fixtures}, stages...)
		}

		run, err := runLifecycle(cmd.Context(), cfg, stages)
		path := filepath.Join(cfg.Paths.ReportDir, LifecycleFile)
		if werr := report.WriteJSON(path, run); werr != nil {
			return werr
		}
		fmt.Printf("Lifecycle %s: %s\n", run.Status, path)
		return err
	},
}

func init() {
	RootCmd.AddCommand(lifecycleCmd)
	addLifecycleFlags(lifecycleCmd)
}

func addLifecycleFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolVar(&withFixtures, "fixtures", false, "generate synthetic source extracts first")
	f.Int("rows", 0, "fixture patients to generate (overrides config)")
	f.Int64("seed", 0, "fixture random seed (overrides config)")
	f.Int("min-rows", 0, "minimum source rows per core table (overrides config)")
	f.String("impute-mode", "", "strict or pre_production (overrides config)")
	bindFlag(cmd, "rows", "fixtures.rows")
	bindFlag(cmd, "seed", "fixtures.seed")
	bindFlag(cmd, "min-rows", "quality.min_rows")
	bindFlag(cmd, "impute-mode", "etl.impute_mode")
}

// runLifecycle runs stages in order and stops at the first failure, whose
// error it returns alongside the run record.
func runLifecycle(ctx context.Context, c *Config, stages []stage) (*LifecycleRun, error) {
	run := &LifecycleRun{
		RunAtUTC:   report.Timestamp(time.Now()),
		Status:     "PASS",
		Fixtures:   len(stages) > 0 && stages[0].name == "fixtures",
		Rows:       c.Fixtures.Rows,
		Seed:       c.Fixtures.Seed,
		MinRows:    c.Quality.MinRows,
		ImputeMode: c.ETL.ImputeMode,
	}
	for _, s := range stages {
		log.Info().Str("step", s.name).Msg("Lifecycle step starting")
		start := time.Now()
		err := s.run(ctx, c)
		step := StepResult{
			Name:            s.name,
			Status:          "PASS",
			DurationSeconds: math.Round(time.Since(start).Seconds()*1000) / 1000,
		}
		if err != nil {
			step.Status = "FAIL"
			step.Error = err.Error()
			run.Status = "FAIL"
			run.Steps = append(run.Steps, step)
			log.Error().Err(err).Str("step", s.name).Msg("Lifecycle step failed")
			return run, fmt.Errorf("%s: %w", s.name, err)
		}
		run.Steps = append(run.Steps, step)
	}
	return run, nil
}
