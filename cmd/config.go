package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"nhs-dm-tool/internal/etl"
)

type PathsConfig struct {
	Root             string `mapstructure:"root"`
	SourceCatalog    string `mapstructure:"source_catalog"`
	TargetCatalog    string `mapstructure:"target_catalog"`
	TargetHeadersDir string `mapstructure:"target_headers_dir"`
	SourceDir        string `mapstructure:"source_dir"`
	OutputDir        string `mapstructure:"output_dir"`
	ReportDir        string `mapstructure:"report_dir"`
	ContractFile     string `mapstructure:"contract_file"`
	PolicyFile       string `mapstructure:"policy_file"`
	CrosswalkDir     string `mapstructure:"crosswalk_dir"`
}

type ETLConfig struct {
	ImputeMode string `mapstructure:"impute_mode"`
}

type QualityConfig struct {
	MinRows   int    `mapstructure:"min_rows"`
	TargetDir string `mapstructure:"target_dir"`
}

type FixturesConfig struct {
	Rows int   `mapstructure:"rows"`
	Seed int64 `mapstructure:"seed"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DBConfig struct {
	Name   string `mapstructure:"name"`
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Schema string `mapstructure:"schema"`
	Active bool   `mapstructure:"active"`
}

// Config is the resolved nhs-dm.yaml plus flag and NHSDM_* overrides.
type Config struct {
	Paths     PathsConfig    `mapstructure:"paths"`
	ETL       ETLConfig      `mapstructure:"etl"`
	Quality   QualityConfig  `mapstructure:"quality"`
	Fixtures  FixturesConfig `mapstructure:"fixtures"`
	Log       LogConfig      `mapstructure:"log"`
	Databases []DBConfig     `mapstructure:"databases"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("paths.root", ".")
	v.SetDefault("paths.source_catalog", "schemas/source_schema_catalog.csv")
	v.SetDefault("paths.target_catalog", "schemas/target_schema_catalog.csv")
	v.SetDefault("paths.target_headers_dir", "mock_data/target")
	v.SetDefault("paths.source_dir", "mock_data/source")
	v.SetDefault("paths.output_dir", "mock_data/target_contract")
	v.SetDefault("paths.report_dir", "reports")
	v.SetDefault("paths.contract_file", "reports/mapping_contract.csv")
	v.SetDefault("paths.policy_file", "pipeline/mapping_resolution_policy.json")
	v.SetDefault("paths.crosswalk_dir", "schemas/crosswalks")
	v.SetDefault("etl.impute_mode", string(etl.Strict))
	v.SetDefault("quality.min_rows", 20)
	v.SetDefault("quality.target_dir", "")
	v.SetDefault("fixtures.rows", 20)
	v.SetDefault("fixtures.seed", 42)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// LoadConfig unmarshals v, resolves relative paths against paths.root and
// validates the result.
func LoadConfig(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	c.resolve()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) resolve() {
	if c.Paths.Root == "" {
		c.Paths.Root = "."
	}
	abs := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(c.Paths.Root, *p)
		}
	}
	for _, p := range []*string{
		&c.Paths.SourceCatalog, &c.Paths.TargetCatalog, &c.Paths.TargetHeadersDir,
		&c.Paths.SourceDir, &c.Paths.OutputDir, &c.Paths.ReportDir,
		&c.Paths.ContractFile, &c.Paths.PolicyFile, &c.Paths.CrosswalkDir,
		&c.Quality.TargetDir,
	} {
		abs(p)
	}
	if c.Quality.TargetDir == "" {
		c.Quality.TargetDir = c.Paths.OutputDir
	}
}

// Validate rejects settings no stage can run with.
func (c *Config) Validate() error {
	if _, err := etl.ParseImputeMode(c.ETL.ImputeMode); err != nil {
		return err
	}
	if c.Quality.MinRows <= 0 {
		return fmt.Errorf("quality.min_rows must be positive, got %d", c.Quality.MinRows)
	}
	if c.Fixtures.Rows <= 0 {
		return fmt.Errorf("fixtures.rows must be positive, got %d", c.Fixtures.Rows)
	}
	return nil
}

// ActiveDB returns the single database marked active.
func (c *Config) ActiveDB() (*DBConfig, error) {
	var active *DBConfig
	count := 0
	for i := range c.Databases {
		if c.Databases[i].Active {
			active = &c.Databases[i]
			count++
		}
	}
	if count == 0 {
		return nil, fmt.Errorf("no active database found in config (set active: true)")
	}
	if count > 1 {
		return nil, fmt.Errorf("multiple active databases found (only one can be active)")
	}
	return active, nil
}
