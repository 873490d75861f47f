package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"nhs-dm-tool/internal/logging"
)

var (
	cfgFile string
	cfg     *Config
)

var RootCmd = &cobra.Command{
	Use:   "nhs-dm",
	Short: "NHS PAS data migration toolkit",
	Long: `
 _   _ _   _ ____        ____  __  __
| \ | | | | / ___|      |  _ \|  \/  |
|  \| | |_| \___ \ _____| | | | |\/| |
| |\  |  _  |___) |_____| |_| | |  | |
|_| \_|_| |_|____/      |____/|_|  |_|

Contract-driven migration of legacy PAS extracts into LOAD_ tables.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := bindCommandFlags(viper.GetViper(), cmd); err != nil {
			return err
		}
		c, err := LoadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		if _, err := logging.Init(c.Log.Level, c.Log.Format); err != nil {
			return err
		}
		if used := viper.ConfigFileUsed(); used != "" {
			log.Debug().Str("file", used).Msg("Using config file")
		}
		cfg = c
		return nil
	},
}

// Execute runs the root command. Ctrl-C cancels the running stage.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := RootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	setDefaults(viper.GetViper())

	pf := RootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./nhs-dm.yaml)")
	pf.String("root", "", "project root that relative paths resolve against")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: console or json")
	pf.String("source-dir", "", "directory of source extract CSVs")
	pf.String("output-dir", "", "directory for generated LOAD_ CSVs")
	pf.String("report-dir", "", "directory for reports")
	pf.String("contract-file", "", "mapping contract CSV")

	viper.BindPFlag("paths.root", pf.Lookup("root"))
	viper.BindPFlag("log.level", pf.Lookup("log-level"))
	viper.BindPFlag("log.format", pf.Lookup("log-format"))
	viper.BindPFlag("paths.source_dir", pf.Lookup("source-dir"))
	viper.BindPFlag("paths.output_dir", pf.Lookup("output-dir"))
	viper.BindPFlag("paths.report_dir", pf.Lookup("report-dir"))
	viper.BindPFlag("paths.contract_file", pf.Lookup("contract-file"))
}

// initConfig reads nhs-dm.yaml and NHSDM_* environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if ex, err := os.Executable(); err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("nhs-dm")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("NHSDM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			fmt.Fprintln(os.Stderr, "Failed to read config:", err)
		}
	}
}

// flagKeys maps each command's local flags to config keys. Several commands
// share a key, so the binding happens only for the command being run.
var flagKeys = map[*cobra.Command]map[string]string{}

func bindFlag(cmd *cobra.Command, flag, key string) {
	if flagKeys[cmd] == nil {
		flagKeys[cmd] = map[string]string{}
	}
	flagKeys[cmd][flag] = key
}

func bindCommandFlags(v *viper.Viper, cmd *cobra.Command) error {
	for flag, key := range flagKeys[cmd] {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", flag, err)
		}
	}
	return nil
}
