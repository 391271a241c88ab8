package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/snow-ghost/validator/pkg/logging"
	"github.com/snow-ghost/validator/pkg/observability"
	"github.com/snow-ghost/validator/validator"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "revalidate",
	Short: "Re-run practice validation",
	Long: `revalidate runs the validator over every stored practice, or over a
local practice file, and prints the outcome.

Settings come from flags, from VALIDATOR_* environment variables and from
the service's own environment (STORAGE_API_URL, LLM_MODE, ...).`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringP("format", "f", "console", "Output format (console|json)")
	flags.String("storage-url", "", "Storage API base URL")
	flags.String("llm-mode", "", "Language model backend (off|ollama|openai)")
	flags.String("thresholds", "", "Threshold YAML file")
	flags.String("ledger-driver", "", "Decision ledger driver (sqlite3|mysql|off)")
	flags.String("ledger-dsn", "", "Decision ledger DSN")
	flags.BoolP("verbose", "v", false, "Log progress to stderr")

	for _, name := range []string{"format", "storage-url", "llm-mode", "thresholds", "ledger-driver", "ledger-dsn", "verbose"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}

	rootCmd.AddCommand(allCmd, fileCmd)
}

func initConfig() {
	viper.SetEnvPrefix("VALIDATOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// newObservability builds the console logger and the observability
// bundle for one command run. Progress goes to stderr so that stdout
// carries only the rendered result.
func newObservability(verbose bool) (*observability.Manager, error) {
	level := "error"
	if verbose {
		level = "info"
	}
	logger, err := logging.NewLogger(logging.Config{Level: level, Format: "console", Output: "stderr"})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	slog.SetDefault(logger.Slog())

	return observability.NewManager(observability.Config{
		ServiceName: "revalidate",
		Logger:      logger,
	})
}

// loadConfig layers flag and VALIDATOR_* values over the service config.
func loadConfig() (*validator.Config, error) {
	c := validator.LoadConfig()
	override := func(dst *string, key string) {
		if v := viper.GetString(key); v != "" {
			*dst = v
		}
	}
	override(&c.StorageAPIURL, "storage-url")
	override(&c.LLMMode, "llm-mode")
	override(&c.ThresholdsFile, "thresholds")
	override(&c.LedgerDriver, "ledger-driver")
	override(&c.LedgerDSN, "ledger-dsn")

	switch f := viper.GetString("format"); f {
	case formatConsole, formatJSON:
	default:
		return nil, fmt.Errorf("unknown format %q", f)
	}
	return c, nil
}
