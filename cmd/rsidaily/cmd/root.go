package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rustyeddy/rsidaily/config"
	"github.com/rustyeddy/rsidaily/internal/logger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rsidaily",
	Short: "RSI higher-low decision engine with backtest and stream tooling",
	Long: `rsidaily turns a stream of candle closes and their RSI into long/short
directives: it waits for a higher RSI low below the low threshold, enters
long, and manages the position with time and price based exits.

It provides tools for:
  - Backtesting the strategy over historical candle files
  - Streaming candles from stdin and printing directives as they happen
  - Computing the RSI series of a dataset
  - Querying the SQLite journal of past runs
  - Generating and validating configuration files`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

var (
	cfgFile   string
	logLevel  string
	logFormat string

	// cfg is the effective configuration: file (or defaults) plus flags.
	cfg *config.Config
)

// Execute adds all child commands to the root command and runs it until
// completion or SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON); defaults are used when empty")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if cfgFile != "" {
		c, err := config.LoadFromFile(cfgFile)
		if err != nil {
			return err
		}
		cfg = c
	} else {
		cfg = config.Default()
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = logFormat
	}

	if _, err := logger.Init("rsidaily", cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	return nil
}
