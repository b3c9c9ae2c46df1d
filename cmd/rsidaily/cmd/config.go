package cmd

import (
	"fmt"

	"github.com/rustyeddy/rsidaily/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  rsidaily config init -o rsidaily.yaml
  rsidaily config validate -f rsidaily.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	Long: `Create a new configuration file with default settings. The format
follows the extension: .yaml/.yml for YAML, anything else for JSON.

Example:
  rsidaily config init -o rsidaily.yaml`,
	RunE: runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Check if a configuration file is valid and can be loaded.

Example:
  rsidaily config validate -f rsidaily.yaml`,
	RunE: runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "rsidaily.yaml", "output config file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	c := config.Default()
	if err := c.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Created default configuration: %s\n", configInitOutput)
	fmt.Fprintln(out, "\nEdit the file and run with:")
	fmt.Fprintf(out, "  rsidaily backtest -c %s --data candles.csv\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	c, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	s := c.Strategy
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Configuration valid: %s\n", configValidatePath)
	fmt.Fprintf(out, "  Strategy: RSI(%d) low %.0f / high %.0f, retry limit %d\n", s.Period, s.LowThreshold, s.HighThreshold, s.RetryLimit)
	fmt.Fprintf(out, "  Exits: min profit %.1f%%, max loss %.1f%%, day max %.1f%%\n", s.MinProfit*100, s.MaxLoss*100, s.DayMax*100)
	fmt.Fprintf(out, "  Backtest: %s %s, balance %s\n", c.Backtest.Instrument, c.Backtest.Timeframe, c.Backtest.StartingBalance.StringFixed(2))
	fmt.Fprintf(out, "  Journal: %s\n", journalLabel(c.Journal))
	return nil
}

func journalLabel(j config.JournalConfig) string {
	switch j.Type {
	case "sqlite":
		return "sqlite " + j.DBPath
	case "csv":
		return "csv " + j.Dir
	}
	return "none"
}
