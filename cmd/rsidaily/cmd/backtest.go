package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/rustyeddy/rsidaily/backtest"
	"github.com/rustyeddy/rsidaily/config"
	"github.com/rustyeddy/rsidaily/internal/logger"
	"github.com/rustyeddy/rsidaily/journal"
	"github.com/rustyeddy/rsidaily/market"
	"github.com/rustyeddy/rsidaily/market/strategies"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Backtest the RSI daily strategy over a candle file",
	Long: `Backtest replays a candle file through the RSI higher-low strategy and
turns its directives into paper trades: LONG opens at the candle close,
SHORT closes at the candle close, SHORT+LONG in one step is a flip.

Candle files are either comma separated "time,open,high,low,close[,volume]"
with RFC3339 or unix-second times, or the semicolon separated
"20240101 170000;o;h;l;c;v" layout.

Examples:
  rsidaily backtest --data data/btc_h1.csv
  rsidaily backtest --data data/btc_m15.csv --timeframe M15 --resample H1
  rsidaily backtest -c rsidaily.yaml --data data/eth_h1.csv --org report.org`,
	RunE: runBacktest,
}

var (
	btDataPath   string
	btTimeframe  string
	btResample   string
	btInstrument string
	btBalance    string
	btUnits      string
	btCloseEnd   bool
	btJournal    string
	btDBPath     string
	btOutDir     string
	btOrgPath    string
	btLow        float64
	btHigh       float64
	btPeriod     int
	btStats      bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btDataPath, "data", "f", "", "path to candle file (required)")
	backtestCmd.Flags().StringVarP(&btTimeframe, "timeframe", "t", "", "timeframe of the candle file (M1..W1)")
	backtestCmd.Flags().StringVar(&btResample, "resample", "", "aggregate candles to this timeframe before replay")
	backtestCmd.Flags().StringVarP(&btInstrument, "instrument", "i", "", "instrument name")
	backtestCmd.Flags().StringVarP(&btBalance, "balance", "b", "", "starting balance")
	backtestCmd.Flags().StringVarP(&btUnits, "units", "u", "", "position size in units")
	backtestCmd.Flags().BoolVar(&btCloseEnd, "close-end", true, "close the open position at the end of data")
	backtestCmd.Flags().StringVarP(&btJournal, "journal", "j", "", "journal type: sqlite, csv or none")
	backtestCmd.Flags().StringVarP(&btDBPath, "db", "d", "", "path to SQLite journal DB")
	backtestCmd.Flags().StringVar(&btOutDir, "out", "", "directory for the CSV journal")
	backtestCmd.Flags().StringVar(&btOrgPath, "org", "", "write an Org-mode report of the run to this file")
	backtestCmd.Flags().Float64Var(&btLow, "low", 0, "RSI low threshold")
	backtestCmd.Flags().Float64Var(&btHigh, "high", 0, "RSI high threshold")
	backtestCmd.Flags().IntVar(&btPeriod, "period", 0, "RSI period")
	backtestCmd.Flags().BoolVar(&btStats, "stats", false, "print candle gap statistics before the run")

	backtestCmd.MarkFlagRequired("data")
}

// applyBacktestFlags copies explicitly set flags over the loaded config.
func applyBacktestFlags(cmd *cobra.Command, c *config.Config) error {
	f := cmd.Flags()
	if f.Changed("timeframe") {
		c.Backtest.Timeframe = btTimeframe
	}
	if f.Changed("resample") {
		c.Backtest.Resample = btResample
	}
	if f.Changed("instrument") {
		c.Backtest.Instrument = btInstrument
	}
	if f.Changed("balance") {
		d, err := decimal.NewFromString(btBalance)
		if err != nil {
			return fmt.Errorf("balance: %w", err)
		}
		c.Backtest.StartingBalance = d
	}
	if f.Changed("units") {
		d, err := decimal.NewFromString(btUnits)
		if err != nil {
			return fmt.Errorf("units: %w", err)
		}
		c.Backtest.Units = d
	}
	if f.Changed("close-end") {
		c.Backtest.CloseAtEnd = btCloseEnd
	}
	if f.Changed("journal") {
		c.Journal.Type = btJournal
		if btJournal == "none" {
			c.Journal.Type = ""
		}
	}
	if f.Changed("db") {
		c.Journal.DBPath = btDBPath
	}
	if f.Changed("out") {
		c.Journal.Dir = btOutDir
	}
	if f.Changed("low") {
		c.Strategy.LowThreshold = btLow
	}
	if f.Changed("high") {
		c.Strategy.HighThreshold = btHigh
	}
	if f.Changed("period") {
		c.Strategy.Period = btPeriod
	}
	return c.Validate()
}

// loadCandles reads path at the configured timeframe and resamples it when
// asked to.
func loadCandles(path string, bc config.BacktestConfig) (*market.CandleSet, string, error) {
	tf, err := market.TFStringToSeconds(bc.Timeframe)
	if err != nil {
		return nil, "", err
	}
	cs, err := market.NewCandleSet(path, tf)
	if err != nil {
		return nil, "", fmt.Errorf("load candles: %w", err)
	}
	cs.Instrument = bc.Instrument

	label := bc.Timeframe
	if bc.Resample != "" {
		out, err := market.TFStringToSeconds(bc.Resample)
		if err != nil {
			return nil, "", err
		}
		if cs, err = cs.Aggregate(out, 1); err != nil {
			return nil, "", fmt.Errorf("resample: %w", err)
		}
		label = bc.Resample
	}
	return cs, label, nil
}

// openJournal returns the configured journal. The SQLite handle is also
// returned so the run summary can be stored; it is nil for CSV or none.
func openJournal(jc config.JournalConfig) (journal.Journal, *journal.SQLite, error) {
	switch jc.Type {
	case "sqlite":
		db, err := journal.NewSQLite(jc.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open db: %w", err)
		}
		return db, db, nil
	case "csv":
		j, err := journal.NewCSV(jc.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("open csv journal: %w", err)
		}
		return j, nil, nil
	}
	return nil, nil, nil
}

func runBacktest(cmd *cobra.Command, args []string) error {
	if err := applyBacktestFlags(cmd, cfg); err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cs, tfLabel, err := loadCandles(btDataPath, cfg.Backtest)
	if err != nil {
		return err
	}
	if btStats {
		cs.PrintStats(out)
	}

	j, db, err := openJournal(cfg.Journal)
	if err != nil {
		return err
	}
	if j != nil {
		defer j.Close()
	}

	strat := strategies.NewRSIDaily(cfg.Strategy)
	strat.Subscribe(logger.AdviceLogger{Log: slog.Default(), Instrument: cfg.Backtest.Instrument})

	engine := backtest.NewEngine(cs, backtest.Config{
		Instrument:      cfg.Backtest.Instrument,
		StartingBalance: cfg.Backtest.StartingBalance,
		Units:           cfg.Backtest.Units,
		CloseAtEnd:      cfg.Backtest.CloseAtEnd,
	}, j, "")

	fmt.Fprintf(out, "Running backtest with strategy: %s\n", strat.Name())
	fmt.Fprintf(out, "  Data: %s (%s)\n", btDataPath, tfLabel)
	fmt.Fprintf(out, "  Journal: %s\n\n", journalLabel(cfg.Journal))

	res, err := engine.Run(ctx, strat)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}
	res.PrintResult(out)

	run := res.ToRun(tfLabel, filepath.Base(btDataPath), cfg.StrategyYAML())
	if db != nil {
		if err := db.RecordBacktest(ctx, run); err != nil {
			return fmt.Errorf("record run: %w", err)
		}
	}
	if btOrgPath != "" {
		if err := run.WriteBacktestOrg(btOrgPath); err != nil {
			return fmt.Errorf("org report: %w", err)
		}
		fmt.Fprintf(out, "Org report: %s\n", btOrgPath)
	}
	return nil
}
