package cmd

import (
	"fmt"
	"time"

	"github.com/rustyeddy/rsidaily/market/indicators"
	"github.com/spf13/cobra"
)

var rsiCmd = &cobra.Command{
	Use:   "rsi",
	Short: "Print the RSI series of a candle file",
	Long: `Compute RSI over a candle file in one pass and print
time,close,rsi rows, skipping the warmup.

Example:
  rsidaily rsi --data data/btc_h1.csv --period 14 --tail 48`,
	RunE: runRSI,
}

var (
	rsiDataPath string
	rsiPeriod   int
	rsiTail     int
)

func init() {
	rootCmd.AddCommand(rsiCmd)

	rsiCmd.Flags().StringVarP(&rsiDataPath, "data", "f", "", "path to candle file (required)")
	rsiCmd.Flags().IntVarP(&rsiPeriod, "period", "p", 0, "RSI period (defaults to strategy.period)")
	rsiCmd.Flags().IntVar(&rsiTail, "tail", 0, "only print the last N rows")

	rsiCmd.MarkFlagRequired("data")
}

func runRSI(cmd *cobra.Command, args []string) error {
	period := cfg.Strategy.Period
	if rsiPeriod > 0 {
		period = rsiPeriod
	}

	cs, _, err := loadCandles(rsiDataPath, cfg.Backtest)
	if err != nil {
		return err
	}

	var times []time.Time
	it := cs.Iterator()
	for it.Next() {
		times = append(times, it.Time())
	}
	closes := cs.Closes()

	series, err := indicators.RSISeries(closes, period)
	if err != nil {
		return err
	}

	first := period
	if rsiTail > 0 && len(series)-rsiTail > first {
		first = len(series) - rsiTail
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "time,close,rsi")
	for i := first; i < len(series); i++ {
		fmt.Fprintf(out, "%s,%g,%.2f\n", times[i].Format(time.RFC3339), closes[i], series[i])
	}
	return nil
}
