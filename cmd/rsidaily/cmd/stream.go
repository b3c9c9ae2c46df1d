package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rustyeddy/rsidaily/internal/logger"
	"github.com/rustyeddy/rsidaily/market"
	"github.com/rustyeddy/rsidaily/market/strategies"
	"github.com/rustyeddy/rsidaily/metrics"
	"github.com/spf13/cobra"
)

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Read candles from stdin and print directives as they happen",
	Long: `Stream reads one closed candle per line from stdin, in the same layouts
the backtest accepts, and prints a line for every step that produces a
directive. Holds are silent.

With --metrics-addr a Prometheus endpoint is served at /metrics for the
lifetime of the stream.

Example:
  tail -f candles.csv | rsidaily stream --metrics-addr :9108`,
	RunE: runStream,
}

var (
	streamMetricsAddr string
	streamInstrument  string
)

func init() {
	rootCmd.AddCommand(streamCmd)

	streamCmd.Flags().StringVar(&streamMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	streamCmd.Flags().StringVarP(&streamInstrument, "instrument", "i", "", "instrument name for log lines")
}

func runStream(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if cmd.Flags().Changed("metrics-addr") {
		cfg.Metrics.Addr = streamMetricsAddr
	}
	instrument := cfg.Backtest.Instrument
	if streamInstrument != "" {
		instrument = streamInstrument
	}

	strat := strategies.NewRSIDaily(cfg.Strategy)
	strat.Subscribe(logger.AdviceLogger{Log: slog.Default(), Instrument: instrument})

	if cfg.Metrics.Addr != "" {
		m := metrics.New()
		strat.Subscribe(m)
		go func() {
			if err := m.Serve(ctx, cfg.Metrics.Addr); err != nil {
				slog.Error("metrics server", slog.String("err", err.Error()))
			}
		}()
		slog.Info("serving metrics", slog.String("addr", cfg.Metrics.Addr))
	}

	n, err := streamCandles(ctx, os.Stdin, cmd.OutOrStdout(), strat)
	slog.Info("stream ended", slog.Int("candles", n))
	return err
}

// streamCandles feeds every parsable line of r to strat and writes one line
// per directive-bearing step to w. It returns the number of candles consumed.
func streamCandles(ctx context.Context, r io.Reader, w io.Writer, strat strategies.Strategy) (int, error) {
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return n, err
		}

		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(strings.ToLower(line), "time") {
			continue
		}
		_, c, err := market.ParseCandleLine(line)
		if err != nil {
			slog.Warn("skipping bad candle", slog.String("line", line), slog.String("err", err.Error()))
			continue
		}
		n++

		d := strat.Update(c)
		if len(d.Advice()) == 0 {
			continue
		}
		rsi := 0.0
		if rd, ok := d.(strategies.RSIDailyDecision); ok {
			rsi = rd.RSI
		}
		fmt.Fprintf(w, "%s %-10s close=%s rsi=%.2f %s\n",
			c.Time.Format(time.RFC3339), d.Advice(), c.Close, rsi, d.Reason())
	}
	return n, sc.Err()
}
