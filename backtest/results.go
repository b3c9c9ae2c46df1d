package backtest

import (
	"fmt"
	"io"
	"time"

	"github.com/rustyeddy/rsidaily/journal"
	"github.com/shopspring/decimal"
)

// Result summarizes a finished run.
type Result struct {
	RunID      string
	Strategy   string
	Instrument string
	Start      time.Time
	End        time.Time
	Bars       int

	Trades []journal.TradeRecord
	Wins   int
	Losses int
	Flips  int

	StartBalance decimal.Decimal
	EndBalance   decimal.Decimal
	NetPL        decimal.Decimal

	ReturnPct    float64
	WinRate      float64 // 0..1
	ProfitFactor float64 // gross profit / gross loss, 0 when there are no losses
	MaxDDPct     float64

	// OpenAtEnd is set when the run ended with a position still open.
	OpenAtEnd bool
}

func (e *Engine) result(strategy string) Result {
	r := Result{
		RunID:        e.runID,
		Strategy:     strategy,
		Instrument:   e.cfg.Instrument,
		Start:        e.start,
		End:          e.end,
		Bars:         e.bars,
		Trades:       e.Trades,
		Flips:        e.flips,
		StartBalance: e.cfg.StartingBalance,
		EndBalance:   e.Balance,
		NetPL:        e.Balance.Sub(e.cfg.StartingBalance),
		MaxDDPct:     e.maxDD,
		OpenAtEnd:    e.Pos.Open,
	}

	grossWin := decimal.Zero
	grossLoss := decimal.Zero
	for _, tr := range e.Trades {
		switch {
		case tr.RealizedPL.IsPositive():
			r.Wins++
			grossWin = grossWin.Add(tr.RealizedPL)
		case tr.RealizedPL.IsNegative():
			r.Losses++
			grossLoss = grossLoss.Add(tr.RealizedPL.Neg())
		}
	}

	if n := len(e.Trades); n > 0 {
		r.WinRate = float64(r.Wins) / float64(n)
	}
	if grossLoss.IsPositive() {
		r.ProfitFactor = grossWin.Div(grossLoss).InexactFloat64()
	}
	if !r.StartBalance.IsZero() {
		r.ReturnPct = r.NetPL.Div(r.StartBalance).InexactFloat64() * 100
	}
	return r
}

// ToRun converts the result into a journal row.
func (r Result) ToRun(timeframe, dataset string, cfg []byte) journal.BacktestRun {
	return journal.BacktestRun{
		RunID:        r.RunID,
		Created:      time.Now().UTC(),
		Strategy:     r.Strategy,
		Timeframe:    timeframe,
		Dataset:      dataset,
		Instrument:   r.Instrument,
		Config:       cfg,
		Start:        r.Start,
		End:          r.End,
		Bars:         r.Bars,
		Trades:       len(r.Trades),
		Wins:         r.Wins,
		Losses:       r.Losses,
		Flips:        r.Flips,
		StartBalance: r.StartBalance,
		EndBalance:   r.EndBalance,
		NetPL:        r.NetPL,
		ReturnPct:    r.ReturnPct,
		WinRate:      r.WinRate,
		ProfitFactor: r.ProfitFactor,
		MaxDDPct:     r.MaxDDPct,
	}
}

func (r Result) PrintResult(w io.Writer) {
	fmt.Fprintln(w, "---- Backtest Result ----")
	fmt.Fprintf(w, "        Run: %s\n", r.RunID)
	fmt.Fprintf(w, "   Strategy: %s\n", r.Strategy)
	fmt.Fprintf(w, " Instrument: %s\n", r.Instrument)
	if !r.Start.IsZero() {
		fmt.Fprintf(w, "      Range: %s → %s (%d bars)\n",
			r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339), r.Bars)
	}
	fmt.Fprintf(w, "     Trades: %d (wins %d, losses %d, flips %d)\n", len(r.Trades), r.Wins, r.Losses, r.Flips)
	fmt.Fprintf(w, "   Win rate: %.2f%%\n", r.WinRate*100)
	fmt.Fprintf(w, "  Start bal: %s\n", r.StartBalance.StringFixed(2))
	fmt.Fprintf(w, "    End bal: %s\n", r.EndBalance.StringFixed(2))
	fmt.Fprintf(w, "    Net P/L: %s (%.2f%%)\n", r.NetPL.StringFixed(2), r.ReturnPct)
	fmt.Fprintf(w, "     Max DD: %.2f%%\n", r.MaxDDPct)
	if r.ProfitFactor != 0 {
		fmt.Fprintf(w, "Profit fac.: %.2f\n", r.ProfitFactor)
	}
	if r.OpenAtEnd {
		fmt.Fprintln(w, "Position still open at end of data")
	}
	fmt.Fprintln(w, "-------------------------")
}
