package backtest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rustyeddy/rsidaily/journal"
	"github.com/rustyeddy/rsidaily/market"
	"github.com/rustyeddy/rsidaily/market/strategies"
	"github.com/rustyeddy/rsidaily/pkg/id"
	"github.com/shopspring/decimal"
)

const ReasonEndOfData = "end-of-data"

type Config struct {
	Instrument      string
	StartingBalance decimal.Decimal
	Units           decimal.Decimal // position size, 1 when zero
	CloseAtEnd      bool
}

// Position is the paper position the engine holds on behalf of the strategy.
type Position struct {
	Open        bool
	EntryPrice  decimal.Decimal
	Units       decimal.Decimal
	EntryTime   time.Time
	EntryReason string
}

// Engine replays a CandleSet through a strategy and turns its directives
// into paper trades. Long opens at the bar close, Short closes at the bar
// close, and Short+Long in one step closes and reopens at the same price.
type Engine struct {
	cs    *market.CandleSet
	cfg   Config
	j     journal.Journal
	runID string

	Logger *slog.Logger

	Balance decimal.Decimal
	Pos     Position
	Trades  []journal.TradeRecord

	flips  int
	bars   int
	peak   decimal.Decimal
	maxDD  float64
	start  time.Time
	end    time.Time
	closed bool
}

// NewEngine prepares a run. j may be nil; runID is generated when empty.
func NewEngine(cs *market.CandleSet, cfg Config, j journal.Journal, runID string) *Engine {
	if cfg.Units.IsZero() {
		cfg.Units = decimal.NewFromInt(1)
	}
	if runID == "" {
		runID = id.New()
	}
	return &Engine{
		cs:      cs,
		cfg:     cfg,
		j:       j,
		runID:   runID,
		Logger:  slog.Default(),
		Balance: cfg.StartingBalance,
		peak:    cfg.StartingBalance,
	}
}

func (e *Engine) RunID() string { return e.runID }

// Run executes the backtest. The strategy is reset first; each valid bar
// is fed to it once, in time order.
func (e *Engine) Run(ctx context.Context, strat strategies.Strategy) (Result, error) {
	if e.cs == nil {
		return Result{}, errors.New("backtest: CandleSet is required")
	}
	if strat == nil {
		return Result{}, errors.New("backtest: Strategy is required")
	}
	if e.closed {
		return Result{}, errors.New("backtest: engine already ran")
	}
	e.closed = true

	strat.Reset()
	log := e.Logger.With(slog.String("run_id", e.runID), slog.String("strategy", strat.Name()))
	log.Info("backtest started", slog.String("instrument", e.cfg.Instrument), slog.Int("bars", len(e.cs.Candles)))

	var last market.Candle
	it := e.cs.Iterator()
	for it.Next() {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		c := it.Candle()
		c.Time = it.Time()
		if e.start.IsZero() {
			e.start = c.Time
		}
		e.end = c.Time
		e.bars++
		last = c

		d := strat.Update(c)
		if err := e.apply(c, d); err != nil {
			return Result{}, err
		}
		if err := e.markEquity(c); err != nil {
			return Result{}, err
		}
	}

	if e.cfg.CloseAtEnd && e.Pos.Open {
		if err := e.closePosition(last, ReasonEndOfData); err != nil {
			return Result{}, err
		}
		if err := e.markEquity(last); err != nil {
			return Result{}, err
		}
	}

	res := e.result(strat.Name())
	log.Info("backtest finished",
		slog.Int("trades", len(res.Trades)),
		slog.Int("flips", res.Flips),
		slog.String("net_pl", res.NetPL.StringFixed(2)),
	)
	return res, nil
}

func (e *Engine) apply(c market.Candle, d strategies.Decision) error {
	adv := d.Advice()
	if len(adv) == 0 {
		return nil
	}

	rsi := 0.0
	if rd, ok := d.(strategies.RSIDailyDecision); ok {
		rsi = rd.RSI
	}

	if adv.IsFlip() {
		e.flips++
	}

	for i, sig := range adv {
		if e.j != nil {
			err := e.j.RecordSignal(journal.SignalRecord{
				RunID:      e.runID,
				Time:       c.Time,
				Instrument: e.cfg.Instrument,
				Seq:        i,
				Signal:     sig.String(),
				Price:      c.Close,
				RSI:        rsi,
				Reason:     d.Reason(),
			})
			if err != nil {
				return fmt.Errorf("record signal: %w", err)
			}
		}

		switch sig {
		case strategies.Long:
			if e.Pos.Open {
				e.Logger.Warn("long while already open, ignored", slog.Time("time", c.Time))
				continue
			}
			e.Pos = Position{
				Open:        true,
				EntryPrice:  c.Close,
				Units:       e.cfg.Units,
				EntryTime:   c.Time,
				EntryReason: d.Reason(),
			}
			e.Logger.Debug("opened", slog.Time("time", c.Time), slog.String("price", c.Close.String()))

		case strategies.Short:
			if !e.Pos.Open {
				e.Logger.Warn("short while flat, ignored", slog.Time("time", c.Time))
				continue
			}
			if err := e.closePosition(c, d.Reason()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) closePosition(c market.Candle, reason string) error {
	p := e.Pos
	e.Pos = Position{}

	pl := c.Close.Sub(p.EntryPrice).Mul(p.Units)
	e.Balance = e.Balance.Add(pl)

	tr := journal.TradeRecord{
		RunID:       e.runID,
		TradeID:     id.NewAt(c.Time),
		Instrument:  e.cfg.Instrument,
		Units:       p.Units,
		EntryPrice:  p.EntryPrice,
		ExitPrice:   c.Close,
		OpenTime:    p.EntryTime,
		CloseTime:   c.Time,
		RealizedPL:  pl,
		EntryReason: p.EntryReason,
		ExitReason:  reason,
	}
	e.Trades = append(e.Trades, tr)
	e.Logger.Debug("closed",
		slog.Time("time", c.Time),
		slog.String("price", c.Close.String()),
		slog.String("pl", pl.String()),
		slog.String("reason", reason),
	)

	if e.j != nil {
		if err := e.j.RecordTrade(tr); err != nil {
			return fmt.Errorf("record trade: %w", err)
		}
	}
	return nil
}

// Equity marks the open position to c's close.
func (e *Engine) Equity(c market.Candle) decimal.Decimal {
	if !e.Pos.Open {
		return e.Balance
	}
	return e.Balance.Add(c.Close.Sub(e.Pos.EntryPrice).Mul(e.Pos.Units))
}

func (e *Engine) markEquity(c market.Candle) error {
	eq := e.Equity(c)

	if eq.GreaterThan(e.peak) {
		e.peak = eq
	}
	if e.peak.IsPositive() {
		dd := e.peak.Sub(eq).Div(e.peak).InexactFloat64() * 100
		if dd > e.maxDD {
			e.maxDD = dd
		}
	}

	if e.j == nil {
		return nil
	}
	if err := e.j.RecordEquity(journal.EquitySnapshot{
		RunID:   e.runID,
		Time:    c.Time,
		Balance: e.Balance,
		Equity:  eq,
	}); err != nil {
		return fmt.Errorf("record equity: %w", err)
	}
	return nil
}
