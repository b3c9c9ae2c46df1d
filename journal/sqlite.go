package journal

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, run_id, instrument, units, entry_price, exit_price, open_time, close_time, realized_pl, entry_reason, exit_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.RunID, t.Instrument, t.Units, t.EntryPrice,
		t.ExitPrice, t.OpenTime, t.CloseTime, t.RealizedPL, t.EntryReason, t.ExitReason,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, time, balance, equity)
		VALUES (?, ?, ?, ?)`,
		e.RunID, e.Time, e.Balance, e.Equity,
	)
	return err
}

func (j *SQLite) RecordSignal(s SignalRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO signals
		(run_id, time, instrument, seq, signal, price, rsi, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.RunID, s.Time, s.Instrument, s.Seq, s.Signal, s.Price, s.RSI, s.Reason,
	)
	return err
}

// RecordBacktest stores (or replaces) the summary row of a run.
func (j *SQLite) RecordBacktest(ctx context.Context, r BacktestRun) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
		(run_id, created, strategy, instrument, timeframe, dataset, config, start_time, end_time,
		 bars, trades, wins, losses, flips, start_balance, end_balance, net_pl,
		 return_pct, win_rate, profit_factor, max_dd_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Strategy, r.Instrument, r.Timeframe, r.Dataset, string(r.Config), r.Start, r.End,
		r.Bars, r.Trades, r.Wins, r.Losses, r.Flips, r.StartBalance, r.EndBalance, r.NetPL,
		r.ReturnPct, r.WinRate, r.ProfitFactor, r.MaxDDPct,
	)
	return err
}

const runColumns = `run_id, created, strategy, instrument, timeframe, dataset, config, start_time, end_time,
	bars, trades, wins, losses, flips, start_balance, end_balance, net_pl,
	return_pct, win_rate, profit_factor, max_dd_pct`

func scanRun(sc interface{ Scan(...any) error }) (BacktestRun, error) {
	var r BacktestRun
	var cfg string
	err := sc.Scan(
		&r.RunID, &r.Created, &r.Strategy, &r.Instrument, &r.Timeframe, &r.Dataset, &cfg, &r.Start, &r.End,
		&r.Bars, &r.Trades, &r.Wins, &r.Losses, &r.Flips, &r.StartBalance, &r.EndBalance, &r.NetPL,
		&r.ReturnPct, &r.WinRate, &r.ProfitFactor, &r.MaxDDPct,
	)
	r.Config = []byte(cfg)
	return r, err
}

func (j *SQLite) GetBacktestRun(ctx context.Context, runID string) (BacktestRun, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return BacktestRun{}, fmt.Errorf("run %q not found", runID)
	}
	return r, err
}

// ListRuns returns runs newest first.
func (j *SQLite) ListRuns(ctx context.Context) ([]BacktestRun, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY created DESC, run_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BacktestRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (j *SQLite) Close() error {
	return j.db.Close()
}
