// journal/csv.go
package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// CSV writes trades, equity and signals into three files in a directory.
type CSV struct {
	trades  *csv.Writer
	equity  *csv.Writer
	signals *csv.Writer
	files   []*os.File
}

func NewCSV(dir string) (*CSV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	j := &CSV{}
	var err error
	if j.trades, err = j.create(filepath.Join(dir, "trades.csv"),
		[]string{"run_id", "trade_id", "instrument", "units", "entry_price", "exit_price", "open_time", "close_time", "realized_pl", "entry_reason", "exit_reason"}); err != nil {
		return nil, err
	}
	if j.equity, err = j.create(filepath.Join(dir, "equity.csv"),
		[]string{"run_id", "time", "balance", "equity"}); err != nil {
		return nil, err
	}
	if j.signals, err = j.create(filepath.Join(dir, "signals.csv"),
		[]string{"run_id", "time", "instrument", "seq", "signal", "price", "rsi", "reason"}); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *CSV) create(path string, header []string) (*csv.Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		j.closeFiles()
		return nil, err
	}
	j.files = append(j.files, f)

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		j.closeFiles()
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		j.closeFiles()
		return nil, fmt.Errorf("write header %s: %w", path, err)
	}
	return w, nil
}

func (j *CSV) RecordTrade(t TradeRecord) error {
	return j.write(j.trades, []string{
		t.RunID,
		t.TradeID,
		t.Instrument,
		t.Units.String(),
		t.EntryPrice.String(),
		t.ExitPrice.String(),
		t.OpenTime.UTC().Format(time.RFC3339),
		t.CloseTime.UTC().Format(time.RFC3339),
		t.RealizedPL.String(),
		t.EntryReason,
		t.ExitReason,
	})
}

func (j *CSV) RecordEquity(e EquitySnapshot) error {
	return j.write(j.equity, []string{
		e.RunID,
		e.Time.UTC().Format(time.RFC3339),
		e.Balance.String(),
		e.Equity.String(),
	})
}

func (j *CSV) RecordSignal(s SignalRecord) error {
	return j.write(j.signals, []string{
		s.RunID,
		s.Time.UTC().Format(time.RFC3339),
		s.Instrument,
		strconv.Itoa(s.Seq),
		s.Signal,
		s.Price.String(),
		strconv.FormatFloat(s.RSI, 'f', 4, 64),
		s.Reason,
	})
}

func (j *CSV) write(w *csv.Writer, rec []string) error {
	if err := w.Write(rec); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (j *CSV) Close() error {
	for _, w := range []*csv.Writer{j.trades, j.equity, j.signals} {
		w.Flush()
		if err := w.Error(); err != nil {
			j.closeFiles()
			return err
		}
	}
	return j.closeFiles()
}

func (j *CSV) closeFiles() error {
	var first error
	for _, f := range j.files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	j.files = nil
	return first
}
