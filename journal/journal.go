// journal/journal.go
package journal

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecord is one round trip: a long entry and the exit that closed it.
type TradeRecord struct {
	RunID       string
	TradeID     string
	Instrument  string
	Units       decimal.Decimal
	EntryPrice  decimal.Decimal
	ExitPrice   decimal.Decimal
	OpenTime    time.Time
	CloseTime   time.Time
	RealizedPL  decimal.Decimal
	EntryReason string
	ExitReason  string
}

type EquitySnapshot struct {
	RunID   string
	Time    time.Time
	Balance decimal.Decimal
	Equity  decimal.Decimal
}

// SignalRecord is a single directive as emitted by the strategy.
type SignalRecord struct {
	RunID      string
	Time       time.Time
	Instrument string
	Seq        int // position within the step, 1 for the second half of a flip
	Signal     string
	Price      decimal.Decimal
	RSI        float64
	Reason     string
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	RecordSignal(SignalRecord) error
	Close() error
}
