package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candle represents OHLC (Open, High, Low, Close) candlestick data
type Candle struct {
	Time   time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume decimal.Decimal
}

// CloseFloat is the close in float64 for indicator math.
func (c Candle) CloseFloat() float64 {
	return c.Close.InexactFloat64()
}
