package indicators

import (
	"fmt"

	talib "github.com/markcheno/go-talib"
)

// RSISeries computes RSI over a whole close series in one pass. Entries
// before index period are warmup and read 0.
//
// talib reads 0 while no price movement has been seen; that case reads 100
// here, matching the streaming RSI.
func RSISeries(closes []float64, period int) ([]float64, error) {
	if period <= 1 {
		return nil, fmt.Errorf("rsi period must be > 1, got %d", period)
	}
	if len(closes) <= period {
		return nil, fmt.Errorf("need more than %d closes for RSI(%d), got %d", period, period, len(closes))
	}

	out := talib.Rsi(closes, period)

	// closes[0:moved] are all equal
	moved := 1
	for moved < len(closes) && closes[moved] == closes[0] {
		moved++
	}
	for i := period; i < moved; i++ {
		out[i] = 100
	}
	return out, nil
}
