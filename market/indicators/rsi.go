// market/indicators/rsi.go
package indicators

import (
	"fmt"

	"github.com/rustyeddy/rsidaily/market"
)

// RSI computes the Relative Strength Index over candle closes using Wilder's
// smoothing, seeded with the simple average of the first N gains/losses.
//
// Readiness / warmup:
//   - the first candle only records a close (no delta yet)
//   - the first value is produced after N deltas, i.e. on candle N+1
//
// Output is in [0,100]. A window with no losses reads 100.
type RSI struct {
	n    int
	name string

	seen      int
	prevClose float64
	avgGain   float64
	avgLoss   float64
	value     float64
	ready     bool
}

func NewRSI(period int) *RSI {
	if period <= 1 {
		panic("RSI period must be > 1")
	}
	return &RSI{
		n:    period,
		name: fmt.Sprintf("RSI(%d)", period),
	}
}

func (r *RSI) Name() string     { return r.name }
func (r *RSI) Warmup() int      { return r.n + 1 }
func (r *RSI) Ready() bool      { return r.ready }
func (r *RSI) Float64() float64 { return r.value }

func (r *RSI) Reset() {
	*r = RSI{
		n:    r.n,
		name: r.name,
	}
}

func (r *RSI) Update(c market.Candle) {
	r.UpdateFloat(c.CloseFloat())
}

// UpdateFloat consumes a raw close.
func (r *RSI) UpdateFloat(x float64) {
	r.seen++
	if r.seen == 1 {
		r.prevClose = x
		return
	}

	delta := x - r.prevClose
	r.prevClose = x

	gain, loss := 0.0, 0.0
	if delta > 0 {
		gain = delta
	} else {
		loss = -delta
	}

	n := float64(r.n)
	if r.seen <= r.n+1 {
		// accumulation phase
		r.avgGain += gain
		r.avgLoss += loss
		if r.seen < r.n+1 {
			return
		}
		r.avgGain /= n
		r.avgLoss /= n
		r.ready = true
	} else {
		r.avgGain = (r.avgGain*(n-1) + gain) / n
		r.avgLoss = (r.avgLoss*(n-1) + loss) / n
	}

	if r.avgLoss == 0 {
		r.value = 100
		return
	}
	rs := r.avgGain / r.avgLoss
	r.value = 100 - 100/(1+rs)
}
