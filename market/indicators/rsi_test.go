package indicators

import (
	"math"
	"testing"

	"github.com/rustyeddy/rsidaily/market"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// helper to create a candle with close only
func candle(close float64) market.Candle {
	return market.Candle{
		Close: decimal.NewFromFloat(close),
	}
}

func TestRSI_WarmupAndReady(t *testing.T) {
	rsi := NewRSI(3)

	require.False(t, rsi.Ready())
	require.Equal(t, 4, rsi.Warmup())
	require.Equal(t, "RSI(3)", rsi.Name())

	for _, v := range []float64{10, 11, 12} {
		rsi.Update(candle(v))
		require.False(t, rsi.Ready())
	}

	rsi.Update(candle(11))
	require.True(t, rsi.Ready())
}

func TestRSI_KnownSequence(t *testing.T) {
	rsi := NewRSI(3)

	// deltas: +1, +1, -1  => avgGain = 2/3, avgLoss = 1/3, RS = 2
	// RSI = 100 - 100/3 = 66.666...
	for _, v := range []float64{10, 11, 12, 11} {
		rsi.Update(candle(v))
	}
	require.InDelta(t, 66.6666666667, rsi.Float64(), 1e-6)

	// next delta -1: avgGain = (2/3*2)/3 = 4/9, avgLoss = (1/3*2+1)/3 = 5/9
	// RS = 0.8, RSI = 100 - 100/1.8 = 44.444...
	rsi.Update(candle(10))
	require.InDelta(t, 44.4444444444, rsi.Float64(), 1e-6)
}

func TestRSI_AllUpIs100(t *testing.T) {
	rsi := NewRSI(5)
	for i := 0; i < 20; i++ {
		rsi.Update(candle(100 + float64(i)))
	}
	require.True(t, rsi.Ready())
	require.Equal(t, 100.0, rsi.Float64())
}

func TestRSI_Reset(t *testing.T) {
	rsi := NewRSI(3)
	for _, v := range []float64{10, 11, 12, 11} {
		rsi.Update(candle(v))
	}
	require.True(t, rsi.Ready())

	rsi.Reset()
	require.False(t, rsi.Ready())
	require.Equal(t, 0.0, rsi.Float64())
	require.Equal(t, "RSI(3)", rsi.Name())
}

func TestRSI_MatchesBatchSeries(t *testing.T) {
	closes := make([]float64, 0, 200)
	for i := 0; i < 200; i++ {
		closes = append(closes, 100+10*math.Sin(float64(i)/7)+float64(i%5))
	}

	series, err := RSISeries(closes, 14)
	require.NoError(t, err)
	require.Len(t, series, len(closes))

	rsi := NewRSI(14)
	for i, c := range closes {
		rsi.UpdateFloat(c)
		if i < 14 {
			require.False(t, rsi.Ready())
			continue
		}
		require.True(t, rsi.Ready())
		require.InDelta(t, series[i], rsi.Float64(), 1e-6, "index %d", i)
	}
}

func TestRSISeries_Errors(t *testing.T) {
	_, err := RSISeries([]float64{1, 2, 3}, 1)
	require.Error(t, err)

	_, err = RSISeries([]float64{1, 2, 3}, 14)
	require.Error(t, err)
}

func TestRSI_FlatSeriesMatchesBatch(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
	}{
		{"flat", []float64{100, 100, 100, 100, 100, 100, 100}},
		{"flat then down", []float64{100, 100, 100, 100, 100, 99, 98}},
		{"moved then flat", []float64{100, 101, 100, 100, 100, 100, 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series, err := RSISeries(tt.closes, 3)
			require.NoError(t, err)

			rsi := NewRSI(3)
			for i, c := range tt.closes {
				rsi.UpdateFloat(c)
				if !rsi.Ready() {
					continue
				}
				require.InDelta(t, series[i], rsi.Float64(), 1e-6, "index %d", i)
			}
		})
	}

	series, err := RSISeries([]float64{100, 100, 100, 100, 100}, 3)
	require.NoError(t, err)
	require.Equal(t, 100.0, series[3])
}
