package backtest

import (
	"bytes"
	"context"
	"testing"

	"github.com/rustyeddy/rsidaily/market/strategies"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultToRunAndPrint(t *testing.T) {
	t.Parallel()

	cs := candlesFromCloses(t, 100, 90, 120)
	e := NewEngine(cs, Config{Instrument: "ETH_USD", StartingBalance: dec("500")}, nil, "RUN7")
	res, err := e.Run(context.Background(), &scriptStrategy{script: []strategies.Advice{long, flip, short}})
	require.NoError(t, err)

	run := res.ToRun("H1", "eth.csv", []byte("x: 1\n"))
	assert.Equal(t, "RUN7", run.RunID)
	assert.Equal(t, "H1", run.Timeframe)
	assert.Equal(t, "eth.csv", run.Dataset)
	assert.Equal(t, 2, run.Trades)
	assert.Equal(t, 1, run.Flips)
	assert.True(t, run.NetPL.Equal(dec("20")))
	assert.False(t, run.Created.IsZero())

	var buf bytes.Buffer
	res.PrintResult(&buf)
	out := buf.String()
	assert.Contains(t, out, "Run: RUN7")
	assert.Contains(t, out, "Trades: 2 (wins 1, losses 1, flips 1)")
	assert.Contains(t, out, "Net P/L: 20.00 (4.00%)")
	assert.Contains(t, out, "Profit fac.: 3.00")
}
