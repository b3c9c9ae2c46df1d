package strategies

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testConfig() RSIDailyConfig {
	cfg := DefaultRSIDailyConfig()
	cfg.LowThreshold = 40
	cfg.HighThreshold = 85
	return cfg
}

func openAt(price string, duration, wrong int) State {
	return State{
		PositionOpen: true,
		OpenPrice:    dec(price),
		CurrentClose: dec(price),
		Duration:     duration,
		WrongCount:   wrong,
	}
}

type stepResult struct {
	state  State
	advice Advice
	rule   Rule
}

func feedRSI(s State, cfg RSIDailyConfig, close string, readings ...float64) []stepResult {
	out := make([]stepResult, 0, len(readings))
	for _, r := range readings {
		var adv Advice
		var rule Rule
		s, adv, rule = Step(s, dec(close), r, cfg)
		out = append(out, stepResult{state: s, advice: adv, rule: rule})
	}
	return out
}

func TestPivot_StaysEmptyAboveThreshold(t *testing.T) {
	cfg := testConfig()
	res := feedRSI(State{}, cfg, "100", 40, 55, 70, 99.9, 40.0001, 85)

	for _, r := range res {
		assert.Empty(t, r.advice)
		assert.Equal(t, RuleWaiting, r.rule)
		assert.Equal(t, Pivots{}, r.state.Pivots)
		assert.False(t, r.state.PositionOpen)
	}
}

func TestPivot_RecoveryInvalidatesPattern(t *testing.T) {
	cfg := testConfig()
	res := feedRSI(State{}, cfg, "100", 30, 45, 35)

	assert.Equal(t, 30.0, res[0].state.Pivots.FRSI)
	assert.Equal(t, RuleFirstLow, res[0].rule)

	assert.Equal(t, 0.0, res[1].state.Pivots.FRSI)
	assert.Equal(t, RulePivotInvalidated, res[1].rule)

	assert.Equal(t, 35.0, res[2].state.Pivots.FRSI)
	assert.Equal(t, RuleFirstLow, res[2].rule)

	for _, r := range res {
		assert.Empty(t, r.advice)
		assert.False(t, r.state.PositionOpen)
	}
}

func TestPivot_HigherLowEntersLong(t *testing.T) {
	cfg := testConfig()

	s := State{}
	s, adv, rule := Step(s, dec("100"), 30, cfg)
	require.Empty(t, adv)
	require.Equal(t, RuleFirstLow, rule)
	require.Equal(t, 30.0, s.Pivots.FRSI)

	s, adv, rule = Step(s, dec("98"), 35, cfg)
	require.Empty(t, adv)
	require.Equal(t, RuleSecondLow, rule)
	require.Equal(t, 30.0, s.Pivots.RSI1)
	require.Equal(t, 35.0, s.Pivots.RSI2)

	s, adv, rule = Step(s, dec("97.5"), 32, cfg)
	require.Equal(t, Advice{Long}, adv)
	require.Equal(t, RuleHigherLowEntry, rule)

	assert.True(t, s.PositionOpen)
	assert.True(t, s.OpenPrice.Equal(dec("97.5")))
	assert.True(t, s.CurrentClose.Equal(dec("97.5")))
	assert.Equal(t, 1, s.Duration)
	assert.Equal(t, 0, s.WrongCount)
	assert.Equal(t, Pivots{RSI3: 32}, s.Pivots)
}

func TestPivot_DeeperLowAndBreakdown(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name     string
		readings []float64
		want     []Rule
		pivots   Pivots
	}{
		{
			name:     "deeper first low replaces FRSI",
			readings: []float64{30, 25},
			want:     []Rule{RuleFirstLow, RuleDeeperLow},
			pivots:   Pivots{FRSI: 25},
		},
		{
			name:     "third reading above second low breaks pattern",
			readings: []float64{30, 35, 36},
			want:     []Rule{RuleFirstLow, RuleSecondLow, RulePivotInvalidated},
			pivots:   Pivots{},
		},
		{
			name:     "third reading below first low breaks pattern",
			readings: []float64{30, 35, 29},
			want:     []Rule{RuleFirstLow, RuleSecondLow, RulePivotInvalidated},
			pivots:   Pivots{},
		},
		{
			name:     "equal to first low still enters",
			readings: []float64{30, 35, 30},
			want:     []Rule{RuleFirstLow, RuleSecondLow, RuleHigherLowEntry},
			pivots:   Pivots{RSI3: 30},
		},
		{
			name:     "second low equal to first low",
			readings: []float64{30, 30},
			want:     []Rule{RuleFirstLow, RuleSecondLow},
			pivots:   Pivots{FRSI: 30, RSI1: 30, RSI2: 30},
		},
		{
			name:     "recovery after second low",
			readings: []float64{30, 35, 40},
			want:     []Rule{RuleFirstLow, RuleSecondLow, RulePivotInvalidated},
			pivots:   Pivots{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := feedRSI(State{}, cfg, "100", tt.readings...)
			got := make([]Rule, len(res))
			for i, r := range res {
				got[i] = r.rule
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.pivots, res[len(res)-1].state.Pivots)
		})
	}
}

func TestPosition_FlipRoundTrip(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name     string
		duration int
		wrong    int
		rule     Rule
	}{
		{"first check", cfg.Checkpoints.FirstCheck, 0, RuleEarlyFlip},
		{"second check", cfg.Checkpoints.SecondCheck, 1, RuleSecondCheckFlip},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, adv, rule := Step(openAt("100", tt.duration, tt.wrong), dec("99.25"), 50, cfg)

			require.Equal(t, Advice{Short, Long}, adv)
			require.True(t, adv.IsFlip())
			require.Equal(t, tt.rule, rule)

			assert.True(t, s.PositionOpen)
			assert.Equal(t, 1, s.Duration)
			assert.Equal(t, tt.wrong+1, s.WrongCount)
			assert.True(t, s.OpenPrice.Equal(dec("99.25")))
			assert.True(t, s.OpenPrice.Equal(s.CurrentClose))
		})
	}
}

func TestPosition_RetryCap(t *testing.T) {
	cfg := testConfig()
	require.Equal(t, 3, cfg.RetryLimit)

	s := openAt("100", 1, 0)
	for i, px := range []string{"99", "98", "97"} {
		var adv Advice
		var rule Rule
		s, adv, rule = Step(s, dec(px), 50, cfg)
		require.Equal(t, Advice{Short, Long}, adv, "step %d", i)
		require.Equal(t, RuleEarlyFlip, rule)
		require.Equal(t, i+1, s.WrongCount)
		require.Equal(t, 1, s.Duration)
	}

	s, adv, rule := Step(s, dec("96"), 50, cfg)
	assert.Equal(t, Advice{Short}, adv)
	assert.Equal(t, RuleEarlyGiveUp, rule)
	assert.False(t, s.PositionOpen)
	assert.Equal(t, 0, s.Duration)
	assert.Equal(t, 0, s.WrongCount)
}

func TestPosition_SecondCheckIgnoresRetryCap(t *testing.T) {
	cfg := testConfig()

	s, adv, rule := Step(openAt("100", 3, cfg.RetryLimit), dec("99"), 50, cfg)
	require.Equal(t, Advice{Short, Long}, adv)
	require.Equal(t, RuleSecondCheckFlip, rule)
	require.Equal(t, cfg.RetryLimit+1, s.WrongCount)

	// past the cap the first-check equality never matches, so it flips again
	s, adv, rule = Step(s, dec("98"), 50, cfg)
	require.Equal(t, Advice{Short, Long}, adv)
	require.Equal(t, RuleEarlyFlip, rule)
	require.Equal(t, cfg.RetryLimit+2, s.WrongCount)
}

func TestPosition_Rules(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name     string
		state    State
		close    string
		rsi      float64
		advice   Advice
		rule     Rule
		duration int
	}{
		{"first check price unchanged holds", openAt("100", 1, 0), "100", 50, nil, RuleHolding, 2},
		{"day profit", openAt("100", 24, 0), "116", 50, Advice{Short}, RuleDayProfit, 0},
		{"day profit needs strictly above", openAt("100", 24, 0), "115", 50, nil, RuleHolding, 25},
		{"day profit only on the day", openAt("100", 25, 0), "116", 50, nil, RuleHolding, 26},
		{"half week stop", openAt("100", 95, 0), "98", 50, Advice{Short}, RuleHalfWeekStop, 0},
		{"half week stop at take loss", openAt("100", 120, 0), "97", 50, Advice{Short}, RuleHalfWeekStop, 0},
		{"below take loss holds", openAt("100", 95, 0), "96", 50, nil, RuleHolding, 96},
		{"half week stop not before checkpoint", openAt("100", 94, 0), "98", 50, nil, RuleHolding, 95},
		{"stagnant momentum", openAt("100", 100, 0), "101", 30, Advice{Short}, RuleStagnantMomentum, 0},
		{"stagnant momentum window ends", openAt("100", 169, 0), "101", 30, nil, RuleHolding, 170},
		{"stagnant momentum window end inclusive", openAt("100", 168, 0), "101", 30, Advice{Short}, RuleStagnantMomentum, 0},
		{"overbought profit", openAt("100", 10, 0), "101", 85, Advice{Short}, RuleOverboughtProfit, 0},
		{"overbought without profit holds", openAt("100", 10, 0), "100", 90, nil, RuleHolding, 11},
		{"overbought and above profit stop prefers rule six", openAt("100", 10, 0), "131", 90, Advice{Short}, RuleOverboughtProfit, 0},
		{"default increments duration", openAt("100", 7, 2), "100.5", 60, nil, RuleHolding, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, adv, rule := Step(tt.state, dec(tt.close), tt.rsi, cfg)
			assert.Equal(t, tt.advice, adv)
			assert.Equal(t, tt.rule, rule)
			assert.Equal(t, tt.duration, s.Duration)
			if len(adv) == 1 && adv[0] == Short {
				assert.False(t, s.PositionOpen)
				assert.Equal(t, 0, s.WrongCount)
			}
		})
	}
}

func TestPosition_ProfitStopOverboughtNeedsStopBelowOpen(t *testing.T) {
	// With a positive MinProfit rule six always matches first. A negative
	// ratio puts the profit stop under the open price and exposes rule seven.
	cfg := testConfig()
	cfg.MinProfit = -0.01

	s, adv, rule := Step(openAt("100", 10, 0), dec("99.5"), 90, cfg)
	assert.Equal(t, Advice{Short}, adv)
	assert.Equal(t, RuleProfitStopOverbought, rule)
	assert.False(t, s.PositionOpen)
}

func TestBounds(t *testing.T) {
	b := DefaultRSIDailyConfig().Bounds(dec("100"))
	assert.True(t, b.ProfitStop.Equal(dec("130")))
	assert.True(t, b.TakeLoss.Equal(dec("97")))
	assert.True(t, b.DayProfit.Equal(dec("115")))
}

func TestStep_PanicsOnBrokenInvariant(t *testing.T) {
	cfg := testConfig()

	require.Panics(t, func() {
		Step(State{Duration: 3}, dec("100"), 50, cfg)
	})
	require.Panics(t, func() {
		Step(State{WrongCount: 1}, dec("100"), 50, cfg)
	})
	require.Panics(t, func() {
		Step(State{PositionOpen: true, OpenPrice: dec("100")}, dec("100"), 50, cfg)
	})
}

func TestStep_InvariantsHoldOnRandomWalk(t *testing.T) {
	cfg := testConfig()
	rng := rand.New(rand.NewSource(42))

	s := State{}
	px := 100.0
	rsi := 50.0
	prevWrong := 0
	entries := 0

	for i := 0; i < 20000; i++ {
		px *= 1 + (rng.Float64()-0.5)*0.04
		rsi += (rng.Float64() - 0.5) * 20
		if rsi < 1 {
			rsi = 1
		}
		if rsi > 99 {
			rsi = 99
		}

		wasOpen := s.PositionOpen
		var adv Advice
		s, adv, _ = Step(s, decimal.NewFromFloat(px).Round(2), rsi, cfg)

		require.NoError(t, s.Validate())
		require.LessOrEqual(t, len(adv), 2)
		if !s.PositionOpen {
			require.Equal(t, 0, s.Duration)
			require.Equal(t, 0, s.WrongCount)
			prevWrong = 0
			continue
		}
		if !wasOpen {
			entries++
			require.Equal(t, Advice{Long}, adv)
		} else {
			require.GreaterOrEqual(t, s.WrongCount, prevWrong)
		}
		prevWrong = s.WrongCount
	}
	require.Greater(t, entries, 0)
}

func TestAdviceHelpers(t *testing.T) {
	assert.Equal(t, Hold, Advice(nil).Final())
	assert.Equal(t, "HOLD", Advice(nil).String())
	assert.Equal(t, Long, Advice{Short, Long}.Final())
	assert.Equal(t, "SHORT+LONG", Advice{Short, Long}.String())
	assert.False(t, Advice{Short}.IsFlip())
}
