package strategies

import (
	"fmt"
	"time"

	"github.com/rustyeddy/rsidaily/market"
	"github.com/rustyeddy/rsidaily/market/indicators"
	"github.com/shopspring/decimal"
)

// RSIDaily enters long on an RSI higher low below the low threshold and
// manages the position with time and price based exits. It owns its RSI and
// holds until the indicator has enough history.
type RSIDaily struct {
	cfg     RSIDailyConfig
	rsi     *indicators.RSI
	state   State
	emitter Emitter
	name    string
}

func NewRSIDaily(cfg RSIDailyConfig) *RSIDaily {
	if err := cfg.Validate(); err != nil {
		panic("RSIDaily: " + err.Error())
	}
	return &RSIDaily{
		cfg:  cfg,
		rsi:  indicators.NewRSI(cfg.Period),
		name: fmt.Sprintf("RSI_DAILY(%d,%.0f,%.0f)", cfg.Period, cfg.LowThreshold, cfg.HighThreshold),
	}
}

func (x *RSIDaily) Name() string           { return x.name }
func (x *RSIDaily) Ready() bool            { return x.rsi.Ready() }
func (x *RSIDaily) State() State           { return x.state }
func (x *RSIDaily) Config() RSIDailyConfig { return x.cfg }

// Subscribe registers a consumer of every evaluated step.
func (x *RSIDaily) Subscribe(h AdviceHandler) { x.emitter.Subscribe(h) }

func (x *RSIDaily) Reset() {
	x.rsi.Reset()
	x.state = State{}
}

// Restore replaces the strategy state, e.g. from a saved snapshot.
func (x *RSIDaily) Restore(s State) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("restore state: %w", err)
	}
	x.state = s
	return nil
}

// Update consumes the next closed candle and returns a decision.
func (x *RSIDaily) Update(c market.Candle) Decision {
	x.rsi.Update(c)

	if !x.Ready() {
		return RSIDailyDecision{
			rule:  RuleWarmingUp,
			Close: c.Close,
			RSI:   x.rsi.Float64(),
			State: x.state,
		}
	}
	return x.Evaluate(c.Time, c.Close, x.rsi.Float64())
}

// Evaluate runs one step with an externally computed oscillator reading.
func (x *RSIDaily) Evaluate(t time.Time, close decimal.Decimal, rsi float64) Decision {
	next, adv, rule := Step(x.state, close, rsi, x.cfg)
	x.state = next

	x.emitter.Emit(AdviceEvent{
		Time:   t,
		Close:  close,
		RSI:    rsi,
		Advice: adv,
		Rule:   rule,
		State:  next,
	})

	return RSIDailyDecision{
		advice: adv,
		rule:   rule,
		Close:  close,
		RSI:    rsi,
		State:  next,
	}
}

type RSIDailyDecision struct {
	advice Advice
	rule   Rule

	Close decimal.Decimal
	RSI   float64
	State State
}

func (x RSIDailyDecision) Signal() Signal { return x.advice.Final() }
func (x RSIDailyDecision) Advice() Advice { return x.advice }
func (x RSIDailyDecision) Rule() Rule     { return x.rule }
func (x RSIDailyDecision) Reason() string { return x.rule.Reason() }
