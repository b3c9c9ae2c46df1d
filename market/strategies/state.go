package strategies

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Pivots is the working memory of the higher-low detector. FRSI != 0 is the
// only witness that a first low has been seen.
type Pivots struct {
	FRSI float64 `json:"frsi" yaml:"frsi"`
	RSI1 float64 `json:"rsi1" yaml:"rsi1"`
	RSI2 float64 `json:"rsi2" yaml:"rsi2"`
	RSI3 float64 `json:"rsi3" yaml:"rsi3"`
}

func (p *Pivots) clear() {
	p.FRSI = 0
	p.RSI1 = 0
	p.RSI2 = 0
}

// State is everything the strategy remembers between candles. It is a plain
// value so a run can be snapshotted and replayed.
type State struct {
	PositionOpen bool            `json:"position_open" yaml:"position_open"`
	OpenPrice    decimal.Decimal `json:"open_price" yaml:"open_price"`
	CurrentClose decimal.Decimal `json:"current_close" yaml:"current_close"`
	Duration     int             `json:"duration" yaml:"duration"`
	WrongCount   int             `json:"wrong_count" yaml:"wrong_count"`
	Pivots       Pivots          `json:"pivots" yaml:"pivots"`
}

// Validate reports a broken flat/open invariant.
func (s State) Validate() error {
	if s.Duration < 0 || s.WrongCount < 0 {
		return fmt.Errorf("negative counters: duration=%d wrong=%d", s.Duration, s.WrongCount)
	}
	if !s.PositionOpen && (s.Duration != 0 || s.WrongCount != 0) {
		return fmt.Errorf("flat with stale counters: duration=%d wrong=%d", s.Duration, s.WrongCount)
	}
	if s.PositionOpen && s.Duration < 1 {
		return fmt.Errorf("open position with duration %d", s.Duration)
	}
	return nil
}

func (s State) mustValidate(when string) {
	if err := s.Validate(); err != nil {
		panic(fmt.Sprintf("rsi-daily state invariant violated %s: %v", when, err))
	}
}

func (s *State) enter(price decimal.Decimal) {
	s.PositionOpen = true
	s.OpenPrice = price
	s.Duration = 1
}

func (s *State) flatten() {
	s.PositionOpen = false
	s.Duration = 0
	s.WrongCount = 0
}
