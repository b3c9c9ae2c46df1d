package strategies

import "github.com/shopspring/decimal"

// Bounds are the price levels derived from the open price each step.
type Bounds struct {
	ProfitStop decimal.Decimal
	TakeLoss   decimal.Decimal
	DayProfit  decimal.Decimal
}

func (c RSIDailyConfig) Bounds(open decimal.Decimal) Bounds {
	one := decimal.NewFromInt(1)
	return Bounds{
		ProfitStop: open.Mul(one.Add(decimal.NewFromFloat(c.MinProfit))),
		TakeLoss:   open.Mul(one.Sub(decimal.NewFromFloat(c.MaxLoss))),
		DayProfit:  open.Mul(one.Add(decimal.NewFromFloat(c.DayMax))),
	}
}

// managePosition runs while a position is open. Rules are checked in a fixed
// priority order and the first match wins.
//
// The retry cap is only enforced at the first check. A flip at the second
// check always happens and still counts toward WrongCount, so WrongCount can
// pass RetryLimit without the give-up branch ever firing.
func managePosition(s *State, rsi float64, cfg RSIDailyConfig) (Advice, Rule) {
	cp := cfg.Checkpoints
	b := cfg.Bounds(s.OpenPrice)
	cur := s.CurrentClose
	open := s.OpenPrice

	switch {
	case s.Duration == cp.FirstCheck && cur.LessThan(open):
		if s.WrongCount == cfg.RetryLimit {
			s.flatten()
			return Advice{Short}, RuleEarlyGiveUp
		}
		flip(s)
		return Advice{Short, Long}, RuleEarlyFlip

	case s.Duration == cp.SecondCheck && cur.LessThan(open):
		flip(s)
		return Advice{Short, Long}, RuleSecondCheckFlip

	case s.Duration == cp.OneDay && cur.GreaterThan(b.DayProfit):
		s.flatten()
		return Advice{Short}, RuleDayProfit

	case s.Duration >= cp.HalfWeek && cur.GreaterThanOrEqual(b.TakeLoss) && cur.LessThan(open):
		s.flatten()
		return Advice{Short}, RuleHalfWeekStop

	case s.Duration >= cp.HalfWeek && s.Duration <= cp.OneWeek &&
		rsi < cfg.LowThreshold && cur.GreaterThan(b.TakeLoss):
		s.flatten()
		return Advice{Short}, RuleStagnantMomentum

	case rsi >= cfg.HighThreshold && cur.GreaterThan(open):
		s.flatten()
		return Advice{Short}, RuleOverboughtProfit

	case cur.GreaterThanOrEqual(b.ProfitStop) && rsi >= cfg.HighThreshold:
		s.flatten()
		return Advice{Short}, RuleProfitStopOverbought
	}

	s.Duration++
	return nil, RuleHolding
}

// flip closes and immediately reopens at the current close.
func flip(s *State) {
	s.enter(s.CurrentClose)
	s.WrongCount++
}
