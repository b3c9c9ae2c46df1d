package strategies

// detectPivot runs while flat. It looks for an oversold dip, a partial
// rebound that stays oversold, then a second dip that holds above the first.
// Any disqualifying reading drops the partial pattern.
func detectPivot(s *State, rsi float64, cfg RSIDailyConfig) (Advice, Rule) {
	p := &s.Pivots

	if p.FRSI == 0 {
		if rsi < cfg.LowThreshold {
			p.FRSI = rsi
			return nil, RuleFirstLow
		}
		return nil, RuleWaiting
	}

	// recovered out of oversold before the pattern completed
	if rsi >= cfg.LowThreshold {
		p.clear()
		return nil, RulePivotInvalidated
	}

	if p.RSI2 == 0 {
		if rsi >= p.FRSI {
			p.RSI1 = p.FRSI
			p.RSI2 = rsi
			return nil, RuleSecondLow
		}
		p.FRSI = rsi
		return nil, RuleDeeperLow
	}

	if rsi < p.RSI2 && rsi >= p.RSI1 {
		p.RSI3 = rsi
		p.clear()
		s.enter(s.CurrentClose)
		return Advice{Long}, RuleHigherLowEntry
	}

	p.clear()
	return nil, RulePivotInvalidated
}
