package strategies

import "github.com/shopspring/decimal"

// Step evaluates one candle. It is pure: the returned State replaces the one
// passed in and the returned Advice is the only output.
//
// Step panics if the incoming state breaks the flat/open invariant; that can
// only happen when a host edits or restores state incorrectly.
func Step(s State, close decimal.Decimal, rsi float64, cfg RSIDailyConfig) (State, Advice, Rule) {
	s.mustValidate("before step")

	s.CurrentClose = close

	var adv Advice
	var rule Rule
	if s.PositionOpen {
		adv, rule = managePosition(&s, rsi, cfg)
	} else {
		adv, rule = detectPivot(&s, rsi, cfg)
	}

	s.mustValidate("after " + string(rule))
	return s, adv, rule
}
