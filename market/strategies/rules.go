package strategies

// Rule names the branch that decided a step.
type Rule string

const (
	RuleWarmingUp        Rule = "warming-up"
	RuleWaiting          Rule = "waiting"
	RuleFirstLow         Rule = "first-low"
	RuleDeeperLow        Rule = "deeper-low"
	RuleSecondLow        Rule = "second-low"
	RulePivotInvalidated Rule = "pivot-invalidated"
	RuleHigherLowEntry   Rule = "higher-low-entry"

	RuleEarlyGiveUp          Rule = "early-adverse-give-up"
	RuleEarlyFlip            Rule = "early-adverse-flip"
	RuleSecondCheckFlip      Rule = "second-check-flip"
	RuleDayProfit            Rule = "day-profit"
	RuleHalfWeekStop         Rule = "half-week-stop"
	RuleStagnantMomentum     Rule = "stagnant-momentum"
	RuleOverboughtProfit     Rule = "overbought-profit"
	RuleProfitStopOverbought Rule = "profit-stop-overbought"
	RuleHolding              Rule = "holding"
)

var ruleReasons = map[Rule]string{
	RuleWarmingUp:            "indicator warming up",
	RuleWaiting:              "rsi above low threshold, waiting for a first low",
	RuleFirstLow:             "first low recorded",
	RuleDeeperLow:            "lower first low recorded",
	RuleSecondLow:            "second low recorded",
	RulePivotInvalidated:     "pivot pattern invalidated",
	RuleHigherLowEntry:       "rsi made a higher low below the low threshold",
	RuleEarlyGiveUp:          "price keeps falling after entry, retry limit reached",
	RuleEarlyFlip:            "better entry found at first check",
	RuleSecondCheckFlip:      "better entry found at second check",
	RuleDayProfit:            "price above day profit target",
	RuleHalfWeekStop:         "price below entry after half a week",
	RuleStagnantMomentum:     "rsi still oversold late in the trade",
	RuleOverboughtProfit:     "rsi overbought and price above entry",
	RuleProfitStopOverbought: "profit stop reached while rsi overbought",
	RuleHolding:              "no exit triggered",
}

func (r Rule) String() string { return string(r) }

// Reason is the human readable form of the rule.
func (r Rule) Reason() string {
	if s, ok := ruleReasons[r]; ok {
		return s
	}
	return string(r)
}

// Exit reports whether the rule closes a position (fully or as a flip).
func (r Rule) Exit() bool {
	switch r {
	case RuleEarlyGiveUp, RuleEarlyFlip, RuleSecondCheckFlip, RuleDayProfit,
		RuleHalfWeekStop, RuleStagnantMomentum, RuleOverboughtProfit, RuleProfitStopOverbought:
		return true
	}
	return false
}
