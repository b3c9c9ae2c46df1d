package strategies

import (
	"strings"

	"github.com/rustyeddy/rsidaily/market"
)

// Strategy is the minimal interface a backtest strategy must implement.
// It is called once per valid candle.
type Strategy interface {
	Name() string
	Reset()
	Ready() bool
	Update(c market.Candle) Decision
}

// Signal is a single directive. Short always means "exit to flat", never a
// short sale.
type Signal int

const (
	Hold Signal = iota
	Long
	Short
)

func (s Signal) String() string {
	switch s {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	default:
		return "HOLD"
	}
}

// Advice is the ordered list of directives produced by one step. An empty
// list means hold; a flip is Short followed by Long.
type Advice []Signal

// Final is the last directive of the step, Hold when empty.
func (a Advice) Final() Signal {
	if len(a) == 0 {
		return Hold
	}
	return a[len(a)-1]
}

// IsFlip reports a close-and-reopen within the same step.
func (a Advice) IsFlip() bool {
	return len(a) == 2 && a[0] == Short && a[1] == Long
}

func (a Advice) String() string {
	if len(a) == 0 {
		return Hold.String()
	}
	parts := make([]string, len(a))
	for i, s := range a {
		parts[i] = s.String()
	}
	return strings.Join(parts, "+")
}

type Decision interface {
	Signal() Signal
	Advice() Advice
	Reason() string
}
