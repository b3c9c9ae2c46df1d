package strategies

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdviceEvent is what subscribers see for every evaluated step.
type AdviceEvent struct {
	Time   time.Time
	Close  decimal.Decimal
	RSI    float64
	Advice Advice
	Rule   Rule
	State  State
}

// AdviceHandler consumes advice. Handlers must not influence decisions.
type AdviceHandler interface {
	HandleAdvice(ev AdviceEvent)
}

// AdviceFunc adapts a function to AdviceHandler.
type AdviceFunc func(ev AdviceEvent)

func (f AdviceFunc) HandleAdvice(ev AdviceEvent) { f(ev) }

// Emitter forwards each step's advice, verbatim and in order, to its
// subscribers. It keeps no record of previous advice.
type Emitter struct {
	handlers []AdviceHandler
}

func (e *Emitter) Subscribe(h AdviceHandler) {
	if h == nil {
		return
	}
	e.handlers = append(e.handlers, h)
}

func (e *Emitter) Emit(ev AdviceEvent) {
	for _, h := range e.handlers {
		h.HandleAdvice(ev)
	}
}
