package ledger

import (
	"math"

	"diamond-bot/internal/domain"
)

// Events wraps the global event state. Accrual code receives the
// multiplier through CurrentMultiplier and never reads the state
// directly.
type Events struct {
	state *domain.EventState
}

func NewEvents(state *domain.EventState) *Events {
	return &Events{state: state}
}

func (e *Events) CurrentMultiplier() float64 {
	if !e.state.Active {
		return 1
	}
	return e.state.Multiplier
}

func (e *Events) Active() bool { return e.state.Active }

// Set starts or stops the event. Stopping forces the multiplier back
// to 1 regardless of the supplied value; starting requires a positive
// finite multiplier.
func (e *Events) Set(active bool, multiplier float64) error {
	if !active {
		e.state.Active = false
		e.state.Multiplier = 1
		return nil
	}
	if !(multiplier > 0) || math.IsInf(multiplier, 1) {
		return ErrInvalidMultiplier
	}
	e.state.Active = true
	e.state.Multiplier = multiplier
	return nil
}
