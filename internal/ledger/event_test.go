package ledger

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"diamond-bot/internal/domain"
)

func TestEventsDefaultMultiplier(t *testing.T) {
	ev := NewEvents(&domain.EventState{Active: false, Multiplier: 1})
	require.EqualValues(t, 1, ev.CurrentMultiplier())
	require.False(t, ev.Active())
}

func TestEventsStart(t *testing.T) {
	ev := NewEvents(&domain.EventState{Multiplier: 1})
	require.NoError(t, ev.Set(true, 2.5))
	require.True(t, ev.Active())
	require.EqualValues(t, 2.5, ev.CurrentMultiplier())
}

func TestEventsStopForcesMultiplierOne(t *testing.T) {
	state := &domain.EventState{Active: true, Multiplier: 3}
	ev := NewEvents(state)
	require.NoError(t, ev.Set(false, 99))
	require.False(t, state.Active)
	require.EqualValues(t, 1, state.Multiplier)
}

func TestEventsRejectsInvalidMultiplier(t *testing.T) {
	state := &domain.EventState{Active: false, Multiplier: 1}
	ev := NewEvents(state)
	for _, m := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		require.ErrorIs(t, ev.Set(true, m), ErrInvalidMultiplier)
		require.False(t, state.Active, "failed start leaves the state untouched")
		require.EqualValues(t, 1, state.Multiplier)
	}
}
