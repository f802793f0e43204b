package service

import (
	"testing"

	"onboarder/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestAdvance(t *testing.T) {
	tests := []struct {
		name          string
		from          domain.State
		transition    string
		expected      domain.State
		expectedError bool
	}{
		{name: "join", from: domain.StateNew, transition: TransitionRequestLanguage, expected: domain.StateLanguageRequested},
		{name: "language chosen", from: domain.StateLanguageRequested, transition: TransitionRequestCoc, expected: domain.StateCocRequested},
		{name: "declined", from: domain.StateCocRequested, transition: TransitionDecline, expected: domain.StateDeclined},
		{name: "order found", from: domain.StateCocRequested, transition: TransitionConfirmOrder, expected: domain.StateOrderConfirm},
		{name: "no order", from: domain.StateCocRequested, transition: TransitionSelectPrograms, expected: domain.StateProgramSelection},
		{name: "order rejected", from: domain.StateOrderConfirm, transition: TransitionSelectPrograms, expected: domain.StateProgramSelection},
		{name: "order confirmed", from: domain.StateOrderConfirm, transition: TransitionFinish, expected: domain.StateFinished},
		{name: "skip ahead", from: domain.StateNew, transition: TransitionFinish, expected: domain.StateNew, expectedError: true},
		{name: "leave declined", from: domain.StateDeclined, transition: TransitionConfirmOrder, expected: domain.StateDeclined, expectedError: true},
		{name: "unknown transition", from: domain.StateNew, transition: "teleport", expected: domain.StateNew, expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := advance(tt.from, tt.transition)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, state)
		})
	}
}

func TestLifecycle_NeverMovesBackwards(t *testing.T) {
	states := []domain.State{
		domain.StateNew,
		domain.StateLanguageRequested,
		domain.StateCocRequested,
		domain.StateOrderConfirm,
		domain.StateProgramSelection,
		domain.StateFinished,
		domain.StateDeclined,
	}

	for _, from := range states {
		for _, name := range AvailableTransitions(from) {
			to, err := advance(from, name)
			assert.NoError(t, err)

			if to == domain.StateDeclined {
				assert.Equal(t, domain.StateCocRequested, from, "only the code of conduct may be declined")
				continue
			}
			fromRank, ok := from.Rank()
			assert.True(t, ok)
			toRank, ok := to.Rank()
			assert.True(t, ok)
			assert.Greater(t, toRank, fromRank, "%s -> %s", from, to)
		}
	}
}

func TestLifecycle_TerminalStates(t *testing.T) {
	assert.Empty(t, AvailableTransitions(domain.StateFinished))
	assert.Empty(t, AvailableTransitions(domain.StateDeclined))
	assert.Empty(t, AvailableTransitions(domain.StateProgramSelection))
}
