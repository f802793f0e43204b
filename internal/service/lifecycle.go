package service

import (
	"context"
	"fmt"

	"onboarder/internal/domain"

	"github.com/looplab/fsm"
)

// Lifecycle transitions between onboarding states
const (
	TransitionRequestLanguage = "request_language"
	TransitionRequestCoc      = "request_coc"
	TransitionDecline         = "decline"
	TransitionConfirmOrder    = "confirm_order"
	TransitionSelectPrograms  = "select_programs"
	TransitionFinish          = "finish"
)

var lifecycleEvents = fsm.Events{
	{Name: TransitionRequestLanguage, Src: []string{string(domain.StateNew)}, Dst: string(domain.StateLanguageRequested)},
	{Name: TransitionRequestCoc, Src: []string{string(domain.StateLanguageRequested)}, Dst: string(domain.StateCocRequested)},
	{Name: TransitionDecline, Src: []string{string(domain.StateCocRequested)}, Dst: string(domain.StateDeclined)},
	{Name: TransitionConfirmOrder, Src: []string{string(domain.StateCocRequested)}, Dst: string(domain.StateOrderConfirm)},
	{
		Name: TransitionSelectPrograms,
		Src:  []string{string(domain.StateCocRequested), string(domain.StateOrderConfirm)},
		Dst:  string(domain.StateProgramSelection),
	},
	{Name: TransitionFinish, Src: []string{string(domain.StateOrderConfirm)}, Dst: string(domain.StateFinished)},
}

// advance fires transition from state and returns the resulting state
func advance(from domain.State, transition string) (domain.State, error) {
	machine := fsm.NewFSM(string(from), lifecycleEvents, fsm.Callbacks{})
	if err := machine.Event(context.Background(), transition); err != nil {
		return from, fmt.Errorf("%s from %s: %w", transition, from, err)
	}
	return domain.State(machine.Current()), nil
}

// AvailableTransitions lists the lifecycle transitions that may leave state
func AvailableTransitions(state domain.State) []string {
	return fsm.NewFSM(string(state), lifecycleEvents, fsm.Callbacks{}).AvailableTransitions()
}
