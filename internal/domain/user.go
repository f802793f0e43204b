package domain

import "time"

// State is a user's position in the onboarding workflow
type State string

const (
	StateNew               State = "NEW"
	StateLanguageRequested State = "LANGUAGE_REQUESTED"
	StateCocRequested      State = "COC_REQUESTED"
	StateOrderConfirm      State = "ORDER_CONFIRM"
	StateProgramSelection  State = "PROGRAM_SELECTION"
	StateFinished          State = "FINISHED"
	StateDeclined          State = "DECLINED"
)

// progression orders the non-declined states
var progression = map[State]int{
	StateNew:               0,
	StateLanguageRequested: 1,
	StateCocRequested:      2,
	StateOrderConfirm:      3,
	StateProgramSelection:  4,
	StateFinished:          5,
}

// Rank returns the position of s in the progression order.
// DECLINED branches off COC_REQUESTED and has no rank of its own.
func (s State) Rank() (int, bool) {
	r, ok := progression[s]
	return r, ok
}

// Terminal reports whether no further transition may leave s
func (s State) Terminal() bool {
	return s == StateFinished || s == StateDeclined
}

// Valid reports whether s is a known state
func (s State) Valid() bool {
	_, ok := progression[s]
	return ok || s == StateDeclined
}

// Language is the conversation language chosen by the user
type Language string

const (
	LanguageUnset   Language = ""
	LanguageGerman  Language = "de"
	LanguageEnglish Language = "en"
)

// UserRecord is the persisted per-user workflow state
type UserRecord struct {
	Username     string
	State        State
	Language     Language
	LastPromptID string // empty when no prompt is outstanding
	Version      int64
	UpdatedAt    time.Time
}

// NewUserRecord returns the record created on first contact
func NewUserRecord(username string) UserRecord {
	return UserRecord{Username: username, State: StateNew, Version: 1}
}
