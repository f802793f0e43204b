package service

import (
	"onboarder/internal/domain"
	"onboarder/internal/platform"
)

// Effect is one side effect produced by the workflow, executed in order by the Executor
type Effect interface {
	effect()
}

// SendMessage sends a localized direct message
type SendMessage struct {
	Key         string
	Args        []any
	Attachments []platform.Attachment
	Reactions   []domain.Symbol
	// Prompt makes the sent message the user's outstanding prompt
	Prompt bool
}

// GrantRoles adds roles to the member in one batch
type GrantRoles struct {
	Roles []domain.RoleID
}

// RevokeRoles removes roles from the member in one batch
type RevokeRoles struct {
	Roles []domain.RoleID
}

// FlagUser enables elevated audit logging for the user
type FlagUser struct{}

// AlertOperators notifies the operators. Failures are logged and do not abort the decision.
type AlertOperators struct {
	Message string
}

// Persist stores the pending record
type Persist struct{}

// Audit writes an audit line with the pending state
type Audit struct {
	Message string
}

func (SendMessage) effect()    {}
func (GrantRoles) effect()     {}
func (RevokeRoles) effect()    {}
func (FlagUser) effect()       {}
func (AlertOperators) effect() {}
func (Persist) effect()        {}
func (Audit) effect()          {}

// Decision is the workflow's answer to one event
type Decision struct {
	Next    domain.UserRecord
	Effects []Effect
}

// Noop reports whether the event changes nothing
func (d Decision) Noop() bool {
	return len(d.Effects) == 0
}
