package service

import (
	"sync/atomic"

	"onboarder/internal/domain"
)

// Guard drops events that must not drive the workflow
type Guard struct {
	selfID atomic.Pointer[string]
}

// NewGuard creates a guard for the bot identity selfID. An empty id can be filled in later with SetSelfID.
func NewGuard(selfID string) *Guard {
	g := &Guard{}
	g.SetSelfID(selfID)
	return g
}

// SetSelfID sets the bot identity once it is known
func (g *Guard) SetSelfID(id string) {
	g.selfID.Store(&id)
}

// FromSelf reports whether the bot itself caused the event
func (g *Guard) FromSelf(ev domain.Event) bool {
	self := g.selfID.Load()
	return self != nil && *self != "" && ev.UserID == *self
}
// Accept reports whether ev may be applied to record.
// Reactions are only accepted on the prompt the user is currently expected to answer.
func (g *Guard) Accept(ev domain.Event, record domain.UserRecord) bool {
	if g.FromSelf(ev) {
		return false
	}
	if ev.IsReaction() {
		return record.LastPromptID != "" && ev.PromptID == record.LastPromptID
	}
	return true
}
