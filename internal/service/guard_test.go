package service

import (
	"testing"

	"onboarder/internal/domain"
	"onboarder/internal/testutil"

	"github.com/stretchr/testify/assert"
)

func TestGuard_Accept(t *testing.T) {
	const self = "bot"

	tests := []struct {
		name     string
		event    domain.Event
		record   domain.UserRecord
		expected bool
	}{
		{
			name:     "join",
			event:    domain.Event{Kind: domain.EventMemberJoined, UserID: "u1"},
			record:   testutil.NewTestRecord("alice", domain.StateNew, ""),
			expected: true,
		},
		{
			name:     "message",
			event:    domain.Event{Kind: domain.EventMessageReceived, UserID: "u1", Text: "hi"},
			record:   testutil.NewTestRecord("alice", domain.StateFinished, ""),
			expected: true,
		},
		{
			name:     "reaction on outstanding prompt",
			event:    testutil.Reaction(domain.EventReactionAdded, "u1", "alice", "p2", domain.SymbolYes),
			record:   testutil.NewTestRecord("alice", domain.StateCocRequested, "p2"),
			expected: true,
		},
		{
			name:     "reaction on older prompt",
			event:    testutil.Reaction(domain.EventReactionAdded, "u1", "alice", "p1", domain.SymbolYes),
			record:   testutil.NewTestRecord("alice", domain.StateCocRequested, "p2"),
			expected: false,
		},
		{
			name:     "removal on older prompt",
			event:    testutil.Reaction(domain.EventReactionRemoved, "u1", "alice", "p1", domain.SymbolTwo),
			record:   testutil.NewTestRecord("alice", domain.StateProgramSelection, "p2"),
			expected: false,
		},
		{
			name:     "reaction without outstanding prompt",
			event:    testutil.Reaction(domain.EventReactionAdded, "u1", "alice", "", domain.SymbolYes),
			record:   testutil.NewTestRecord("alice", domain.StateDeclined, ""),
			expected: false,
		},
		{
			name:     "own reaction",
			event:    testutil.Reaction(domain.EventReactionAdded, self, "bot", "p2", domain.SymbolYes),
			record:   testutil.NewTestRecord("bot", domain.StateCocRequested, "p2"),
			expected: false,
		},
		{
			name:     "own message",
			event:    domain.Event{Kind: domain.EventMessageReceived, UserID: self},
			record:   testutil.NewTestRecord("bot", domain.StateNew, ""),
			expected: false,
		},
	}

	guard := NewGuard(self)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, guard.Accept(tt.event, tt.record))
		})
	}
}

func TestGuard_FromSelf_Unconfigured(t *testing.T) {
	guard := NewGuard("")

	assert.False(t, guard.FromSelf(domain.Event{UserID: ""}))
	assert.False(t, guard.FromSelf(domain.Event{UserID: "u1"}))
}

func TestGuard_SetSelfID(t *testing.T) {
	guard := NewGuard("")
	own := domain.Event{Kind: domain.EventMessageReceived, UserID: "bot"}
	assert.False(t, guard.FromSelf(own))

	guard.SetSelfID("bot")

	assert.True(t, guard.FromSelf(own))
	assert.False(t, guard.Accept(own, testutil.NewTestRecord("bot", domain.StateNew, "")))
}
