package middleware

import (
	"context"
	"errors"
	"testing"

	"onboarder/internal/audit"
	"onboarder/internal/domain"
	"onboarder/internal/testutil"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type mockMessageAuditor struct {
	mock.Mock
}

func (m *mockMessageAuditor) Message(ctx context.Context, username string, state domain.State, text string) {
	m.Called(ctx, username, state, text)
}

func TestFlaggedMessages(t *testing.T) {
	message := domain.Event{Kind: domain.EventMessageReceived, UserID: "u1", Username: "bob", Text: "let me in"}

	tests := []struct {
		name        string
		event       domain.Event
		setupMocks  func(*testutil.MockFlagRepository, *testutil.MockUserRepository, *mockMessageAuditor)
		expectAudit bool
	}{
		{
			name:  "flagged user message is logged",
			event: message,
			setupMocks: func(f *testutil.MockFlagRepository, u *testutil.MockUserRepository, a *mockMessageAuditor) {
				f.On("IsFlagged", mock.Anything, "u1").Return(true, nil)
				u.On("Get", mock.Anything, "bob").Return(testutil.NewTestRecord("bob", domain.StateDeclined, ""), nil)
				a.On("Message", mock.Anything, "bob", domain.StateDeclined, "let me in").Return()
			},
			expectAudit: true,
		},
		{
			name:  "other users are not logged",
			event: message,
			setupMocks: func(f *testutil.MockFlagRepository, u *testutil.MockUserRepository, a *mockMessageAuditor) {
				f.On("IsFlagged", mock.Anything, "u1").Return(false, nil)
			},
		},
		{
			name:  "flag lookup failure still handles the event",
			event: message,
			setupMocks: func(f *testutil.MockFlagRepository, u *testutil.MockUserRepository, a *mockMessageAuditor) {
				f.On("IsFlagged", mock.Anything, "u1").Return(false, errors.New("db down"))
			},
		},
		{
			name:       "reactions are not checked",
			event:      testutil.Reaction(domain.EventReactionAdded, "u1", "bob", "p1", domain.SymbolYes),
			setupMocks: func(*testutil.MockFlagRepository, *testutil.MockUserRepository, *mockMessageAuditor) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := new(testutil.MockFlagRepository)
			users := new(testutil.MockUserRepository)
			auditor := new(mockMessageAuditor)
			tt.setupMocks(flags, users, auditor)

			called := false
			next := func(ctx context.Context, ev domain.Event) error {
				called = true
				return nil
			}

			err := FlaggedMessages(flags, users, auditor, testutil.NewTestLogger())(next)(context.Background(), tt.event)

			require.NoError(t, err)
			assert.True(t, called)
			flags.AssertExpectations(t)
			users.AssertExpectations(t)
			auditor.AssertExpectations(t)
			if !tt.expectAudit {
				auditor.AssertNotCalled(t, "Message", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestRecover(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := Recover(zap.New(core))(func(context.Context, domain.Event) error {
		panic("boom")
	})

	err := h(context.Background(), domain.Event{UserID: "u1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, 1, logs.FilterMessage("Panic while handling event").Len())
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	var seen string
	h := Logging(zap.New(core))(func(ctx context.Context, ev domain.Event) error {
		seen = audit.EventID(ctx)
		return nil
	})

	require.NoError(t, h(context.Background(), domain.Event{Kind: domain.EventMemberJoined, UserID: "u1"}))

	_, err := ksuid.Parse(seen)
	require.NoError(t, err)
	entries := logs.FilterMessage("Event handled").All()
	require.Len(t, entries, 1)
	assert.Equal(t, seen, entries[0].ContextMap()["event_id"])
}

func TestLogging_Error(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	failure := errors.New("send failed")
	h := Logging(zap.New(core))(func(context.Context, domain.Event) error {
		return failure
	})

	err := h(context.Background(), testutil.Reaction(domain.EventReactionAdded, "u1", "bob", "p1", domain.SymbolYes))

	assert.ErrorIs(t, err, failure)
	assert.Equal(t, 1, logs.FilterMessage("Event failed").Len())
	assert.Empty(t, audit.EventID(context.Background()))
}
