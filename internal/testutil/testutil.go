package testutil

import (
	"fmt"

	"onboarder/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestRecord creates a record in the given state
func NewTestRecord(username string, state domain.State, promptID string) domain.UserRecord {
	return domain.UserRecord{
		Username:     username,
		State:        state,
		LastPromptID: promptID,
		Version:      1,
	}
}

// NewTestOrder creates a registration
func NewTestOrder(username string, product domain.Product, programs ...domain.Program) *domain.Order {
	return &domain.Order{
		Username: username,
		Product:  product,
		Programs: programs,
	}
}

// Reaction builds a reaction event on promptID
func Reaction(kind domain.EventKind, userID, username, promptID string, symbol domain.Symbol) domain.Event {
	return domain.Event{
		Kind:     kind,
		UserID:   userID,
		Username: username,
		PromptID: promptID,
		Symbol:   symbol,
		Emoji:    fmt.Sprintf(":%s:", symbol),
	}
}
