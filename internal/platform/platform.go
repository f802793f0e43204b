// Package platform defines what the onboarding workflow needs from a chat platform.
package platform

import (
	"context"
	"errors"

	"onboarder/internal/domain"
)

var (
	// ErrTransient marks failures worth retrying: network errors, rate limits, server errors.
	ErrTransient = errors.New("transient delivery failure")
	// ErrPermission marks a denied operation; retrying will not help.
	ErrPermission = errors.New("permission denied")
)

// Attachment is a file delivered alongside a message
type Attachment struct {
	Path     string // relative to the attachments directory
	Filename string // name shown to the recipient
}

// OutgoingMessage is a direct message to a user
type OutgoingMessage struct {
	Text        string
	Attachments []Attachment
}

// Messenger sends direct messages and reaction options
type Messenger interface {
	// SendDirectMessage returns the id of the sent message
	SendDirectMessage(ctx context.Context, userID string, msg OutgoingMessage) (string, error)
	AddReaction(ctx context.Context, userID, promptID string, symbol domain.Symbol) error
}

// RoleManager grants and revokes roles on a member. Each call is one atomic batch.
type RoleManager interface {
	GrantRoles(ctx context.Context, userID string, roles []domain.RoleID) error
	RevokeRoles(ctx context.Context, userID string, roles []domain.RoleID) error
}
