package repository

import (
	"context"
	"errors"
	"time"

	"onboarder/internal/domain"
)

// ErrVersionConflict is returned when a record changed since it was loaded
var ErrVersionConflict = errors.New("version conflict")

// UserRepository stores onboarding records keyed by username
type UserRepository interface {
	// Get returns the record for username, creating a NEW record on first contact
	Get(ctx context.Context, username string) (domain.UserRecord, error)
	// Save writes record if the stored version still equals expectedVersion
	Save(ctx context.Context, record domain.UserRecord, expectedVersion int64) error
}

// FlagRepository marks users for elevated audit logging
type FlagRepository interface {
	Flag(ctx context.Context, userID string) error
	IsFlagged(ctx context.Context, userID string) (bool, error)
}

// RegistrationRepository reads registrations placed at signup
type RegistrationRepository interface {
	// FindByUsername returns nil when the user has no registration
	FindByUsername(ctx context.Context, username string) (*domain.Order, error)
}

// AuditEntry is one persisted audit line
type AuditEntry struct {
	ID        string
	Username  string
	State     domain.State
	Message   string
	CreatedAt time.Time
}

// AuditRepository persists audit lines
type AuditRepository interface {
	Append(ctx context.Context, entry AuditEntry) error
}
