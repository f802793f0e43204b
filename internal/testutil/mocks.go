package testutil

import (
	"context"

	"onboarder/internal/domain"
	"onboarder/internal/platform"
	"onboarder/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock for UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Get(ctx context.Context, username string) (domain.UserRecord, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(domain.UserRecord), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, record domain.UserRecord, expectedVersion int64) error {
	args := m.Called(ctx, record, expectedVersion)
	return args.Error(0)
}

// MockFlagRepository is a mock for FlagRepository
type MockFlagRepository struct {
	mock.Mock
}

func (m *MockFlagRepository) Flag(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockFlagRepository) IsFlagged(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

// MockRegistrationRepository is a mock for RegistrationRepository
type MockRegistrationRepository struct {
	mock.Mock
}

func (m *MockRegistrationRepository) FindByUsername(ctx context.Context, username string) (*domain.Order, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

// MockAuditRepository is a mock for AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Append(ctx context.Context, entry repository.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockMessenger is a mock for platform.Messenger
type MockMessenger struct {
	mock.Mock
}

func (m *MockMessenger) SendDirectMessage(ctx context.Context, userID string, msg platform.OutgoingMessage) (string, error) {
	args := m.Called(ctx, userID, msg)
	return args.String(0), args.Error(1)
}

func (m *MockMessenger) AddReaction(ctx context.Context, userID, promptID string, symbol domain.Symbol) error {
	args := m.Called(ctx, userID, promptID, symbol)
	return args.Error(0)
}

// MockRoleManager is a mock for platform.RoleManager
type MockRoleManager struct {
	mock.Mock
}

func (m *MockRoleManager) GrantRoles(ctx context.Context, userID string, roles []domain.RoleID) error {
	args := m.Called(ctx, userID, roles)
	return args.Error(0)
}

func (m *MockRoleManager) RevokeRoles(ctx context.Context, userID string, roles []domain.RoleID) error {
	args := m.Called(ctx, userID, roles)
	return args.Error(0)
}

// MockAuditor is a mock for service.Auditor
type MockAuditor struct {
	mock.Mock
}

func (m *MockAuditor) Record(ctx context.Context, username string, state domain.State, message string) {
	m.Called(ctx, username, state, message)
}

// MockNotifier is a mock for service.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, text string) error {
	args := m.Called(ctx, text)
	return args.Error(0)
}
