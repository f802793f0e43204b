package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"onboarder/internal/domain"
	"onboarder/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestUserRepo_Get(t *testing.T) {
	updated := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		mockRows      *sqlmock.Rows
		mockError     error
		expected      domain.UserRecord
		expectedError bool
	}{
		{
			name: "new user",
			mockRows: sqlmock.NewRows([]string{"username", "state", "lang", "last_prompt_id", "version", "updated_at"}).
				AddRow("alice#1234", "NEW", nil, nil, 1, updated),
			expected: domain.UserRecord{
				Username:  "alice#1234",
				State:     domain.StateNew,
				Version:   1,
				UpdatedAt: updated,
			},
		},
		{
			name: "user waiting for code of conduct",
			mockRows: sqlmock.NewRows([]string{"username", "state", "lang", "last_prompt_id", "version", "updated_at"}).
				AddRow("alice#1234", "COC_REQUESTED", "en", "9001", 3, updated),
			expected: domain.UserRecord{
				Username:     "alice#1234",
				State:        domain.StateCocRequested,
				Language:     domain.LanguageEnglish,
				LastPromptID: "9001",
				Version:      3,
				UpdatedAt:    updated,
			},
		},
		{
			name: "unknown stored state",
			mockRows: sqlmock.NewRows([]string{"username", "state", "lang", "last_prompt_id", "version", "updated_at"}).
				AddRow("alice#1234", "ARCHIVED", nil, nil, 4, updated),
			expectedError: true,
		},
		{
			name:          "database error",
			mockError:     sql.ErrConnDone,
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewUserRepo(db)

			mock.ExpectExec("INSERT INTO onboarding_users").
				WithArgs("alice#1234", "NEW").
				WillReturnResult(sqlmock.NewResult(0, 1))

			query := "SELECT username, state, lang, last_prompt_id, version, updated_at FROM onboarding_users WHERE username = \\$1"
			if tt.mockError != nil {
				mock.ExpectQuery(query).WithArgs("alice#1234").WillReturnError(tt.mockError)
			} else {
				mock.ExpectQuery(query).WithArgs("alice#1234").WillReturnRows(tt.mockRows)
			}

			record, err := repo.Get(context.Background(), "alice#1234")

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, record)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepo_Get_EnsureFails(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO onboarding_users").
		WithArgs("alice#1234", "NEW").
		WillReturnError(sql.ErrConnDone)

	_, err := repo.Get(context.Background(), "alice#1234")

	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Save(t *testing.T) {
	tests := []struct {
		name         string
		record       domain.UserRecord
		expectedArgs []driver.Value
		rowsAffected int64
		expectedErr  error
	}{
		{
			name: "version matches",
			record: domain.UserRecord{
				Username:     "alice#1234",
				State:        domain.StateCocRequested,
				Language:     domain.LanguageGerman,
				LastPromptID: "42",
			},
			expectedArgs: []driver.Value{"COC_REQUESTED", "de", "42", "alice#1234", int64(2)},
			rowsAffected: 1,
		},
		{
			name: "cleared prompt is stored as null",
			record: domain.UserRecord{
				Username: "alice#1234",
				State:    domain.StateDeclined,
				Language: domain.LanguageEnglish,
			},
			expectedArgs: []driver.Value{"DECLINED", "en", nil, "alice#1234", int64(2)},
			rowsAffected: 1,
		},
		{
			name: "version moved on",
			record: domain.UserRecord{
				Username: "alice#1234",
				State:    domain.StateLanguageRequested,
			},
			expectedArgs: []driver.Value{"LANGUAGE_REQUESTED", nil, nil, "alice#1234", int64(2)},
			rowsAffected: 0,
			expectedErr:  repository.ErrVersionConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewUserRepo(db)

			mock.ExpectExec("UPDATE onboarding_users").
				WithArgs(tt.expectedArgs...).
				WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))

			err := repo.Save(context.Background(), tt.record, 2)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
