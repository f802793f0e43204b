package postgres

import (
	"context"
	"testing"
	"time"

	"onboarder/internal/domain"
	"onboarder/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestAuditRepo_Append(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAuditRepo(db)

	at := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	entry := repository.AuditEntry{
		ID:        "2D8ZkWkqgIjuW1pH8gJxgWPqhQ9",
		Username:  "alice#1234",
		State:     domain.StateDeclined,
		Message:   "DECLINED CODE OF CONDUCT! Enabling message log.",
		CreatedAt: at,
	}

	mock.ExpectExec("INSERT INTO audit_log").
		WithArgs(entry.ID, "alice#1234", "DECLINED", entry.Message, at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Append(context.Background(), entry)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
