package postgres

import (
	"context"

	"onboarder/internal/repository"

	"github.com/jmoiron/sqlx"
)

// AuditRepo implements repository.AuditRepository
type AuditRepo struct {
	db *sqlx.DB
}

// NewAuditRepo creates a new audit repository
func NewAuditRepo(db *sqlx.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Append stores one audit line
func (r *AuditRepo) Append(ctx context.Context, entry repository.AuditEntry) error {
	query := `
		INSERT INTO audit_log (id, username, state, message, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, entry.ID, entry.Username, string(entry.State), entry.Message, entry.CreatedAt)
	return err
}
