package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// FlagRepo implements repository.FlagRepository
type FlagRepo struct {
	db *sqlx.DB
}

// NewFlagRepo creates a new flag repository
func NewFlagRepo(db *sqlx.DB) *FlagRepo {
	return &FlagRepo{db: db}
}

// Flag marks a user for elevated audit logging. Flagging twice is a no-op.
func (r *FlagRepo) Flag(ctx context.Context, userID string) error {
	query := `
		INSERT INTO flagged_users (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

// IsFlagged checks if a user was flagged
func (r *FlagRepo) IsFlagged(ctx context.Context, userID string) (bool, error) {
	var flagged bool
	query := `SELECT EXISTS (SELECT 1 FROM flagged_users WHERE user_id = $1)`
	if err := r.db.GetContext(ctx, &flagged, query, userID); err != nil {
		return false, err
	}
	return flagged, nil
}
