package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"onboarder/internal/domain"
	"onboarder/internal/repository"

	"github.com/jmoiron/sqlx"
)

// UserRepo implements repository.UserRepository
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

type userRow struct {
	Username     string         `db:"username"`
	State        string         `db:"state"`
	Lang         sql.NullString `db:"lang"`
	LastPromptID sql.NullString `db:"last_prompt_id"`
	Version      int64          `db:"version"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r userRow) record() (domain.UserRecord, error) {
	state := domain.State(r.State)
	if !state.Valid() {
		return domain.UserRecord{}, fmt.Errorf("user %q has unknown state %q", r.Username, r.State)
	}
	return domain.UserRecord{
		Username:     r.Username,
		State:        state,
		Language:     domain.Language(r.Lang.String),
		LastPromptID: r.LastPromptID.String,
		Version:      r.Version,
		UpdatedAt:    r.UpdatedAt,
	}, nil
}

// Get returns the user's record, creating it in state NEW if it doesn't exist
func (r *UserRepo) Get(ctx context.Context, username string) (domain.UserRecord, error) {
	ensure := `
		INSERT INTO onboarding_users (username, state, version)
		VALUES ($1, $2, 1)
		ON CONFLICT (username) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, ensure, username, string(domain.StateNew)); err != nil {
		return domain.UserRecord{}, fmt.Errorf("ensure user %q: %w", username, err)
	}

	query := `SELECT username, state, lang, last_prompt_id, version, updated_at FROM onboarding_users WHERE username = $1`
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, username); err != nil {
		return domain.UserRecord{}, fmt.Errorf("get user %q: %w", username, err)
	}

	return row.record()
}

// Save updates the record only if nobody else wrote it since expectedVersion was read
func (r *UserRepo) Save(ctx context.Context, record domain.UserRecord, expectedVersion int64) error {
	query := `
		UPDATE onboarding_users
		SET state = $1, lang = $2, last_prompt_id = $3, version = version + 1, updated_at = NOW()
		WHERE username = $4 AND version = $5
	`
	res, err := r.db.ExecContext(ctx, query,
		string(record.State),
		nullString(string(record.Language)),
		nullString(record.LastPromptID),
		record.Username,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("save user %q: %w", record.Username, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save user %q: %w", record.Username, err)
	}
	if n == 0 {
		return repository.ErrVersionConflict
	}

	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
