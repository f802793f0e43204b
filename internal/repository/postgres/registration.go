package postgres

import (
	"context"
	"database/sql"
	"errors"

	"onboarder/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// RegistrationRepo implements repository.RegistrationRepository.
// The registrations table is filled by the ticket shop export; this repo only reads it.
type RegistrationRepo struct {
	db *sqlx.DB
}

// NewRegistrationRepo creates a new registration repository
func NewRegistrationRepo(db *sqlx.DB) *RegistrationRepo {
	return &RegistrationRepo{db: db}
}

type registrationRow struct {
	Username string         `db:"username"`
	Product  string         `db:"product"`
	Programs pq.StringArray `db:"programs"`
}

// FindByUsername returns the user's registration or nil if none was placed
func (r *RegistrationRepo) FindByUsername(ctx context.Context, username string) (*domain.Order, error) {
	query := `SELECT username, product, programs FROM registrations WHERE username = $1`

	var row registrationRow
	err := r.db.GetContext(ctx, &row, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		Username: row.Username,
		Product:  domain.Product(row.Product),
	}
	for _, p := range row.Programs {
		order.Programs = append(order.Programs, domain.Program(p))
	}

	return order, nil
}
