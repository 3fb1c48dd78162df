package customers

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	apperrors "github.com/saasfoundry/billingd/internal/errors"
)

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	db Database
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(db Database) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetCustomerID returns the stored billing customer id for a user,
// or "" when no mapping row exists.
func (s *PostgresStore) GetCustomerID(ctx context.Context, userID string) (string, error) {
	query := `
		SELECT stripe_customer_id
		FROM stripe_customers
		WHERE user_id = $1
	`

	rowInterface := s.db.QueryRow(ctx, query, userID)
	row, ok := rowInterface.(pgx.Row)
	if !ok {
		return "", fmt.Errorf("invalid row type")
	}

	var customerID string
	if err := row.Scan(&customerID); err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", apperrors.DatabaseError{Operation: "get customer mapping", Err: err}
	}

	return customerID, nil
}

// Upsert inserts or replaces the mapping row for a user. A concurrent
// insert for the same user id is resolved last-writer-wins.
func (s *PostgresStore) Upsert(ctx context.Context, userID, customerID string) error {
	query := `
		INSERT INTO stripe_customers (user_id, stripe_customer_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET
			stripe_customer_id = EXCLUDED.stripe_customer_id,
			updated_at = NOW()
	`

	if err := s.db.Exec(ctx, query, userID, customerID); err != nil {
		return apperrors.DatabaseError{Operation: "upsert customer mapping", Err: err}
	}

	return nil
}

// Health checks the database connection
func (s *PostgresStore) Health(ctx context.Context) error {
	return s.db.Health(ctx)
}
