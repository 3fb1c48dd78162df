package customers

import (
	"context"
)

// Store defines the interface for the user to billing-customer mapping.
// At most one mapping exists per user id; Upsert is last-writer-wins.
type Store interface {
	GetCustomerID(ctx context.Context, userID string) (string, error)
	Upsert(ctx context.Context, userID, customerID string) error
	Health(ctx context.Context) error
}

// Database interface for dependency injection
type Database interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (interface{}, error)
	QueryRow(ctx context.Context, sql string, args ...any) interface{}
	Health(ctx context.Context) error
	IsConfigured() bool
}

// New creates a new store instance
func New(db Database) Store {
	if db.IsConfigured() {
		return NewPostgresStore(db)
	}
	// Fallback to in-memory store if no database
	return NewInMemoryStore()
}
