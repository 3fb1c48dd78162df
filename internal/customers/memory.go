package customers

import (
	"context"
	"sync"
)

// InMemoryStore implements Store using in-memory storage
type InMemoryStore struct {
	mu       sync.RWMutex
	mappings map[string]string // user_id -> customer_id
}

// NewInMemoryStore creates a new in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		mappings: make(map[string]string),
	}
}

// GetCustomerID returns the mapped customer id, or "" when absent
func (s *InMemoryStore) GetCustomerID(ctx context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.mappings[userID], nil
}

// Upsert stores the mapping, overwriting any existing row for the user
func (s *InMemoryStore) Upsert(ctx context.Context, userID, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mappings[userID] = customerID
	return nil
}

// Health always returns nil for in-memory store
func (s *InMemoryStore) Health(ctx context.Context) error {
	return nil
}
