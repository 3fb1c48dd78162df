package customers

import (
	"context"
	"testing"
)

func TestInMemoryStore_GetMissing(t *testing.T) {
	s := NewInMemoryStore()

	id, err := s.GetCustomerID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "" {
		t.Errorf("expected empty customer id for unmapped user, got %q", id)
	}
}

func TestInMemoryStore_UpsertAndGet(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	if err := s.Upsert(ctx, "user-1", "cus_123"); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	id, err := s.GetCustomerID(ctx, "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if id != "cus_123" {
		t.Errorf("expected cus_123, got %q", id)
	}
}

func TestInMemoryStore_UpsertOverwrites(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	if err := s.Upsert(ctx, "user-1", "cus_old"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	// Last writer wins on conflicting user id
	if err := s.Upsert(ctx, "user-1", "cus_new"); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	id, err := s.GetCustomerID(ctx, "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if id != "cus_new" {
		t.Errorf("expected cus_new, got %q", id)
	}
}

func TestInMemoryStore_Health(t *testing.T) {
	s := NewInMemoryStore()
	if err := s.Health(context.Background()); err != nil {
		t.Errorf("expected nil health, got %v", err)
	}
}
