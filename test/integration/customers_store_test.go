//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/saasfoundry/billingd/config"
	"github.com/saasfoundry/billingd/internal/customers"
	"github.com/saasfoundry/billingd/internal/database"
	"github.com/saasfoundry/billingd/internal/logger"
)

// applyMigrations reads scripts/init.sql and executes it against the provided pool
func applyMigrations(ctx context.Context, pool *pgxpool.Pool, t *testing.T) {
	t.Helper()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	// tests run from the package dir; locate repo root by walking up to find go.mod
	root := cwd
	for i := 0; i < 5; i++ {
		if _, err := os.Stat(filepath.Join(root, "go.mod")); err == nil {
			break
		}
		root = filepath.Dir(root)
	}
	path := filepath.Join(root, "scripts", "init.sql")
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read init.sql: %v", err)
	}
	if _, err := pool.Exec(ctx, string(b)); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
}

func TestPostgresCustomerStore_WithContainer(t *testing.T) {
	if !containersAvailable() {
		t.Skip("container runtime not available; skipping container-based integration test")
	}
	logger.Init("error", "text")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image: "postgres:15-alpine",
		Env: map[string]string{
			"POSTGRES_DB":       "billingd",
			"POSTGRES_USER":     "billingd",
			"POSTGRES_PASSWORD": "password",
		},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start container: %v", err)
	}
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	host, err := pg.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := pg.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}

	dsn := "postgres://billingd:password@" + host + ":" + port.Port() + "/billingd?sslmode=disable"

	cfg := config.DatabaseConfig{
		URL:             dsn,
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}

	db, err := database.New(ctx, cfg)
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	defer db.Close(ctx)

	applyMigrations(ctx, dpoolAccessor(db), t)

	st := customers.New(db)

	// Unknown user resolves to no mapping, not an error
	id, err := st.GetCustomerID(ctx, "user-unknown")
	if err != nil {
		t.Fatalf("GetCustomerID: %v", err)
	}
	if id != "" {
		t.Fatalf("expected no mapping, got %q", id)
	}

	// First write creates the mapping
	if err := st.Upsert(ctx, "user-1", "cus_first"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	id, err = st.GetCustomerID(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetCustomerID: %v", err)
	}
	if id != "cus_first" {
		t.Fatalf("expected cus_first, got %q", id)
	}

	// Conflicting write overwrites: last writer wins
	if err := st.Upsert(ctx, "user-1", "cus_second"); err != nil {
		t.Fatalf("Upsert conflict: %v", err)
	}
	id, err = st.GetCustomerID(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetCustomerID: %v", err)
	}
	if id != "cus_second" {
		t.Fatalf("expected cus_second after overwrite, got %q", id)
	}

	if err := st.Health(ctx); err != nil {
		t.Fatalf("Health: %v", err)
	}
}
