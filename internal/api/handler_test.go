package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/saasfoundry/billingd/internal/billing"
	"github.com/saasfoundry/billingd/internal/customers"
)

// unhealthyStore reports a failing backend
type unhealthyStore struct {
	customers.Store
}

func (unhealthyStore) Health(ctx context.Context) error {
	return errors.New("connection refused")
}

func newTestRouter(store customers.Store) *chi.Mux {
	svc := billing.NewService(&stubPayments{}, store)
	h := NewHandler(&fakeSessions{}, store, svc, "session_id", "test-version", "test-build-time", "test-commit")
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func TestHandler_HealthEndpoints(t *testing.T) {
	r := newTestRouter(customers.NewInMemoryStore())

	tests := []struct {
		name           string
		endpoint       string
		expectedStatus int
	}{
		{"v1 health", "/v1/health", http.StatusOK},
		{"readiness", "/v1/health/ready", http.StatusOK},
		{"liveness", "/v1/health/live", http.StatusOK},
		{"root health", "/health", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.endpoint, nil)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("expected %d, got %d", tt.expectedStatus, rec.Code)
			}
		})
	}
}

func TestHandler_ReadinessFailsOnUnhealthyStore(t *testing.T) {
	r := newTestRouter(unhealthyStore{Store: customers.NewInMemoryStore()})

	req := httptest.NewRequest("GET", "/v1/health/ready", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestHandler_Version(t *testing.T) {
	r := newTestRouter(customers.NewInMemoryStore())

	req := httptest.NewRequest("GET", "/v1/version", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["version"] != "test-version" {
		t.Errorf("expected version test-version, got %q", body["version"])
	}
	if body["git_commit"] != "test-commit" {
		t.Errorf("expected git commit test-commit, got %q", body["git_commit"])
	}
}
