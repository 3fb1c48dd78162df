package smoke

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chi "github.com/go-chi/chi/v5"
	stripe "github.com/stripe/stripe-go/v76"

	"github.com/saasfoundry/billingd/internal/api"
	"github.com/saasfoundry/billingd/internal/auth"
	"github.com/saasfoundry/billingd/internal/billing"
	"github.com/saasfoundry/billingd/internal/customers"
	"github.com/saasfoundry/billingd/internal/logger"
)

type noSessions struct{}

func (noSessions) Resolve(ctx context.Context, token string) (*auth.Session, *auth.User, error) {
	return nil, nil, nil
}

type noopPayments struct{}

func (noopPayments) GetPrice(ctx context.Context, id string) (*stripe.Price, error) {
	return &stripe.Price{ID: id, Type: stripe.PriceTypeRecurring}, nil
}
func (noopPayments) CreateCustomer(ctx context.Context, email string, metadata map[string]string) (*stripe.Customer, error) {
	return &stripe.Customer{ID: "cus_smoke"}, nil
}
func (noopPayments) ListSubscriptions(ctx context.Context, customerID string, limit int64) ([]*stripe.Subscription, error) {
	return nil, nil
}
func (noopPayments) UpdateSubscription(ctx context.Context, id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error) {
	return &stripe.Subscription{ID: id}, nil
}
func (noopPayments) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return &stripe.CheckoutSession{URL: "https://pay.example.com"}, nil
}

func TestHealthAndCheckoutSmoke(t *testing.T) {
	logger.Init("error", "text")

	st := customers.NewInMemoryStore()
	svc := billing.NewService(noopPayments{}, st)
	h := api.NewHandler(noSessions{}, st, svc, "session_id", "dev", time.Now().Format(time.RFC3339), "git")
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/v1/health %d", rec.Code)
	}

	rec2 := httptest.NewRecorder()
	r.ServeHTTP(rec2, httptest.NewRequest("GET", "/checkout/price_smoke", nil))
	if rec2.Code != http.StatusSeeOther {
		t.Fatalf("/checkout/price_smoke %d", rec2.Code)
	}
}
