package billing

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/saasfoundry/billingd/internal/auth"
	"github.com/saasfoundry/billingd/internal/customers"
	"github.com/saasfoundry/billingd/internal/logger"
	"github.com/saasfoundry/billingd/internal/metrics"
	stripe "github.com/stripe/stripe-go/v76"
)

// UserErrorMessage is the fixed user-facing message for persistence and
// checkout failures. Deliberately vague to avoid leaking internals.
const UserErrorMessage = "Unknown Error: If issue persists please contact us."

// subscriptionListLimit caps how many subscriptions are considered for
// reconciliation.
const subscriptionListLimit = 100

// Post-checkout landing paths, relative to the request origin.
const (
	successPath = "/dashboard"
	cancelPath  = "/settings/billing"
)

// Sentinel errors the HTTP layer maps onto the fixed user-facing
// message. Anything else surfaces as a plain internal error.
var (
	ErrCustomerPersist = errors.New("persist customer mapping")
	ErrCheckoutCreate  = errors.New("create checkout session")
)

// currentStatuses are the subscription states treated as "current" when
// reconciling. "trailing" matches the upstream product definition
// verbatim; it is not corrected to "trialing" here.
var currentStatuses = map[stripe.SubscriptionStatus]bool{
	"active":   true,
	"trailing": true,
	"past_due": true,
}

// CheckoutRequest carries the per-request inputs of a checkout
// initiation.
type CheckoutRequest struct {
	User            auth.User
	PriceID         string
	CustomAmount    string // raw customAmount query value
	HasCustomAmount bool
	Origin          string // scheme://host of the incoming request
}

// Service orchestrates checkout initiation against the payment API and
// the customer mapping store.
type Service struct {
	payments  PaymentClient
	customers customers.Store
}

// NewService creates a new billing service
func NewService(payments PaymentClient, store customers.Store) *Service {
	return &Service{payments: payments, customers: store}
}

// StartCheckout runs the checkout initiation sequence for an
// authenticated user and returns the hosted checkout URL. The returned
// URL may be empty when the payment API does not supply one; callers
// fall back to the pricing page.
//
// Side effects: may create a payment-API customer and a mapping row,
// may move an existing subscription onto the selected price, and
// creates a new checkout session on every successful call (not
// idempotent).
func (s *Service) StartCheckout(ctx context.Context, req CheckoutRequest) (string, error) {
	price, err := s.payments.GetPrice(ctx, req.PriceID)
	if err != nil {
		return "", fmt.Errorf("retrieve price %s: %w", req.PriceID, err)
	}

	customerID, err := s.resolveCustomer(ctx, req.User)
	if err != nil {
		return "", err
	}

	// Best effort: detached from the request so a slow or failing
	// reconciliation never delays the redirect. Failures are logged,
	// never surfaced.
	go s.ReconcileSubscriptions(context.WithoutCancel(ctx), customerID, price)

	params := &stripe.CheckoutSessionParams{
		LineItems:  buildLineItems(price, req.CustomAmount, req.HasCustomAmount),
		Customer:   stripe.String(customerID),
		Mode:       stripe.String(string(checkoutMode(price))),
		SuccessURL: stripe.String(req.Origin + successPath),
		CancelURL:  stripe.String(req.Origin + cancelPath),
	}
	if price.Type != stripe.PriceTypeRecurring {
		// Recurring prices have invoice creation enabled automatically.
		params.InvoiceCreation = &stripe.CheckoutSessionInvoiceCreationParams{
			Enabled: stripe.Bool(true),
		}
	}

	sess, err := s.payments.CreateCheckoutSession(ctx, params)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to create checkout session",
			"error", err,
			"price_id", req.PriceID,
			"customer_id", customerID,
		)
		metrics.RecordCheckoutSession("error")
		return "", fmt.Errorf("%w: %v", ErrCheckoutCreate, err)
	}

	metrics.RecordCheckoutSession("created")
	return sess.URL, nil
}

// resolveCustomer returns the billing customer id for a user, creating
// the customer and the mapping row on first use. A mapping lookup
// failure is treated as not-found; the upsert then overwrites whatever
// row exists (last-writer-wins under concurrent requests).
func (s *Service) resolveCustomer(ctx context.Context, user auth.User) (string, error) {
	customerID, err := s.customers.GetCustomerID(ctx, user.ID)
	if err != nil {
		logger.WithContext(ctx).Warn("Customer mapping lookup failed", "error", err, "user_id", user.ID)
	}
	if customerID != "" {
		return customerID, nil
	}

	cust, err := s.payments.CreateCustomer(ctx, user.Email, map[string]string{
		"user_id": user.ID,
	})
	if err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}
	metrics.RecordCustomerCreated()

	if err := s.customers.Upsert(ctx, user.ID, cust.ID); err != nil {
		// The customer just created in the payment API stays behind,
		// orphaned from the mapping store. No compensating delete.
		logger.WithContext(ctx).Error("Failed to persist customer mapping",
			"error", err,
			"user_id", user.ID,
			"customer_id", cust.ID,
		)
		return "", fmt.Errorf("%w: %v", ErrCustomerPersist, err)
	}

	return cust.ID, nil
}

// ReconcileSubscriptions moves the user's first current subscription
// onto the newly selected price. Order is whatever the listing call
// returns; it is not guaranteed sorted. All failures are logged and
// dropped.
func (s *Service) ReconcileSubscriptions(ctx context.Context, customerID string, price *stripe.Price) {
	subs, err := s.payments.ListSubscriptions(ctx, customerID, subscriptionListLimit)
	if err != nil {
		logger.Warn("Failed to list subscriptions for reconciliation",
			"error", err,
			"customer_id", customerID,
		)
		return
	}

	var current []*stripe.Subscription
	for _, sub := range subs {
		if currentStatuses[sub.Status] {
			current = append(current, sub)
		}
	}
	if len(current) == 0 {
		return
	}

	first := current[0]
	if first.Items == nil || len(first.Items.Data) == 0 {
		return
	}

	params := &stripe.SubscriptionParams{
		Items: []*stripe.SubscriptionItemsParams{
			{
				ID:    stripe.String(first.Items.Data[0].ID),
				Price: stripe.String(price.ID),
			},
		},
	}
	if _, err := s.payments.UpdateSubscription(ctx, first.ID, params); err != nil {
		logger.Warn("Subscription reconciliation failed",
			"error", err,
			"subscription_id", first.ID,
			"price_id", price.ID,
		)
	}
}

// checkoutMode selects the checkout session mode for a price
func checkoutMode(price *stripe.Price) stripe.CheckoutSessionMode {
	if price.Type == stripe.PriceTypeRecurring {
		return stripe.CheckoutSessionModeSubscription
	}
	return stripe.CheckoutSessionModePayment
}

// buildLineItems constructs the single line item of a checkout session.
// Prices configured with a custom unit amount are sent as inline price
// data; everything else references the price id directly.
func buildLineItems(price *stripe.Price, customAmount string, hasCustomAmount bool) []*stripe.CheckoutSessionLineItemParams {
	item := &stripe.CheckoutSessionLineItemParams{
		Quantity: stripe.Int64(1),
	}

	if price.CustomUnitAmount != nil {
		amount := price.CustomUnitAmount.Preset
		if hasCustomAmount {
			// Base-currency units from the query string, converted to
			// minor units. Unparseable input falls back to 0.
			n, err := strconv.ParseInt(customAmount, 10, 64)
			if err != nil {
				n = 0
			}
			amount = n * 100
		}

		item.PriceData = &stripe.CheckoutSessionLineItemPriceDataParams{
			UnitAmount: stripe.Int64(amount),
			Currency:   stripe.String(string(price.Currency)),
			Product:    stripe.String(price.Product.ID),
		}
	} else {
		item.Price = stripe.String(price.ID)
	}

	return []*stripe.CheckoutSessionLineItemParams{item}
}
