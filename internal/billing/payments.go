package billing

import (
	"context"

	stripe "github.com/stripe/stripe-go/v76"
)

// PaymentClient abstracts the payment API operations the checkout flow
// needs. The production implementation is backed by Stripe.
type PaymentClient interface {
	GetPrice(ctx context.Context, id string) (*stripe.Price, error)
	CreateCustomer(ctx context.Context, email string, metadata map[string]string) (*stripe.Customer, error)
	ListSubscriptions(ctx context.Context, customerID string, limit int64) ([]*stripe.Subscription, error)
	UpdateSubscription(ctx context.Context, id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error)
	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}
