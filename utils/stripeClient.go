package utils

import (
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/subscription"
)

// InitStripe sets the API key used by every Stripe call
func InitStripe(secretKey string) {
	stripe.Key = secretKey
}

// The Stripe calls are variables so tests can replace them.
var (
	NewCheckoutSession = func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		return session.New(params)
	}

	CancelSubscriptionAtPeriodEnd = func(subscriptionID string) (*stripe.Subscription, error) {
		return subscription.Update(subscriptionID, &stripe.SubscriptionParams{
			CancelAtPeriodEnd: stripe.Bool(true),
		})
	}
)
