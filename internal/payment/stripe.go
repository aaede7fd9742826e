package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeGateway creates and verifies PaymentIntents.
type StripeGateway struct {
	api      *client.API
	currency string
}

// NewStripeGateway returns a gateway authenticated with secretKey.
func NewStripeGateway(secretKey, currency string) *StripeGateway {
	return &StripeGateway{api: client.New(secretKey, nil), currency: currency}
}

func (g *StripeGateway) Name() string { return ChannelStripe }

// CreateSession creates a PaymentIntent with automatic payment methods.
func (g *StripeGateway) CreateSession(ctx context.Context, amountMinor int64) (Session, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(g.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return Session{}, stripeErr(err)
	}
	return Session{ClientSecret: pi.ClientSecret, ID: pi.ID}, nil
}

// Verify retrieves the intent and requires it to have succeeded for at
// least the amount due in the gateway currency.  The intent id is the
// confirmation token.
func (g *StripeGateway) Verify(ctx context.Context, c Confirmation) (string, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := g.api.PaymentIntents.Get(c.SessionID, params)
	if err != nil {
		return "", stripeErr(err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return "", fmt.Errorf("payment %s is %s", pi.ID, pi.Status)
	}
	if !strings.EqualFold(string(pi.Currency), g.currency) {
		return "", fmt.Errorf("payment %s is in %s, expected %s", pi.ID, pi.Currency, g.currency)
	}
	if pi.Amount < c.AmountMinor {
		return "", errUnderpaid(pi.Amount, c.AmountMinor)
	}
	return pi.ID, nil
}

// stripeErr keeps only the human readable part of a Stripe API error.
func stripeErr(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) && se.Msg != "" {
		return errors.New(se.Msg)
	}
	return err
}
