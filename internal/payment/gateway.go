package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/parkseva/internal/pricing"
)

// ErrNoGateway is returned when a hosted-gateway operation is requested
// but no gateway credentials are configured.
var ErrNoGateway = errors.New("payment gateway not configured")

// Session is the handle a client-side SDK needs to collect card details.
type Session struct {
	ClientSecret string `json:"clientSecret"`
	ID           string `json:"paymentIntentId"`
}

// Confirmation is what the client returns after the SDK finished, plus
// the server-side quote the payment must cover.
type Confirmation struct {
	SessionID   string
	PaymentID   string
	Signature   string
	AmountMinor int64
}

// Gateway is a hosted card-payment provider.
type Gateway interface {
	// Name is the channel tag stored on bookings.
	Name() string
	// CreateSession opens a payment for amountMinor paise.
	CreateSession(ctx context.Context, amountMinor int64) (Session, error)
	// Verify checks that the payment completed for at least
	// c.AmountMinor paise in the gateway currency and returns the
	// provider's confirmation token.
	Verify(ctx context.Context, c Confirmation) (string, error)
}

// errUnderpaid reports a completed payment that does not cover the quote.
func errUnderpaid(paid, want int64) error {
	return fmt.Errorf("payment of %d paise does not cover the %d paise due", paid, want)
}

// GatewayInitiator confirms payments through a hosted Gateway.
type GatewayInitiator struct{ Gateway Gateway }

func (g *GatewayInitiator) Confirm(ctx context.Context, req Request) Outcome {
	if req.SessionID == "" {
		return Failed("payment session required")
	}
	minor, err := pricing.MinorUnits(req.Amount)
	if err != nil {
		return Failed(err.Error())
	}
	token, err := g.Gateway.Verify(ctx, Confirmation{
		SessionID:   req.SessionID,
		PaymentID:   req.PaymentID,
		Signature:   req.Signature,
		AmountMinor: minor,
	})
	if err != nil {
		return Failed(err.Error())
	}
	if token == "" {
		return Failed("payment provider returned no confirmation")
	}
	return Paid(token, g.Gateway.Name())
}
