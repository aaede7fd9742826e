package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

// RazorpayGateway creates orders and verifies checkout signatures.
type RazorpayGateway struct {
	client   *razorpay.Client
	secret   string
	currency string
}

// NewRazorpayGateway returns a gateway for the given key pair.
func NewRazorpayGateway(keyID, keySecret, currency string) *RazorpayGateway {
	return &RazorpayGateway{
		client:   razorpay.NewClient(keyID, keySecret),
		secret:   keySecret,
		currency: strings.ToUpper(currency),
	}
}

func (g *RazorpayGateway) Name() string { return ChannelRazorpay }

// CreateSession creates an order; checkout is opened with the order id,
// so it serves as both the client secret and the session id.
func (g *RazorpayGateway) CreateSession(_ context.Context, amountMinor int64) (Session, error) {
	order, err := g.client.Order.Create(map[string]interface{}{
		"amount":   amountMinor,
		"currency": g.currency,
		"receipt":  "parkseva-" + uuid.NewString()[:8],
	}, nil)
	if err != nil {
		return Session{}, err
	}
	id, _ := order["id"].(string)
	if id == "" {
		return Session{}, errors.New("razorpay returned no order id")
	}
	return Session{ClientSecret: id, ID: id}, nil
}

// Verify checks the checkout signature, an HMAC-SHA256 of
// "<order_id>|<payment_id>" keyed with the key secret, then fetches the
// order and requires it to cover the amount due in the gateway currency.
// The payment id is the confirmation token.
func (g *RazorpayGateway) Verify(_ context.Context, c Confirmation) (string, error) {
	if c.PaymentID == "" || c.Signature == "" {
		return "", errors.New("payment id and signature required")
	}
	if !utils.VerifyWebhookSignature(c.SessionID+"|"+c.PaymentID, c.Signature, g.secret) {
		return "", errors.New("payment signature mismatch")
	}
	order, err := g.client.Order.Fetch(c.SessionID, nil, nil)
	if err != nil {
		return "", fmt.Errorf("fetch order %s: %w", c.SessionID, err)
	}
	if cur, _ := order["currency"].(string); !strings.EqualFold(cur, g.currency) {
		return "", fmt.Errorf("order %s is in %q, expected %s", c.SessionID, cur, g.currency)
	}
	amount, ok := order["amount"].(float64)
	if !ok {
		return "", fmt.Errorf("order %s has no amount", c.SessionID)
	}
	if int64(amount) < c.AmountMinor {
		return "", errUnderpaid(int64(amount), c.AmountMinor)
	}
	return c.PaymentID, nil
}
