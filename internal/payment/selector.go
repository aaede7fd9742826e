package payment

import (
	"strings"

	"github.com/iliyamo/parkseva/internal/config"
)

// Selector picks the initiator for a user's payment method.
type Selector struct {
	Gateway Initiator // nil when no gateway credentials are configured
	UPI     Initiator
	Mock    Initiator
}

// For returns the initiator for method ("card", "upi" or empty).  A
// configured gateway always handles card and unspecified payments; without
// one those fall through to the mock initiator.
func (s *Selector) For(method string) Initiator {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case "upi":
		return s.UPI
	default:
		if s.Gateway != nil {
			return s.Gateway
		}
		return s.Mock
	}
}

// NewFromConfig builds the selector and, when credentials are present, the
// hosted gateway used by the payment-intent proxy.
func NewFromConfig(cfg config.PaymentConfig) (*Selector, Gateway) {
	sel := &Selector{
		UPI:  NewUPIInitiator(cfg.UPIPayee, cfg.UPIPayeeName, cfg.UPIDelay),
		Mock: &MockInitiator{},
	}
	var gw Gateway
	if cfg.GatewayConfigured() {
		switch cfg.Gateway {
		case "stripe":
			gw = NewStripeGateway(cfg.StripeSecretKey, cfg.Currency)
		case "razorpay":
			gw = NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.Currency)
		}
	}
	if gw != nil {
		sel.Gateway = &GatewayInitiator{Gateway: gw}
	}
	return sel, gw
}

// Wallet returns the UPI initiator when it is the built-in simulated
// wallet, for the session, QR and receipt endpoints.
func (s *Selector) Wallet() *UPIInitiator {
	u, _ := s.UPI.(*UPIInitiator)
	return u
}
