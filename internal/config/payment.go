package config

import "time"

// PaymentConfig selects and configures the payment initiators.  When
// Gateway is empty, or its credentials are missing, bookings fall back to
// the mock initiator and are stored with a pending payment status.
type PaymentConfig struct {
	Gateway           string // "stripe", "razorpay" or ""
	StripeSecretKey   string
	RazorpayKeyID     string
	RazorpayKeySecret string
	Currency          string
	UPIPayee          string        // payee VPA shown in the simulated wallet flow
	UPIPayeeName      string        // pn= parameter of the upi:// payload
	UPIDelay          time.Duration // simulated processing delay
}

// LoadPaymentConfig reads PAYMENT_* / STRIPE_* / RAZORPAY_* / UPI_* variables.
func LoadPaymentConfig() PaymentConfig {
	return PaymentConfig{
		Gateway:           envStr("PAYMENT_GATEWAY", "stripe"),
		StripeSecretKey:   envStr("STRIPE_SECRET_KEY", ""),
		RazorpayKeyID:     envStr("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret: envStr("RAZORPAY_KEY_SECRET", ""),
		Currency:          envStr("PAYMENT_CURRENCY", "inr"),
		UPIPayee:          envStr("UPI_PAYEE", "parkseva@upi"),
		UPIPayeeName:      envStr("UPI_PAYEE_NAME", "ParkSeva"),
		UPIDelay:          envDur("UPI_SIMULATED_DELAY", 2*time.Second),
	}
}

// GatewayConfigured reports whether the selected gateway has credentials.
func (p PaymentConfig) GatewayConfigured() bool {
	switch p.Gateway {
	case "stripe":
		return p.StripeSecretKey != ""
	case "razorpay":
		return p.RazorpayKeyID != "" && p.RazorpayKeySecret != ""
	}
	return false
}
