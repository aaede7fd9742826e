// Package payment turns a user's payment choice into a confirmation
// token.  Every path yields an Outcome; the booking writer only ever sees
// Paid or Pending outcomes and never branches on configuration.
package payment

import (
	"context"

	"github.com/iliyamo/parkseva/internal/model"
)

// Channel tags stored with a booking.
const (
	ChannelStripe   = "stripe"
	ChannelRazorpay = "razorpay"
	ChannelUPI      = "UPI"
	ChannelMock     = "mock"
)

type outcomeKind int

const (
	kindFailed outcomeKind = iota
	kindPaid
	kindPending
)

// Outcome is the tagged result of a payment attempt: Paid(token, channel),
// Pending(mock token) or Failed(reason).  The zero value is a failure
// without a reason.
type Outcome struct {
	kind    outcomeKind
	Token   string
	Channel string
	Reason  string
}

// Paid is a confirmed payment identified by token on channel.
func Paid(token, channel string) Outcome {
	return Outcome{kind: kindPaid, Token: token, Channel: channel}
}

// Pending is a booking allowed through without payment.
func Pending(token string) Outcome {
	return Outcome{kind: kindPending, Token: token, Channel: ChannelMock}
}

// Failed carries the provider's or the validator's message.
func Failed(reason string) Outcome { return Outcome{kind: kindFailed, Reason: reason} }

func (o Outcome) IsPaid() bool    { return o.kind == kindPaid }
func (o Outcome) IsPending() bool { return o.kind == kindPending }
func (o Outcome) IsFailed() bool  { return o.kind == kindFailed }

// PaymentStatus maps the outcome onto the bookings.payment_status enum.
func (o Outcome) PaymentStatus() model.PaymentStatus {
	switch o.kind {
	case kindPaid:
		return model.PaymentPaid
	case kindPending:
		return model.PaymentPending
	}
	return model.PaymentFailed
}

// Err returns a *FailedError for failed outcomes and nil otherwise.
func (o Outcome) Err() error {
	if o.kind != kindFailed {
		return nil
	}
	reason := o.Reason
	if reason == "" {
		reason = "payment failed"
	}
	return &FailedError{Reason: reason}
}

// FailedError reports why a payment did not complete.  Its message is
// shown to the user as is.
type FailedError struct{ Reason string }

func (e *FailedError) Error() string { return e.Reason }

// Request is what the client sends to prove or initiate payment.
type Request struct {
	Amount    float64 // rupees
	Method    string  // card | upi | "" (server decides)
	SessionID string  // gateway session handle (payment intent / order id)
	PaymentID string  // gateway payment id (razorpay)
	Signature string  // gateway signature (razorpay)
	Attested  bool    // user confirmed the UPI transfer
}

// Initiator confirms a payment and reports the outcome.  Implementations
// never return a Paid outcome with an empty token.
type Initiator interface {
	Confirm(ctx context.Context, req Request) Outcome
}
