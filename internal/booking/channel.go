package booking

import (
	"strings"

	"github.com/iliyamo/parkseva/internal/model"
	"github.com/iliyamo/parkseva/internal/payment"
)

// ChannelUnknown is reported when a booking carries no payment evidence.
const ChannelUnknown = "N/A"

const (
	upiTokenPrefix  = "UPI-TXN-"
	mockTokenPrefix = "MOCK-"
)

// IsGatewayChannel reports whether tokens of channel are stored in
// gateway_payment_id.
func IsGatewayChannel(channel string) bool {
	return channel == payment.ChannelStripe || channel == payment.ChannelRazorpay
}

// InferChannel classifies how a booking was paid.  An explicit channel tag
// wins; otherwise a gateway token means the card gateway, and the prefix
// of a transaction token tells UPI from mock.
func InferChannel(b model.Booking) string {
	if b.PaymentMode.Valid && b.PaymentMode.String != "" {
		return b.PaymentMode.String
	}
	if b.GatewayPaymentID.Valid && b.GatewayPaymentID.String != "" {
		return payment.ChannelStripe
	}
	switch tx := b.TransactionID.String; {
	case strings.HasPrefix(tx, upiTokenPrefix):
		return payment.ChannelUPI
	case strings.HasPrefix(tx, mockTokenPrefix):
		return payment.ChannelMock
	}
	return ChannelUnknown
}

// Row is a booking annotated with its inferred channel.
type Row struct {
	model.Booking
	Channel string `json:"channel"`
}

// FilterByChannel annotates rows and keeps those whose channel matches
// filter, case-insensitively.  An empty filter or "all" keeps every row.
// Order is preserved.
func FilterByChannel(rows []model.Booking, filter string) []Row {
	filter = strings.TrimSpace(filter)
	keepAll := filter == "" || strings.EqualFold(filter, "all")
	out := make([]Row, 0, len(rows))
	for _, b := range rows {
		ch := InferChannel(b)
		if keepAll || strings.EqualFold(ch, filter) {
			out = append(out, Row{Booking: b, Channel: ch})
		}
	}
	return out
}
