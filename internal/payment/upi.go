package payment

import (
	"context"
	"fmt"
	"strconv"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

// DemoNotice labels every surface of the simulated wallet flow.
const DemoNotice = "Payment processed securely via UPI (Demo Mode). No actual transaction was made."

const upiTokenPrefix = "UPI-TXN-"

// UPIInitiator simulates a UPI collect: it shows a QR code for the payee,
// waits for the user to attest the transfer, and after a short delay
// reports success.  No money moves.
type UPIInitiator struct {
	Payee     string
	PayeeName string
	Delay     time.Duration
	Now       func() time.Time
}

// NewUPIInitiator returns an initiator with the system clock.
func NewUPIInitiator(payee, payeeName string, delay time.Duration) *UPIInitiator {
	return &UPIInitiator{Payee: payee, PayeeName: payeeName, Delay: delay, Now: time.Now}
}

// Payload is the upi:// deep link encoded in the QR code.
func (u *UPIInitiator) Payload(amount float64) string {
	return fmt.Sprintf("upi://pay?pa=%s&pn=%s&am=%s",
		u.Payee, u.PayeeName, strconv.FormatFloat(amount, 'f', -1, 64))
}

// QR renders the payload as a 256px PNG.
func (u *UPIInitiator) QR(amount float64) ([]byte, error) {
	return qrcode.Encode(u.Payload(amount), qrcode.Medium, 256)
}

func (u *UPIInitiator) Confirm(ctx context.Context, req Request) Outcome {
	if !req.Attested {
		return Failed("payment not attested")
	}
	if u.Delay > 0 {
		t := time.NewTimer(u.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return Failed("payment cancelled")
		case <-t.C:
		}
	}
	return Paid(upiTokenPrefix+strconv.FormatInt(u.now().UnixMilli(), 10), ChannelUPI)
}

func (u *UPIInitiator) now() time.Time {
	if u.Now != nil {
		return u.Now()
	}
	return time.Now()
}

// Receipt is the downloadable record of a simulated UPI payment.
type Receipt struct {
	TransactionID string  `json:"transactionId"`
	Amount        float64 `json:"amount"`
	Timestamp     string  `json:"timestamp"`
	UPIID         string  `json:"upiId"`
	Status        string  `json:"status"`
}

// Receipt builds the receipt for a completed simulated payment.
func (u *UPIInitiator) Receipt(txn string, amount float64, at time.Time) Receipt {
	return Receipt{
		TransactionID: txn,
		Amount:        amount,
		Timestamp:     at.UTC().Format(time.RFC3339),
		UPIID:         u.Payee,
		Status:        "success",
	}
}

// ReceiptFilename is the attachment name of a receipt download.
func ReceiptFilename(txn string) string {
	return "parkseva-receipt-" + txn + ".json"
}
