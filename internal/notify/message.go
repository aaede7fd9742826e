// Package notify delivers booking confirmations over SMS and WhatsApp and
// sends password-reset mail.  Delivery is best-effort: callers log
// failures and move on.
package notify

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotConfigured is returned by a sender whose credentials are missing.
var ErrNotConfigured = errors.New("notification provider not configured")

// IST is the display zone of confirmation messages.
var IST = time.FixedZone("IST", 5*60*60+30*60)

const displayLayout = "02 Jan 2006, 3:04 PM"

// ConfirmationMessage is the text sent after a booking is written.
func ConfirmationMessage(lotName string, start, end time.Time) string {
	if lotName == "" {
		lotName = "your selected parking lot"
	}
	return fmt.Sprintf("✅ Your parking is confirmed at %s from %s to %s.",
		lotName, start.In(IST).Format(displayLayout), end.In(IST).Format(displayLayout))
}
