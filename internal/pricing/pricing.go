// Package pricing computes booking quotes.  Everything here is pure so
// the handlers, the booking writer and the tests agree on one formula.
package pricing

import (
	"errors"
	"math"
	"time"
)

// MinChargeMinor is the smallest amount, in paise, a hosted gateway
// accepts for a payment session.
const MinChargeMinor int64 = 50

// Hours returns the billable hours between start and end: the elapsed
// time rounded up to whole hours, never less than one.  Inverted or
// zero-length windows bill one hour.
func Hours(start, end time.Time) int {
	d := end.Sub(start)
	if d <= 0 {
		return 1
	}
	h := int(math.Ceil(d.Hours()))
	if h < 1 {
		return 1
	}
	return h
}

// Quote returns Hours(start, end) * ratePerHour.  No currency rounding is
// applied beyond the precision of the rate itself.
func Quote(start, end time.Time, ratePerHour float64) float64 {
	return float64(Hours(start, end)) * ratePerHour
}

// ErrAmountOutOfRange is returned by MinorUnits for amounts that are not
// finite or whose paise value does not fit in an int64.
var ErrAmountOutOfRange = errors.New("amount out of range")

// MinorUnits converts a rupee amount to paise for a gateway, applying the
// provider floor.
func MinorUnits(amount float64) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, ErrAmountOutOfRange
	}
	minor := math.Floor(amount * 100)
	// float64(math.MaxInt64) rounds up to 2^63, which is already out of range.
	if minor >= float64(math.MaxInt64) {
		return 0, ErrAmountOutOfRange
	}
	if minor < float64(MinChargeMinor) {
		return MinChargeMinor, nil
	}
	return int64(minor), nil
}
