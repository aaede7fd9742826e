package pricing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

func TestQuote_PartialHourRoundsUp(t *testing.T) {
	end := base.Add(2*time.Hour + 30*time.Minute)
	assert.Equal(t, 3, Hours(base, end))
	assert.Equal(t, 120.0, Quote(base, end, 40))
}

func TestQuote_WholeHours(t *testing.T) {
	for n := 1; n <= 24; n++ {
		end := base.Add(time.Duration(n) * time.Hour)
		assert.Equal(t, float64(n)*35, Quote(base, end, 35), "n=%d", n)
	}
}

func TestQuote_MinimumOneHour(t *testing.T) {
	cases := map[string]time.Time{
		"same instant": base,
		"inverted":     base.Add(-3 * time.Hour),
		"one minute":   base.Add(time.Minute),
		"one second":   base.Add(time.Second),
	}
	for name, end := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, 30.0, Quote(base, end, 30))
		})
	}
}

func TestQuote_NeverBelowRate(t *testing.T) {
	rates := []float64{0, 0.5, 30, 40, 99.99}
	offsets := []time.Duration{-time.Hour, 0, time.Minute, 59 * time.Minute, 61 * time.Minute, 10 * time.Hour}
	for _, r := range rates {
		for _, off := range offsets {
			assert.GreaterOrEqual(t, Quote(base, base.Add(off), r), r)
		}
	}
}

func TestMinorUnits(t *testing.T) {
	cases := map[float64]int64{
		120:    12000,
		35.999: 3599,
		0:      MinChargeMinor,
		0.2:    MinChargeMinor,
		-10:    MinChargeMinor,
		1e16:   1e18,
	}
	for amount, want := range cases {
		got, err := MinorUnits(amount)
		require.NoError(t, err, "amount %v", amount)
		assert.Equal(t, want, got, "amount %v", amount)
	}
}

func TestMinorUnits_OutOfRange(t *testing.T) {
	for _, amount := range []float64{1e17, 1e20, math.MaxFloat64, math.Inf(1), math.Inf(-1), math.NaN()} {
		_, err := MinorUnits(amount)
		assert.ErrorIs(t, err, ErrAmountOutOfRange, "amount %v", amount)
	}
}
