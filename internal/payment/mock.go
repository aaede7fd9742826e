package payment

import (
	"context"
	"strconv"
	"time"
)

const mockTokenPrefix = "MOCK-"

// MockInitiator lets bookings through when no gateway is configured.  The
// booking is stored with a pending payment status.
type MockInitiator struct {
	Now func() time.Time
}

func (m *MockInitiator) Confirm(context.Context, Request) Outcome {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	return Pending(mockTokenPrefix + strconv.FormatInt(now().UnixMilli(), 10))
}
