package handler

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v4"

	"github.com/iliyamo/parkseva/internal/booking"
	"github.com/iliyamo/parkseva/internal/model"
	"github.com/iliyamo/parkseva/internal/payment"
	"github.com/iliyamo/parkseva/internal/repository"
)

type fakeBookings struct {
	mu        sync.Mutex
	inserted  []model.Booking
	insertErr error
	rows      []model.Booking
	flagged   []string
}

func (f *fakeBookings) Insert(_ context.Context, b model.Booking, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, b)
	return nil
}

func (f *fakeBookings) MarkUnavailable(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flagged = append(f.flagged, id)
	return nil
}

func (f *fakeBookings) ListByUser(_ context.Context, userID string) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range f.rows {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookings) ListRecent(context.Context, int) ([]model.Booking, error) { return f.rows, nil }

func (f *fakeBookings) GetForUser(_ context.Context, id, userID string) (model.Booking, error) {
	for _, b := range f.rows {
		if b.ID == id {
			if b.UserID != userID {
				return model.Booking{}, repository.ErrForbidden
			}
			return b, nil
		}
	}
	return model.Booking{}, repository.ErrNotFound
}

type stubInitiator struct{ outcome payment.Outcome }

func (s stubInitiator) Confirm(context.Context, payment.Request) payment.Outcome { return s.outcome }

func newCustomer(t *testing.T, store *fakeBookings, gateway payment.Initiator) *CustomerHandler {
	t.Helper()
	lots, slots := testStores()
	w := booking.NewWriter(store, store, nil)
	sel := &payment.Selector{
		Gateway: gateway,
		UPI:     payment.NewUPIInitiator("parkseva@upi", "ParkSeva", 0),
		Mock:    &payment.MockInitiator{},
	}
	profiles := newFakeProfiles()
	phone := "+919800000001"
	profiles.byEmail["a@b.co"] = model.Profile{ID: testUser, Email: "a@b.co", Phone: &phone}
	return NewCustomerHandler(newReader(t, lots, slots, true), sel, w, store, profiles)
}

const bookingBody = `{"slot_id":"` + slotID + `","start_time":"2026-03-01T10:00:00Z","end_time":"2026-03-01T11:10:00Z","vehicle_plate":"mh12 ab 1234"`

func TestCreateBooking_MockPending(t *testing.T) {
	store := &fakeBookings{}
	h := newCustomer(t, store, nil)
	e := newEcho()

	c, rec := newCtx(e, http.MethodPost, "/v1/bookings", bookingBody+`}`, testUser, model.RoleUser)
	require.NoError(t, h.CreateBooking(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.Len(t, store.inserted, 1)
	b := store.inserted[0]
	assert.Equal(t, 120.0, b.TotalAmount, "two started hours at the slot rate")
	assert.Equal(t, model.PaymentPending, b.PaymentStatus)
	assert.Equal(t, "MH12 AB 1234", b.VehiclePlate)
	assert.Equal(t, []string{slotID}, store.flagged)
	pay := decode(t, rec)["payment"].(map[string]any)
	assert.Equal(t, payment.ChannelMock, pay["channel"])
}

func TestCreateBooking_PaymentFailureIs402(t *testing.T) {
	store := &fakeBookings{}
	h := newCustomer(t, store, stubInitiator{payment.Failed("Your card was declined.")})
	e := newEcho()

	c, rec := newCtx(e, http.MethodPost, "/v1/bookings", bookingBody+`,"payment_method":"card"}`, testUser, model.RoleUser)
	require.NoError(t, h.CreateBooking(c))
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, "Your card was declined.", decode(t, rec)["error"])
	assert.Empty(t, store.inserted)

	// UPI without attestation fails the same way.
	c, rec = newCtx(e, http.MethodPost, "/v1/bookings", bookingBody+`,"payment_method":"upi"}`, testUser, model.RoleUser)
	require.NoError(t, h.CreateBooking(c))
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Empty(t, store.inserted)
}

// quotedGateway accepts any intent that covers the amount it is asked for
// and records what that amount was.
type quotedGateway struct {
	paid int64
	got  payment.Confirmation
}

func (g *quotedGateway) Name() string { return payment.ChannelStripe }

func (g *quotedGateway) CreateSession(context.Context, int64) (payment.Session, error) {
	return payment.Session{}, nil
}

func (g *quotedGateway) Verify(_ context.Context, c payment.Confirmation) (string, error) {
	g.got = c
	if g.paid < c.AmountMinor {
		return "", errors.New("payment does not cover the amount due")
	}
	return c.SessionID, nil
}

func TestCreateBooking_GatewayChecksQuotedAmount(t *testing.T) {
	store := &fakeBookings{}
	gw := &quotedGateway{paid: 50}
	h := newCustomer(t, store, &payment.GatewayInitiator{Gateway: gw})
	e := newEcho()
	body := bookingBody + `,"payment_method":"card","payment_intent_id":"pi_cheap"}`

	c, rec := newCtx(e, http.MethodPost, "/v1/bookings", body, testUser, model.RoleUser)
	require.NoError(t, h.CreateBooking(c))
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, int64(12000), gw.got.AmountMinor, "server quote in paise")
	assert.Empty(t, store.inserted)

	gw.paid = 12000
	c, rec = newCtx(e, http.MethodPost, "/v1/bookings", body, testUser, model.RoleUser)
	require.NoError(t, h.CreateBooking(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, store.inserted, 1)
	assert.Equal(t, model.PaymentPaid, store.inserted[0].PaymentStatus)
}

func TestCreateBooking_ReusedPaymentIs409(t *testing.T) {
	store := &fakeBookings{insertErr: &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'pi_1'"}}
	h := newCustomer(t, store, stubInitiator{payment.Paid("pi_1", payment.ChannelStripe)})
	e := newEcho()

	c, rec := newCtx(e, http.MethodPost, "/v1/bookings", bookingBody+`,"payment_method":"card","payment_intent_id":"pi_1"}`, testUser, model.RoleUser)
	require.NoError(t, h.CreateBooking(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, booking.ErrPaymentReused.Error(), decode(t, rec)["error"])
	assert.Empty(t, store.flagged)
}

func TestCreateBooking_UPIPaid(t *testing.T) {
	store := &fakeBookings{}
	h := newCustomer(t, store, nil)
	e := newEcho()

	c, rec := newCtx(e, http.MethodPost, "/v1/bookings", bookingBody+`,"payment_method":"upi","attested":true}`, testUser, model.RoleUser)
	require.NoError(t, h.CreateBooking(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, store.inserted, 1)
	b := store.inserted[0]
	assert.Equal(t, model.PaymentPaid, b.PaymentStatus)
	assert.Equal(t, payment.ChannelUPI, b.PaymentMode.String)
	assert.Contains(t, b.TransactionID.String, "UPI-TXN-")
	assert.Equal(t, payment.DemoNotice, decode(t, rec)["notice"])
}

func TestCreateBooking_DemoSlotIsSynthetic(t *testing.T) {
	store := &fakeBookings{}
	h := newCustomer(t, store, nil)
	e := newEcho()

	body := `{"slot_id":"demo-slot-1","start_time":"2026-03-01T10:00:00Z","end_time":"2026-03-01T11:00:00Z","vehicle_plate":"MH12AB1234"}`
	c, rec := newCtx(e, http.MethodPost, "/v1/bookings", body, testUser, model.RoleUser)
	require.NoError(t, h.CreateBooking(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Empty(t, store.inserted)
	assert.Empty(t, store.flagged)
	assert.Equal(t, true, decode(t, rec)["booking"].(map[string]any)["synthetic"])
}

func TestCreateBooking_Errors(t *testing.T) {
	store := &fakeBookings{insertErr: errors.New("disk full")}
	h := newCustomer(t, store, nil)
	e := newEcho()

	c, rec := newCtx(e, http.MethodPost, "/v1/bookings", bookingBody+`}`, testUser, model.RoleUser)
	require.NoError(t, h.CreateBooking(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, store.flagged, "slot stays available when the insert fails")

	c, rec = newCtx(e, http.MethodPost, "/v1/bookings", `{"slot_id":"`+slotID+`"}`, testUser, model.RoleUser)
	require.NoError(t, h.CreateBooking(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newCtx(e, http.MethodPost, "/v1/bookings", `{"slot_id":"missing","start_time":"2026-03-01T10:00:00Z","end_time":"2026-03-01T11:00:00Z","vehicle_plate":"X"}`, testUser, model.RoleUser)
	require.NoError(t, h.CreateBooking(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = newCtx(e, http.MethodPost, "/v1/bookings", bookingBody+`}`, "", "")
	require.NoError(t, h.CreateBooking(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBookingReads(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store := &fakeBookings{rows: []model.Booking{
		{ID: "b-upi", UserID: testUser, TotalAmount: 80, TransactionID: null.StringFrom("UPI-TXN-1"), CreatedAt: at},
		{ID: "b-card", UserID: testUser, GatewayPaymentID: null.StringFrom("pi_1")},
		{ID: "b-other", UserID: "someone-else"},
	}}
	h := newCustomer(t, store, nil)
	e := newEcho()

	c, rec := newCtx(e, http.MethodGet, "/v1/my-bookings", "", testUser, model.RoleUser)
	require.NoError(t, h.ListMyBookings(c))
	assert.Len(t, decode(t, rec)["items"], 2)

	c, rec = newCtx(e, http.MethodGet, "/", "", testUser, model.RoleUser)
	c.SetParamNames("id")
	c.SetParamValues("b-card")
	require.NoError(t, h.GetBooking(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, payment.ChannelStripe, decode(t, rec)["channel"])

	c, rec = newCtx(e, http.MethodGet, "/", "", testUser, model.RoleUser)
	c.SetParamNames("id")
	c.SetParamValues("b-other")
	require.NoError(t, h.GetBooking(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	c, rec = newCtx(e, http.MethodGet, "/", "", testUser, model.RoleUser)
	c.SetParamNames("id")
	c.SetParamValues("b-upi")
	require.NoError(t, h.GetReceipt(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "parkseva-receipt-UPI-TXN-1.json")
	receipt := decode(t, rec)
	assert.Equal(t, "UPI-TXN-1", receipt["transactionId"])
	assert.Equal(t, "parkseva@upi", receipt["upiId"])

	c, rec = newCtx(e, http.MethodGet, "/", "", testUser, model.RoleUser)
	c.SetParamNames("id")
	c.SetParamValues("b-card")
	require.NoError(t, h.GetReceipt(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
