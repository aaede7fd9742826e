package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parkseva/internal/booking"
	"github.com/iliyamo/parkseva/internal/catalog"
	"github.com/iliyamo/parkseva/internal/logger"
	"github.com/iliyamo/parkseva/internal/middleware"
	"github.com/iliyamo/parkseva/internal/model"
	"github.com/iliyamo/parkseva/internal/payment"
	"github.com/iliyamo/parkseva/internal/pricing"
	"github.com/iliyamo/parkseva/internal/repository"
)

// paymentTimeout bounds a payment confirmation, which includes the
// simulated wallet delay and a provider round trip.
const paymentTimeout = 30 * time.Second

// BookingReader lists persisted bookings.
type BookingReader interface {
	ListByUser(ctx context.Context, userID string) ([]model.Booking, error)
	ListRecent(ctx context.Context, limit int) ([]model.Booking, error)
	GetForUser(ctx context.Context, id, userID string) (model.Booking, error)
}

// PhoneLookup resolves the notification recipient of a profile.
type PhoneLookup interface {
	GetByID(ctx context.Context, id string) (model.Profile, error)
}

// CustomerHandler creates and lists bookings on behalf of the signed-in
// user.  Payment runs first; the booking is written only for a Paid or
// Pending outcome.
type CustomerHandler struct {
	Catalog  *catalog.Reader
	Payments *payment.Selector
	Writer   *booking.Writer
	Bookings BookingReader
	Profiles PhoneLookup // may be nil
}

func NewCustomerHandler(cat *catalog.Reader, pay *payment.Selector, w *booking.Writer, bookings BookingReader, profiles PhoneLookup) *CustomerHandler {
	if cat == nil || pay == nil || w == nil || bookings == nil {
		panic("nil dependency passed to NewCustomerHandler")
	}
	return &CustomerHandler{Catalog: cat, Payments: pay, Writer: w, Bookings: bookings, Profiles: profiles}
}

type createBookingReq struct {
	SlotID       string    `json:"slot_id" validate:"required"`
	StartTime    time.Time `json:"start_time" validate:"required"`
	EndTime      time.Time `json:"end_time" validate:"required"`
	VehiclePlate string    `json:"vehicle_plate" validate:"required,max=20"`

	PaymentMethod   string `json:"payment_method" validate:"omitempty,oneof=card upi"`
	PaymentIntentID string `json:"payment_intent_id"` // stripe intent or razorpay order
	PaymentID       string `json:"payment_id"`
	Signature       string `json:"signature"`
	Attested        bool   `json:"attested"`
}

type paymentPart struct {
	Status  model.PaymentStatus `json:"status"`
	Channel string              `json:"channel"`
	Token   string              `json:"token"`
}

// CreateBooking handles POST /v1/bookings.  The amount is always quoted
// server side from the slot rate; the client never supplies it.
func (h *CustomerHandler) CreateBooking(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	req.VehiclePlate = strings.ToUpper(strings.TrimSpace(req.VehiclePlate))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	slot, err := h.Catalog.ResolveSlot(ctx, req.SlotID)
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	amount := pricing.Quote(req.StartTime, req.EndTime, slot.PricePerHour)

	payCtx, payCancel := context.WithTimeout(c.Request().Context(), paymentTimeout)
	outcome := h.Payments.For(req.PaymentMethod).Confirm(payCtx, payment.Request{
		Amount:    amount,
		Method:    req.PaymentMethod,
		SessionID: req.PaymentIntentID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
		Attested:  req.Attested,
	})
	payCancel()
	if outcome.IsFailed() {
		return c.JSON(http.StatusPaymentRequired, echo.Map{"error": outcome.Reason})
	}

	ctx, cancel = context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Writer.Create(ctx, booking.CreateRequest{
		Slot:         &slot,
		UserID:       userID,
		Start:        req.StartTime,
		End:          req.EndTime,
		VehiclePlate: req.VehiclePlate,
		Amount:       amount,
		Outcome:      outcome,
		Phone:        h.phone(ctx, userID),
	})
	if err != nil {
		var failed *payment.FailedError
		switch {
		case errors.As(err, &failed):
			return c.JSON(http.StatusPaymentRequired, echo.Map{"error": failed.Reason})
		case errors.Is(err, booking.ErrPaymentReused):
			return c.JSON(http.StatusConflict, echo.Map{"error": booking.ErrPaymentReused.Error()})
		case errors.Is(err, booking.ErrSlotRequired), errors.Is(err, booking.ErrPaymentRequired):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		logger.ErrorLogger.WithError(err).WithField("slot_id", slot.ID).Error("create booking")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create booking failed"})
	}

	resp := echo.Map{
		"booking": b,
		"payment": paymentPart{Status: b.PaymentStatus, Channel: outcome.Channel, Token: outcome.Token},
	}
	if outcome.Channel == payment.ChannelUPI {
		resp["notice"] = payment.DemoNotice
	}
	return c.JSON(http.StatusCreated, resp)
}

// phone returns the profile phone or "" so the dispatcher can use its
// default recipient.
func (h *CustomerHandler) phone(ctx context.Context, userID string) string {
	if h.Profiles == nil {
		return ""
	}
	p, err := h.Profiles.GetByID(ctx, userID)
	if err != nil || p.Phone == nil {
		return ""
	}
	return *p.Phone
}

// ListMyBookings handles GET /v1/my-bookings, newest first.
func (h *CustomerHandler) ListMyBookings(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Bookings.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if items == nil {
		items = []model.Booking{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// loadOwn fetches the :id booking of the caller.  When ok is false the
// error response has already been written.
func (h *CustomerHandler) loadOwn(c echo.Context) (b model.Booking, ok bool, err error) {
	userID := middleware.UserID(c)
	if userID == "" {
		return b, false, c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err = h.Bookings.GetForUser(ctx, c.Param("id"), userID)
	switch {
	case err == nil:
		return b, true, nil
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, sql.ErrNoRows):
		return b, false, c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, repository.ErrForbidden):
		return b, false, c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return b, false, c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}

// GetBooking handles GET /v1/bookings/:id for the booking's owner.
func (h *CustomerHandler) GetBooking(c echo.Context) error {
	b, ok, err := h.loadOwn(c)
	if !ok {
		return err
	}
	return c.JSON(http.StatusOK, booking.Row{Booking: b, Channel: booking.InferChannel(b)})
}

// GetReceipt handles GET /v1/bookings/:id/receipt.  Only bookings paid
// through the simulated wallet have a receipt; it is served as a JSON
// attachment.
func (h *CustomerHandler) GetReceipt(c echo.Context) error {
	b, ok, err := h.loadOwn(c)
	if !ok {
		return err
	}
	wallet := h.Payments.Wallet()
	if wallet == nil || booking.InferChannel(b) != payment.ChannelUPI || !b.TransactionID.Valid {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no receipt for this booking"})
	}
	txn := b.TransactionID.String
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+payment.ReceiptFilename(txn)+`"`)
	return c.JSON(http.StatusOK, wallet.Receipt(txn, b.TotalAmount, b.CreatedAt))
}
