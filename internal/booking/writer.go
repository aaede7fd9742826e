// Package booking writes confirmed bookings and classifies their payment
// channel for the readers.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/guregu/null.v4"

	"github.com/iliyamo/parkseva/internal/logger"
	"github.com/iliyamo/parkseva/internal/model"
	"github.com/iliyamo/parkseva/internal/payment"
	"github.com/iliyamo/parkseva/internal/queue"
	"github.com/iliyamo/parkseva/internal/repository"
)

var (
	ErrSlotRequired    = errors.New("slot is required")
	ErrPaymentRequired = errors.New("payment confirmation is required")
	// ErrPaymentReused is returned when the gateway token already backs
	// another booking.
	ErrPaymentReused = errors.New("payment already used for another booking")
)

// BookingStore inserts booking rows.  withOptional controls whether the
// payment_mode and transaction_id columns are part of the statement.
type BookingStore interface {
	Insert(ctx context.Context, b model.Booking, withOptional bool) error
}

// SlotFlagger flips a slot's availability flag off.
type SlotFlagger interface {
	MarkUnavailable(ctx context.Context, slotID string) error
}

// Publisher hands the confirmation event to the notification transport.
type Publisher interface {
	Publish(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// Writer persists a booking after payment.  It runs three independent
// steps with no transaction and no lock: insert the row, mark the slot
// unavailable, publish the notification.  Only the insert can fail the
// call.  Two concurrent bookings of one slot both succeed.
type Writer struct {
	bookings BookingStore
	slots    SlotFlagger
	notify   Publisher

	Now   func() time.Time
	NewID func() string
}

// NewWriter builds a Writer.  notify may be nil.
func NewWriter(bookings BookingStore, slots SlotFlagger, notify Publisher) *Writer {
	if bookings == nil || slots == nil {
		panic("nil dependency passed to booking.NewWriter")
	}
	return &Writer{bookings: bookings, slots: slots, notify: notify, Now: time.Now, NewID: uuid.NewString}
}

// CreateRequest is everything the writer needs for one booking.
type CreateRequest struct {
	Slot         *model.Slot
	UserID       string
	Start        time.Time
	End          time.Time
	VehiclePlate string
	Amount       float64
	Outcome      payment.Outcome
	Phone        string // notification recipient, may be empty
}

// Create writes the booking described by req.
//
// A slot whose id is not a UUID (demo or filler slot) is never sent to the
// store: the booking is fabricated locally and returned with Synthetic
// set.  If the store rejects the optional columns as unknown, the insert
// is retried once without them.
func (w *Writer) Create(ctx context.Context, req CreateRequest) (model.Booking, error) {
	if req.Slot == nil || req.Slot.ID == "" {
		return model.Booking{}, ErrSlotRequired
	}
	if err := req.Outcome.Err(); err != nil {
		return model.Booking{}, err
	}
	if req.Outcome.Token == "" {
		return model.Booking{}, ErrPaymentRequired
	}

	now := w.Now().UTC()
	b := model.Booking{
		ID:            w.NewID(),
		SlotID:        req.Slot.ID,
		UserID:        req.UserID,
		StartTime:     req.Start.UTC(),
		EndTime:       req.End.UTC(),
		TotalAmount:   req.Amount,
		VehiclePlate:  req.VehiclePlate,
		Status:        model.BookingConfirmed,
		PaymentStatus: req.Outcome.PaymentStatus(),
		PaymentMode:   null.StringFrom(req.Outcome.Channel),
		CreatedAt:     now,
		UpdatedAt:     now,
		SlotNumber:    req.Slot.SlotNumber,
		LotID:         req.Slot.LotID,
		LotName:       req.Slot.LotName,
	}
	if IsGatewayChannel(req.Outcome.Channel) {
		b.GatewayPaymentID = null.StringFrom(req.Outcome.Token)
	} else {
		b.TransactionID = null.StringFrom(req.Outcome.Token)
	}

	if _, err := uuid.Parse(req.Slot.ID); err != nil {
		b.Synthetic = true
		return b, nil
	}

	if err := w.insert(ctx, &b); err != nil {
		return model.Booking{}, err
	}

	if err := w.slots.MarkUnavailable(ctx, b.SlotID); err != nil {
		logger.ErrorLogger.WithError(err).WithField("slot_id", b.SlotID).Warn("booking: slot flag update failed")
	}

	if w.notify != nil {
		if err := w.notify.Publish(ctx, event(b, req.Phone, now)); err != nil {
			logger.ErrorLogger.WithError(err).WithField("booking_id", b.ID).Warn("booking: notification publish failed")
		}
	}
	return b, nil
}

func (w *Writer) insert(ctx context.Context, b *model.Booking) error {
	err := w.bookings.Insert(ctx, *b, true)
	if err == nil {
		return nil
	}
	if !repository.IsUnknownColumn(err) {
		return insertErr(err)
	}
	logger.ErrorLogger.WithError(err).Warn("booking: store lacks payment_mode/transaction_id, retrying without them")
	if err := w.bookings.Insert(ctx, *b, false); err != nil {
		return insertErr(err)
	}
	// Report what was stored.
	b.PaymentMode = null.String{}
	b.TransactionID = null.String{}
	return nil
}

// insertErr maps a unique-key violation, which only gateway_payment_id can
// raise for a fresh booking id, to ErrPaymentReused.
func insertErr(err error) error {
	if repository.IsDuplicate(err) {
		return fmt.Errorf("insert booking: %w", ErrPaymentReused)
	}
	return fmt.Errorf("insert booking: %w", err)
}

func event(b model.Booking, phone string, at time.Time) queue.BookingConfirmedEvent {
	return queue.BookingConfirmedEvent{
		BookingID:     b.ID,
		UserID:        b.UserID,
		SlotID:        b.SlotID,
		SlotNumber:    b.SlotNumber,
		LotName:       b.LotName,
		StartTime:     b.StartTime.Format(time.RFC3339),
		EndTime:       b.EndTime.Format(time.RFC3339),
		TotalAmount:   b.TotalAmount,
		VehiclePlate:  b.VehiclePlate,
		Phone:         phone,
		Channel:       b.PaymentMode.String,
		PaymentStatus: string(b.PaymentStatus),
		ConfirmedAt:   at.Format(time.RFC3339),
	}
}
