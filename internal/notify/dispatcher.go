package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/iliyamo/parkseva/internal/logger"
	"github.com/iliyamo/parkseva/internal/queue"
)

// Dispatcher turns BookingConfirmed events into outbound messages and a
// line in the booking log.
type Dispatcher struct {
	SMS          Sender
	WhatsApp     Sender
	DefaultPhone string

	mu  sync.Mutex
	log io.Writer
}

// NewDispatcher returns a dispatcher appending to bookingLog; a nil writer
// disables the log.
func NewDispatcher(sms, whatsapp Sender, defaultPhone string, bookingLog io.Writer) *Dispatcher {
	return &Dispatcher{SMS: sms, WhatsApp: whatsapp, DefaultPhone: defaultPhone, log: bookingLog}
}

// Handle is a queue.Handler.  Send failures are logged and swallowed;
// only a failed booking-log write is reported.
func (d *Dispatcher) Handle(ctx context.Context, ev queue.BookingConfirmedEvent) error {
	start, _ := time.Parse(time.RFC3339, ev.StartTime)
	end, _ := time.Parse(time.RFC3339, ev.EndTime)
	msg := ConfirmationMessage(ev.LotName, start, end)

	to := ev.Phone
	if to == "" {
		to = d.DefaultPhone
	}
	entry := logger.InfoLogger.WithField("booking_id", ev.BookingID)
	if to == "" {
		entry.Info("notify: no recipient phone, skipping messages")
	} else {
		for _, s := range []struct {
			name   string
			sender Sender
		}{{"sms", d.SMS}, {"whatsapp", d.WhatsApp}} {
			if s.sender == nil || !s.sender.Configured() {
				continue
			}
			if _, err := s.sender.Send(ctx, to, msg); err != nil {
				logger.ErrorLogger.WithError(err).WithField("booking_id", ev.BookingID).Warnf("notify: %s failed", s.name)
				continue
			}
			entry.Infof("notify: %s sent", s.name)
		}
	}
	return d.writeLog(ev)
}

func (d *Dispatcher) writeLog(ev queue.BookingConfirmedEvent) error {
	if d.log == nil {
		return nil
	}
	line := fmt.Sprintf("[%s] Booking confirmed | booking_id=%s | user_id=%s | slot_id=%s | slot=%q | lot=%q | start=%s | end=%s | total=%.2f | channel=%s | payment=%s\n",
		ev.ConfirmedAt, ev.BookingID, ev.UserID, ev.SlotID, ev.SlotNumber, ev.LotName,
		ev.StartTime, ev.EndTime, ev.TotalAmount, ev.Channel, ev.PaymentStatus)

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := io.WriteString(d.log, line); err != nil {
		return fmt.Errorf("write booking log: %w", err)
	}
	return nil
}
