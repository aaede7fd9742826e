// Package queue defines the payloads exchanged over the message broker and
// the consumers that deliver them to a handler.
package queue

import "context"

// BookingQueue is the AMQP queue and default Kafka topic name.
const BookingQueue = "booking.confirmed"

// BookingConfirmedEvent is published after a booking row is written.  It
// carries everything the notifier needs so the consumer never queries the
// primary database.
type BookingConfirmedEvent struct {
	BookingID     string  `json:"booking_id"`
	UserID        string  `json:"user_id"`
	SlotID        string  `json:"slot_id"`
	SlotNumber    string  `json:"slot_number"`
	LotName       string  `json:"lot_name"`
	StartTime     string  `json:"start_time"` // RFC 3339
	EndTime       string  `json:"end_time"`
	TotalAmount   float64 `json:"total_amount"`
	VehiclePlate  string  `json:"vehicle_plate"`
	Phone         string  `json:"phone,omitempty"` // recipient; empty means the configured default
	Channel       string  `json:"payment_mode"`
	PaymentStatus string  `json:"payment_status"`
	ConfirmedAt   string  `json:"confirmed_at"`
}

// Handler processes one event.  A returned error rejects the message.
type Handler func(ctx context.Context, ev BookingConfirmedEvent) error
