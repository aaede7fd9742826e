package model

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

// BookingStatus is the lifecycle state of a booking.  The booking workflow
// only ever writes BookingConfirmed; the other values exist in the schema
// for check-in, checkout and cancellation flows.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCheckedIn BookingStatus = "checked_in"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// PaymentStatus records whether money actually moved for a booking.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Booking mirrors the `bookings` table.  PaymentMode and TransactionID
// live in columns that a not-yet-migrated store may lack, so they are
// nullable here and omitted from the insert when the store rejects them.
//
// Fields:
//  ID               – primary key (UUID string).
//  SlotID           – booked slot.
//  UserID           – profile that made the booking.
//  StartTime        – start of the parking window.
//  EndTime          – end of the parking window.
//  TotalAmount      – quoted amount at booking time.
//  VehiclePlate     – vehicle identifier entered by the user.
//  Status           – lifecycle status.
//  PaymentStatus    – paid for gateway/UPI, pending for mock.
//  GatewayPaymentID – hosted gateway confirmation token.
//  PaymentMode      – channel tag (stripe, razorpay, UPI, mock).
//  TransactionID    – non-gateway confirmation token (UPI-TXN-…, MOCK-…).
type Booking struct {
	ID               string        `json:"id"`                 // bookings.id
	SlotID           string        `json:"slot_id"`            // bookings.slot_id
	UserID           string        `json:"user_id"`            // bookings.user_id
	StartTime        time.Time     `json:"start_time"`         // bookings.start_time
	EndTime          time.Time     `json:"end_time"`           // bookings.end_time
	TotalAmount      float64       `json:"total_amount"`       // bookings.total_amount
	VehiclePlate     string        `json:"vehicle_plate"`      // bookings.vehicle_plate
	Status           BookingStatus `json:"status"`             // bookings.status
	PaymentStatus    PaymentStatus `json:"payment_status"`     // bookings.payment_status
	GatewayPaymentID null.String   `json:"gateway_payment_id"` // bookings.gateway_payment_id
	PaymentMode      null.String   `json:"payment_mode"`       // bookings.payment_mode (optional column)
	TransactionID    null.String   `json:"transaction_id"`     // bookings.transaction_id (optional column)
	QRCodeURL        null.String   `json:"qr_code_url"`        // bookings.qr_code_url
	CheckInTime      null.Time     `json:"check_in_time"`      // bookings.check_in_time
	CheckOutTime     null.Time     `json:"check_out_time"`     // bookings.check_out_time
	CreatedAt        time.Time     `json:"created_at"`         // bookings.created_at
	UpdatedAt        time.Time     `json:"updated_at"`         // bookings.updated_at

	// Joined for listings.
	SlotNumber string `json:"slot_number,omitempty"`
	LotID      string `json:"lot_id,omitempty"`
	LotName    string `json:"lot_name,omitempty"`

	// Synthetic is set when the booking was fabricated locally for a
	// demo or filler slot and never written to the store.
	Synthetic bool `json:"synthetic,omitempty"`
}
