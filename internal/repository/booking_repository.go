package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/parkseva/internal/model"
)

// BookingRepo persists bookings.  Insert and the readers know about the
// optional payment_mode / transaction_id columns and work whether or not
// the store has them.
type BookingRepo struct{ db *sql.DB }

// NewBookingRepo returns a BookingRepo bound to db.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// Insert writes one booking row.  When withOptional is false the
// payment_mode and transaction_id columns are left out of the statement;
// every other field is written identically.
func (r *BookingRepo) Insert(ctx context.Context, b model.Booking, withOptional bool) error {
	cols := []string{"id", "slot_id", "user_id", "start_time", "end_time", "total_amount",
		"vehicle_plate", "status", "payment_status", "gateway_payment_id", "qr_code_url", "created_at"}
	args := []any{b.ID, b.SlotID, b.UserID, b.StartTime, b.EndTime, b.TotalAmount,
		b.VehiclePlate, string(b.Status), string(b.PaymentStatus), b.GatewayPaymentID, b.QRCodeURL, b.CreatedAt}
	if withOptional {
		cols = append(cols, "payment_mode", "transaction_id")
		args = append(args, b.PaymentMode, b.TransactionID)
	}
	q := `INSERT INTO bookings (` + strings.Join(cols, ", ") + `) VALUES (` +
		strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",") + `)`
	_, err := r.db.ExecContext(ctx, q, args...)
	return err
}

const bookingBaseColumns = `b.id, b.slot_id, b.user_id, b.start_time, b.end_time, b.total_amount,
	COALESCE(b.vehicle_plate, ''), b.status, b.payment_status, b.gateway_payment_id, b.qr_code_url,
	b.check_in_time, b.check_out_time, b.created_at, b.updated_at,
	COALESCE(s.slot_number, ''), COALESCE(s.lot_id, ''), COALESCE(l.name, '')`

const bookingOptionalColumns = `, b.payment_mode, b.transaction_id`

const bookingFrom = ` FROM bookings b
	LEFT JOIN slots s ON s.id = b.slot_id
	LEFT JOIN parking_lots l ON l.id = s.lot_id`

// ListByUser returns the bookings of one profile, newest first, with the
// slot number and lot name joined in.
func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	return r.selectBookings(ctx, ` WHERE b.user_id = ? ORDER BY b.created_at DESC`, userID)
}

// ListRecent returns the newest bookings across all users.  Channel
// filtering is left to the caller so a store without payment_mode still
// answers.
func (r *BookingRepo) ListRecent(ctx context.Context, limit int) ([]model.Booking, error) {
	return r.selectBookings(ctx, ` ORDER BY b.created_at DESC LIMIT ?`, limit)
}

// GetByID returns one booking or ErrNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (model.Booking, error) {
	rows, err := r.selectBookings(ctx, ` WHERE b.id = ? LIMIT 1`, id)
	if err != nil {
		return model.Booking{}, err
	}
	if len(rows) == 0 {
		return model.Booking{}, ErrNotFound
	}
	return rows[0], nil
}

// GetForUser returns a booking owned by userID.  A booking owned by
// someone else yields ErrForbidden.
func (r *BookingRepo) GetForUser(ctx context.Context, id, userID string) (model.Booking, error) {
	b, err := r.GetByID(ctx, id)
	if err != nil {
		return b, err
	}
	if b.UserID != userID {
		return model.Booking{}, ErrForbidden
	}
	return b, nil
}

func (r *BookingRepo) selectBookings(ctx context.Context, tail string, args ...any) ([]model.Booking, error) {
	rows, err := r.scanBookings(ctx, true, tail, args...)
	if IsUnknownColumn(err) {
		return r.scanBookings(ctx, false, tail, args...)
	}
	return rows, err
}

func (r *BookingRepo) scanBookings(ctx context.Context, withOptional bool, tail string, args ...any) ([]model.Booking, error) {
	cols := bookingBaseColumns
	if withOptional {
		cols += bookingOptionalColumns
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+cols+bookingFrom+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Booking, 0)
	for rows.Next() {
		var b model.Booking
		dest := []any{&b.ID, &b.SlotID, &b.UserID, &b.StartTime, &b.EndTime, &b.TotalAmount,
			&b.VehiclePlate, &b.Status, &b.PaymentStatus, &b.GatewayPaymentID, &b.QRCodeURL,
			&b.CheckInTime, &b.CheckOutTime, &b.CreatedAt, &b.UpdatedAt,
			&b.SlotNumber, &b.LotID, &b.LotName}
		if withOptional {
			dest = append(dest, &b.PaymentMode, &b.TransactionID)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
