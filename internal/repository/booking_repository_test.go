package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v4"

	"github.com/iliyamo/parkseva/internal/model"
)

func newMock(t *testing.T) (*BookingRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewBookingRepo(db), mock
}

func sampleBooking() model.Booking {
	start := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	return model.Booking{
		ID:            "b7d3f0c2-4f35-4c55-9a51-0d1f2f6b7a10",
		SlotID:        "0c7b1e36-3c1a-4b5b-8a57-2f9a2f1d7e44",
		UserID:        "5d0e6c1a-8a8b-4e8f-9d55-8d5f0b1b2c33",
		StartTime:     start,
		EndTime:       start.Add(150 * time.Minute),
		TotalAmount:   120,
		VehiclePlate:  "MH12AB1234",
		Status:        model.BookingConfirmed,
		PaymentStatus: model.PaymentPaid,
		PaymentMode:   null.StringFrom("UPI"),
		TransactionID: null.StringFrom("UPI-TXN-1710406800000"),
		CreatedAt:     start,
	}
}

func TestBookingInsert_WithOptionalColumns(t *testing.T) {
	repo, mock := newMock(t)
	b := sampleBooking()

	mock.ExpectExec(`INSERT INTO bookings \(.*payment_mode, transaction_id\) VALUES \(\?(,\?){13}\)`).
		WithArgs(b.ID, b.SlotID, b.UserID, b.StartTime, b.EndTime, b.TotalAmount, b.VehiclePlate,
			"confirmed", "paid", sqlmock.AnyArg(), sqlmock.AnyArg(), b.CreatedAt, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Insert(context.Background(), b, true))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingInsert_WithoutOptionalColumns(t *testing.T) {
	repo, mock := newMock(t)
	b := sampleBooking()

	mock.ExpectExec(`INSERT INTO bookings \(id, slot_id, user_id, start_time, end_time, total_amount, vehicle_plate, status, payment_status, gateway_payment_id, qr_code_url, created_at\) VALUES \(\?(,\?){11}\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Insert(context.Background(), b, false))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUnknownColumn(t *testing.T) {
	assert.True(t, IsUnknownColumn(&mysql.MySQLError{Number: 1054, Message: "Unknown column 'payment_mode' in 'field list'"}))
	assert.False(t, IsUnknownColumn(&mysql.MySQLError{Number: 1062}))
	assert.False(t, IsUnknownColumn(assert.AnError))
	assert.False(t, IsUnknownColumn(nil))
}

var baseCols = []string{"id", "slot_id", "user_id", "start_time", "end_time", "total_amount",
	"vehicle_plate", "status", "payment_status", "gateway_payment_id", "qr_code_url",
	"check_in_time", "check_out_time", "created_at", "updated_at", "slot_number", "lot_id", "name"}

func TestListRecent_FallsBackWhenOptionalColumnsMissing(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)SELECT .*b\.payment_mode, b\.transaction_id FROM bookings b`).
		WithArgs(50).
		WillReturnError(&mysql.MySQLError{Number: 1054, Message: "Unknown column 'b.payment_mode'"})
	mock.ExpectQuery(`(?s)SELECT .* FROM bookings b`).
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows(baseCols).AddRow(
			"b1", "s1", "u1", now, now.Add(time.Hour), "40.00", "MH12", "confirmed", "paid",
			"pi_123", nil, nil, nil, now, now, "W-01", "l1", "FC Road Public Parking"))

	rows, err := repo.ListRecent(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 40.0, rows[0].TotalAmount)
	assert.Equal(t, "pi_123", rows[0].GatewayPaymentID.String)
	assert.False(t, rows[0].PaymentMode.Valid)
	assert.Equal(t, "FC Road Public Parking", rows[0].LotName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByUser_NewestFirst(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	cols := append(append([]string{}, baseCols...), "payment_mode", "transaction_id")

	mock.ExpectQuery(`WHERE b\.user_id = \? ORDER BY b\.created_at DESC`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("b2", "s1", "u1", now, now, "35", "", "confirmed", "pending", nil, nil, nil, nil, now.Add(time.Minute), now, "S-11", "l2", "Lot", "mock", "MOCK-1").
			AddRow("b1", "s1", "u1", now, now, "35", "", "confirmed", "paid", nil, nil, nil, nil, now, now, "S-11", "l2", "Lot", "UPI", "UPI-TXN-1"))

	rows, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "b2", rows[0].ID)
	assert.Equal(t, "mock", rows[0].PaymentMode.String)
	assert.Equal(t, model.PaymentPending, rows[0].PaymentStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetForUser_Forbidden(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC()
	cols := append(append([]string{}, baseCols...), "payment_mode", "transaction_id")
	mock.ExpectQuery(`WHERE b\.id = \?`).WithArgs("b1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("b1", "s1", "owner", now, now, "1", "", "confirmed", "paid", nil, nil, nil, nil, now, now, "", "", "", nil, nil))

	_, err := repo.GetForUser(context.Background(), "b1", "intruder")
	assert.ErrorIs(t, err, ErrForbidden)
}
