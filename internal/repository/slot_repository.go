package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/parkseva/internal/model"
)

// SlotRepo reads and updates the slots table, the availability store of
// the booking workflow.  Nothing here locks a row: the availability flag
// is a plain boolean overwritten by the last writer.
type SlotRepo struct{ db *sql.DB }

// NewSlotRepo returns a SlotRepo bound to db.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

const slotColumns = `s.id, s.lot_id, s.slot_number, s.price_per_hour, s.is_available, s.is_accessible,
	s.is_covered, s.ev_supported, s.width_inches, s.length_inches, s.created_at, s.updated_at, l.name`

const slotFrom = ` FROM slots s JOIN parking_lots l ON l.id = s.lot_id`

// MaxBookableSlots caps the bookable-slot listing of a single lot.
const MaxBookableSlots = 200

// ListByLots returns every slot of the given lots with no availability
// filter.  It feeds the per-lot aggregates, which must count unavailable
// slots too.
func (r *SlotRepo) ListByLots(ctx context.Context, lotIDs []string) ([]model.Slot, error) {
	if len(lotIDs) == 0 {
		return []model.Slot{}, nil
	}
	ph := strings.TrimSuffix(strings.Repeat("?,", len(lotIDs)), ",")
	args := make([]any, len(lotIDs))
	for i, id := range lotIDs {
		args[i] = id
	}
	return r.query(ctx, `SELECT `+slotColumns+slotFrom+` WHERE s.lot_id IN (`+ph+`) ORDER BY s.lot_id, s.slot_number`, args...)
}

// ListAvailable returns the bookable slots of one lot, filtered in SQL on
// is_available.
func (r *SlotRepo) ListAvailable(ctx context.Context, lotID string, limit int) ([]model.Slot, error) {
	if limit <= 0 || limit > MaxBookableSlots {
		limit = MaxBookableSlots
	}
	return r.query(ctx, `SELECT `+slotColumns+slotFrom+` WHERE s.lot_id = ? AND s.is_available = 1 ORDER BY s.slot_number LIMIT ?`, lotID, limit)
}

// List returns slots across lots for the admin view.
func (r *SlotRepo) List(ctx context.Context, limit int) ([]model.Slot, error) {
	return r.query(ctx, `SELECT `+slotColumns+slotFrom+` ORDER BY l.name, s.slot_number LIMIT ?`, limit)
}

// GetByID returns one slot with its lot name or ErrNotFound.
func (r *SlotRepo) GetByID(ctx context.Context, id string) (model.Slot, error) {
	rows, err := r.query(ctx, `SELECT `+slotColumns+slotFrom+` WHERE s.id = ? LIMIT 1`, id)
	if err != nil {
		return model.Slot{}, err
	}
	if len(rows) == 0 {
		return model.Slot{}, ErrNotFound
	}
	return rows[0], nil
}

// SetAvailability overwrites the availability flag.  It returns
// ErrNotFound when no slot has the id.
func (r *SlotRepo) SetAvailability(ctx context.Context, id string, available bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE slots SET is_available = ? WHERE id = ?`, available, id)
	if err != nil {
		return err
	}
	return requireRow(ctx, r.db, res, `SELECT 1 FROM slots WHERE id = ?`, id)
}

// MarkUnavailable sets is_available to false; used after a booking write
// and by the maintenance action.
func (r *SlotRepo) MarkUnavailable(ctx context.Context, id string) error {
	return r.SetAvailability(ctx, id, false)
}

// ToggleAvailability flips the flag and returns the new value.
func (r *SlotRepo) ToggleAvailability(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE slots SET is_available = NOT is_available WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, ErrNotFound
	}
	var now bool
	if err := r.db.QueryRowContext(ctx, `SELECT is_available FROM slots WHERE id = ?`, id).Scan(&now); err != nil {
		return false, err
	}
	return now, nil
}

func (r *SlotRepo) query(ctx context.Context, q string, args ...any) ([]model.Slot, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]model.Slot, 0)
	for rows.Next() {
		var s model.Slot
		if err := rows.Scan(&s.ID, &s.LotID, &s.SlotNumber, &s.PricePerHour, &s.IsAvailable,
			&s.IsAccessible, &s.IsCovered, &s.EVSupported, &s.WidthInches, &s.LengthInches,
			&s.CreatedAt, &s.UpdatedAt, &s.LotName); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// requireRow turns a zero-rows-affected update into ErrNotFound.  MySQL
// reports zero affected rows when the new value equals the old one, so a
// zero count is confirmed with an existence probe before failing.
func requireRow(ctx context.Context, db *sql.DB, res sql.Result, probe string, args ...any) error {
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	var one int
	err := db.QueryRowContext(ctx, probe, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	return err
}
