package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/parkseva/internal/model"
)

// LotRepo reads the parking_lots table.
type LotRepo struct{ db *sql.DB }

// NewLotRepo returns a LotRepo bound to db.
func NewLotRepo(db *sql.DB) *LotRepo { return &LotRepo{db: db} }

const lotColumns = `id, owner_id, name, address, latitude, longitude, hourly_rate, is_active, total_slots, created_at, updated_at`

// ListActive returns active lots, filtered in SQL.  A non-positive limit
// returns every active lot.
func (r *LotRepo) ListActive(ctx context.Context, limit int) ([]model.Lot, error) {
	q := `SELECT ` + lotColumns + ` FROM parking_lots WHERE is_active = 1 ORDER BY name`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	return r.query(ctx, q, args...)
}

// List returns lots regardless of the active flag, for administrators.
func (r *LotRepo) List(ctx context.Context, limit int) ([]model.Lot, error) {
	return r.query(ctx, `SELECT `+lotColumns+` FROM parking_lots ORDER BY created_at DESC LIMIT ?`, limit)
}

// GetByID returns one lot or ErrNotFound.
func (r *LotRepo) GetByID(ctx context.Context, id string) (model.Lot, error) {
	rows, err := r.query(ctx, `SELECT `+lotColumns+` FROM parking_lots WHERE id = ? LIMIT 1`, id)
	if err != nil {
		return model.Lot{}, err
	}
	if len(rows) == 0 {
		return model.Lot{}, ErrNotFound
	}
	return rows[0], nil
}

func (r *LotRepo) query(ctx context.Context, q string, args ...any) ([]model.Lot, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lots := make([]model.Lot, 0)
	for rows.Next() {
		var l model.Lot
		var owner sql.NullString
		if err := rows.Scan(&l.ID, &owner, &l.Name, &l.Address, &l.Latitude, &l.Longitude,
			&l.HourlyRate, &l.IsActive, &l.TotalSlots, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		if owner.Valid {
			l.OwnerID = &owner.String
		}
		lots = append(lots, l)
	}
	return lots, rows.Err()
}
