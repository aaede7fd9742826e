package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/iliyamo/parkseva/internal/logger"
	"github.com/iliyamo/parkseva/internal/utils"
)

// AdminID is the fixed id of the seeded administrator.
const AdminID = "00000000-0000-0000-0000-000000000001"

// SeedOptions carries the credentials for the demo accounts.
type SeedOptions struct {
	UserPassword  string
	AdminPassword string
	BcryptCost    int
}

type seedLot struct {
	name, address string
	lat, lng      float64
	rate          float64
}

var puneLots = []seedLot{
	{"Phoenix Marketcity Pune Parking", "Viman Nagar, Pune", 18.5616, 73.9187, 40},
	{"FC Road Public Parking", "Fergusson College Rd, Pune", 18.5204, 73.8567, 35},
	{"Shivajinagar Multi-level Parking", "Shivajinagar, Pune", 18.5308, 73.8470, 30},
}

const (
	slotsPerLot      = 30
	womenReserved    = 6 // W-01..W-06
	disabledReserved = 4 // D-07..D-10
)

// SlotLabel returns the seeded slot number for a 1-based index: women
// reserved slots first, then accessible ones, then standard.
func SlotLabel(idx int) (label string, accessible bool) {
	prefix := "S-"
	switch {
	case idx <= womenReserved:
		prefix = "W-"
	case idx <= womenReserved+disabledReserved:
		prefix, accessible = "D-", true
	}
	return fmt.Sprintf("%s%02d", prefix, idx), accessible
}

// Seed inserts the demo profiles, three Pune lots and thirty slots per
// lot.  It does nothing when a lot already exists.
func Seed(ctx context.Context, db *sql.DB, opts SeedOptions) error {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM parking_lots").Scan(&n); err != nil {
		return fmt.Errorf("seed: count lots: %w", err)
	}
	if n > 0 {
		logger.InfoLogger.Info("seed: lots already present, skipping")
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	demoID := uuid.NewString()
	userHash, err := utils.HashPassword(opts.UserPassword, opts.BcryptCost)
	if err != nil {
		return err
	}
	adminHash, err := utils.HashPassword(opts.AdminPassword, opts.BcryptCost)
	if err != nil {
		return err
	}
	const upsertProfile = `INSERT INTO profiles (id, email, password_hash, full_name, role, vehicle_plate)
		VALUES (?,?,?,?,?,?) ON DUPLICATE KEY UPDATE full_name = VALUES(full_name)`
	if _, err := tx.ExecContext(ctx, upsertProfile, demoID, "demo@parkseva.dev", userHash, "Demo User", "user", "DEMO-1234"); err != nil {
		return fmt.Errorf("seed: demo profile: %w", err)
	}
	if _, err := tx.ExecContext(ctx, upsertProfile, AdminID, "admin@parkseva.dev", adminHash, "Admin", "admin", nil); err != nil {
		return fmt.Errorf("seed: admin profile: %w", err)
	}

	for _, l := range puneLots {
		lotID := uuid.NewString()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO parking_lots (id, owner_id, name, address, latitude, longitude, hourly_rate, total_slots, is_active)
			 VALUES (?,?,?,?,?,?,?,?,1)`,
			lotID, demoID, l.name, l.address, l.lat, l.lng, l.rate, slotsPerLot); err != nil {
			return fmt.Errorf("seed: lot %q: %w", l.name, err)
		}
		for idx := 1; idx <= slotsPerLot; idx++ {
			label, accessible := SlotLabel(idx)
			ev := "none"
			if idx%3 == 0 {
				ev = "level2"
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO slots (id, lot_id, slot_number, price_per_hour, is_available, is_accessible, is_covered, ev_supported, width_inches, length_inches)
				 VALUES (?,?,?,?,1,?,?,?,96,216)`,
				uuid.NewString(), lotID, label, l.rate, accessible, idx%2 == 0, ev); err != nil {
				return fmt.Errorf("seed: slot %s: %w", label, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	logger.InfoLogger.Infof("seed: inserted %d lots with %d slots each", len(puneLots), slotsPerLot)
	return nil
}
