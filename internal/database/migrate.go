package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	"github.com/iliyamo/parkseva/internal/logger"
)

//go:embed schema.sql
var schemaSQL string

// optionalColumns are added after the base schema.  Environments that
// never ran this step keep working: the booking writer retries its insert
// without them.
var optionalColumns = []struct{ table, column, ddl string }{
	{"bookings", "payment_mode", "ALTER TABLE bookings ADD COLUMN payment_mode VARCHAR(32) NULL AFTER gateway_payment_id"},
	{"bookings", "transaction_id", "ALTER TABLE bookings ADD COLUMN transaction_id VARCHAR(64) NULL AFTER payment_mode"},
}

// Statements splits the embedded schema into individual statements; the
// driver runs one statement per Exec unless multiStatements is enabled.
func Statements() []string {
	var out []string
	for _, s := range strings.Split(schemaSQL, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Migrate creates every table that does not exist yet.  When withOptional
// is true it also adds the optional booking columns.
func Migrate(ctx context.Context, db *sql.DB, withOptional bool) error {
	for _, stmt := range Statements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	if !withOptional {
		return nil
	}
	for _, c := range optionalColumns {
		var n int
		err := db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM information_schema.COLUMNS
			 WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND COLUMN_NAME = ?`,
			c.table, c.column).Scan(&n)
		if err != nil {
			return fmt.Errorf("migrate: inspect %s.%s: %w", c.table, c.column, err)
		}
		if n > 0 {
			continue
		}
		if _, err := db.ExecContext(ctx, c.ddl); err != nil {
			return fmt.Errorf("migrate: add %s.%s: %w", c.table, c.column, err)
		}
		logger.InfoLogger.Infof("migrate: added column %s.%s", c.table, c.column)
	}
	return nil
}
