// Package repository holds the MySQL data access for profiles, lots,
// slots, bookings and tokens.  The sentinel values below let handlers
// map store failures to HTTP statuses without inspecting driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller does not own the record.
// Handlers translate it into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict signals an update that cannot proceed in the current state.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned by ProfileRepo.Create on a duplicate email.
var ErrEmailExists = errors.New("email already exists")

// MySQL server error numbers inspected by this package and its callers.
const (
	errBadField  = 1054 // ER_BAD_FIELD_ERROR: unknown column
	errDuplicate = 1062 // ER_DUP_ENTRY
)

// IsUnknownColumn reports whether err is MySQL's "unknown column" error,
// the symptom of a store that has not run the latest migration.
func IsUnknownColumn(err error) bool { return mysqlErrNumber(err) == errBadField }

// IsDuplicate reports whether err is a unique-key violation.
func IsDuplicate(err error) bool { return mysqlErrNumber(err) == errDuplicate }

func mysqlErrNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}
