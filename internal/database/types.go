package database

import "errors"

// ErrDatabaseMissing is returned when the configured database does not exist (e.g. a missing sqlite file).
var ErrDatabaseMissing = errors.New("drivers database not found")

// Driver is a row of the drivers table.
type Driver struct {
	ID    int64
	Name  string
	Image string // relative reference, e.g. "drivers/abc.jpg"
}
