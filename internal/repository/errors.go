package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a single-row lookup matches nothing.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update violates a unique index.
var ErrDuplicate = errors.New("duplicate")

// isUniqueViolation matches the SQLite constraint message; modernc.org/sqlite
// reports it as text ("UNIQUE constraint failed: stoves.stove_id").
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
