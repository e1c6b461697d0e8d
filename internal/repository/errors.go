package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when an insert collides with an existing row,
	// e.g. a second session for a plate created by a concurrent writer.
	ErrConflict = errors.New("entity already exists")
)
