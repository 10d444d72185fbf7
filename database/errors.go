package database

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no document.
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned when a guarded write matches no document because
	// the row changed since it was read.
	ErrConflict = errors.New("document changed concurrently")
	// ErrDuplicate is returned when an insert hits a unique index.
	ErrDuplicate = errors.New("document already exists")
)
