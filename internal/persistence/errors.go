package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a uniqueness constraint is violated.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConstraintViolation is returned when a stored invariant rejects a write.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrBusy is returned when storage contention persists after bounded retries.
	ErrBusy = errors.New("persistence: storage busy")
)
