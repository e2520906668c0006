package models

import "errors"

// Error taxonomy shared by the store, the repository and the handlers.
// Failures keep their kind across wrapping so callers can match with
// errors.Is and map them to responses.
var (
	// ErrNotFound means no entry exists for the given UUID.
	ErrNotFound = errors.New("entry not found")

	// ErrInvalidProject means a move or rename named an empty project.
	ErrInvalidProject = errors.New("invalid project name")

	// ErrStoreUnavailable means the store could not be reached or failed
	// on I/O. The repository never retries; retry policy belongs to the
	// caller.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrConstraintViolation means the store rejected a write on a
	// schema-level constraint, e.g. a duplicate UUID. Should never happen
	// given UUID generation discipline, but stays a distinct kind.
	ErrConstraintViolation = errors.New("store constraint violation")
)
