package domain

import "errors"

// Error taxonomy for the core. Every failure is returned as a value wrapping
// one of these sentinels; no core operation terminates the process.
var (
	// ErrValidation marks caller-correctable input problems (malformed
	// plate, document or email). The operation is rejected, no state changes.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicate marks a uniqueness violation on registration.
	ErrDuplicate = errors.New("duplicate key")

	// ErrNotFound marks a missing vehicle, customer or open rental.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a checkout attempt on a vehicle that is already
	// rented out.
	ErrConflict = errors.New("conflict")

	// ErrStorage marks a persistence-layer failure. Storage errors are
	// logged and never roll back the already-applied in-memory mutation:
	// the system favors in-memory availability over strict durability.
	ErrStorage = errors.New("storage failure")
)
