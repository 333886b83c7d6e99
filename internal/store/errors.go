package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrListingNotFound indicates that the requested listing does not exist.
	ErrListingNotFound = fmt.Errorf("%w: listing", ErrNotFound)

	// ErrSettingNotFound indicates that no settings document of the requested type exists.
	ErrSettingNotFound = fmt.Errorf("%w: setting", ErrNotFound)

	// ErrListingExists indicates a listing with the same (source, external_id) already exists.
	ErrListingExists = fmt.Errorf("%w: listing", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
