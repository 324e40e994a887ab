package registry

import "errors"

var (
	// ErrNotFound is returned when no device matches the id (and kind, or
	// variant, where one is implied).
	ErrNotFound = errors.New("registry: device not found")

	// ErrDuplicateID is returned by Add when a device of the same kind
	// already uses the id.
	ErrDuplicateID = errors.New("registry: duplicate device id")

	// ErrCapacityExceeded is returned by Add when the registry is full.
	ErrCapacityExceeded = errors.New("registry: capacity exceeded")
)
