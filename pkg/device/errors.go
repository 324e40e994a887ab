package device

import (
	"errors"
	"fmt"
)

// Domain errors for the device package. Check them with errors.Is:
//
//	if errors.Is(err, device.ErrEmptyBattery) {
//	    // refuse to power on
//	}
var (
	// ErrInvalidField is returned when a setter or constructor receives a value
	// that violates a field invariant. The concrete error is a *FieldError.
	ErrInvalidField = errors.New("device: invalid field")

	// ErrEmptyBattery is returned when a smartwatch has too little charge to
	// survive the power-on sequence.
	ErrEmptyBattery = errors.New("device: battery too low to turn on")

	// ErrMissingOperatingSystem is returned when a personal computer is turned
	// on, or constructed as on, without an operating system.
	ErrMissingOperatingSystem = errors.New("device: missing operating system")

	// ErrUnauthorizedNetwork is returned when an embedded device is not on the
	// authorized network.
	ErrUnauthorizedNetwork = errors.New("device: unauthorized network")

	ErrAlreadyOn  = errors.New("device: already on")
	ErrAlreadyOff = errors.New("device: already off")

	// ErrUnknownKind is returned for a type tag or kind name that names no
	// device variant.
	ErrUnknownKind = errors.New("device: unknown kind")

	// ErrMalformedRecord is returned when a persisted line or record cannot be
	// decoded.
	ErrMalformedRecord = errors.New("device: malformed record")
)

// FieldError describes a rejected field assignment. It matches
// ErrInvalidField, and Cause when one is set.
type FieldError struct {
	Field  string
	Value  any
	Reason string
	Cause  error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("device: invalid %s %q: %s", e.Field, fmt.Sprint(e.Value), e.Reason)
}

func (e *FieldError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrInvalidField, e.Cause}
	}
	return []error{ErrInvalidField}
}

func invalidField(field string, value any, reason string) error {
	return &FieldError{Field: field, Value: value, Reason: reason}
}
