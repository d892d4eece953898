package core

import (
	"errors"
	"fmt"
)

// ValidationError reports a user-correctable input problem: an empty required
// field, a duplicate case key, a non-positive amount, a reference to a case
// that does not exist. The message is safe to show to the caller verbatim.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError with a formatted message.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IntegrityError reports a storage constraint violation that slipped past
// pre-validation, e.g. a race on the duplicate-case check.
type IntegrityError struct {
	Err error
}

func (e *IntegrityError) Error() string { return "integrity violation: " + e.Err.Error() }

func (e *IntegrityError) Unwrap() error { return e.Err }

// ConnectivityError reports that the store could not be opened or reached.
// It is fatal for the current session.
type ConnectivityError struct {
	Err error
}

func (e *ConnectivityError) Error() string { return "store unavailable: " + e.Err.Error() }

func (e *ConnectivityError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsIntegrity reports whether err is (or wraps) an IntegrityError.
func IsIntegrity(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}

// IsConnectivity reports whether err is (or wraps) a ConnectivityError.
func IsConnectivity(err error) bool {
	var ce *ConnectivityError
	return errors.As(err, &ce)
}
