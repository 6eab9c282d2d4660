package errors

import (
	"errors"
	"fmt"
)

// Error taxonomy for the access-control and notification core.
// Handlers map these onto HTTP status codes; everything else wraps them.
var (
	// Authentication errors
	ErrUnauthenticated   = errors.New("no credential presented")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrMalformedIdentity = errors.New("identity has no email")

	// Input errors
	ErrInvalidInput = errors.New("invalid input")

	// Session errors
	ErrSessionExpired = errors.New("session expired")

	// Store / backend errors
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrNotFound           = errors.New("not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
