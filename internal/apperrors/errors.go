package apperrors

import (
	"errors"
	"fmt"
)

// Common error types for the dashboard session layer
var (
	// Token errors
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMissing   = errors.New("token missing")

	// Login errors
	ErrInvalidLoginToken = errors.New("invalid login token")

	// Session errors
	ErrSessionExpired = errors.New("session expired")
	ErrNotLoggedIn    = errors.New("not logged in")

	// Authorization errors
	ErrNotAuthorized = errors.New("not authorized")

	// Remote API errors
	ErrRemoteAPI = errors.New("remote api error")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
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
