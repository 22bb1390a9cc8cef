package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrStoreItemNotFound = errors.New("store item not found")

	ErrValidation = errors.New("validation failed")
	ErrUserExists = fmt.Errorf("%w: email already registered", ErrValidation)

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
	ErrForbidden          = errors.New("access forbidden")
	ErrCredentialFormat   = errors.New("stored credential is malformed")
	ErrStorage            = errors.New("storage failure")
)

// Session token failures. All three are unauthenticated outcomes; they are
// kept apart so the transport can choose a status per kind.
var (
	ErrMissingToken   = errors.New("missing session token")
	ErrMalformedToken = errors.New("malformed session token")
	ErrInvalidToken   = errors.New("invalid or expired session token")
)

// Invalidf returns a validation error carrying a client-facing message.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// StorageError wraps a raw persistence failure. Its message is for logs only.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// ThrottledError reports a locked-out login along with the remaining wait.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("%s, retry in %s", ErrTooManyAttempts, e.RetryAfter.Round(time.Second))
}

func (e *ThrottledError) Is(target error) bool { return target == ErrTooManyAttempts }

// IsUnauthenticated reports whether err is any session or credential failure.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrMissingToken) ||
		errors.Is(err, ErrMalformedToken) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrInvalidCredentials)
}
