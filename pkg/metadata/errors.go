package metadata

import "errors"

// StoreError represents a domain error from metadata store operations.
//
// These are business logic errors (record not found, invalid key, etc.)
// as opposed to infrastructure errors, which are wrapped with ErrIOError.
type StoreError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Key identifies the record involved (e.g. "account/fileID"), if any
	Key string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Key != "" {
		return e.Message + ": " + e.Key
	}
	return e.Message
}

// ErrorCode represents the category of a store error.
type ErrorCode int

const (
	// ErrNotFound indicates the requested record doesn't exist
	ErrNotFound ErrorCode = iota

	// ErrInvalidArgument indicates invalid parameters were provided
	// Examples: empty account, empty file ID
	ErrInvalidArgument

	// ErrIOError indicates the backing storage failed
	ErrIOError

	// ErrClosed indicates the store has been closed
	ErrClosed
)

func (c ErrorCode) String() string {
	switch c {
	case ErrNotFound:
		return "not found"
	case ErrInvalidArgument:
		return "invalid argument"
	case ErrIOError:
		return "i/o error"
	case ErrClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// NewNotFoundError returns a StoreError with code ErrNotFound.
func NewNotFoundError(what, key string) *StoreError {
	return &StoreError{Code: ErrNotFound, Message: what + " not found", Key: key}
}

// NewInvalidArgumentError returns a StoreError with code ErrInvalidArgument.
func NewInvalidArgumentError(message string) *StoreError {
	return &StoreError{Code: ErrInvalidArgument, Message: message}
}

// NewIOError wraps a backend failure.
func NewIOError(message string, key string) *StoreError {
	return &StoreError{Code: ErrIOError, Message: message, Key: key}
}

// IsNotFound reports whether err is (or wraps) a StoreError with ErrNotFound.
func IsNotFound(err error) bool {
	return hasCode(err, ErrNotFound)
}

// IsInvalidArgument reports whether err is (or wraps) an ErrInvalidArgument StoreError.
func IsInvalidArgument(err error) bool {
	return hasCode(err, ErrInvalidArgument)
}

func hasCode(err error, code ErrorCode) bool {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Code == code
	}
	return false
}
