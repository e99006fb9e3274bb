package session

import (
	"errors"
	"fmt"
)

// ErrSessionClosed is returned by every operation on a closed session.
var ErrSessionClosed = errors.New("session is closed")

// OptionError reports an invalid generator configuration.
type OptionError struct {
	// Code identifies the error category.
	Code OptionErrorCode

	// Key is the offending option key.
	Key string

	// Message is a human-readable description.
	Message string
}

// OptionErrorCode categorizes option errors.
type OptionErrorCode string

const (
	// ErrCodeUnrecognizedOption indicates a key outside
	// object_of, subject_of and undirected.
	ErrCodeUnrecognizedOption OptionErrorCode = "UNRECOGNIZED_OPTION"

	// ErrCodeInvalidPredicate indicates a value that is not a predicate
	// or a collection of predicates.
	ErrCodeInvalidPredicate OptionErrorCode = "INVALID_PREDICATE"
)

// Error implements the error interface.
func (e *OptionError) Error() string {
	return fmt.Sprintf("%s: option %q: %s", e.Code, e.Key, e.Message)
}

// IsUnrecognizedOption returns true if the error is an unrecognized-option
// error. Uses errors.As to handle wrapped errors.
func IsUnrecognizedOption(err error) bool {
	var oe *OptionError
	if errors.As(err, &oe) {
		return oe.Code == ErrCodeUnrecognizedOption
	}
	return false
}
