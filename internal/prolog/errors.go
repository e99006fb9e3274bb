package prolog

import (
	"errors"
	"fmt"
)

// TranslateError reports a query that cannot be rendered as Prolog text.
//
// Translate errors include:
//   - Unsupported pattern: optional flag or named graph on a triple pattern
//   - Invalid argument: a relation argument with no Prolog rendering
//   - Invalid relation: a relation without a name
//   - Empty query: nothing to select from
type TranslateError struct {
	// Code identifies the error category.
	Code TranslateErrorCode

	// Message is a human-readable description.
	Message string

	// Entry is the zero-based position of the offending pattern or
	// relation in the query, or -1 when no single entry is at fault.
	Entry int

	// Err is the underlying cause, if any.
	Err error
}

// TranslateErrorCode categorizes translate errors.
type TranslateErrorCode string

const (
	// ErrCodeUnsupportedPattern indicates a pattern with an optional flag
	// or a non-default graph.
	ErrCodeUnsupportedPattern TranslateErrorCode = "UNSUPPORTED_PATTERN"

	// ErrCodeInvalidArgument indicates an argument that cannot be rendered.
	ErrCodeInvalidArgument TranslateErrorCode = "INVALID_ARGUMENT"

	// ErrCodeInvalidRelation indicates a relation with an empty name.
	ErrCodeInvalidRelation TranslateErrorCode = "INVALID_RELATION"

	// ErrCodeEmptyQuery indicates a query with no patterns or relations.
	ErrCodeEmptyQuery TranslateErrorCode = "EMPTY_QUERY"
)

// Error implements the error interface.
func (e *TranslateError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Entry >= 0 {
		msg = fmt.Sprintf("%s (entry=%d)", msg, e.Entry)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *TranslateError) Unwrap() error {
	return e.Err
}

// IsUnsupportedPattern returns true if the error is an unsupported-pattern
// translate error. Uses errors.As to handle wrapped errors.
func IsUnsupportedPattern(err error) bool {
	return hasCode(err, ErrCodeUnsupportedPattern)
}

// IsInvalidArgument returns true if the error is an invalid-argument
// translate error. Uses errors.As to handle wrapped errors.
func IsInvalidArgument(err error) bool {
	return hasCode(err, ErrCodeInvalidArgument)
}

func hasCode(err error, code TranslateErrorCode) bool {
	var te *TranslateError
	if errors.As(err, &te) {
		return te.Code == code
	}
	return false
}

func newUnsupportedPattern(entry int, reason string) *TranslateError {
	return &TranslateError{
		Code:    ErrCodeUnsupportedPattern,
		Message: reason,
		Entry:   entry,
	}
}
