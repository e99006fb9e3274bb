package transport

import (
	"errors"
	"fmt"
)

// StatusError reports a response whose status differs from the one the
// operation requires.
type StatusError struct {
	Method string
	URL    string
	Got    int
	Want   int
	Body   string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	want := "2xx"
	if e.Want != 0 {
		want = fmt.Sprintf("%d", e.Want)
	}
	msg := fmt.Sprintf("%s %s: unexpected status %d (want %s)", e.Method, e.URL, e.Got, want)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// IsUnexpectedStatus returns true if the error is a StatusError.
// Uses errors.As to handle wrapped errors.
func IsUnexpectedStatus(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

// StatusOf returns the status code carried by a StatusError, or 0.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Got
	}
	return 0
}
