package api

import (
	"errors"
	"fmt"
)

// Error is the single error kind returned by Client. Status is zero when no
// HTTP response was received.
type Error struct {
	Message string
	Status  int
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
	}
	return "api error: " + e.Message
}

// HasStatus reports whether the error carries an HTTP status code.
func (e *Error) HasStatus() bool { return e.Status != 0 }

// Message extracts the human-readable message from err. Errors that are not
// *Error yield fallback.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
