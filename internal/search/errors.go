package search

import (
	"errors"
	"fmt"
)

// ValidationError reports input rejected locally, before any network
// call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

var (
	// ErrBusy is returned when a submit is attempted while another
	// request on the same form is still in flight.
	ErrBusy = errors.New("a search is already in progress")

	// ErrClosed is returned when a form is used after teardown.
	ErrClosed = errors.New("form has been closed")
)
