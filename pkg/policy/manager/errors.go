package manager

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoSources is returned by New when neither source is configured.
var ErrNoSources = errors.New("at least one policy source is required")

// ErrAlreadyStarted is returned by Start on a running manager.
var ErrAlreadyStarted = errors.New("manager already started")

// SourceError records a source that could not be fetched during a refresh.
// The source contributed an empty document instead.
type SourceError struct {
	// Source is the source name ("internal", "external")
	Source string

	// Location is the URL or path that was fetched
	Location string

	// Cause is the underlying fetch error
	Cause error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	return fmt.Sprintf("policy source %s (%s) unavailable: %v", e.Source, e.Location, e.Cause)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *SourceError) Unwrap() error {
	return e.Cause
}

// ErrorList collects the source errors of one refresh.
type ErrorList struct {
	Errors []*SourceError
}

// Error implements the error interface.
func (e *ErrorList) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d policy sources unavailable: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap exposes every source error to errors.Is and errors.As.
func (e *ErrorList) Unwrap() []error {
	out := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		out[i] = err
	}
	return out
}

// Add appends a source error.
func (e *ErrorList) Add(err *SourceError) {
	e.Errors = append(e.Errors, err)
}

// ToError returns nil when the list is empty.
func (e *ErrorList) ToError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}
