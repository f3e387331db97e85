package enforcer

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCategory is returned for messages with an unrecognized category.
	ErrUnknownCategory = errors.New("unknown message category")

	// ErrInvalidDuration is returned for missing, negative or non-finite
	// override durations.
	ErrInvalidDuration = errors.New("invalid override duration")

	// ErrInvalidSender is returned when an override message carries no
	// usable origin hostname.
	ErrInvalidSender = errors.New("sender origin has no hostname")

	// ErrMalformedMessage is returned when a message cannot be decoded.
	ErrMalformedMessage = errors.New("malformed message")
)

// RedirectError reports a failed block page redirect. The evaluation result
// is stored regardless.
type RedirectError struct {
	TabID  int
	Target string
	Cause  error
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("redirect tab %d to %s: %v", e.TabID, e.Target, e.Cause)
}

// Unwrap returns the underlying redirector error.
func (e *RedirectError) Unwrap() error {
	return e.Cause
}
