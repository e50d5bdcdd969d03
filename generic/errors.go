/*
errors.go - Centralized error types for the proration engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers match them with errors.Is / errors.As; the API layer maps them
  to HTTP status codes.

ERROR CATEGORIES:
  1. Cadence errors - Unknown billing cadence identifiers
  2. Interval errors - Malformed or non-overlapping intervals
  3. Arithmetic errors - Zero-length reference windows

USAGE:
  if errors.Is(err, generic.ErrUnhandledCadence) {
      // reject the request, never retry
  }

  var ie *generic.InvalidIntervalError
  if errors.As(err, &ie) {
      log.Warn().Str("reason", ie.Reason).Msg("bad interval")
  }

SEE ALSO:
  - registry.go: Returns UnhandledCadenceError
  - engine.go: Returns InvalidIntervalError and ErrDivisionByZero
  - api/handlers.go: Maps errors to HTTP responses
*/
package generic

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnhandledCadence is returned when a cadence identifier does not match
	// any registered strategy. Not retryable.
	ErrUnhandledCadence = errors.New("unhandled cadence")

	// ErrInvalidInterval is returned when an interval is malformed (end before
	// start) or when two intervals do not overlap where an overlap is required.
	ErrInvalidInterval = errors.New("invalid interval")

	// ErrDivisionByZero is returned when the reference window has zero length.
	// It is a kind of ErrInvalidInterval.
	ErrDivisionByZero = errors.Wrap(ErrInvalidInterval, "division by zero")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// UnhandledCadenceError names the cadence identifier that could not be resolved.
type UnhandledCadenceError struct {
	ID string
}

func (e *UnhandledCadenceError) Error() string {
	return fmt.Sprintf("unhandled cadence %q", e.ID)
}

func (e *UnhandledCadenceError) Unwrap() error {
	return ErrUnhandledCadence
}

// InvalidIntervalError describes an interval that cannot be used.
type InvalidIntervalError struct {
	Start  time.Time
	End    *time.Time
	Reason string
}

func (e *InvalidIntervalError) Error() string {
	end := "-"
	if e.End != nil {
		end = e.End.Format(time.RFC3339)
	}
	return fmt.Sprintf("invalid interval [%s, %s): %s", e.Start.Format(time.RFC3339), end, e.Reason)
}

func (e *InvalidIntervalError) Unwrap() error {
	return ErrInvalidInterval
}

func invalidInterval(iv Interval, reason string) *InvalidIntervalError {
	e := &InvalidIntervalError{Start: iv.start, Reason: reason}
	if end, ok := iv.End(); ok {
		e.End = &end
	}
	return e
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
// Such errors fail identically on every retry.
func IsClientError(err error) bool {
	return errors.Is(err, ErrUnhandledCadence) ||
		errors.Is(err, ErrInvalidInterval)
}
