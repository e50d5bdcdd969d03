package generic

import (
	"time"
)

// =============================================================================
// INTERVAL - The core value for every proration
// =============================================================================

// Interval is the half-open span [start, end). A missing end means the span
// is still ongoing (e.g. a resident who has not moved out).
//
// Intervals are immutable; construct them with NewInterval, Closed or Ongoing.
//
// Examples:
//   - Billing window January 2025: [2025-01-01, 2025-02-01)
//   - Stay since March 3 with no move-out: [2025-03-03, -)
type Interval struct {
	start time.Time
	end   *time.Time
}

// NewInterval builds an interval. A nil end yields an ongoing interval.
// An end before start is rejected with ErrInvalidInterval.
func NewInterval(start time.Time, end *time.Time) (Interval, error) {
	if end == nil {
		return Ongoing(start), nil
	}
	return Closed(start, *end)
}

// Closed builds an interval with both bounds present.
func Closed(start, end time.Time) (Interval, error) {
	if end.Before(start) {
		return Interval{}, &InvalidIntervalError{Start: start, End: &end, Reason: "end before start"}
	}
	return Interval{start: start, end: &end}, nil
}

// MustClosed is Closed for literals known to be valid; it panics otherwise.
func MustClosed(start, end time.Time) Interval {
	iv, err := Closed(start, end)
	if err != nil {
		panic(err)
	}
	return iv
}

// Ongoing builds an interval without an end.
func Ongoing(start time.Time) Interval {
	return Interval{start: start}
}

// Start returns the start instant.
func (iv Interval) Start() time.Time { return iv.start }

// End returns the end instant and whether it is present.
func (iv Interval) End() (time.Time, bool) {
	if iv.end == nil {
		return time.Time{}, false
	}
	return *iv.end, true
}

// IsOngoing reports whether the interval has no end.
func (iv Interval) IsOngoing() bool { return iv.end == nil }

// IsInverted reports whether the end lies before the start. Only intersections
// of disjoint intervals produce such a value.
func (iv Interval) IsInverted() bool {
	return iv.end != nil && iv.end.Before(iv.start)
}

// Diff returns the calendar difference end - start. An ongoing interval has
// no measurable length and yields a zero diff.
func (iv Interval) Diff() CalendarDiff {
	if iv.end == nil {
		return CalendarDiff{}
	}
	return Diff(iv.start, *iv.end)
}

// Duration returns the raw elapsed time end - start (zero when ongoing).
func (iv Interval) Duration() time.Duration {
	if iv.end == nil {
		return 0
	}
	return iv.end.Sub(iv.start)
}

// Contains returns true if t lies within [start, end).
func (iv Interval) Contains(t time.Time) bool {
	if t.Before(iv.start) {
		return false
	}
	return iv.end == nil || t.Before(*iv.end)
}

// Equal reports whether both bounds denote the same instants.
func (iv Interval) Equal(other Interval) bool {
	if !iv.start.Equal(other.start) {
		return false
	}
	if iv.end == nil || other.end == nil {
		return iv.end == nil && other.end == nil
	}
	return iv.end.Equal(*other.end)
}

// Intersect returns the overlap of the receiver (the reference window) with
// other:
//
//	start = max(iv.start, other.start)
//	end   = other.end absent ? iv.end : min(other.end, iv.end)
//
// The result is NOT validated: disjoint inputs produce an inverted interval,
// which callers detect with IsInverted.
func (iv Interval) Intersect(other Interval) Interval {
	start := iv.start
	if other.start.After(start) {
		start = other.start
	}

	var end *time.Time
	switch {
	case other.end == nil:
		end = iv.end
	case iv.end == nil || other.end.Before(*iv.end):
		end = other.end
	default:
		end = iv.end
	}

	if end == nil {
		return Interval{start: start}
	}
	e := *end
	return Interval{start: start, end: &e}
}

// String returns "[start, end)" with "-" for an ongoing end.
func (iv Interval) String() string {
	end := "-"
	if iv.end != nil {
		end = iv.end.Format(time.RFC3339)
	}
	return "[" + iv.start.Format(time.RFC3339) + ", " + end + ")"
}
