/*
Package generic provides the core rent proration engine.

PURPOSE:
  This package contains the cadence-agnostic types and algorithms used to
  prorate a flat rent amount over an arbitrary date-time interval. Concrete
  cadence formulas (hourly, daily, weekly, monthly) live in the rent package
  and plug into the engine through the PeriodStrategy interface.

KEY CONCEPTS IN THIS FILE (types.go):
  - Cadence: A billing rhythm (hourly, daily, weekly, monthly)
  - Money helpers: decimal constants shared by the formulas

DESIGN PRINCIPLES:
  1. Immutability: Intervals are values, engines are read-only after construction
  2. Precision: Uses decimal.Decimal so money never goes through binary floats
  3. Isolation: An engine is bound to exactly one billing window, never global
  4. Fidelity: Formulas reproduce the existing billing contracts verbatim

USAGE:
  window, _ := generic.Closed(jan1, feb1)
  engine, _ := generic.NewEngine(window, rent.NewRegistry())
  p, err := engine.Prorate(stay, "weekly", decimal.NewFromInt(350))

SEE ALSO:
  - interval.go: Interval value type and overlap computation
  - time.go: Calendar difference
  - engine.go: Proration engine
  - registry.go: Cadence to strategy resolution
*/
package generic

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CADENCE - Billing rhythm
// =============================================================================

// Cadence identifies how a rent amount is quoted (per hour, day, week, month).
type Cadence string

const (
	CadenceHourly  Cadence = "hourly"
	CadenceDaily   Cadence = "daily"
	CadenceWeekly  Cadence = "weekly"
	CadenceMonthly Cadence = "monthly"
)

// AllCadences lists the supported cadences in canonical order.
var AllCadences = []Cadence{CadenceHourly, CadenceDaily, CadenceWeekly, CadenceMonthly}

// DisplayName returns the human readable name of the cadence.
func (c Cadence) DisplayName() string {
	switch c {
	case CadenceHourly:
		return "Hourly"
	case CadenceDaily:
		return "Daily"
	case CadenceWeekly:
		return "Weekly"
	case CadenceMonthly:
		return "Monthly"
	default:
		return string(c)
	}
}

// IsValid reports whether c is one of the known cadences.
func (c Cadence) IsValid() bool {
	for _, known := range AllCadences {
		if c == known {
			return true
		}
	}
	return false
}

func (c Cadence) String() string { return string(c) }

// ParseCadence resolves a cadence identifier. Matching is case-insensitive
// and accepts display names ("Weekly") as well as ids ("weekly").
func ParseCadence(id string) (Cadence, error) {
	c := Cadence(strings.ToLower(strings.TrimSpace(id)))
	if !c.IsValid() {
		return "", &UnhandledCadenceError{ID: id}
	}
	return c, nil
}

// =============================================================================
// MONEY CONSTANTS
// =============================================================================

// Divisors shared by the cadence formulas.
var (
	DaysPerWeek    = decimal.NewFromInt(7)
	HoursPerDay    = decimal.NewFromInt(24)
	MinutesPerHour = decimal.NewFromInt(60)
	DaysPerYear    = decimal.NewFromInt(365)
)

// MustParseDecimal parses s or panics. Intended for constants and tests.
func MustParseDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
