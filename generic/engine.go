/*
engine.go - Proration engine bound to one billing window

PURPOSE:
  Clips caller intervals against a fixed reference window (the billing
  window) and delegates the amount to the cadence strategy. Also computes
  the occupancy ratio used by the facility dashboard.

LIFECYCLE:
  One engine per billing session. The engine is read-only after
  construction; only its registry's strategy cache fills lazily.
  Never store an engine in a package variable: the window legitimately
  differs between billing runs.

OVERLAP:
  overlapStart = max(window.start, rent.start)
  overlapEnd   = rent ongoing ? window.end : min(rent.end, window.end)

USAGE:
  engine, err := generic.NewEngine(window, rent.NewRegistry())
  p, err := engine.ProrateRoomRent(stay, "weekly", decimal.NewFromInt(350))
  fmt.Println(p.Amount, p.Days)

SEE ALSO:
  - interval.go: Intersect
  - registry.go: Strategy resolution
  - rent/session.go: Evaluates many agreements through one engine
*/
package generic

import (
	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

// Engine prorates amounts against a single reference window.
type Engine struct {
	window   Interval
	registry *Registry
}

// Proration is the result of prorating one interval.
type Proration struct {
	Cadence Cadence
	Variant Variant
	Overlap Interval
	// Days is the whole-day length of the overlap, independent of cadence.
	Days   int
	Amount decimal.Decimal
}

// NewEngine binds an engine to a reference window. The window must have an end.
func NewEngine(window Interval, registry *Registry) (*Engine, error) {
	if window.IsOngoing() {
		return nil, errors.WithHint(
			invalidInterval(window, "reference window must have an end"),
			"billing windows are always closed, e.g. [2025-01-01, 2025-02-01)")
	}
	if window.IsInverted() {
		return nil, invalidInterval(window, "end before start")
	}
	if registry == nil {
		return nil, errors.New("proration engine requires a registry")
	}
	return &Engine{window: window, registry: registry}, nil
}

// Window returns the reference window.
func (e *Engine) Window() Interval { return e.window }

// Registry returns the registry used to resolve cadences.
func (e *Engine) Registry() *Registry { return e.registry }

// Overlap returns the raw intersection of the window with iv. It may be inverted.
func (e *Engine) Overlap(iv Interval) Interval {
	return e.window.Intersect(iv)
}

// Prorate computes the general proration of base over the part of rent that
// falls inside the window.
func (e *Engine) Prorate(rent Interval, cadenceID string, base decimal.Decimal) (Proration, error) {
	return e.ProrateVariant(rent, cadenceID, base, VariantGeneral)
}

// ProrateRoomRent is Prorate with room-rent day counting (weekly counts the
// end date as a full day).
func (e *Engine) ProrateRoomRent(rent Interval, cadenceID string, base decimal.Decimal) (Proration, error) {
	return e.ProrateVariant(rent, cadenceID, base, VariantRoomRent)
}

// ProrateFacilityDashboard is Prorate with facility-dashboard day counting.
func (e *Engine) ProrateFacilityDashboard(rent Interval, cadenceID string, base decimal.Decimal) (Proration, error) {
	return e.ProrateVariant(rent, cadenceID, base, VariantFacilityDashboard)
}

// ProrateVariant runs the proration pipeline with an explicit variant.
func (e *Engine) ProrateVariant(rent Interval, cadenceID string, base decimal.Decimal, v Variant) (Proration, error) {
	if !v.IsValid() {
		return Proration{}, errors.Newf("unknown proration variant %q", v)
	}
	if rent.IsInverted() {
		return Proration{}, invalidInterval(rent, "end before start")
	}

	strategy, err := e.registry.Resolve(cadenceID)
	if err != nil {
		return Proration{}, err
	}

	overlap := e.Overlap(rent)
	if overlap.IsInverted() {
		return Proration{}, errors.WithHintf(
			invalidInterval(overlap, "interval does not overlap the billing window"),
			"rent interval %s lies outside billing window %s", rent, e.window)
	}

	return Proration{
		Cadence: strategy.Cadence(),
		Variant: v,
		Overlap: overlap,
		Days:    overlap.Diff().TotalDays,
		Amount:  amountFor(strategy, v, overlap, base),
	}, nil
}

// OccupancyRatio returns the fraction of the window covered by contract,
// measured in elapsed time at nanosecond resolution. A contract covering the
// whole window yields exactly 1.
func (e *Engine) OccupancyRatio(contract Interval) (decimal.Decimal, error) {
	windowLen := e.window.Duration()
	if windowLen <= 0 {
		return decimal.Zero, errors.WithHintf(ErrDivisionByZero,
			"billing window %s has zero length", e.window)
	}
	if contract.IsInverted() {
		return decimal.Zero, invalidInterval(contract, "end before start")
	}

	overlap := e.Overlap(contract)
	if overlap.IsInverted() {
		return decimal.Zero, errors.WithHintf(
			invalidInterval(overlap, "interval does not overlap the billing window"),
			"contract %s lies outside billing window %s", contract, e.window)
	}

	covered := decimal.NewFromInt(int64(overlap.Duration()))
	return covered.Div(decimal.NewFromInt(int64(windowLen))), nil
}
