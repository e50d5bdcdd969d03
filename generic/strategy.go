package generic

import "github.com/shopspring/decimal"

// =============================================================================
// PERIOD STRATEGY - Interface for how a cadence prorates an amount
// =============================================================================

// PeriodStrategy converts the calendar length of an interval into a multiple
// of a base amount quoted per cadence unit.
// Implementations define the business formula (hourly, weekly, monthly, etc.)
// and must be stateless so a registry can share one instance.
type PeriodStrategy interface {
	// Cadence returns the cadence this strategy prorates.
	Cadence() Cadence

	// AmountForInterval returns the prorated amount for the interval.
	// Implementations do not validate: an inverted interval yields the
	// signed result of the same formula.
	AmountForInterval(iv Interval, base decimal.Decimal) decimal.Decimal
}

// RoomRentPricer is implemented by strategies whose room-rent billing counts
// days differently from general proration.
type RoomRentPricer interface {
	RoomRentAmountForInterval(iv Interval, base decimal.Decimal) decimal.Decimal
}

// DashboardPricer is implemented by strategies whose facility-dashboard
// aggregation counts days differently from general proration.
type DashboardPricer interface {
	FacilityDashboardAmountForInterval(iv Interval, base decimal.Decimal) decimal.Decimal
}

// Variant selects which pricing entry point the engine calls.
type Variant string

const (
	VariantGeneral           Variant = "general"
	VariantRoomRent          Variant = "room_rent"
	VariantFacilityDashboard Variant = "facility_dashboard"
)

// IsValid reports whether v is a known variant.
func (v Variant) IsValid() bool {
	switch v {
	case VariantGeneral, VariantRoomRent, VariantFacilityDashboard:
		return true
	}
	return false
}

// amountFor dispatches to the variant entry point when the strategy has one
// and falls back to the general formula otherwise.
func amountFor(s PeriodStrategy, v Variant, iv Interval, base decimal.Decimal) decimal.Decimal {
	switch v {
	case VariantRoomRent:
		if p, ok := s.(RoomRentPricer); ok {
			return p.RoomRentAmountForInterval(iv, base)
		}
	case VariantFacilityDashboard:
		if p, ok := s.(DashboardPricer); ok {
			return p.FacilityDashboardAmountForInterval(iv, base)
		}
	}
	return s.AmountForInterval(iv, base)
}
