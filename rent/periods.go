/*
periods.go - Rent cadence strategy implementations

PURPOSE:
  Implements generic.PeriodStrategy for each billing cadence. A strategy
  turns the calendar difference of an (already clipped) interval into a
  multiple of the rent quoted per cadence unit.

FORMULAS (d = calendar diff end - start):
  Hourly:
    hours  = d.Years*365*24 + d.Months*(365/12)*24 + d.Days*24 + d.Hours
    amount = base*hours + base*d.Minutes/60

  Daily:
    amount = base*d.TotalDays + base*d.Hours/24

  Weekly:
    weeks  = d.Years*(365/7) + d.Months*(365/12)/7
    amount = base*weeks + base*dayCount/7
    dayCount = d.Days (general) or d.Days+1 (room rent, facility dashboard)

  Monthly:
    amount = base*(d.Years*12 + d.Months) + base*12*d.Days/365

FIXED-YEAR APPROXIMATIONS:
  Years are 365 days and months are 365/12 days regardless of leap years.
  The monthly day term (12*days/365) was specified by facility operators.
  These match existing billing contracts and must not be "corrected".

EXAMPLE:
  // 3000/month for 2 months and 10 days
  Monthly{}.AmountForInterval(iv, decimal.NewFromInt(3000)) // 6986.30...

SEE ALSO:
  - generic/strategy.go: PeriodStrategy interface
  - generic/time.go: Calendar diff
  - registry.go: Wires these strategies into a registry
*/
package rent

import (
	"github.com/shopspring/decimal"
	"github.com/warp/rent-engine/generic"
)

// Compile-time checks
var (
	_ generic.PeriodStrategy  = Hourly{}
	_ generic.PeriodStrategy  = Daily{}
	_ generic.PeriodStrategy  = Weekly{}
	_ generic.PeriodStrategy  = Monthly{}
	_ generic.RoomRentPricer  = Weekly{}
	_ generic.DashboardPricer = Weekly{}
)

const (
	hoursPerYear  = 365 * 24
	hoursPerMonth = 365 * 24 / 12 // 730, exact
)

// =============================================================================
// HOURLY
// =============================================================================

// Hourly prorates a rent quoted per hour.
type Hourly struct{}

func (Hourly) Cadence() generic.Cadence { return generic.CadenceHourly }

func (Hourly) AmountForInterval(iv generic.Interval, base decimal.Decimal) decimal.Decimal {
	d := iv.Diff()
	hours := int64(d.Years)*hoursPerYear +
		int64(d.Months)*hoursPerMonth +
		int64(d.Days)*24 +
		int64(d.Hours)

	whole := base.Mul(decimal.NewFromInt(hours))
	partial := base.Mul(decimal.NewFromInt(int64(d.Minutes))).Div(generic.MinutesPerHour)
	return whole.Add(partial)
}

// =============================================================================
// DAILY
// =============================================================================

// Daily prorates a rent quoted per day.
type Daily struct{}

func (Daily) Cadence() generic.Cadence { return generic.CadenceDaily }

func (Daily) AmountForInterval(iv generic.Interval, base decimal.Decimal) decimal.Decimal {
	d := iv.Diff()
	whole := base.Mul(decimal.NewFromInt(int64(d.TotalDays)))
	partial := base.Mul(decimal.NewFromInt(int64(d.Hours))).Div(generic.HoursPerDay)
	return whole.Add(partial)
}

// =============================================================================
// WEEKLY
// =============================================================================

// Weekly prorates a rent quoted per week. It has three entry points that
// differ only in how the trailing days are counted.
type Weekly struct{}

func (Weekly) Cadence() generic.Cadence { return generic.CadenceWeekly }

// AmountForInterval counts trailing days exclusively.
func (w Weekly) AmountForInterval(iv generic.Interval, base decimal.Decimal) decimal.Decimal {
	d := iv.Diff()
	return w.amount(d, d.Days, base)
}

// RoomRentAmountForInterval counts the end date as a full day.
func (w Weekly) RoomRentAmountForInterval(iv generic.Interval, base decimal.Decimal) decimal.Decimal {
	d := iv.Diff()
	return w.amount(d, d.Days+1, base)
}

// FacilityDashboardAmountForInterval counts the end date as a full day.
func (w Weekly) FacilityDashboardAmountForInterval(iv generic.Interval, base decimal.Decimal) decimal.Decimal {
	d := iv.Diff()
	return w.amount(d, d.Days+1, base)
}

// amount evaluates base*(y*365/7 + m*365/84 + days/7) over the common
// denominator 84 so only one division is rounded.
func (Weekly) amount(d generic.CalendarDiff, days int, base decimal.Decimal) decimal.Decimal {
	numerator := int64(d.Years)*365*12 + int64(d.Months)*365 + int64(days)*12
	return base.Mul(decimal.NewFromInt(numerator)).Div(weeklyDenominator)
}

var weeklyDenominator = decimal.NewFromInt(12 * 7)

// =============================================================================
// MONTHLY
// =============================================================================

// Monthly prorates a rent quoted per month.
type Monthly struct{}

func (Monthly) Cadence() generic.Cadence { return generic.CadenceMonthly }

func (Monthly) AmountForInterval(iv generic.Interval, base decimal.Decimal) decimal.Decimal {
	d := iv.Diff()
	months := int64(d.Years)*12 + int64(d.Months)
	whole := base.Mul(decimal.NewFromInt(months))
	partial := base.Mul(decimal.NewFromInt(12 * int64(d.Days))).Div(generic.DaysPerYear)
	return whole.Add(partial)
}
