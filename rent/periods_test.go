package rent_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/rent-engine/generic"
	"github.com/warp/rent-engine/rent"
)

func span(from, to time.Time) generic.Interval {
	return generic.MustClosed(from, to)
}

func dt(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(decimal.RequireFromString(want)), "want %s, got %s", want, got)
}

// =============================================================================
// HOURLY
// =============================================================================

func TestHourly_HoursAndMinutes(t *testing.T) {
	// GIVEN: 10 per hour over 1 day 3 hours 30 minutes
	iv := span(dt(2025, 1, 1, 0, 0), dt(2025, 1, 2, 3, 30))

	// THEN: 27 whole hours plus half an hour
	assertAmount(t, "275", rent.Hourly{}.AmountForInterval(iv, decimal.NewFromInt(10)))
}

func TestHourly_MonthsAndYearsUseFixedLengths(t *testing.T) {
	// One calendar month is 730 hours whatever its real length
	feb := span(generic.Date(2025, 2, 1), generic.Date(2025, 3, 1))
	assertAmount(t, "730", rent.Hourly{}.AmountForInterval(feb, decimal.NewFromInt(1)))

	// One calendar year is 8760 hours, leap or not
	leap := span(generic.Date(2024, 1, 1), generic.Date(2025, 1, 1))
	assertAmount(t, "8760", rent.Hourly{}.AmountForInterval(leap, decimal.NewFromInt(1)))
}

// =============================================================================
// DAILY
// =============================================================================

func TestDaily_TotalDaysPlusHours(t *testing.T) {
	// GIVEN: 48 per day over 2 months, 3 days and 6 hours
	iv := span(dt(2025, 1, 1, 0, 0), dt(2025, 3, 4, 6, 0))

	// THEN: 62 elapsed days plus a quarter day
	assertAmount(t, "2988", rent.Daily{}.AmountForInterval(iv, decimal.NewFromInt(48)))
}

// =============================================================================
// WEEKLY
// =============================================================================

func TestWeekly_General(t *testing.T) {
	base := decimal.NewFromInt(70)

	// 14 days is two weeks
	assertAmount(t, "140", rent.Weekly{}.AmountForInterval(span(generic.Date(2025, 1, 1), generic.Date(2025, 1, 15)), base))

	// 3 days is 3/7 of a week
	assertAmount(t, "30", rent.Weekly{}.AmountForInterval(span(generic.Date(2025, 1, 1), generic.Date(2025, 1, 4)), base))

	// A year is 365/7 weeks
	assertAmount(t, "3650", rent.Weekly{}.AmountForInterval(span(generic.Date(2025, 1, 1), generic.Date(2026, 1, 1)), base))

	// A month is 365/84 weeks
	month := rent.Weekly{}.AmountForInterval(span(generic.Date(2025, 1, 1), generic.Date(2025, 2, 1)), decimal.NewFromInt(84))
	assertAmount(t, "365", month)
}

func TestWeekly_RoomRentCountsEndDate(t *testing.T) {
	// GIVEN: Mar 1 - Mar 7 in room-rent mode and Mar 1 - Mar 8 in general mode
	base := decimal.NewFromInt(350)
	short := span(generic.Date(2025, 3, 1), generic.Date(2025, 3, 7))
	long := span(generic.Date(2025, 3, 1), generic.Date(2025, 3, 8))

	roomRent := rent.Weekly{}.RoomRentAmountForInterval(short, base)
	general := rent.Weekly{}.AmountForInterval(long, base)

	// THEN: Both charge exactly one week
	assertAmount(t, "350", roomRent)
	assert.True(t, roomRent.Equal(general))
}

func TestWeekly_DashboardMatchesRoomRent(t *testing.T) {
	base := decimal.NewFromInt(350)
	iv := span(generic.Date(2025, 1, 20), generic.Date(2025, 3, 2))

	assert.True(t, rent.Weekly{}.FacilityDashboardAmountForInterval(iv, base).
		Equal(rent.Weekly{}.RoomRentAmountForInterval(iv, base)))
}

func TestWeekly_RoomRentOfEmptyIntervalIsOneDay(t *testing.T) {
	iv := span(generic.Date(2025, 3, 1), generic.Date(2025, 3, 1))
	assertAmount(t, "10", rent.Weekly{}.RoomRentAmountForInterval(iv, decimal.NewFromInt(70)))
	assertAmount(t, "0", rent.Weekly{}.AmountForInterval(iv, decimal.NewFromInt(70)))
}

// =============================================================================
// MONTHLY
// =============================================================================

func TestMonthly_MonthsAndDays(t *testing.T) {
	// GIVEN: 3000 per month over 2 months and 10 days
	iv := span(generic.Date(2025, 1, 1), generic.Date(2025, 3, 11))

	amount := rent.Monthly{}.AmountForInterval(iv, decimal.NewFromInt(3000))

	// THEN: 6000 + 3000*120/365
	assert.Equal(t, "6986.30", amount.StringFixed(2))
}

func TestMonthly_WholeYear(t *testing.T) {
	iv := span(generic.Date(2024, 5, 1), generic.Date(2025, 5, 1))
	assertAmount(t, "12000", rent.Monthly{}.AmountForInterval(iv, decimal.NewFromInt(1000)))
}

// =============================================================================
// SHARED PROPERTIES
// =============================================================================

func TestStrategies_ZeroLengthIsZero(t *testing.T) {
	iv := span(generic.Date(2025, 1, 1), generic.Date(2025, 1, 1))
	base := decimal.NewFromInt(123)

	for _, s := range []generic.PeriodStrategy{rent.Hourly{}, rent.Daily{}, rent.Weekly{}, rent.Monthly{}} {
		assert.True(t, s.AmountForInterval(iv, base).IsZero(), "%s", s.Cadence())
	}
}

func TestStrategies_InvertedIntervalIsSigned(t *testing.T) {
	// GIVEN: The inverted overlap of two disjoint intervals
	window := span(generic.Date(2025, 1, 1), generic.Date(2025, 2, 1))
	inverted := window.Intersect(span(generic.Date(2024, 12, 1), generic.Date(2024, 12, 11)))
	require.True(t, inverted.IsInverted())

	// THEN: The formula is applied to the negative components
	assertAmount(t, "-210", rent.Daily{}.AmountForInterval(inverted, decimal.NewFromInt(10)))
}

func TestStrategies_Monotone(t *testing.T) {
	// GIVEN: Intervals growing one day at a time from Jan 1 through Jan 30
	// (the hourly formula is only monotone within a month: 30 days of a
	// 31-day month exceed its fixed 730 hours)
	base := decimal.NewFromInt(100)
	strategies := []generic.PeriodStrategy{rent.Hourly{}, rent.Daily{}, rent.Weekly{}, rent.Monthly{}}

	for _, s := range strategies {
		prev := decimal.Zero
		for day := 1; day <= 30; day++ {
			iv := span(generic.Date(2025, 1, 1), generic.Date(2025, 1, 1+day))
			amount := s.AmountForInterval(iv, base)
			assert.True(t, amount.GreaterThanOrEqual(prev), "%s: day %d gave %s < %s", s.Cadence(), day, amount, prev)
			prev = amount
		}
	}
}

func TestStrategies_ReportCadence(t *testing.T) {
	assert.Equal(t, generic.CadenceHourly, rent.Hourly{}.Cadence())
	assert.Equal(t, generic.CadenceDaily, rent.Daily{}.Cadence())
	assert.Equal(t, generic.CadenceWeekly, rent.Weekly{}.Cadence())
	assert.Equal(t, generic.CadenceMonthly, rent.Monthly{}.Cadence())
}
