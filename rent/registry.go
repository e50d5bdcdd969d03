package rent

import "github.com/warp/rent-engine/generic"

// Builders returns the strategy builders for every rent cadence.
func Builders() map[generic.Cadence]generic.StrategyBuilder {
	return map[generic.Cadence]generic.StrategyBuilder{
		generic.CadenceHourly:  func() generic.PeriodStrategy { return Hourly{} },
		generic.CadenceDaily:   func() generic.PeriodStrategy { return Daily{} },
		generic.CadenceWeekly:  func() generic.PeriodStrategy { return Weekly{} },
		generic.CadenceMonthly: func() generic.PeriodStrategy { return Monthly{} },
	}
}

// NewRegistry returns a fresh registry resolving all rent cadences.
func NewRegistry() *generic.Registry {
	return generic.NewRegistry(Builders())
}

// NewEngine binds a new engine, with its own registry, to window.
func NewEngine(window generic.Interval) (*generic.Engine, error) {
	return generic.NewEngine(window, NewRegistry())
}
