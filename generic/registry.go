/*
registry.go - Cadence to strategy resolution

PURPOSE:
  Resolves a cadence identifier to a PeriodStrategy, building each strategy
  once and caching it. Domain packages supply the builders so this package
  stays free of concrete formulas.

HOW IT WORKS:
  1. The rent package declares one builder per cadence
  2. NewRegistry captures the builders
  3. Resolve parses the identifier, then builds on first use and caches

WHY NOT A PACKAGE-LEVEL REGISTRY:
  Each billing session owns its registry (via its engine). Nothing here is
  shared across sessions, so two billing runs can never observe each other.

USAGE:
  reg := generic.NewRegistry(map[generic.Cadence]generic.StrategyBuilder{
      generic.CadenceWeekly: func() generic.PeriodStrategy { return rent.Weekly{} },
  })
  s, err := reg.Resolve("weekly")

SEE ALSO:
  - strategy.go: PeriodStrategy interface
  - rent/registry.go: Builders for the four cadences
*/
package generic

import (
	"sync"

	"github.com/samber/lo"
)

// StrategyBuilder constructs a strategy for one cadence.
type StrategyBuilder func() PeriodStrategy

// Registry resolves cadences to strategies and caches the instances.
// It is safe for concurrent use.
type Registry struct {
	builders map[Cadence]StrategyBuilder

	mu    sync.RWMutex
	cache map[Cadence]PeriodStrategy
}

// NewRegistry creates a registry from per-cadence builders.
func NewRegistry(builders map[Cadence]StrategyBuilder) *Registry {
	b := make(map[Cadence]StrategyBuilder, len(builders))
	for c, fn := range builders {
		b[c] = fn
	}
	return &Registry{
		builders: b,
		cache:    make(map[Cadence]PeriodStrategy, len(b)),
	}
}

// Resolve returns the strategy for a cadence identifier. Unknown identifiers,
// and known cadences without a builder, fail with ErrUnhandledCadence.
func (r *Registry) Resolve(id string) (PeriodStrategy, error) {
	c, err := ParseCadence(id)
	if err != nil {
		return nil, err
	}
	return r.ResolveCadence(c)
}

// ResolveCadence is Resolve for an already parsed cadence.
func (r *Registry) ResolveCadence(c Cadence) (PeriodStrategy, error) {
	r.mu.RLock()
	s, ok := r.cache[c]
	r.mu.RUnlock()
	if ok {
		return s, nil
	}

	build, ok := r.builders[c]
	if !ok {
		return nil, &UnhandledCadenceError{ID: string(c)}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another goroutine may have built it while we waited for the lock.
	if s, ok := r.cache[c]; ok {
		return s, nil
	}
	s = build()
	r.cache[c] = s
	return s, nil
}

// Cadences returns the cadences this registry can resolve, in canonical order.
func (r *Registry) Cadences() []Cadence {
	return lo.Filter(AllCadences, func(c Cadence, _ int) bool {
		_, ok := r.builders[c]
		return ok
	})
}
