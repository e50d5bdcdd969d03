/*
session.go - Billing session over a set of rent agreements

PURPOSE:
  A Session is one billing run: a billing window, a mode, and a private
  engine bound to that window. It prorates every agreement active in the
  window and returns the lines. Nothing is persisted.

MODES:
  general:            Engine.Prorate
  room_rent:          Engine.ProrateRoomRent
  facility_dashboard: Engine.ProrateFacilityDashboard + Engine.OccupancyRatio

FAILURE SEMANTICS:
  - Agreements that do not overlap the window are skipped and reported.
  - Any other error (unhandled cadence, inverted stay) fails the whole run.
    A run never returns partial totals.

USAGE:
  s, err := rent.NewSession(window, rent.ModeRoomRent)
  result, err := s.Evaluate(ctx, agreements)

SEE ALSO:
  - generic/engine.go: Per-interval proration
  - factory/run.go: Builds sessions from JSON run definitions
  - api/handlers.go: Billing-run endpoint
*/
package rent

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/warp/rent-engine/generic"
)

// Session evaluates agreements against one billing window.
type Session struct {
	engine *generic.Engine
	mode   Mode
}

// Line is the prorated charge for one agreement.
type Line struct {
	AgreementID string
	ResidentID  string
	Room        string
	Cadence     generic.Cadence
	Rate        decimal.Decimal
	Overlap     generic.Interval
	Days        int
	Amount      decimal.Decimal

	// Occupancy is set in facility_dashboard mode only.
	Occupancy *decimal.Decimal
}

// Skip records an agreement left out of the run.
type Skip struct {
	AgreementID string
	Reason      string
}

// Result is the outcome of a billing run.
type Result struct {
	Window  generic.Interval
	Mode    Mode
	Lines   []Line
	Skipped []Skip
	Total   decimal.Decimal
}

// NewSession creates a session with its own engine bound to window.
func NewSession(window generic.Interval, mode Mode) (*Session, error) {
	if !mode.variant().IsValid() {
		return nil, &UnknownModeError{Mode: string(mode)}
	}
	engine, err := NewEngine(window)
	if err != nil {
		return nil, err
	}
	return &Session{engine: engine, mode: mode}, nil
}

// Engine exposes the session's engine.
func (s *Session) Engine() *generic.Engine { return s.engine }

// Mode returns the session's billing mode.
func (s *Session) Mode() Mode { return s.mode }

// Evaluate prorates every agreement against the session window.
func (s *Session) Evaluate(ctx context.Context, agreements []Agreement) (*Result, error) {
	logger := zerolog.Ctx(ctx).With().
		Str("window", s.engine.Window().String()).
		Str("mode", string(s.mode)).
		Logger()

	result := &Result{
		Window: s.engine.Window(),
		Mode:   s.mode,
		Lines:  make([]Line, 0, len(agreements)),
		Total:  decimal.Zero,
	}

	for _, a := range agreements {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if s.engine.Overlap(a.Stay).IsInverted() {
			logger.Debug().Str("agreement", a.ID).Msg("agreement outside billing window, skipped")
			result.Skipped = append(result.Skipped, Skip{AgreementID: a.ID, Reason: "outside billing window"})
			continue
		}

		line, err := s.line(a)
		if err != nil {
			return nil, errors.Wrapf(err, "agreement %s", a.ID)
		}
		result.Lines = append(result.Lines, line)
		result.Total = result.Total.Add(line.Amount)
	}

	logger.Info().
		Int("lines", len(result.Lines)).
		Int("skipped", len(result.Skipped)).
		Str("total", result.Total.String()).
		Msg("billing run evaluated")
	return result, nil
}

func (s *Session) line(a Agreement) (Line, error) {
	p, err := s.prorate(a)
	if err != nil {
		return Line{}, err
	}

	line := Line{
		AgreementID: a.ID,
		ResidentID:  a.ResidentID,
		Room:        a.Room,
		Cadence:     p.Cadence,
		Rate:        a.Amount,
		Overlap:     p.Overlap,
		Days:        p.Days,
		Amount:      p.Amount,
	}

	if s.mode == ModeFacilityDashboard {
		ratio, err := s.engine.OccupancyRatio(a.Stay)
		if err != nil {
			return Line{}, err
		}
		line.Occupancy = &ratio
	}
	return line, nil
}

func (s *Session) prorate(a Agreement) (generic.Proration, error) {
	switch s.mode {
	case ModeRoomRent:
		return s.engine.ProrateRoomRent(a.Stay, string(a.Cadence), a.Amount)
	case ModeFacilityDashboard:
		return s.engine.ProrateFacilityDashboard(a.Stay, string(a.Cadence), a.Amount)
	default:
		return s.engine.Prorate(a.Stay, string(a.Cadence), a.Amount)
	}
}
