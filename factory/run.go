/*
Package factory provides JSON to Go billing-run conversion.

PURPOSE:
  Converts JSON billing-run definitions into a billing window, a mode and
  rent.Agreement values. Billing operators can prepare a run as a file and
  evaluate it with `rent-engine prorate --file run.json`; the API reuses the
  same JSON shapes for agreements.

JSON SCHEMA:
  {
    "window": {"start": "2025-01-01", "end": "2025-02-01"},
    "mode": "room_rent",
    "agreements": [
      {
        "id": "agr-1",
        "resident_id": "res-1",
        "room": "101",
        "cadence": "weekly",
        "amount": "350.00",
        "start": "2024-12-20",
        "end": null
      }
    ]
  }

INSTANTS:
  Accepted layouts: RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05",
  "2006-01-02". Layouts without a zone are read as UTC.

AMOUNTS:
  Amounts are decimal strings so money never passes through float64.

USAGE:
  f := factory.NewRunFactory()
  run, err := f.ParseRun(jsonString)
  session, err := rent.NewSession(run.Window, run.Mode)
  result, err := session.Evaluate(ctx, run.Agreements)

SEE ALSO:
  - rent/session.go: Evaluates the parsed run
  - api/dto.go: Reuses AgreementJSON and IntervalJSON
*/
package factory

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"github.com/warp/rent-engine/generic"
	"github.com/warp/rent-engine/rent"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RunJSON is the JSON representation of a billing run.
type RunJSON struct {
	Window     IntervalJSON    `json:"window"`
	Mode       string          `json:"mode,omitempty"` // general, room_rent, facility_dashboard
	Agreements []AgreementJSON `json:"agreements"`
}

// IntervalJSON represents an interval; a null or missing end means ongoing.
type IntervalJSON struct {
	Start string  `json:"start" validate:"required"`
	End   *string `json:"end,omitempty"`
}

// AgreementJSON represents a rent agreement.
type AgreementJSON struct {
	ID         string  `json:"id,omitempty"`
	ResidentID string  `json:"resident_id" validate:"required"`
	Room       string  `json:"room,omitempty"`
	Cadence    string  `json:"cadence" validate:"required"`
	Amount     string  `json:"amount" validate:"required,numeric"`
	Start      string  `json:"start" validate:"required"`
	End        *string `json:"end,omitempty"`
}

// RunDefinition is a parsed billing run.
type RunDefinition struct {
	Window     generic.Interval
	Mode       rent.Mode
	Agreements []rent.Agreement
}

// =============================================================================
// RUN FACTORY
// =============================================================================

// RunFactory converts JSON billing runs to Go structs.
type RunFactory struct{}

// NewRunFactory creates a new run factory.
func NewRunFactory() *RunFactory {
	return &RunFactory{}
}

// ParseRun parses a JSON string into a RunDefinition.
func (f *RunFactory) ParseRun(jsonStr string) (*RunDefinition, error) {
	var rj RunJSON
	if err := json.Unmarshal([]byte(jsonStr), &rj); err != nil {
		return nil, errors.Wrap(err, "failed to parse billing run JSON")
	}
	return f.FromJSON(rj)
}

// FromJSON converts RunJSON to a RunDefinition.
func (f *RunFactory) FromJSON(rj RunJSON) (*RunDefinition, error) {
	window, err := f.Window(rj.Window)
	if err != nil {
		return nil, err
	}

	mode, err := rent.ParseMode(rj.Mode)
	if err != nil {
		return nil, err
	}

	agreements := make([]rent.Agreement, 0, len(rj.Agreements))
	for i, aj := range rj.Agreements {
		a, err := f.Agreement(aj)
		if err != nil {
			return nil, errors.Wrapf(err, "agreement #%d", i)
		}
		agreements = append(agreements, a)
	}

	return &RunDefinition{Window: window, Mode: mode, Agreements: agreements}, nil
}

// Window parses a billing window, which must have an end.
func (f *RunFactory) Window(ij IntervalJSON) (generic.Interval, error) {
	if ij.End == nil || strings.TrimSpace(*ij.End) == "" {
		return generic.Interval{}, errors.WithHint(
			errors.Mark(errors.New("billing window requires an end"), generic.ErrInvalidInterval),
			"set window.end, e.g. the first day of the next month")
	}
	return f.Interval(ij)
}

// Interval parses an interval; an absent end yields an ongoing interval.
func (f *RunFactory) Interval(ij IntervalJSON) (generic.Interval, error) {
	start, err := ParseInstant(ij.Start)
	if err != nil {
		return generic.Interval{}, errors.Wrap(err, "start")
	}
	if ij.End == nil || strings.TrimSpace(*ij.End) == "" {
		return generic.Ongoing(start), nil
	}
	end, err := ParseInstant(*ij.End)
	if err != nil {
		return generic.Interval{}, errors.Wrap(err, "end")
	}
	return generic.Closed(start, end)
}

// Agreement converts AgreementJSON to a rent.Agreement.
func (f *RunFactory) Agreement(aj AgreementJSON) (rent.Agreement, error) {
	cadence, err := generic.ParseCadence(aj.Cadence)
	if err != nil {
		return rent.Agreement{}, err
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(aj.Amount))
	if err != nil {
		return rent.Agreement{}, errors.Wrapf(err, "invalid amount %q", aj.Amount)
	}

	stay, err := f.Interval(IntervalJSON{Start: aj.Start, End: aj.End})
	if err != nil {
		return rent.Agreement{}, err
	}

	return rent.Agreement{
		ID:         aj.ID,
		ResidentID: aj.ResidentID,
		Room:       aj.Room,
		Cadence:    cadence,
		Amount:     amount,
		Stay:       stay,
	}, nil
}

// ToJSON converts a rent.Agreement to AgreementJSON.
func (f *RunFactory) ToJSON(a rent.Agreement) AgreementJSON {
	iv := IntervalToJSON(a.Stay)
	return AgreementJSON{
		ID:         a.ID,
		ResidentID: a.ResidentID,
		Room:       a.Room,
		Cadence:    string(a.Cadence),
		Amount:     a.Amount.String(),
		Start:      iv.Start,
		End:        iv.End,
	}
}

// IntervalToJSON formats an interval with RFC3339 instants.
func IntervalToJSON(iv generic.Interval) IntervalJSON {
	ij := IntervalJSON{Start: FormatInstant(iv.Start())}
	if end, ok := iv.End(); ok {
		s := FormatInstant(end)
		ij.End = &s
	}
	return ij
}

// =============================================================================
// INSTANTS
// =============================================================================

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseInstant parses an instant in any accepted layout.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Newf("invalid instant %q", s)
}

// FormatInstant formats an instant as RFC3339.
func FormatInstant(t time.Time) string {
	return t.Format(time.RFC3339)
}
