// Package rent implements resident rent proration.
// It plugs the hourly, daily, weekly and monthly cadence formulas into the
// generic engine and evaluates rent agreements for a billing window.
package rent

import (
	"github.com/shopspring/decimal"
	"github.com/warp/rent-engine/generic"
)

// =============================================================================
// RENT AGREEMENT
// =============================================================================

// Agreement is a resident's rent for a room: an amount quoted per cadence
// over a stay that may still be ongoing.
type Agreement struct {
	ID         string
	ResidentID string
	Room       string
	Cadence    generic.Cadence
	Amount     decimal.Decimal
	Stay       generic.Interval
}

// Mode selects the pricing entry point used for a billing session.
type Mode string

const (
	ModeGeneral           Mode = "general"
	ModeRoomRent          Mode = "room_rent"
	ModeFacilityDashboard Mode = "facility_dashboard"
)

// ParseMode validates a mode string. An empty string means ModeGeneral.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeGeneral, nil
	}
	m := Mode(s)
	if !m.variant().IsValid() {
		return "", &UnknownModeError{Mode: s}
	}
	return m, nil
}

func (m Mode) variant() generic.Variant { return generic.Variant(m) }

// UnknownModeError is returned for a billing mode that is not recognized.
type UnknownModeError struct {
	Mode string
}

func (e *UnknownModeError) Error() string { return "unknown billing mode: " + e.Mode }
