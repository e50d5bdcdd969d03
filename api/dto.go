/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's value types from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Cadences:   CadenceDTO
  Proration:  ProrateRequest, ProrationDTO
  Occupancy:  OccupancyRequest, OccupancyDTO
  Agreements: AgreementDTO (wraps factory.AgreementJSON)
  Billing:    BillingRunRequest, BillingRunDTO, BillingLineDTO

MONEY:
  Amounts and ratios are decimal strings ("6986.30136986..."). Formatting
  for display is left to clients.

VALIDATION:
  Struct tags are checked with go-playground/validator before the handler
  touches the engine.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/run.go: AgreementJSON and IntervalJSON
*/
package api

import (
	"github.com/samber/lo"
	"github.com/warp/rent-engine/factory"
	"github.com/warp/rent-engine/generic"
	"github.com/warp/rent-engine/rent"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// CadenceDTO represents a supported cadence.
type CadenceDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProrateRequest asks for the proration of one interval against a window.
type ProrateRequest struct {
	Window   factory.IntervalJSON `json:"window"`
	Interval factory.IntervalJSON `json:"interval"`
	Cadence  string               `json:"cadence" validate:"required"`
	Amount   string               `json:"amount" validate:"required,numeric"`
	Variant  string               `json:"variant,omitempty" validate:"omitempty,oneof=general room_rent facility_dashboard"`
}

// ProrationDTO is the result of a proration.
type ProrationDTO struct {
	Cadence string               `json:"cadence"`
	Variant string               `json:"variant"`
	Amount  string               `json:"amount"`
	Days    int                  `json:"days"`
	Overlap factory.IntervalJSON `json:"overlap"`
}

// OccupancyRequest asks for the occupancy ratio of a contract in a window.
type OccupancyRequest struct {
	Window   factory.IntervalJSON `json:"window"`
	Interval factory.IntervalJSON `json:"interval"`
}

// OccupancyDTO is the occupancy ratio.
type OccupancyDTO struct {
	Ratio string `json:"ratio"`
}

// AgreementDTO represents a rent agreement.
type AgreementDTO = factory.AgreementJSON

// BillingRunRequest asks to evaluate stored agreements for a window.
type BillingRunRequest struct {
	Window factory.IntervalJSON `json:"window"`
	Mode   string               `json:"mode,omitempty" validate:"omitempty,oneof=general room_rent facility_dashboard"`
}

// BillingLineDTO is one prorated agreement.
type BillingLineDTO struct {
	AgreementID string               `json:"agreement_id"`
	ResidentID  string               `json:"resident_id"`
	Room        string               `json:"room,omitempty"`
	Cadence     string               `json:"cadence"`
	Rate        string               `json:"rate"`
	Days        int                  `json:"days"`
	Amount      string               `json:"amount"`
	Occupancy   *string              `json:"occupancy,omitempty"`
	Overlap     factory.IntervalJSON `json:"overlap"`
}

// SkippedDTO is an agreement left out of a billing run.
type SkippedDTO struct {
	AgreementID string `json:"agreement_id"`
	Reason      string `json:"reason"`
}

// BillingRunDTO is the outcome of a billing run.
type BillingRunDTO struct {
	Window  factory.IntervalJSON `json:"window"`
	Mode    string               `json:"mode"`
	Lines   []BillingLineDTO     `json:"lines"`
	Skipped []SkippedDTO         `json:"skipped"`
	Total   string               `json:"total"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toCadenceDTOs(cs []generic.Cadence) []CadenceDTO {
	return lo.Map(cs, func(c generic.Cadence, _ int) CadenceDTO {
		return CadenceDTO{ID: string(c), Name: c.DisplayName()}
	})
}

func toProrationDTO(p generic.Proration) ProrationDTO {
	return ProrationDTO{
		Cadence: string(p.Cadence),
		Variant: string(p.Variant),
		Amount:  p.Amount.String(),
		Days:    p.Days,
		Overlap: factory.IntervalToJSON(p.Overlap),
	}
}

// ToBillingRunDTO converts a billing run result for the wire.
func ToBillingRunDTO(r *rent.Result) BillingRunDTO {
	return BillingRunDTO{
		Window: factory.IntervalToJSON(r.Window),
		Mode:   string(r.Mode),
		Lines: lo.Map(r.Lines, func(l rent.Line, _ int) BillingLineDTO {
			dto := BillingLineDTO{
				AgreementID: l.AgreementID,
				ResidentID:  l.ResidentID,
				Room:        l.Room,
				Cadence:     string(l.Cadence),
				Rate:        l.Rate.String(),
				Days:        l.Days,
				Amount:      l.Amount.String(),
				Overlap:     factory.IntervalToJSON(l.Overlap),
			}
			if l.Occupancy != nil {
				dto.Occupancy = lo.ToPtr(l.Occupancy.String())
			}
			return dto
		}),
		Skipped: lo.Map(r.Skipped, func(s rent.Skip, _ int) SkippedDTO {
			return SkippedDTO{AgreementID: s.AgreementID, Reason: s.Reason}
		}),
		Total: r.Total.String(),
	}
}
