/*
handlers.go - HTTP API handlers for the rent proration engine

PURPOSE:
  Exposes the proration engine via REST API. Handles HTTP request/response,
  JSON serialization and validation, and delegates to the engine.

ENDPOINTS:
  Cadences:
    GET    /api/cadences               List supported cadences

  Proration:
    POST   /api/prorations             Prorate one interval against a window
    POST   /api/occupancy              Occupancy ratio of a contract in a window

  Agreements:
    GET    /api/agreements             List agreements
    POST   /api/agreements             Create agreement
    GET    /api/agreements/{id}        Get agreement
    DELETE /api/agreements/{id}        Delete agreement

  Billing:
    POST   /api/billing-runs           Evaluate stored agreements for a window

REQUEST FLOW:
  1. Decode JSON body
  2. Validate struct tags
  3. Build a fresh engine/session bound to the request's window
  4. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid intervals, unhandled cadences
  - 404: Agreement not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/warp/rent-engine/factory"
	"github.com/warp/rent-engine/generic"
	"github.com/warp/rent-engine/rent"
	"github.com/warp/rent-engine/store/sqlite"
)

// errBadRequest marks errors caused by malformed request bodies.
var errBadRequest = errors.New("bad request")

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      *sqlite.Store
	RunFactory *factory.RunFactory

	validate *validator.Validate
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:      store,
		RunFactory: factory.NewRunFactory(),
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

// =============================================================================
// CADENCE HANDLERS
// =============================================================================

// ListCadences returns the cadences the engine can prorate.
func (h *Handler) ListCadences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toCadenceDTOs(rent.NewRegistry().Cadences()))
}

// =============================================================================
// PRORATION HANDLERS
// =============================================================================

// Prorate computes the proration of one interval against a billing window.
func (h *Handler) Prorate(w http.ResponseWriter, r *http.Request) {
	var req ProrateRequest
	if err := h.decode(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}

	engine, err := h.engineFor(req.Window)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	iv, err := h.RunFactory.Interval(req.Interval)
	if err != nil {
		writeFailure(w, r, errors.Mark(errors.Wrap(err, "interval"), errBadRequest))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeFailure(w, r, errors.Mark(errors.Wrap(err, "amount"), errBadRequest))
		return
	}

	variant := generic.VariantGeneral
	if req.Variant != "" {
		variant = generic.Variant(req.Variant)
	}

	p, err := engine.ProrateVariant(iv, req.Cadence, amount, variant)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	zerolog.Ctx(r.Context()).Debug().
		Str("cadence", string(p.Cadence)).
		Str("variant", string(p.Variant)).
		Str("amount", p.Amount.String()).
		Int("days", p.Days).
		Msg("prorated interval")
	writeJSON(w, http.StatusOK, toProrationDTO(p))
}

// Occupancy computes the occupancy ratio of a contract in a billing window.
func (h *Handler) Occupancy(w http.ResponseWriter, r *http.Request) {
	var req OccupancyRequest
	if err := h.decode(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}

	engine, err := h.engineFor(req.Window)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	iv, err := h.RunFactory.Interval(req.Interval)
	if err != nil {
		writeFailure(w, r, errors.Mark(errors.Wrap(err, "interval"), errBadRequest))
		return
	}

	ratio, err := engine.OccupancyRatio(iv)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OccupancyDTO{Ratio: ratio.String()})
}

// =============================================================================
// AGREEMENT HANDLERS
// =============================================================================

// ListAgreements returns all stored agreements.
func (h *Handler) ListAgreements(w http.ResponseWriter, r *http.Request) {
	agreements, err := h.Store.ListAgreements(r.Context())
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	dtos := make([]AgreementDTO, 0, len(agreements))
	for _, a := range agreements {
		dtos = append(dtos, h.RunFactory.ToJSON(a))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAgreement stores a new agreement.
func (h *Handler) CreateAgreement(w http.ResponseWriter, r *http.Request) {
	var req AgreementDTO
	if err := h.decode(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}

	a, err := h.RunFactory.Agreement(req)
	if err != nil {
		writeFailure(w, r, errors.Mark(err, errBadRequest))
		return
	}

	saved, err := h.Store.SaveAgreement(r.Context(), a)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	zerolog.Ctx(r.Context()).Info().
		Str("agreement", saved.ID).
		Str("resident", saved.ResidentID).
		Msg("agreement created")
	writeJSON(w, http.StatusCreated, h.RunFactory.ToJSON(saved))
}

// GetAgreement returns one agreement.
func (h *Handler) GetAgreement(w http.ResponseWriter, r *http.Request) {
	a, err := h.Store.GetAgreement(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.RunFactory.ToJSON(a))
}

// DeleteAgreement removes one agreement.
func (h *Handler) DeleteAgreement(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteAgreement(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// BILLING HANDLERS
// =============================================================================

// EvaluateBillingRun prorates every stored agreement active in the window.
// The result is computed on the fly and never stored.
func (h *Handler) EvaluateBillingRun(w http.ResponseWriter, r *http.Request) {
	var req BillingRunRequest
	if err := h.decode(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}

	window, err := h.RunFactory.Window(req.Window)
	if err != nil {
		writeFailure(w, r, errors.Mark(errors.Wrap(err, "window"), errBadRequest))
		return
	}

	mode, err := rent.ParseMode(req.Mode)
	if err != nil {
		writeFailure(w, r, errors.Mark(err, errBadRequest))
		return
	}

	session, err := rent.NewSession(window, mode)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	agreements, err := h.Store.ListAgreementsActiveIn(r.Context(), window)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	result, err := session.Evaluate(r.Context(), agreements)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ToBillingRunDTO(result))
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Mark(errors.Wrap(err, "invalid JSON body"), errBadRequest)
	}
	if err := h.validate.Struct(dst); err != nil {
		return errors.Mark(errors.Wrap(err, "validation failed"), errBadRequest)
	}
	return nil
}

// engineFor builds a fresh engine bound to the request's billing window.
func (h *Handler) engineFor(ij factory.IntervalJSON) (*generic.Engine, error) {
	window, err := h.RunFactory.Window(ij)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "window"), errBadRequest)
	}
	return rent.NewEngine(window)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// statusFor maps engine and store errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), generic.IsClientError(err):
		return http.StatusBadRequest
	case errors.Is(err, sqlite.ErrAgreementNotFound):
		return http.StatusNotFound
	default:
		var modeErr *rent.UnknownModeError
		if errors.As(err, &modeErr) {
			return http.StatusBadRequest
		}
		return http.StatusInternalServerError
	}
}

func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logger := zerolog.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Msg("request failed")
	} else {
		logger.Warn().Err(err).Int("status", status).Msg("request rejected")
	}

	resp := ErrorResponse{
		Error:   http.StatusText(status),
		Details: err.Error(),
		Hint:    errors.FlattenHints(err),
	}
	writeJSON(w, status, resp)
}
