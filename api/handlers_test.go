/*
handlers_test.go - HTTP tests for the API handlers

Tests for:
- Single-interval proration and occupancy
- Agreement CRUD
- Billing runs over stored agreements
- Error mapping (400 / 404)
*/
package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/rent-engine/api"
	"github.com/warp/rent-engine/store/sqlite"
)

func newServer(t *testing.T) http.Handler {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return api.NewRouter(api.NewHandler(store), api.RouterOptions{
		Logger:         zerolog.Nop(),
		AllowedOrigins: []string{"http://localhost:5173"},
	})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// =============================================================================
// CADENCES / HEALTH
// =============================================================================

func TestHealthz(t *testing.T) {
	rec := do(t, newServer(t), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListCadences(t *testing.T) {
	rec := do(t, newServer(t), http.MethodGet, "/api/cadences", "")
	require.Equal(t, http.StatusOK, rec.Code)

	cadences := decode[[]api.CadenceDTO](t, rec)
	require.Len(t, cadences, 4)
	assert.Equal(t, "hourly", cadences[0].ID)
	assert.Equal(t, "Monthly", cadences[3].Name)
}

// =============================================================================
// PRORATION
// =============================================================================

func TestProrate_Hourly(t *testing.T) {
	// GIVEN: 10/hour over 1 day 3.5 hours inside the window
	body := `{
	  "window":   {"start": "2025-01-01", "end": "2025-02-01"},
	  "interval": {"start": "2025-01-01 00:00", "end": "2025-01-02 03:30"},
	  "cadence":  "hourly",
	  "amount":   "10"
	}`

	rec := do(t, newServer(t), http.MethodPost, "/api/prorations", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	p := decode[api.ProrationDTO](t, rec)
	assert.Equal(t, "275", p.Amount)
	assert.Equal(t, "general", p.Variant)
	assert.Equal(t, 1, p.Days)
}

func TestProrate_WeeklyRoomRent(t *testing.T) {
	body := `{
	  "window":   {"start": "2025-03-01", "end": "2025-04-01"},
	  "interval": {"start": "2025-03-01", "end": "2025-03-07"},
	  "cadence":  "weekly",
	  "amount":   "350",
	  "variant":  "room_rent"
	}`

	rec := do(t, newServer(t), http.MethodPost, "/api/prorations", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "350", decode[api.ProrationDTO](t, rec).Amount)
}

func TestProrate_ClientErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown cadence", `{"window": {"start": "2025-01-01", "end": "2025-02-01"},
		  "interval": {"start": "2025-01-05"}, "cadence": "quarterly", "amount": "10"}`},
		{"inverted interval", `{"window": {"start": "2025-01-01", "end": "2025-02-01"},
		  "interval": {"start": "2025-01-20", "end": "2025-01-05"}, "cadence": "daily", "amount": "10"}`},
		{"outside window", `{"window": {"start": "2025-01-01", "end": "2025-02-01"},
		  "interval": {"start": "2025-03-01", "end": "2025-03-05"}, "cadence": "daily", "amount": "10"}`},
		{"ongoing window", `{"window": {"start": "2025-01-01"},
		  "interval": {"start": "2025-01-05"}, "cadence": "daily", "amount": "10"}`},
		{"missing amount", `{"window": {"start": "2025-01-01", "end": "2025-02-01"},
		  "interval": {"start": "2025-01-05"}, "cadence": "daily"}`},
		{"unknown variant", `{"window": {"start": "2025-01-01", "end": "2025-02-01"},
		  "interval": {"start": "2025-01-05"}, "cadence": "daily", "amount": "10", "variant": "bulk"}`},
		{"malformed json", `{"window":`},
	}

	h := newServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/prorations", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			resp := decode[api.ErrorResponse](t, rec)
			assert.Equal(t, "Bad Request", resp.Error)
			assert.NotEmpty(t, resp.Details)
		})
	}
}

func TestOccupancy(t *testing.T) {
	body := `{
	  "window":   {"start": "2025-01-01", "end": "2025-01-11"},
	  "interval": {"start": "2025-01-07"}
	}`

	rec := do(t, newServer(t), http.MethodPost, "/api/occupancy", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "0.4", decode[api.OccupancyDTO](t, rec).Ratio)
}

// =============================================================================
// AGREEMENTS
// =============================================================================

func TestAgreementLifecycle(t *testing.T) {
	h := newServer(t)

	// Create
	rec := do(t, h, http.MethodPost, "/api/agreements", `{
	  "resident_id": "res-1", "room": "101", "cadence": "monthly",
	  "amount": "3000", "start": "2025-01-01"
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[api.AgreementDTO](t, rec)
	require.NotEmpty(t, created.ID)
	assert.Nil(t, created.End)

	// Get
	rec = do(t, h, http.MethodGet, "/api/agreements/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "res-1", decode[api.AgreementDTO](t, rec).ResidentID)

	// List
	rec = do(t, h, http.MethodGet, "/api/agreements", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]api.AgreementDTO](t, rec), 1)

	// Delete
	rec = do(t, h, http.MethodDelete, "/api/agreements/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/agreements/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateAgreement_Invalid(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodPost, "/api/agreements", `{"resident_id": "r", "cadence": "yearly", "amount": "1", "start": "2025-01-01"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/agreements", `{"resident_id": "r", "cadence": "daily", "amount": "abc", "start": "2025-01-01"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteAgreement_NotFound(t *testing.T) {
	rec := do(t, newServer(t), http.MethodDelete, "/api/agreements/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decode[api.ErrorResponse](t, rec).Error)
}

// =============================================================================
// BILLING RUNS
// =============================================================================

func TestEvaluateBillingRun(t *testing.T) {
	// GIVEN: A weekly and a monthly agreement, plus one that ended last year
	h := newServer(t)
	for _, body := range []string{
		`{"id": "w", "resident_id": "r1", "cadence": "weekly", "amount": "70", "start": "2025-01-01", "end": "2025-01-07"}`,
		`{"id": "m", "resident_id": "r2", "cadence": "monthly", "amount": "3000", "start": "2024-09-01"}`,
		`{"id": "old", "resident_id": "r3", "cadence": "daily", "amount": "50", "start": "2024-10-01", "end": "2024-11-01"}`,
	} {
		rec := do(t, h, http.MethodPost, "/api/agreements", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	// WHEN: Running January in facility dashboard mode
	rec := do(t, h, http.MethodPost, "/api/billing-runs", `{
	  "window": {"start": "2025-01-01", "end": "2025-02-01"},
	  "mode": "facility_dashboard"
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: The store filter leaves two lines, each with an occupancy ratio
	run := decode[api.BillingRunDTO](t, rec)
	require.Len(t, run.Lines, 2)
	assert.Equal(t, "m", run.Lines[0].AgreementID)
	assert.Equal(t, "3000", run.Lines[0].Amount)
	require.NotNil(t, run.Lines[0].Occupancy)
	assert.Equal(t, "1", *run.Lines[0].Occupancy)
	assert.Equal(t, "70", run.Lines[1].Amount)
	assert.Equal(t, "3070", run.Total)
	assert.Empty(t, run.Skipped)
}

func TestEvaluateBillingRun_BadMode(t *testing.T) {
	rec := do(t, newServer(t), http.MethodPost, "/api/billing-runs",
		`{"window": {"start": "2025-01-01", "end": "2025-02-01"}, "mode": "yearly"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "validation failed"))
}
