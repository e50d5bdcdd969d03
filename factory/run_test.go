package factory_test

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/rent-engine/factory"
	"github.com/warp/rent-engine/generic"
	"github.com/warp/rent-engine/rent"
)

const januaryRun = `{
  "window": {"start": "2025-01-01", "end": "2025-02-01"},
  "mode": "room_rent",
  "agreements": [
    {
      "id": "agr-1",
      "resident_id": "res-1",
      "room": "101",
      "cadence": "Weekly",
      "amount": "350.00",
      "start": "2024-12-20",
      "end": null
    },
    {
      "id": "agr-2",
      "resident_id": "res-2",
      "cadence": "hourly",
      "amount": "12.5",
      "start": "2025-01-10 08:00",
      "end": "2025-01-10T18:30:00Z"
    }
  ]
}`

func TestParseRun(t *testing.T) {
	// GIVEN: A billing run JSON with an ongoing and a closed stay
	f := factory.NewRunFactory()

	// WHEN: Parsing
	run, err := f.ParseRun(januaryRun)
	require.NoError(t, err)

	// THEN: Window, mode and agreements are converted
	assert.True(t, run.Window.Equal(generic.MustClosed(generic.Date(2025, 1, 1), generic.Date(2025, 2, 1))))
	assert.Equal(t, rent.ModeRoomRent, run.Mode)
	require.Len(t, run.Agreements, 2)

	first := run.Agreements[0]
	assert.Equal(t, generic.CadenceWeekly, first.Cadence)
	assert.Equal(t, "350", first.Amount.String())
	assert.True(t, first.Stay.IsOngoing())

	second := run.Agreements[1]
	assert.Equal(t, time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC), second.Stay.Start())
	end, ok := second.Stay.End()
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 1, 10, 18, 30, 0, 0, time.UTC), end)
}

func TestParseRun_WindowRequiresEnd(t *testing.T) {
	_, err := factory.NewRunFactory().ParseRun(`{"window": {"start": "2025-01-01"}, "agreements": []}`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, generic.ErrInvalidInterval))
	assert.NotEmpty(t, errors.FlattenHints(err))
}

func TestParseRun_UnknownCadence(t *testing.T) {
	_, err := factory.NewRunFactory().ParseRun(`{
	  "window": {"start": "2025-01-01", "end": "2025-02-01"},
	  "agreements": [{"resident_id": "r", "cadence": "quarterly", "amount": "1", "start": "2025-01-01"}]
	}`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, generic.ErrUnhandledCadence))
	assert.Contains(t, err.Error(), "agreement #0")
}

func TestParseRun_InvalidInputs(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"malformed json", `{"window": `},
		{"unknown mode", `{"window": {"start": "2025-01-01", "end": "2025-02-01"}, "mode": "yearly"}`},
		{"inverted window", `{"window": {"start": "2025-02-01", "end": "2025-01-01"}}`},
		{"bad instant", `{"window": {"start": "01/01/2025", "end": "2025-02-01"}}`},
		{"bad amount", `{"window": {"start": "2025-01-01", "end": "2025-02-01"},
		  "agreements": [{"resident_id": "r", "cadence": "daily", "amount": "ten", "start": "2025-01-01"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := factory.NewRunFactory().ParseRun(tt.json)
			assert.Error(t, err)
		})
	}
}

func TestToJSON_RoundTripsAgreement(t *testing.T) {
	f := factory.NewRunFactory()
	a, err := f.Agreement(factory.AgreementJSON{
		ID:         "agr-1",
		ResidentID: "res-1",
		Room:       "7",
		Cadence:    "monthly",
		Amount:     "3000",
		Start:      "2025-01-01",
	})
	require.NoError(t, err)

	aj := f.ToJSON(a)
	assert.Equal(t, "2025-01-01T00:00:00Z", aj.Start)
	assert.Nil(t, aj.End)
	assert.Equal(t, "monthly", aj.Cadence)
	assert.Equal(t, "3000", aj.Amount)
}

func TestParseInstant_Layouts(t *testing.T) {
	want := time.Date(2025, 3, 1, 9, 15, 0, 0, time.UTC)
	for _, s := range []string{"2025-03-01T09:15:00Z", "2025-03-01 09:15:00", "2025-03-01T09:15:00", "2025-03-01 09:15"} {
		got, err := factory.ParseInstant(s)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(got), s)
	}

	_, err := factory.ParseInstant("tomorrow")
	assert.Error(t, err)
}
