package payroll

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2024-02")
	require.NoError(t, err)
	assert.Equal(t, Month{Year: 2024, Month: time.February}, m)
	assert.Equal(t, "2024-02", m.String())
	assert.Equal(t, "Februari 2024", m.Label())
	assert.Equal(t, NewDate(2024, time.February, 29).Time, m.End())

	_, err = ParseMonth("2024-13")
	assert.ErrorIs(t, err, ErrInvalidMonth)
	_, err = ParseMonth("Feb 2024")
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestMonthJSON(t *testing.T) {
	var payload struct {
		Month  Month  `json:"month"`
		Pinned *Month `json:"pinned"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"month":"2025-08","pinned":null}`), &payload))
	assert.Equal(t, "Ogos 2025", payload.Month.Label())
	assert.Nil(t, payload.Pinned)

	out, err := json.Marshal(payload.Month)
	require.NoError(t, err)
	assert.JSONEq(t, `"2025-08"`, string(out))
}

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-03-03"`), &d))
	assert.Equal(t, "2025-03-03", d.Key())

	require.NoError(t, json.Unmarshal([]byte(`"2025-03-04T23:30:00Z"`), &d))
	assert.Equal(t, "2025-03-04", d.Key())

	assert.Error(t, json.Unmarshal([]byte(`"03/04/2025"`), &d))
}

func TestSettingsValidate(t *testing.T) {
	require.NoError(t, DefaultSettings().Validate())

	s := DefaultSettings()
	s.OTRateMultiplier = dec("0")
	assert.ErrorIs(t, s.Validate(), ErrInvalidSettings)

	s = DefaultSettings()
	s.LeaveProration = "split"
	assert.ErrorIs(t, s.Validate(), ErrInvalidSettings)

	s = DefaultSettings()
	s.DefaultStatutory.SCPEmployerRate = dec("-1")
	assert.ErrorIs(t, s.Validate(), ErrInvalidSettings)
}
