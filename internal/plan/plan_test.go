package plan

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidDuration(t *testing.T) {
	for _, days := range []int{0, -1, -90} {
		_, err := New(planStart, days)
		assert.ErrorIs(t, err, ErrInvalidDuration, "days=%d", days)
	}

	st, err := New(planStart, 90)
	require.NoError(t, err)
	assert.Equal(t, State{StartDate: planStart, DurationDays: 90}, st)
}

func TestValidate(t *testing.T) {
	good := State{StartDate: planStart, DurationDays: 90, CurrentIndex: 10}
	assert.NoError(t, good.Validate(1189))

	done := good
	done.CurrentIndex = 1189
	assert.NoError(t, done.Validate(1189))

	for name, st := range map[string]State{
		"zero start":     {DurationDays: 90},
		"zero duration":  {StartDate: planStart},
		"negative index": {StartDate: planStart, DurationDays: 90, CurrentIndex: -1},
		"past the end":   {StartDate: planStart, DurationDays: 90, CurrentIndex: 1190},
	} {
		assert.Error(t, st.Validate(1189), name)
	}
}

func TestStateJSONRecord(t *testing.T) {
	st := State{StartDate: planStart, DurationDays: 180, CurrentIndex: 77}
	data, err := json.Marshal(st)
	require.NoError(t, err)
	assert.JSONEq(t, `{"startDate":"2026-03-01T07:30:00Z","durationDays":180,"currentGlobalIndex":77}`, string(data))

	var back State
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.StartDate.Equal(st.StartDate))
	assert.Equal(t, st.DurationDays, back.DurationDays)
	assert.Equal(t, st.CurrentIndex, back.CurrentIndex)
}

func TestStateJSONAcceptsBrowserTimestamps(t *testing.T) {
	var st State
	require.NoError(t, json.Unmarshal([]byte(`{"startDate":"2025-01-05T09:12:33.120Z","durationDays":90,"currentGlobalIndex":3}`), &st))
	assert.Equal(t, time.Date(2025, 1, 5, 9, 12, 33, 120_000_000, time.UTC), st.StartDate)

	assert.Error(t, json.Unmarshal([]byte(`{"startDate":"yesterday","durationDays":90}`), &st))
}

func TestParseStartDate(t *testing.T) {
	d, err := ParseStartDate("2026-10-18")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), d)
}
