package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_Arithmetic(t *testing.T) {
	d := MustParseDate("2025-12-29")

	assert.Equal(t, "2026-01-11", d.AddDays(13).String())
	assert.Equal(t, "2025-12-28", d.AddDays(-1).String())
	assert.Equal(t, time.Monday, d.Weekday())
	assert.Equal(t, 13, d.AddDays(13).DaysSince(d))
	assert.Equal(t, -13, d.DaysSince(d.AddDays(13)))
}

func TestDate_DSTDoesNotShiftDays(t *testing.T) {
	// US DST starts 2025-03-09
	d := MustParseDate("2025-03-08")
	assert.Equal(t, "2025-03-10", d.AddDays(2).String())
	assert.Equal(t, 2, d.AddDays(2).DaysSince(d))
}

func TestDate_Compare(t *testing.T) {
	a := MustParseDate("2025-01-31")
	b := MustParseDate("2025-02-01")

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.True(t, a.Between(a, b))
	assert.True(t, b.Between(a, b))
	assert.False(t, a.AddDays(-1).Between(a, b))
}

func TestDate_StartOfWeek(t *testing.T) {
	tests := map[string]string{
		"2025-09-01": "2025-09-01", // Monday
		"2025-09-07": "2025-09-01", // Sunday
		"2025-09-03": "2025-09-01",
		"2026-01-01": "2025-12-29",
	}
	for in, want := range tests {
		assert.Equal(t, want, MustParseDate(in).StartOfWeek().String(), in)
	}
}

func TestDate_JSON(t *testing.T) {
	var v struct {
		A Date `json:"a"`
		B Date `json:"b"`
		C Date `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"2025-09-26","b":null,"c":"2025-09-26T10:00:00Z"}`), &v))
	assert.Equal(t, NewDate(2025, time.September, 26), v.A)
	assert.True(t, v.B.IsZero())
	assert.Equal(t, v.A, v.C)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"2025-09-26","b":null,"c":"2025-09-26"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"a":"26/09/2025"}`), &v))
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-02-03", d.String())

	require.NoError(t, d.Scan([]byte("2024-02-29")))
	assert.Equal(t, "2024-02-29", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))

	v, err := Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"90m"`), &d))
	assert.Equal(t, 90*time.Minute, d.Duration)

	require.NoError(t, json.Unmarshal([]byte(`1000000000`), &d))
	assert.Equal(t, time.Second, d.Duration)

	assert.Error(t, json.Unmarshal([]byte(`true`), &d))
	assert.Error(t, json.Unmarshal([]byte(`"forever"`), &d))
}
