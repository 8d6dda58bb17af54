package timecards

import (
	"testing"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePercent(t *testing.T) {
	for in, want := range map[string]string{"55": "55", "55.5%": "55.5", " 12 % ": "12", "": "0"} {
		got, err := ParsePercent(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got.String(), in)
	}
	for _, in := range []string{"abc", "-3", "120%"} {
		_, err := ParsePercent(in)
		assert.ErrorIs(t, err, common.ErrorValidation, in)
	}
}

func TestParseSalesSheet(t *testing.T) {
	rows := [][]string{
		{"Sales performance September"},
		{"Agent", "Leads", "Booking %", "Revenue"},
		{"Jane Doe", "40", "56%", "$260,000"},
		{"Bob", "12", "bad", "100"},
		{"Ann Lee", "3", "", ""},
		{"Total", "55", "", "$260,100"},
	}
	got, errs := ParseSalesSheet(rows)

	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].Row)
	assert.Equal(t, "Jane Doe", got[0].Name)
	assert.Equal(t, "56", got[0].BookingPct.String())
	assert.Equal(t, "260000", got[0].Revenue.String())
	assert.True(t, got[1].BookingPct.IsZero())

	require.Len(t, errs, 1)
	assert.Equal(t, 4, errs[0].Row)
	assert.Equal(t, "Bob", errs[0].Employee)
}

func TestParseSalesSheet_NoHeader(t *testing.T) {
	_, errs := ParseSalesSheet([][]string{{"Name", "Commission"}})
	require.Len(t, errs, 1)
	assert.Equal(t, 0, errs[0].Row)
}
