package timecards

import (
	"bytes"
	"testing"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func xlsxFixture(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, addr, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadRows_XLSX(t *testing.T) {
	buf := xlsxFixture(t, [][]any{
		{"Name", "Date", "Hours"},
		{"Jane Doe", "2025-09-01", "8"},
	})
	rows, err := ReadRows(buf, "September.XLSX")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Name", "Date", "Hours"}, {"Jane Doe", "2025-09-01", "8"}}, rows)
}

func TestReadRows_Errors(t *testing.T) {
	_, err := ReadRows(bytes.NewBufferString("not a workbook"), "tc.xlsx")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = ReadRows(xlsxFixture(t, nil), "empty.xlsx")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestParseSheet_Flat(t *testing.T) {
	rows := [][]string{
		{"Weekly export"},
		{},
		{"Employee Name", "Work Date", "Clock In", "Clock Out", "Total Hours", "Overtime", "Notes"},
		{"Jane Doe", "9/1/2025", "9:00 AM", "5:30 PM", "", "", "labour day"},
		{"John Smith", "2025-09-01", "22:00", "06:00", "", "1", ""},
		{"Jane Doe", "9/2/2025", "", "", "7:45", "", ""},
		{"", "9/3/2025", "", "", "8", "", ""},
		{"John Smith", "9/3/2025", "", "", "", "", ""},
	}
	s := ParseSheet(rows)

	require.Len(t, s.Entries, 3)
	assert.Equal(t, Entry{
		Row: 4, EmployeeName: "Jane Doe", Date: timex.MustParseDate("2025-09-01"),
		ClockIn: "09:00:00", ClockOut: "17:30:00", Hours: s.Entries[0].Hours, Notes: "labour day",
	}, s.Entries[0])
	assert.Equal(t, "8.5", s.Entries[0].Hours.String())
	assert.Equal(t, "8", s.Entries[1].Hours.String())
	assert.Equal(t, "1", s.Entries[1].Overtime.String())
	assert.Equal(t, "7.75", s.Entries[2].Hours.String())

	assert.Equal(t, []RowError{
		{Row: 7, Reason: "no employee for row"},
		{Row: 8, Employee: "John Smith", Reason: "no hours worked"},
	}, s.Errors)
}

func TestParseSheet_RejectsImpossibleHours(t *testing.T) {
	rows := [][]string{
		{"Name", "Date", "Hours", "Overtime"},
		{"Jane Doe", "2025-09-01", "4", "6"},
		{"Jane Doe", "2025-09-02", "24:30", ""},
		{"Jane Doe", "2025-09-03", "9", "1"},
	}
	s := ParseSheet(rows)

	require.Len(t, s.Entries, 1)
	assert.Equal(t, 4, s.Entries[0].Row)
	assert.Equal(t, []RowError{
		{Row: 2, Employee: "Jane Doe", Reason: "overtime must be between 0 and the hours worked"},
		{Row: 3, Employee: "Jane Doe", Reason: "hours must be between 0 and 24"},
	}, s.Errors)
}

func TestParseSheet_Sections(t *testing.T) {
	rows := [][]string{
		{"Pay Period: 2025-09-01 to 2025-09-14"},
		{"Employee:", "Jane Doe"},
		{"Day", "Date", "In", "Out", "Work Time", "Daily Total", "Note"},
		{"Mon", "09/01/2025", "09:00", "17:00", "", "8", ""},
		{"Tue", "09/02/2025", "09:00", "13:00", "", "", ""},
		{"Total Hours", "", "", "", "", "12", ""},
		{"Employee: John Smith"},
		{"Mon", "09/01/2025", "", "", "", "6", ""},
		{"Total Hours", "6"},
		{"Mary Major"},
		{"Wed", "09/03/2025", "", "", "", "4", ""},
	}
	s := ParseSheet(rows)

	assert.Equal(t, timex.MustParseDate("2025-09-01"), s.PeriodStart)
	assert.Equal(t, timex.MustParseDate("2025-09-14"), s.PeriodEnd)
	require.Len(t, s.Entries, 4)

	var names []string
	for _, e := range s.Entries {
		names = append(names, e.EmployeeName)
	}
	assert.Equal(t, []string{"Jane Doe", "Jane Doe", "John Smith", "Mary Major"}, names)
	assert.Equal(t, "4", s.Entries[1].Hours.String())
	assert.Empty(t, s.Errors)
}

func TestParseSheet_Empty(t *testing.T) {
	s := ParseSheet([][]string{{"nothing here"}})
	assert.Empty(t, s.Entries)
	assert.Equal(t, []string{"no time entries found"}, s.Warnings)
}

func TestParseCommissionSheet(t *testing.T) {
	rows := [][]string{
		{"Sales report September"},
		{"", "Name", "Deals", "Commission", "Bonus"},
		{"", "Jane Doe", "4", "$1,200.00", "100"},
		{"", "John Smith", "0", "0", ""},
		{"", "Mary Major", "2", "abc", ""},
		{"", "", "", "5", ""},
		{"", "Total", "6", "1200", "100"},
	}
	got, errs := ParseCommissionSheet(rows)

	require.Len(t, got, 2)
	assert.Equal(t, "Jane Doe", got[0].Name)
	assert.Equal(t, models.CommissionKindCommission, got[0].Kind)
	assert.Equal(t, "1200", got[0].Amount.String())
	assert.Equal(t, models.CommissionKindBonus, got[1].Kind)
	assert.Equal(t, 3, got[1].Row)

	require.Len(t, errs, 1)
	assert.Equal(t, 5, errs[0].Row)
	assert.Equal(t, "Mary Major", errs[0].Employee)
}

func TestParseCommissionSheet_NoHeader(t *testing.T) {
	got, errs := ParseCommissionSheet([][]string{{"a", "b"}})
	assert.Empty(t, got)
	require.Len(t, errs, 1)
}
