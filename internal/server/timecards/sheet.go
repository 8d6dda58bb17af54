package timecards

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
	"github.com/shopspring/decimal"
)

// Entry is one parsed timecard line. Row is 1-based.
type Entry struct {
	Row          int
	EmployeeName string
	Date         timex.Date
	ClockIn      string
	ClockOut     string
	Hours        decimal.Decimal
	Overtime     decimal.Decimal
	Notes        string
}

// RowError reports a line that could not be used.
type RowError struct {
	Row      int    `json:"row"`
	Employee string `json:"employee,omitempty"`
	Reason   string `json:"reason"`
}

// Sheet is the result of parsing a timecard export.
type Sheet struct {
	PeriodStart timex.Date
	PeriodEnd   timex.Date
	Entries     []Entry
	Errors      []RowError
	Warnings    []string
}

// Summary is returned to the caller of an import.
type Summary struct {
	File             string     `json:"file"`
	PeriodStart      timex.Date `json:"pay_period_start"`
	PeriodEnd        timex.Date `json:"pay_period_end"`
	EntriesInserted  int        `json:"entries_inserted"`
	EntriesSkipped   int        `json:"entries_skipped"`
	EmployeesMatched int        `json:"employees_matched"`
	EmployeesCreated int        `json:"employees_created"`
	Errors           []RowError `json:"errors"`
	Warnings         []string   `json:"warnings"`
}

type columns struct {
	name, date, in, out, hours, worked, overtime, notes int
}

func noColumns() columns {
	return columns{-1, -1, -1, -1, -1, -1, -1, -1}
}

// detectColumns maps header cells to fields. Unknown headers are ignored.
func detectColumns(row []string) columns {
	c := noColumns()
	set := func(dst *int, i int) {
		if *dst == -1 {
			*dst = i
		}
	}
	for i, cell := range row {
		h := strings.ToLower(strings.TrimSpace(cell))
		switch {
		case h == "":
		case strings.Contains(h, "overtime") || h == "ot" || h == "ot hours":
			set(&c.overtime, i)
		case strings.Contains(h, "date"):
			set(&c.date, i)
		case strings.Contains(h, "name") || h == "employee" || h == "agent":
			set(&c.name, i)
		case h == "in" || strings.Contains(h, "clock in") || strings.Contains(h, "time in") || h == "start":
			set(&c.in, i)
		case h == "out" || strings.Contains(h, "clock out") || strings.Contains(h, "time out") || h == "end":
			set(&c.out, i)
		case strings.Contains(h, "work") && strings.Contains(h, "time"):
			set(&c.worked, i)
		case strings.Contains(h, "total") || strings.Contains(h, "hours"):
			set(&c.hours, i)
		case strings.Contains(h, "note") || strings.Contains(h, "comment"):
			set(&c.notes, i)
		}
	}
	return c
}

func (c columns) isHeader() bool {
	return c.date >= 0 && (c.in >= 0 || c.out >= 0 || c.hours >= 0 || c.worked >= 0)
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func nonEmpty(row []string) []string {
	var out []string
	for _, c := range row {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// ParseSheet reads a timecard export. Two layouts are understood and may be
// mixed: a flat table with a name column, and repeated per-employee
// sections introduced by an "Employee: <name>" row (or a row holding only a
// name) and closed by a "Total Hours" row. The header row may sit anywhere
// and columns may come in any order.
func ParseSheet(rows [][]string) *Sheet {
	s := &Sheet{}
	cols := noColumns()
	current := ""

	for i, row := range rows {
		line := i + 1
		cells := nonEmpty(row)
		if len(cells) == 0 {
			continue
		}
		first := strings.ToLower(cells[0])

		if strings.Contains(first, "pay") && strings.Contains(first, "period") {
			if s.PeriodStart.IsZero() {
				if start, end, ok := ParsePeriod(strings.Join(cells, " ")); ok {
					s.PeriodStart, s.PeriodEnd = start, end
				} else {
					s.Warnings = append(s.Warnings, fmt.Sprintf("row %d: could not read pay period", line))
				}
			}
			continue
		}

		if detected := detectColumns(row); detected.isHeader() {
			cols = detected
			continue
		}

		if strings.HasPrefix(first, "employee") && cols.name < 0 {
			current = sectionName(cells)
			continue
		}

		if strings.Contains(first, "total") {
			current = ""
			continue
		}

		dateIdx := cols.date
		if dateIdx < 0 {
			dateIdx = 1
		}
		date, ok := ParseDate(cell(row, dateIdx))
		if !ok {
			if len(cells) == 1 && hasLetter(cells[0]) && cols.name < 0 {
				current = cells[0]
			}
			continue
		}

		name := current
		if cols.name >= 0 {
			name = cell(row, cols.name)
		}
		if name == "" {
			s.Errors = append(s.Errors, RowError{Row: line, Reason: "no employee for row"})
			continue
		}

		e := Entry{Row: line, EmployeeName: name, Date: date, Notes: cell(row, cols.notes)}
		e.ClockIn, _ = ParseTime(cell(row, cols.in))
		e.ClockOut, _ = ParseTime(cell(row, cols.out))

		hours, ok := ParseHours(cell(row, cols.hours))
		if !ok {
			hours, ok = ParseHours(cell(row, cols.worked))
		}
		if !ok && e.ClockIn != "" && e.ClockOut != "" {
			hours, ok = ShiftHours(e.ClockIn, e.ClockOut)
		}
		if !ok || hours.IsZero() {
			s.Errors = append(s.Errors, RowError{Row: line, Employee: name, Reason: "no hours worked"})
			continue
		}
		e.Hours = hours
		if ot, ok := ParseHours(cell(row, cols.overtime)); ok {
			e.Overtime = ot
		}
		if reason := checkHours(e.Hours, e.Overtime); reason != "" {
			s.Errors = append(s.Errors, RowError{Row: line, Employee: name, Reason: reason})
			continue
		}
		s.Entries = append(s.Entries, e)
	}

	if len(s.Entries) == 0 {
		s.Warnings = append(s.Warnings, "no time entries found")
	}
	return s
}

// MaxDailyHours bounds the hours of a single time entry.
var MaxDailyHours = decimal.NewFromInt(24)

// checkHours applies the limits payroll relies on: positive hours within a
// day and overtime no larger than the hours worked.
func checkHours(hours, overtime decimal.Decimal) string {
	switch {
	case !hours.IsPositive() || hours.GreaterThan(MaxDailyHours):
		return "hours must be between 0 and 24"
	case overtime.IsNegative() || overtime.GreaterThan(hours):
		return "overtime must be between 0 and the hours worked"
	}
	return ""
}

// sectionName picks the name out of "Employee: Jane Doe" or
// "Employee | Jane Doe".
func sectionName(cells []string) string {
	if _, after, ok := strings.Cut(cells[0], ":"); ok && strings.TrimSpace(after) != "" {
		return strings.TrimSpace(after)
	}
	if len(cells) > 1 {
		return cells[1]
	}
	return ""
}

// CommissionRow is one name/amount line of a sales report.
type CommissionRow struct {
	Row    int
	Name   string
	Amount decimal.Decimal
	Kind   string
}

// ParseCommissionSheet finds the header holding a name column next to a
// commission or amount column and reads the rows below it. A separate bonus
// column produces bonus rows.
func ParseCommissionSheet(rows [][]string) ([]CommissionRow, []RowError) {
	headerAt, nameCol, amountCol, bonusCol := -1, -1, -1, -1
	for i := 0; i < len(rows) && i < 300 && headerAt < 0; i++ {
		n, a, b := -1, -1, -1
		for j, c := range rows[i] {
			h := strings.ToLower(strings.TrimSpace(c))
			switch {
			case h == "name" || h == "employee" || h == "employee name" || h == "agent" || h == "agents":
				if n < 0 {
					n = j
				}
			case strings.Contains(h, "bonus"):
				if b < 0 {
					b = j
				}
			case strings.Contains(h, "commission") || h == "amount" || strings.Contains(h, "total due"):
				if a < 0 {
					a = j
				}
			}
		}
		if n >= 0 && (a >= 0 || b >= 0) {
			headerAt, nameCol, amountCol, bonusCol = i, n, a, b
		}
	}
	if headerAt < 0 {
		return nil, []RowError{{Row: 0, Reason: "no name and commission header found"}}
	}

	var out []CommissionRow
	var errs []RowError
	add := func(line int, name, raw, kind string) {
		if raw == "" {
			return
		}
		amt, err := ParseAmount(raw)
		if err != nil {
			errs = append(errs, RowError{Row: line, Employee: name, Reason: err.Error()})
			return
		}
		if amt.IsZero() {
			return
		}
		out = append(out, CommissionRow{Row: line, Name: name, Amount: amt, Kind: kind})
	}

	for i := headerAt + 1; i < len(rows); i++ {
		row := rows[i]
		name := cell(row, nameCol)
		if name == "" || !hasLetter(name) {
			continue
		}
		if l := strings.ToLower(name); strings.HasPrefix(l, "total") || strings.HasPrefix(l, "grand total") {
			continue
		}
		add(i+1, name, cell(row, amountCol), models.CommissionKindCommission)
		add(i+1, name, cell(row, bonusCol), models.CommissionKindBonus)
	}
	return out, errs
}
