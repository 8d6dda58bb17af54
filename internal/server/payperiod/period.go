// Package payperiod computes the biweekly payroll calendar. Periods run
// Monday through Sunday for 14 days and are paid on the Friday after they
// end.
package payperiod

import (
	"fmt"

	"github.com/dmitrijs2005/hrkeeper/internal/timex"
)

const (
	// PeriodsPerYear is the number of biweekly periods in a pay year.
	PeriodsPerYear = 26
	// PeriodDays is the length of a regular period.
	PeriodDays = 14
	// PayDateOffset is the number of days from period end (Sunday) to pay
	// date (Friday).
	PayDateOffset = 5
)

// Period statuses relative to "today".
const (
	StatusOpen       = "Open"
	StatusProcessing = "Processing"
	StatusClosed     = "Closed"
)

type Period struct {
	ID      int        `json:"id"`
	Number  int        `json:"period_number"`
	Year    int        `json:"year"`
	Name    string     `json:"period_name"`
	Label   string     `json:"label"`
	Start   timex.Date `json:"start_date"`
	End     timex.Date `json:"end_date"`
	PayDate timex.Date `json:"pay_date"`
	Status  string     `json:"status"`
}

// Contains reports whether d falls inside the period.
func (p Period) Contains(d timex.Date) bool {
	return d.Between(p.Start, p.End)
}

// StatusOn returns Closed when the period ended before today, Processing
// while today is inside it, and Open otherwise.
func (p Period) StatusOn(today timex.Date) string {
	switch {
	case p.End.Before(today):
		return StatusClosed
	case p.Contains(today):
		return StatusProcessing
	default:
		return StatusOpen
	}
}

func newPeriod(year, number int, start, end, today timex.Date) Period {
	p := Period{
		ID:      number,
		Number:  number,
		Year:    year,
		Name:    fmt.Sprintf("%d-%02d", year, number),
		Start:   start,
		End:     end,
		PayDate: end.AddDays(PayDateOffset),
	}
	p.Label = FormatRange(p)
	p.Status = p.StatusOn(today)
	return p
}

// FormatRange renders a period for humans: "Sep 1-14, 2025" within one
// month, "Dec 29 - Jan 11, 2026" across months or years.
func FormatRange(p Period) string {
	s, e := p.Start, p.End
	if s.Year == e.Year && s.Month == e.Month {
		return fmt.Sprintf("%s %d-%d, %d", s.Month.String()[:3], s.Day, e.Day, e.Year)
	}
	return fmt.Sprintf("%s %d - %s %d, %d", s.Month.String()[:3], s.Day, e.Month.String()[:3], e.Day, e.Year)
}
