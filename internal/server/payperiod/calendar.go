package payperiod

import (
	"time"

	"github.com/dmitrijs2005/hrkeeper/internal/timex"
)

// Calendar generates payroll periods.
//
// By default each pay year starts on the first Monday of January and holds
// 26 periods. When the following year's first Monday is 371 days away
// instead of 364, the last period of the year is stretched to end on the
// Sunday before it, so every day belongs to exactly one period.
//
// A Calendar with a reference pay date instead runs an unbroken 14-day
// cycle through that Friday; a pay year then holds the periods paid in it,
// which is 27 in some years.
type Calendar struct {
	referencePayDate timex.Date
}

// NewCalendar returns the first-Monday-of-January calendar.
func NewCalendar() *Calendar {
	return &Calendar{}
}

// NewAnchoredCalendar returns a continuous calendar through a known pay date.
func NewAnchoredCalendar(referencePayDate timex.Date) *Calendar {
	return &Calendar{referencePayDate: referencePayDate}
}

// FirstMonday returns the first Monday of January of year.
func FirstMonday(year int) timex.Date {
	jan1 := timex.NewDate(year, time.January, 1)
	offset := (int(time.Monday) - int(jan1.Weekday()) + 7) % 7
	return jan1.AddDays(offset)
}

func (c *Calendar) anchored() bool {
	return !c.referencePayDate.IsZero()
}

// yearStart returns the start of period 1 of year.
func (c *Calendar) yearStart(year int) timex.Date {
	if !c.anchored() {
		return FirstMonday(year)
	}
	jan1 := timex.NewDate(year, time.January, 1)
	refStart := c.referencePayDate.AddDays(-PayDateOffset - PeriodDays + 1)
	// first cycle whose pay date is on or after Jan 1
	firstPay := c.referencePayDate.AddDays(floorDiv(jan1.DaysSince(c.referencePayDate)+PeriodDays-1, PeriodDays) * PeriodDays)
	return refStart.AddDays(firstPay.DaysSince(c.referencePayDate))
}

// Year returns the periods of year with statuses relative to today: 26 for
// the default calendar, 26 or 27 for an anchored one.
func (c *Calendar) Year(year int, today timex.Date) []Period {
	start := c.yearStart(year)
	next := c.yearStart(year + 1)

	periods := make([]Period, 0, PeriodsPerYear+1)
	for i := 0; ; i++ {
		s := start.AddDays(i * PeriodDays)
		if c.anchored() && !s.Before(next) {
			break
		}
		e := s.AddDays(PeriodDays - 1)
		if !c.anchored() && i == PeriodsPerYear-1 {
			e = next.AddDays(-1)
		}
		periods = append(periods, newPeriod(year, i+1, s, e, today))
		if !c.anchored() && i == PeriodsPerYear-1 {
			break
		}
	}
	return periods
}

// Containing returns the period that includes d.
func (c *Calendar) Containing(d, today timex.Date) Period {
	year := d.Year
	if d.Before(c.yearStart(year)) {
		year--
	} else if !d.Before(c.yearStart(year + 1)) {
		year++
	}

	periods := c.Year(year, today)
	idx := d.DaysSince(c.yearStart(year)) / PeriodDays
	if idx >= len(periods) {
		idx = len(periods) - 1
	}
	return periods[idx]
}

// Current returns the period containing today.
func (c *Calendar) Current(today timex.Date) Period {
	return c.Containing(today, today)
}

// Next returns the period after the current one.
func (c *Calendar) Next(today timex.Date) Period {
	cur := c.Current(today)
	return c.Containing(cur.End.AddDays(1), today)
}

// Around returns the periods of the previous, given and following year.
// IDs are renumbered from 1 so they stay unique in one listing.
func (c *Calendar) Around(center int, today timex.Date) []Period {
	out := make([]Period, 0, 3*PeriodsPerYear)
	for year := center - 1; year <= center+1; year++ {
		for _, p := range c.Year(year, today) {
			p.ID = len(out) + 1
			out = append(out, p)
		}
	}
	return out
}

// Find returns the period with exactly the given bounds.
func (c *Calendar) Find(start, end, today timex.Date) (Period, bool) {
	p := c.Containing(start, today)
	if p.Start == start && p.End == end {
		return p, true
	}
	return Period{}, false
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
