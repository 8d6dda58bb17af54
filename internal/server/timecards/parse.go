// Package timecards turns spreadsheet exports of time clocks and sales
// reports into time entries and commission rows ready for import.
package timecards

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var (
	reTime12   = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?\s*(AM|PM|A|P)$`)
	reTime24   = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)
	reSlash    = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2}|\d{4})$`)
	reISO      = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	reAnyDate  = regexp.MustCompile(`\d{1,2}[-/]\d{1,2}[-/]\d{4}`)
	reDuration = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01-02-06",
	"1-2-06",
	"01-02-2006",
	"1-2-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Mon, Jan 2, 2006",
	"Monday, January 2, 2006",
	"2-Jan-2006",
	"2-Jan-06",
}

// ParseTime reads a clock time ("9:05 AM", "17:30", "5:30:00 PM") and
// returns it as "HH:MM:SS".
func ParseTime(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" || s == "-" || s == "N/A" {
		return "", false
	}

	if m := reTime12.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		if h < 1 || h > 12 || min > 59 {
			return "", false
		}
		pm := strings.HasPrefix(m[4], "P")
		switch {
		case pm && h != 12:
			h += 12
		case !pm && h == 12:
			h = 0
		}
		return fmt.Sprintf("%02d:%02d:00", h, min), true
	}

	if m := reTime24.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		if h > 23 || min > 59 {
			return "", false
		}
		return fmt.Sprintf("%02d:%02d:00", h, min), true
	}

	return "", false
}

// ParseDate accepts ISO dates, US M/D/YYYY (D/M/YYYY when the first part
// cannot be a month), a handful of spelled-out layouts and Excel serial
// numbers. Years outside 2000-2100 are rejected.
func ParseDate(s string) (timex.Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return timex.Date{}, false
	}

	if m := reSlash.FindStringSubmatch(s); m != nil {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			y += 2000
		}
		month, day := a, b
		if a > 12 {
			month, day = b, a
		}
		return checkDate(y, month, day)
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		// Plain numbers outside this range are hours or years, not dates.
		if serial < 36526 || serial > 73051 {
			return timex.Date{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return timex.Date{}, false
		}
		return timex.DateOf(t), true
	}

	if len(s) > 10 && s[4] == '-' && (s[10] == 'T' || s[10] == ' ') {
		s = s[:10]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return checkDate(t.Year(), int(t.Month()), t.Day())
		}
	}
	return timex.Date{}, false
}

func checkDate(y, m, d int) (timex.Date, bool) {
	if y < 2000 || y > 2100 || m < 1 || m > 12 || d < 1 {
		return timex.Date{}, false
	}
	date := timex.NewDate(y, time.Month(m), d)
	if date.Day != d {
		return timex.Date{}, false
	}
	return date, true
}

// ParseHours reads a worked duration, either "H:MM" or a decimal between 0
// and 24, rounded to hundredths.
func ParseHours(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return decimal.Zero, false
	}

	if m := reDuration.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		if min > 59 || h > 24 {
			return decimal.Zero, false
		}
		return decimal.NewFromInt(int64(h)).Add(decimal.NewFromInt(int64(min)).Div(decimal.NewFromInt(60))).Round(2), true
	}

	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() || d.GreaterThan(decimal.NewFromInt(24)) {
		return decimal.Zero, false
	}
	return d.Round(2), true
}

// ShiftHours is the time between two "HH:MM:SS" clock readings. A clock-out
// earlier than the clock-in is an overnight shift.
func ShiftHours(in, out string) (decimal.Decimal, bool) {
	a, errA := time.Parse("15:04:05", in)
	b, errB := time.Parse("15:04:05", out)
	if errA != nil || errB != nil {
		return decimal.Zero, false
	}
	d := b.Sub(a)
	if d < 0 {
		d += 24 * time.Hour
	}
	return decimal.NewFromFloat(d.Hours()).Round(2), true
}

// ParsePeriod extracts the first two dates of a "Pay Period: ... to ..." line.
func ParsePeriod(s string) (start, end timex.Date, ok bool) {
	if iso := reISO.FindAllString(s, 2); len(iso) == 2 {
		start, ok1 := ParseDate(iso[0])
		end, ok2 := ParseDate(iso[1])
		if ok1 && ok2 && !end.Before(start) {
			return start, end, true
		}
	}
	if other := reAnyDate.FindAllString(s, 2); len(other) == 2 {
		start, ok1 := ParseDate(strings.ReplaceAll(other[0], "-", "/"))
		end, ok2 := ParseDate(strings.ReplaceAll(other[1], "-", "/"))
		if ok1 && ok2 && !end.Before(start) {
			return start, end, true
		}
	}
	return timex.Date{}, timex.Date{}, false
}

// ParseAmount reads a money cell such as "$1,234.50" or "(20.00)".
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return decimal.Zero, nil
	}
	neg := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")
	s = strings.Trim(s, "()")
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", common.ErrorValidation, s)
	}
	if neg {
		d = d.Neg()
	}
	return d.Round(2), nil
}
