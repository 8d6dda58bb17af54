// Package leave holds the leave-request rules: known leave types, workday
// counting against a weekly schedule and holidays, and the request status
// machine.
package leave

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
)

const (
	TypeVacation  = "Vacation"
	TypeSick      = "Sick Leave"
	TypePersonal  = "Personal Leave"
	TypeBereave   = "Bereavement"
	TypeParental  = "Parental Leave"
	TypeJuryDuty  = "Jury Duty"
	TypeMilitary  = "Military Leave"
	maxRangeDays  = 366
	maxReasonSize = 2000
)

// Types lists the accepted leave types in display order.
var Types = []string{TypeVacation, TypeSick, TypePersonal, TypeBereave, TypeParental, TypeJuryDuty, TypeMilitary}

// IsValidType reports whether t is one of Types.
func IsValidType(t string) bool {
	for _, v := range Types {
		if v == t {
			return true
		}
	}
	return false
}

// Schedule marks which weekdays an employee works.
type Schedule [7]bool

// DefaultSchedule is Monday to Friday.
func DefaultSchedule() Schedule {
	var s Schedule
	for d := time.Monday; d <= time.Friday; d++ {
		s[d] = true
	}
	return s
}

// ParseSchedule builds a Schedule from day names ("Monday", "tue", ...).
// An empty list yields DefaultSchedule.
func ParseSchedule(days []string) (Schedule, error) {
	if len(days) == 0 {
		return DefaultSchedule(), nil
	}
	var s Schedule
	for _, name := range days {
		d, ok := parseWeekday(name)
		if !ok {
			return Schedule{}, fmt.Errorf("%w: unknown weekday %q", common.ErrorValidation, name)
		}
		s[d] = true
	}
	return s, nil
}

func parseWeekday(name string) (time.Weekday, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) < 3 {
		return 0, false
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, true
		}
	}
	return 0, false
}

// Workdays is the breakdown of a leave range.
type Workdays struct {
	Total    int          `json:"total_workdays"`
	ByYear   map[int]int  `json:"workdays_by_year"`
	Counted  []timex.Date `json:"dates_counted"`
	Holidays []timex.Date `json:"dates_excluded_as_holidays"`
}

// CountWorkdays counts the scheduled days in [start, end] that are not
// holidays. Holidays on unscheduled days are not reported.
func CountWorkdays(start, end timex.Date, schedule Schedule, holidays map[timex.Date]bool) Workdays {
	w := Workdays{ByYear: map[int]int{}}
	for d := start; !d.After(end); d = d.AddDays(1) {
		if !schedule[d.Weekday()] {
			continue
		}
		if holidays[d] {
			w.Holidays = append(w.Holidays, d)
			continue
		}
		w.Total++
		w.ByYear[d.Year]++
		w.Counted = append(w.Counted, d)
	}
	return w
}

// HolidayApplies reports whether h covers employee e.
func HolidayApplies(h models.Holiday, e *models.Employee) bool {
	switch h.AppliesTo {
	case "", models.HolidayAll:
		return true
	case models.HolidayDepartment:
		return e.DepartmentID != nil && *e.DepartmentID == h.Target
	case models.HolidayJobTitle:
		return strings.EqualFold(e.JobTitle, h.Target)
	case models.HolidayEmployee:
		return e.ID == h.Target
	default:
		return false
	}
}

// HolidaySet collects the dates of holidays that apply to e.
func HolidaySet(holidays []models.Holiday, e *models.Employee) map[timex.Date]bool {
	set := make(map[timex.Date]bool, len(holidays))
	for _, h := range holidays {
		if HolidayApplies(h, e) {
			set[h.Date] = true
		}
	}
	return set
}

// Validate checks a new request: known type, ordered dates, no past dates,
// bounded length and reason.
func Validate(r *models.LeaveRequest, today timex.Date) error {
	switch {
	case r.EmployeeID == "":
		return fmt.Errorf("%w: employee is required", common.ErrorValidation)
	case !IsValidType(r.LeaveType):
		return fmt.Errorf("%w: invalid leave type %q", common.ErrorValidation, r.LeaveType)
	case r.StartDate.IsZero() || r.EndDate.IsZero():
		return fmt.Errorf("%w: start and end dates are required", common.ErrorValidation)
	case r.EndDate.Before(r.StartDate):
		return fmt.Errorf("%w: end date must not be before start date", common.ErrorValidation)
	case r.StartDate.Before(today):
		return fmt.Errorf("%w: cannot request leave for past dates", common.ErrorValidation)
	case r.EndDate.DaysSince(r.StartDate) >= maxRangeDays:
		return fmt.Errorf("%w: leave range is longer than a year", common.ErrorValidation)
	case len(r.Reason) > maxReasonSize:
		return fmt.Errorf("%w: reason is too long", common.ErrorValidation)
	}
	return nil
}

// Overlaps reports whether two inclusive date ranges intersect.
func Overlaps(aStart, aEnd, bStart, bEnd timex.Date) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}

// Transition validates a status change.
//
//	Pending  → Approved | Rejected | Cancelled
//	Approved → Cancelled, only before the leave starts
func Transition(r *models.LeaveRequest, to string, today timex.Date) error {
	switch {
	case r.Status == models.LeavePending && (to == models.LeaveApproved || to == models.LeaveRejected || to == models.LeaveCancelled):
		return nil
	case r.Status == models.LeaveApproved && to == models.LeaveCancelled:
		if !today.Before(r.StartDate) {
			return fmt.Errorf("%w: leave already started", common.ErrorInvalidState)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s → %s", common.ErrorInvalidState, r.Status, to)
	}
}

// Balance computes the remaining allowance of one leave type for a year.
// Requests spanning two years only count the days inside year.
func Balance(policy models.LeavePolicy, year int, requests []Counted) models.LeaveBalance {
	b := models.LeaveBalance{LeaveType: policy.LeaveType, Allowance: policy.DaysPerYear}
	for _, r := range requests {
		if r.Request.LeaveType != policy.LeaveType {
			continue
		}
		days := r.Workdays.ByYear[year]
		switch r.Request.Status {
		case models.LeaveApproved:
			b.Used += days
		case models.LeavePending:
			b.Pending += days
		}
	}
	b.Remaining = b.Allowance - b.Used
	return b
}

// Counted pairs a request with its workday breakdown.
type Counted struct {
	Request  *models.LeaveRequest
	Workdays Workdays
}
