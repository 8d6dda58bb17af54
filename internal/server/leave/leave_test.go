package leave

import (
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var d = timex.MustParseDate

func TestParseSchedule(t *testing.T) {
	s, err := ParseSchedule(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultSchedule(), s)
	assert.False(t, s[time.Saturday])
	assert.True(t, s[time.Monday])

	s, err = ParseSchedule([]string{"Saturday", "sun", " TUESDAY "})
	require.NoError(t, err)
	assert.True(t, s[time.Saturday])
	assert.True(t, s[time.Sunday])
	assert.True(t, s[time.Tuesday])
	assert.False(t, s[time.Monday])

	_, err = ParseSchedule([]string{"Funday"})
	assert.ErrorIs(t, err, common.ErrorValidation)
	_, err = ParseSchedule([]string{"mo"})
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestCountWorkdays(t *testing.T) {
	// Mon Dec 22 2025 .. Fri Jan 2 2026, Christmas, Boxing Day and New Year off.
	holidays := map[timex.Date]bool{
		d("2025-12-25"): true,
		d("2025-12-26"): true,
		d("2026-01-01"): true,
		d("2025-12-27"): true, // Saturday, not scheduled
	}
	w := CountWorkdays(d("2025-12-22"), d("2026-01-02"), DefaultSchedule(), holidays)

	assert.Equal(t, 7, w.Total)
	assert.Equal(t, map[int]int{2025: 6, 2026: 1}, w.ByYear)
	assert.Equal(t, []timex.Date{d("2025-12-25"), d("2025-12-26"), d("2026-01-01")}, w.Holidays)
	assert.Len(t, w.Counted, 7)
}

func TestCountWorkdays_SingleDayAndWeekend(t *testing.T) {
	assert.Equal(t, 1, CountWorkdays(d("2025-09-01"), d("2025-09-01"), DefaultSchedule(), nil).Total)
	assert.Equal(t, 0, CountWorkdays(d("2025-09-06"), d("2025-09-07"), DefaultSchedule(), nil).Total)
	weekend, _ := ParseSchedule([]string{"Saturday", "Sunday"})
	assert.Equal(t, 2, CountWorkdays(d("2025-09-06"), d("2025-09-07"), weekend, nil).Total)
}

func TestHolidayApplies(t *testing.T) {
	dept := "d1"
	e := &models.Employee{ID: "e1", DepartmentID: &dept, JobTitle: "Driver"}

	assert.True(t, HolidayApplies(models.Holiday{AppliesTo: models.HolidayAll}, e))
	assert.True(t, HolidayApplies(models.Holiday{}, e))
	assert.True(t, HolidayApplies(models.Holiday{AppliesTo: models.HolidayDepartment, Target: "d1"}, e))
	assert.False(t, HolidayApplies(models.Holiday{AppliesTo: models.HolidayDepartment, Target: "d2"}, e))
	assert.True(t, HolidayApplies(models.Holiday{AppliesTo: models.HolidayJobTitle, Target: "driver"}, e))
	assert.True(t, HolidayApplies(models.Holiday{AppliesTo: models.HolidayEmployee, Target: "e1"}, e))
	assert.False(t, HolidayApplies(models.Holiday{AppliesTo: models.HolidayEmployee, Target: "e2"}, e))
	assert.False(t, HolidayApplies(models.Holiday{AppliesTo: models.HolidayDepartment, Target: "d1"}, &models.Employee{}))

	set := HolidaySet([]models.Holiday{
		{Date: d("2025-12-25"), AppliesTo: models.HolidayAll},
		{Date: d("2025-12-26"), AppliesTo: models.HolidayEmployee, Target: "e2"},
	}, e)
	assert.Equal(t, map[timex.Date]bool{d("2025-12-25"): true}, set)
}

func TestValidate(t *testing.T) {
	today := d("2025-09-10")
	valid := func() *models.LeaveRequest {
		return &models.LeaveRequest{EmployeeID: "e1", LeaveType: TypeVacation, StartDate: d("2025-09-15"), EndDate: d("2025-09-19")}
	}

	require.NoError(t, Validate(valid(), today))

	sameDay := valid()
	sameDay.StartDate, sameDay.EndDate = today, today
	require.NoError(t, Validate(sameDay, today))

	tests := map[string]func(r *models.LeaveRequest){
		"no employee": func(r *models.LeaveRequest) { r.EmployeeID = "" },
		"bad type":    func(r *models.LeaveRequest) { r.LeaveType = "Beach Day" },
		"no dates":    func(r *models.LeaveRequest) { r.EndDate = timex.Date{} },
		"reversed":    func(r *models.LeaveRequest) { r.EndDate = d("2025-09-14") },
		"past":        func(r *models.LeaveRequest) { r.StartDate = d("2025-09-09") },
		"too long":    func(r *models.LeaveRequest) { r.EndDate = d("2026-09-20") },
		"long reason": func(r *models.LeaveRequest) { r.Reason = strings.Repeat("x", 2001) },
	}
	for name, mutate := range tests {
		r := valid()
		mutate(r)
		assert.ErrorIs(t, Validate(r, today), common.ErrorValidation, name)
	}
}

func TestOverlaps(t *testing.T) {
	assert.True(t, Overlaps(d("2025-09-01"), d("2025-09-05"), d("2025-09-05"), d("2025-09-10")))
	assert.True(t, Overlaps(d("2025-09-01"), d("2025-09-30"), d("2025-09-05"), d("2025-09-10")))
	assert.False(t, Overlaps(d("2025-09-01"), d("2025-09-04"), d("2025-09-05"), d("2025-09-10")))
	assert.False(t, Overlaps(d("2025-09-11"), d("2025-09-12"), d("2025-09-05"), d("2025-09-10")))
}

func TestTransition(t *testing.T) {
	today := d("2025-09-10")
	pending := &models.LeaveRequest{Status: models.LeavePending, StartDate: d("2025-09-15")}
	approvedFuture := &models.LeaveRequest{Status: models.LeaveApproved, StartDate: d("2025-09-15")}
	approvedStarted := &models.LeaveRequest{Status: models.LeaveApproved, StartDate: today}
	rejected := &models.LeaveRequest{Status: models.LeaveRejected, StartDate: d("2025-09-15")}

	assert.NoError(t, Transition(pending, models.LeaveApproved, today))
	assert.NoError(t, Transition(pending, models.LeaveRejected, today))
	assert.NoError(t, Transition(pending, models.LeaveCancelled, today))
	assert.NoError(t, Transition(approvedFuture, models.LeaveCancelled, today))

	assert.ErrorIs(t, Transition(approvedStarted, models.LeaveCancelled, today), common.ErrorInvalidState)
	assert.ErrorIs(t, Transition(approvedFuture, models.LeaveRejected, today), common.ErrorInvalidState)
	assert.ErrorIs(t, Transition(rejected, models.LeaveApproved, today), common.ErrorInvalidState)
	assert.ErrorIs(t, Transition(pending, models.LeavePending, today), common.ErrorInvalidState)
}

func TestBalance(t *testing.T) {
	policy := models.LeavePolicy{LeaveType: TypeVacation, DaysPerYear: 10}
	reqs := []Counted{
		{Request: &models.LeaveRequest{LeaveType: TypeVacation, Status: models.LeaveApproved}, Workdays: Workdays{ByYear: map[int]int{2025: 3, 2026: 2}}},
		{Request: &models.LeaveRequest{LeaveType: TypeVacation, Status: models.LeavePending}, Workdays: Workdays{ByYear: map[int]int{2025: 2}}},
		{Request: &models.LeaveRequest{LeaveType: TypeVacation, Status: models.LeaveRejected}, Workdays: Workdays{ByYear: map[int]int{2025: 4}}},
		{Request: &models.LeaveRequest{LeaveType: TypeSick, Status: models.LeaveApproved}, Workdays: Workdays{ByYear: map[int]int{2025: 1}}},
	}

	b := Balance(policy, 2025, reqs)
	assert.Equal(t, models.LeaveBalance{LeaveType: TypeVacation, Allowance: 10, Used: 3, Pending: 2, Remaining: 7}, b)
}
