package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/server/leave"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
)

type LeaveService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewLeaveService(db *sql.DB, m repomanager.RepositoryManager) *LeaveService {
	return &LeaveService{db: db, repomanager: m, now: time.Now}
}

func (s *LeaveService) today() timex.Date {
	return timex.DateOf(s.now())
}

func scheduleOf(e *models.Employee) (leave.Schedule, error) {
	if strings.TrimSpace(e.WorkSchedule) == "" {
		return leave.DefaultSchedule(), nil
	}
	return leave.ParseSchedule(strings.Split(e.WorkSchedule, ","))
}

// Workdays counts the days of [start, end] the employee would be absent,
// skipping unscheduled weekdays and holidays that apply to them.
func (s *LeaveService) Workdays(ctx context.Context, employeeID string, start, end timex.Date) (leave.Workdays, error) {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return leave.Workdays{}, fmt.Errorf("%w: a valid date range is required", common.ErrorValidation)
	}
	emp, err := s.repomanager.Employees(s.db).Get(ctx, employeeID)
	if err != nil {
		return leave.Workdays{}, err
	}
	return s.workdays(ctx, emp, start, end)
}

func (s *LeaveService) workdays(ctx context.Context, emp *models.Employee, start, end timex.Date) (leave.Workdays, error) {
	schedule, err := scheduleOf(emp)
	if err != nil {
		return leave.Workdays{}, err
	}
	holidays, err := s.repomanager.Leave(s.db).ListHolidays(ctx, start, end)
	if err != nil {
		return leave.Workdays{}, err
	}
	flat := make([]models.Holiday, 0, len(holidays))
	for _, h := range holidays {
		flat = append(flat, *h)
	}
	return leave.CountWorkdays(start, end, schedule, leave.HolidaySet(flat, emp)), nil
}

// Submit files a pending request. Requests that overlap another pending or
// approved request of the same employee are refused.
func (s *LeaveService) Submit(ctx context.Context, r *models.LeaveRequest) (*models.LeaveRequest, leave.Workdays, error) {
	r.Reason = strings.TrimSpace(r.Reason)
	if err := leave.Validate(r, s.today()); err != nil {
		return nil, leave.Workdays{}, err
	}

	emp, err := s.repomanager.Employees(s.db).Get(ctx, r.EmployeeID)
	if err != nil {
		return nil, leave.Workdays{}, err
	}
	if emp.Status == common.EmployeeStatusTerminated {
		return nil, leave.Workdays{}, fmt.Errorf("%w: employee is terminated", common.ErrorInvalidState)
	}

	repo := s.repomanager.Leave(s.db)
	clash, err := repo.Overlapping(ctx, r.EmployeeID, r.StartDate, r.EndDate)
	if err != nil {
		return nil, leave.Workdays{}, err
	}
	if len(clash) > 0 {
		c := clash[0]
		return nil, leave.Workdays{}, fmt.Errorf("%w: overlaps %s %s request %s to %s",
			common.ErrorConflict, strings.ToLower(c.Status), c.LeaveType, c.StartDate, c.EndDate)
	}

	w, err := s.workdays(ctx, emp, r.StartDate, r.EndDate)
	if err != nil {
		return nil, leave.Workdays{}, err
	}
	if w.Total == 0 {
		return nil, w, fmt.Errorf("%w: the range holds no working days", common.ErrorValidation)
	}

	r.TotalDays = w.Total
	r.Status = models.LeavePending
	created, err := repo.Create(ctx, r)
	if err != nil {
		return nil, w, fmt.Errorf("error creating leave request: %w", err)
	}
	return created, w, nil
}

func (s *LeaveService) Get(ctx context.Context, id string) (*models.LeaveRequest, error) {
	return s.repomanager.Leave(s.db).Get(ctx, id)
}

func (s *LeaveService) List(ctx context.Context, f models.LeaveFilter) ([]*models.LeaveRequest, error) {
	return s.repomanager.Leave(s.db).List(ctx, f)
}

func (s *LeaveService) Pending(ctx context.Context) ([]*models.LeaveRequest, error) {
	return s.repomanager.Leave(s.db).List(ctx, models.LeaveFilter{Status: models.LeavePending})
}

// Review approves or rejects a pending request.
func (s *LeaveService) Review(ctx context.Context, id, status, reviewer, notes string) error {
	if status != models.LeaveApproved && status != models.LeaveRejected {
		return fmt.Errorf("%w: status must be %s or %s", common.ErrorValidation, models.LeaveApproved, models.LeaveRejected)
	}
	repo := s.repomanager.Leave(s.db)
	r, err := repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := leave.Transition(r, status, s.today()); err != nil {
		return err
	}
	return repo.Review(ctx, id, status, reviewer, strings.TrimSpace(notes))
}

// Cancel withdraws a pending request, or an approved one that has not
// started yet.
func (s *LeaveService) Cancel(ctx context.Context, id string) error {
	repo := s.repomanager.Leave(s.db)
	r, err := repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := leave.Transition(r, models.LeaveCancelled, s.today()); err != nil {
		return err
	}
	return repo.Cancel(ctx, id)
}

// Balances returns one balance per leave policy for year. Requests
// crossing New Year only count their days inside year.
func (s *LeaveService) Balances(ctx context.Context, employeeID string, year int) ([]models.LeaveBalance, error) {
	if year == 0 {
		year = s.today().Year
	}
	emp, err := s.repomanager.Employees(s.db).Get(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	repo := s.repomanager.Leave(s.db)
	policies, err := repo.ListPolicies(ctx)
	if err != nil {
		return nil, err
	}

	from, to := timex.NewDate(year, time.January, 1), timex.NewDate(year, time.December, 31)
	requests, err := repo.List(ctx, models.LeaveFilter{EmployeeID: employeeID, From: from, To: to})
	if err != nil {
		return nil, err
	}

	var counted []leave.Counted
	for _, r := range requests {
		if r.Status != models.LeaveApproved && r.Status != models.LeavePending {
			continue
		}
		w, err := s.workdays(ctx, emp, r.StartDate, r.EndDate)
		if err != nil {
			return nil, err
		}
		counted = append(counted, leave.Counted{Request: r, Workdays: w})
	}

	out := make([]models.LeaveBalance, 0, len(policies))
	for _, p := range policies {
		out = append(out, leave.Balance(*p, year, counted))
	}
	return out, nil
}

func (s *LeaveService) ListPolicies(ctx context.Context) ([]*models.LeavePolicy, error) {
	return s.repomanager.Leave(s.db).ListPolicies(ctx)
}

func (s *LeaveService) SavePolicy(ctx context.Context, p *models.LeavePolicy) error {
	if !leave.IsValidType(p.LeaveType) {
		return fmt.Errorf("%w: invalid leave type %q", common.ErrorValidation, p.LeaveType)
	}
	if p.DaysPerYear < 0 || p.DaysPerYear > 366 {
		return fmt.Errorf("%w: days per year out of range", common.ErrorValidation)
	}
	return s.repomanager.Leave(s.db).SavePolicy(ctx, p)
}

// Holidays lists holidays in [from, to]. Zero bounds default to the
// current year.
func (s *LeaveService) Holidays(ctx context.Context, from, to timex.Date) ([]*models.Holiday, error) {
	year := s.today().Year
	if from.IsZero() {
		from = timex.NewDate(year, time.January, 1)
	}
	if to.IsZero() {
		to = timex.NewDate(year, time.December, 31)
	}
	return s.repomanager.Leave(s.db).ListHolidays(ctx, from, to)
}

func (s *LeaveService) CreateHoliday(ctx context.Context, h *models.Holiday) (*models.Holiday, error) {
	h.Name = strings.TrimSpace(h.Name)
	if h.Name == "" || h.Date.IsZero() {
		return nil, fmt.Errorf("%w: name and date are required", common.ErrorValidation)
	}
	switch h.AppliesTo {
	case "":
		h.AppliesTo = models.HolidayAll
	case models.HolidayAll:
	case models.HolidayDepartment, models.HolidayJobTitle, models.HolidayEmployee:
		if strings.TrimSpace(h.Target) == "" {
			return nil, fmt.Errorf("%w: %s holidays need a target", common.ErrorValidation, h.AppliesTo)
		}
	default:
		return nil, fmt.Errorf("%w: unknown holiday scope %q", common.ErrorValidation, h.AppliesTo)
	}
	if h.AppliesTo == models.HolidayAll {
		h.Target = ""
	}
	return s.repomanager.Leave(s.db).CreateHoliday(ctx, h)
}

func (s *LeaveService) DeleteHoliday(ctx context.Context, id string) error {
	return s.repomanager.Leave(s.db).DeleteHoliday(ctx, id)
}
