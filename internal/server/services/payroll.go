package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/dbx"
	"github.com/dmitrijs2005/hrkeeper/internal/server/config"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/server/payperiod"
	"github.com/dmitrijs2005/hrkeeper/internal/server/payroll"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
	"github.com/shopspring/decimal"
)

// GenerateRequest selects the period and employees to calculate. A zero
// PayDate is taken from the pay calendar. Empty EmployeeIDs means everyone
// with approved time or commissions in the period.
type GenerateRequest struct {
	PeriodStart timex.Date `json:"pay_period_start"`
	PeriodEnd   timex.Date `json:"pay_period_end"`
	PayDate     timex.Date `json:"pay_date"`
	EmployeeIDs []string   `json:"employee_ids,omitempty"`
}

// GenerateResult reports a payroll run. Locked lists employees whose
// payroll for the period is already approved or paid and was left alone.
type GenerateResult struct {
	PeriodStart timex.Date        `json:"pay_period_start"`
	PeriodEnd   timex.Date        `json:"pay_period_end"`
	PayDate     timex.Date        `json:"pay_date"`
	Payrolls    []*models.Payroll `json:"payrolls"`
	Locked      []string          `json:"locked"`
	Totals      payroll.Totals    `json:"totals"`
}

type PayrollService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	calendar    *payperiod.Calendar
	rules       payroll.Rules
	now         func() time.Time
}

func NewPayrollService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) (*PayrollService, error) {
	cal := payperiod.NewCalendar()
	if cfg.PayrollReferencePayDate != "" {
		ref, err := timex.ParseDate(cfg.PayrollReferencePayDate)
		if err != nil {
			return nil, fmt.Errorf("invalid payroll reference pay date: %w", err)
		}
		cal = payperiod.NewAnchoredCalendar(ref)
	}
	return &PayrollService{
		db:          db,
		repomanager: m,
		calendar:    cal,
		rules:       payroll.NewRules(cfg.OvertimeWeeklyHours, cfg.OvertimeMultiplier, cfg.VacationAccrualRate),
		now:         time.Now,
	}, nil
}

func (s *PayrollService) today() timex.Date {
	return timex.DateOf(s.now())
}

// Periods returns the pay periods of year. A zero year lists the previous,
// current and next year.
func (s *PayrollService) Periods(year int) []payperiod.Period {
	today := s.today()
	if year == 0 {
		return s.calendar.Around(today.Year, today)
	}
	return s.calendar.Year(year, today)
}

func (s *PayrollService) CurrentPeriod() payperiod.Period {
	return s.calendar.Current(s.today())
}

func (s *PayrollService) NextPeriod() payperiod.Period {
	return s.calendar.Next(s.today())
}

// PeriodOf returns the period containing d.
func (s *PayrollService) PeriodOf(d timex.Date) payperiod.Period {
	return s.calendar.Containing(d, s.today())
}

// Generate calculates payroll for a period from approved time entries,
// commissions and benefit deductions. Draft payrolls are replaced; approved
// and paid ones are never touched.
func (s *PayrollService) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if req.PeriodStart.IsZero() || req.PeriodEnd.IsZero() || req.PeriodEnd.Before(req.PeriodStart) {
		return nil, fmt.Errorf("%w: a valid pay period is required", common.ErrorValidation)
	}
	if req.PayDate.IsZero() {
		if p, ok := s.calendar.Find(req.PeriodStart, req.PeriodEnd, s.today()); ok {
			req.PayDate = p.PayDate
		} else {
			req.PayDate = req.PeriodEnd.AddDays(payperiod.PayDateOffset)
		}
	}

	res := &GenerateResult{
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		PayDate:     req.PayDate,
		Payrolls:    []*models.Payroll{},
		Locked:      []string{},
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		inputs, err := s.collect(ctx, tx, req)
		if err != nil {
			return err
		}

		var results []payroll.Result
		employees := s.repomanager.Employees(tx)
		payrolls := s.repomanager.Payrolls(tx)
		for _, in := range inputs {
			emp, err := employees.Get(ctx, in.EmployeeID)
			if err != nil {
				return fmt.Errorf("employee %s: %w", in.EmployeeID, err)
			}
			in.HourlyRate = emp.HourlyRate

			r, err := payroll.Calculate(*in, s.rules)
			if err != nil {
				return err
			}
			p := newPayroll(r, req)
			p.EmployeeName = emp.FullName()

			saved, err := payrolls.Save(ctx, p)
			if err != nil {
				return err
			}
			if !saved {
				res.Locked = append(res.Locked, in.EmployeeID)
				continue
			}
			res.Payrolls = append(res.Payrolls, p)
			results = append(results, r)
		}
		res.Totals = payroll.Summarize(results)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error generating payroll: %w", err)
	}
	return res, nil
}

// collect gathers the calculator input of every employee in scope, in
// employee id order.
func (s *PayrollService) collect(ctx context.Context, tx dbx.DBTX, req GenerateRequest) ([]*payroll.Input, error) {
	inputs := map[string]*payroll.Input{}
	get := func(id string) *payroll.Input {
		in, ok := inputs[id]
		if !ok {
			in = &payroll.Input{EmployeeID: id}
			inputs[id] = in
		}
		return in
	}

	entries, err := s.repomanager.TimeEntries(tx).List(ctx, models.TimeEntryFilter{
		Start:  req.PeriodStart,
		End:    req.PeriodEnd,
		Status: models.TimeEntryApproved,
	})
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		in := get(e.EmployeeID)
		in.Entries = append(in.Entries, payroll.Entry{Date: e.WorkDate, Hours: e.Hours, OvertimeHours: e.OvertimeHours})
	}

	commissions, err := s.repomanager.TimeEntries(tx).ListCommissions(ctx, "", req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, err
	}
	for _, c := range commissions {
		in := get(c.EmployeeID)
		if c.Kind == models.CommissionKindBonus {
			in.Bonuses = in.Bonuses.Add(c.Amount)
		} else {
			in.Commissions = in.Commissions.Add(c.Amount)
		}
	}

	if len(req.EmployeeIDs) > 0 {
		wanted := make(map[string]*payroll.Input, len(req.EmployeeIDs))
		for _, id := range req.EmployeeIDs {
			wanted[id] = get(id)
		}
		inputs = wanted
	}

	enrollments, err := s.repomanager.Benefits(tx).ActiveEnrollments(ctx, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, err
	}
	// deductions alone do not put someone on the payroll
	for id, ds := range groupDeductions(enrollments) {
		if in, ok := inputs[id]; ok {
			in.Deductions = ds
		}
	}

	out := make([]*payroll.Input, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

func newPayroll(r payroll.Result, req GenerateRequest) *models.Payroll {
	return &models.Payroll{
		EmployeeID:           r.EmployeeID,
		PeriodStart:          req.PeriodStart,
		PeriodEnd:            req.PeriodEnd,
		PayDate:              req.PayDate,
		RegularHours:         r.RegularHours,
		OvertimeHours:        r.OvertimeHours,
		HourlyRate:           r.HourlyRate,
		RegularPay:           r.RegularPay,
		OvertimePay:          r.OvertimePay,
		Commissions:          r.Commissions,
		Bonuses:              r.Bonuses,
		GrossPay:             r.GrossPay,
		Deductions:           r.Deductions,
		NetPay:               r.NetPay,
		VacationHoursAccrued: r.VacationHours,
		VacationPayAccrued:   r.VacationPay,
		Status:               models.PayrollDraft,
	}
}

func (s *PayrollService) List(ctx context.Context, f models.PayrollFilter) ([]*models.Payroll, error) {
	return s.repomanager.Payrolls(s.db).List(ctx, f)
}

func (s *PayrollService) Get(ctx context.Context, id string) (*models.Payroll, error) {
	return s.repomanager.Payrolls(s.db).Get(ctx, id)
}

func (s *PayrollService) Approve(ctx context.Context, id, approvedBy string) error {
	return s.repomanager.Payrolls(s.db).Approve(ctx, id, approvedBy)
}

// BulkApprove approves every draft payroll of a period.
func (s *PayrollService) BulkApprove(ctx context.Context, start, end timex.Date, approvedBy string) (int64, error) {
	if start.IsZero() || end.IsZero() {
		return 0, fmt.Errorf("%w: pay period is required", common.ErrorValidation)
	}
	return s.repomanager.Payrolls(s.db).BulkApprove(ctx, start, end, approvedBy)
}

func (s *PayrollService) MarkPaid(ctx context.Context, id string) error {
	return s.repomanager.Payrolls(s.db).MarkPaid(ctx, id)
}

// Delete removes a draft payroll.
func (s *PayrollService) Delete(ctx context.Context, id string) error {
	return s.repomanager.Payrolls(s.db).Delete(ctx, id)
}

func (s *PayrollService) Summary(ctx context.Context, start, end timex.Date) (*models.PayrollSummary, error) {
	if start.IsZero() || end.IsZero() {
		p := s.CurrentPeriod()
		start, end = p.Start, p.End
	}
	return s.repomanager.Payrolls(s.db).Summary(ctx, start, end)
}

// VacationBalances returns accrued minus paid-out vacation. An empty
// employeeID lists everyone.
func (s *PayrollService) VacationBalances(ctx context.Context, employeeID string) ([]*models.VacationBalance, error) {
	return s.repomanager.Payrolls(s.db).VacationBalances(ctx, employeeID)
}

func (s *PayrollService) VacationBalance(ctx context.Context, employeeID string) (*models.VacationBalance, error) {
	list, err := s.VacationBalances(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return &models.VacationBalance{
			EmployeeID:   employeeID,
			HoursEarned:  decimal.Zero,
			PayEarned:    decimal.Zero,
			HoursPaid:    decimal.Zero,
			PayPaid:      decimal.Zero,
			HoursBalance: decimal.Zero,
			PayBalance:   decimal.Zero,
		}, nil
	}
	return list[0], nil
}

// VacationPayout pays out banked vacation hours at the employee's current
// rate, never more than the accrued pay balance.
func (s *PayrollService) VacationPayout(ctx context.Context, employeeID string, hours decimal.Decimal, date timex.Date, notes string) (*models.VacationPayout, error) {
	if !hours.IsPositive() {
		return nil, fmt.Errorf("%w: payout hours must be positive", common.ErrorValidation)
	}
	if date.IsZero() {
		date = s.today()
	}

	var out *models.VacationPayout
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		emp, err := s.repomanager.Employees(tx).Get(ctx, employeeID)
		if err != nil {
			return err
		}
		balances, err := s.repomanager.Payrolls(tx).VacationBalances(ctx, employeeID)
		if err != nil {
			return err
		}
		if len(balances) == 0 || hours.GreaterThan(balances[0].HoursBalance) {
			return fmt.Errorf("%w: payout exceeds the vacation balance", common.ErrorValidation)
		}

		amount := payroll.PayoutAmount(hours, emp.HourlyRate)
		if amount.GreaterThan(balances[0].PayBalance) {
			amount = balances[0].PayBalance
		}
		out, err = s.repomanager.Payrolls(tx).CreatePayout(ctx, &models.VacationPayout{
			EmployeeID: employeeID,
			Hours:      hours.Round(2),
			Amount:     amount,
			PayoutDate: date,
			Notes:      notes,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error paying out vacation: %w", err)
	}
	return out, nil
}

func (s *PayrollService) ListPayouts(ctx context.Context, employeeID string) ([]*models.VacationPayout, error) {
	return s.repomanager.Payrolls(s.db).ListPayouts(ctx, employeeID)
}
