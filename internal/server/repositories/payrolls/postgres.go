package payrolls

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/dbx"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
	"github.com/shopspring/decimal"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const payrollColumns = `p.id, p.employee_id, e.first_name || ' ' || e.last_name, p.period_start, p.period_end, p.pay_date,
	p.regular_hours, p.overtime_hours, p.hourly_rate, p.regular_pay, p.overtime_pay, p.commissions, p.bonuses,
	p.gross_pay, p.deductions, p.net_pay, p.vacation_hours_accrued, p.vacation_pay_accrued,
	p.status, p.approved_by, p.approved_at, p.paid_at, p.notes, p.created_at, p.updated_at`

const selectPayrolls = `SELECT ` + payrollColumns + ` FROM payrolls p JOIN employees e ON e.id = p.employee_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanPayroll(s scanner) (*models.Payroll, error) {
	p := &models.Payroll{}
	var approvedBy sql.NullString
	var approvedAt, paidAt sql.NullTime
	err := s.Scan(&p.ID, &p.EmployeeID, &p.EmployeeName, &p.PeriodStart, &p.PeriodEnd, &p.PayDate,
		&p.RegularHours, &p.OvertimeHours, &p.HourlyRate, &p.RegularPay, &p.OvertimePay, &p.Commissions, &p.Bonuses,
		&p.GrossPay, &p.Deductions, &p.NetPay, &p.VacationHoursAccrued, &p.VacationPayAccrued,
		&p.Status, &approvedBy, &approvedAt, &paidAt, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.EmployeeName = strings.TrimSpace(p.EmployeeName)
	if approvedBy.Valid {
		p.ApprovedBy = &approvedBy.String
	}
	if approvedAt.Valid {
		p.ApprovedAt = &approvedAt.Time
	}
	if paidAt.Valid {
		p.PaidAt = &paidAt.Time
	}
	return p, nil
}

func (r *PostgresRepository) Save(ctx context.Context, p *models.Payroll) (bool, error) {
	query := `
		INSERT INTO payrolls (employee_id, period_start, period_end, pay_date, regular_hours, overtime_hours,
			hourly_rate, regular_pay, overtime_pay, commissions, bonuses, gross_pay, deductions, net_pay,
			vacation_hours_accrued, vacation_pay_accrued, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (employee_id, period_start, period_end) DO UPDATE SET
			pay_date = EXCLUDED.pay_date, regular_hours = EXCLUDED.regular_hours,
			overtime_hours = EXCLUDED.overtime_hours, hourly_rate = EXCLUDED.hourly_rate,
			regular_pay = EXCLUDED.regular_pay, overtime_pay = EXCLUDED.overtime_pay,
			commissions = EXCLUDED.commissions, bonuses = EXCLUDED.bonuses, gross_pay = EXCLUDED.gross_pay,
			deductions = EXCLUDED.deductions, net_pay = EXCLUDED.net_pay,
			vacation_hours_accrued = EXCLUDED.vacation_hours_accrued,
			vacation_pay_accrued = EXCLUDED.vacation_pay_accrued, notes = EXCLUDED.notes, updated_at = now()
		WHERE payrolls.status = 'Draft'
		RETURNING id, status, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		p.EmployeeID, p.PeriodStart, p.PeriodEnd, p.PayDate, p.RegularHours, p.OvertimeHours,
		p.HourlyRate, p.RegularPay, p.OvertimePay, p.Commissions, p.Bonuses, p.GrossPay, p.Deductions, p.NetPay,
		p.VacationHoursAccrued, p.VacationPayAccrued, p.Notes,
	).Scan(&p.ID, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	return true, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Payroll, error) {
	p, err := scanPayroll(r.db.QueryRowContext(ctx, selectPayrolls+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context, f models.PayrollFilter) ([]*models.Payroll, error) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.EmployeeID != "" {
		where = append(where, "p.employee_id = "+arg(f.EmployeeID))
	}
	if !f.PeriodStart.IsZero() {
		where = append(where, "p.period_start >= "+arg(f.PeriodStart))
	}
	if !f.PeriodEnd.IsZero() {
		where = append(where, "p.period_end <= "+arg(f.PeriodEnd))
	}
	if f.Status != "" {
		where = append(where, "p.status = "+arg(f.Status))
	}

	query := selectPayrolls
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY p.period_start DESC, e.last_name, e.first_name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Payroll
	for rows.Next() {
		p, err := scanPayroll(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// transition reports ErrorInvalidState when no row in the expected status
// was touched; callers look the payroll up first to tell it from NotFound.
func transition(res sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorInvalidState
	}
	return nil
}

func (r *PostgresRepository) Approve(ctx context.Context, id, approvedBy string) error {
	query := `
		UPDATE payrolls SET status = 'Approved', approved_by = $2, approved_at = now(), updated_at = now()
		WHERE id = $1 AND status = 'Draft'
	`
	return transition(r.db.ExecContext(ctx, query, id, approvedBy))
}

func (r *PostgresRepository) BulkApprove(ctx context.Context, start, end timex.Date, approvedBy string) (int64, error) {
	query := `
		UPDATE payrolls SET status = 'Approved', approved_by = $3, approved_at = now(), updated_at = now()
		WHERE period_start = $1 AND period_end = $2 AND status = 'Draft'
	`
	res, err := r.db.ExecContext(ctx, query, start, end, approvedBy)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}

func (r *PostgresRepository) MarkPaid(ctx context.Context, id string) error {
	query := `UPDATE payrolls SET status = 'Paid', paid_at = now(), updated_at = now() WHERE id = $1 AND status = 'Approved'`
	return transition(r.db.ExecContext(ctx, query, id))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	return transition(r.db.ExecContext(ctx, `DELETE FROM payrolls WHERE id = $1 AND status = 'Draft'`, id))
}

func (r *PostgresRepository) Summary(ctx context.Context, start, end timex.Date) (*models.PayrollSummary, error) {
	query := `
		SELECT status, COUNT(*), COALESCE(SUM(regular_hours), 0), COALESCE(SUM(overtime_hours), 0),
			COALESCE(SUM(gross_pay), 0), COALESCE(SUM(deductions), 0), COALESCE(SUM(net_pay), 0),
			COALESCE(SUM(vacation_hours_accrued), 0), COALESCE(SUM(vacation_pay_accrued), 0)
		FROM payrolls WHERE period_start = $1 AND period_end = $2
		GROUP BY status
	`
	rows, err := r.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	s := &models.PayrollSummary{PeriodStart: start, PeriodEnd: end, ByStatus: map[string]int{}}
	for rows.Next() {
		var status string
		var count int
		var reg, ot, gross, ded, net, vacHours, vacPay decimal.Decimal
		if err := rows.Scan(&status, &count, &reg, &ot, &gross, &ded, &net, &vacHours, &vacPay); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		s.ByStatus[status] = count
		s.Employees += count
		s.RegularHours = s.RegularHours.Add(reg)
		s.OvertimeHours = s.OvertimeHours.Add(ot)
		s.GrossPay = s.GrossPay.Add(gross)
		s.Deductions = s.Deductions.Add(ded)
		s.NetPay = s.NetPay.Add(net)
		s.VacationHoursAccrued = s.VacationHoursAccrued.Add(vacHours)
		s.VacationPayAccrued = s.VacationPayAccrued.Add(vacPay)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}
