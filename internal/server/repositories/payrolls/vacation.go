package payrolls

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
)

func (r *PostgresRepository) CreatePayout(ctx context.Context, p *models.VacationPayout) (*models.VacationPayout, error) {
	query := `
		INSERT INTO vacation_payouts (employee_id, hours, amount, payout_date, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, p.EmployeeID, p.Hours, p.Amount, p.PayoutDate, p.Notes).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) ListPayouts(ctx context.Context, employeeID string) ([]*models.VacationPayout, error) {
	query := `
		SELECT id, employee_id, hours, amount, payout_date, notes, created_at
		FROM vacation_payouts WHERE employee_id = $1
		ORDER BY payout_date DESC
	`
	rows, err := r.db.QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.VacationPayout
	for rows.Next() {
		p := &models.VacationPayout{}
		if err := rows.Scan(&p.ID, &p.EmployeeID, &p.Hours, &p.Amount, &p.PayoutDate, &p.Notes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *PostgresRepository) VacationBalances(ctx context.Context, employeeID string) ([]*models.VacationBalance, error) {
	query := `
		SELECT e.id, e.first_name || ' ' || e.last_name,
			COALESCE(a.hours, 0), COALESCE(a.pay, 0), COALESCE(v.hours, 0), COALESCE(v.amount, 0)
		FROM employees e
		LEFT JOIN (
			SELECT employee_id, SUM(vacation_hours_accrued) AS hours, SUM(vacation_pay_accrued) AS pay
			FROM payrolls WHERE status IN ('Approved', 'Paid') GROUP BY employee_id
		) a ON a.employee_id = e.id
		LEFT JOIN (
			SELECT employee_id, SUM(hours) AS hours, SUM(amount) AS amount
			FROM vacation_payouts GROUP BY employee_id
		) v ON v.employee_id = e.id
		WHERE ($1 = '' OR e.id::text = $1) AND (a.employee_id IS NOT NULL OR v.employee_id IS NOT NULL)
		ORDER BY e.last_name, e.first_name
	`
	rows, err := r.db.QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.VacationBalance
	for rows.Next() {
		b := &models.VacationBalance{}
		if err := rows.Scan(&b.EmployeeID, &b.EmployeeName, &b.HoursEarned, &b.PayEarned, &b.HoursPaid, &b.PayPaid); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		b.EmployeeName = strings.TrimSpace(b.EmployeeName)
		b.HoursBalance = b.HoursEarned.Sub(b.HoursPaid)
		b.PayBalance = b.PayEarned.Sub(b.PayPaid)
		result = append(result, b)
	}
	return result, rows.Err()
}
