package leave

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/dbx"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
)

func (r *PostgresRepository) ListPolicies(ctx context.Context) ([]*models.LeavePolicy, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT leave_type, days_per_year FROM leave_policies ORDER BY leave_type`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.LeavePolicy
	for rows.Next() {
		p := &models.LeavePolicy{}
		if err := rows.Scan(&p.LeaveType, &p.DaysPerYear); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *PostgresRepository) SavePolicy(ctx context.Context, p *models.LeavePolicy) error {
	query := `
		INSERT INTO leave_policies (leave_type, days_per_year) VALUES ($1, $2)
		ON CONFLICT (leave_type) DO UPDATE SET days_per_year = EXCLUDED.days_per_year
	`
	if _, err := r.db.ExecContext(ctx, query, p.LeaveType, p.DaysPerYear); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListHolidays(ctx context.Context, from, to timex.Date) ([]*models.Holiday, error) {
	query := `
		SELECT id, name, date, applies_to, target FROM holidays
		WHERE date BETWEEN $1 AND $2
		ORDER BY date, name
	`
	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Holiday
	for rows.Next() {
		h := &models.Holiday{}
		if err := rows.Scan(&h.ID, &h.Name, &h.Date, &h.AppliesTo, &h.Target); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, h)
	}
	return result, rows.Err()
}

func (r *PostgresRepository) CreateHoliday(ctx context.Context, h *models.Holiday) (*models.Holiday, error) {
	query := `INSERT INTO holidays (name, date, applies_to, target) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, h.Name, h.Date, h.AppliesTo, h.Target).Scan(&h.ID); err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return h, nil
}

func (r *PostgresRepository) DeleteHoliday(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM holidays WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
