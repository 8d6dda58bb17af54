package timeentries

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
)

// UpsertCommission replaces the amount of an existing commission of the
// same employee, period and kind.
func (r *PostgresRepository) UpsertCommission(ctx context.Context, c *models.Commission) error {
	query := `
		INSERT INTO commissions (employee_id, period_start, period_end, amount, kind, source, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (employee_id, period_start, period_end, kind)
		DO UPDATE SET amount = EXCLUDED.amount, source = EXCLUDED.source, notes = EXCLUDED.notes
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, c.EmployeeID, c.PeriodStart, c.PeriodEnd, c.Amount, c.Kind, c.Source, c.Notes).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListCommissions(ctx context.Context, employeeID string, start, end timex.Date) ([]*models.Commission, error) {
	query := `
		SELECT c.id, c.employee_id, e.first_name || ' ' || e.last_name, c.period_start, c.period_end,
			c.amount, c.kind, c.source, c.notes, c.created_at
		FROM commissions c JOIN employees e ON e.id = c.employee_id
		WHERE c.period_start >= $1 AND c.period_end <= $2 AND ($3 = '' OR c.employee_id::text = $3)
		ORDER BY e.last_name, e.first_name, c.kind
	`
	rows, err := r.db.QueryContext(ctx, query, start, end, employeeID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Commission
	for rows.Next() {
		c := &models.Commission{}
		if err := rows.Scan(&c.ID, &c.EmployeeID, &c.EmployeeName, &c.PeriodStart, &c.PeriodEnd,
			&c.Amount, &c.Kind, &c.Source, &c.Notes, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		c.EmployeeName = strings.TrimSpace(c.EmployeeName)
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *PostgresRepository) DeleteCommission(ctx context.Context, id string) error {
	return r.affected(r.db.ExecContext(ctx, `DELETE FROM commissions WHERE id = $1`, id))
}
