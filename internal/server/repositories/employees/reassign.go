package employees

import (
	"context"
	"fmt"
)

// reassignments run in order. Each statement takes $1 = source and
// $2 = target employee id.
var reassignments = []struct {
	table string
	query string
}{
	{"time_entries", `UPDATE time_entries t SET employee_id = $2 WHERE t.employee_id = $1
		AND NOT EXISTS (SELECT 1 FROM time_entries o WHERE o.employee_id = $2 AND o.work_date = t.work_date)`},
	{"commissions", `UPDATE commissions c SET employee_id = $2 WHERE c.employee_id = $1
		AND NOT EXISTS (SELECT 1 FROM commissions o WHERE o.employee_id = $2 AND o.period_start = c.period_start
			AND o.period_end = c.period_end AND o.kind = c.kind)`},
	{"payrolls", `UPDATE payrolls p SET employee_id = $2 WHERE p.employee_id = $1
		AND NOT EXISTS (SELECT 1 FROM payrolls o WHERE o.employee_id = $2 AND o.period_start = p.period_start
			AND o.period_end = p.period_end)`},
	{"vacation_payouts", `UPDATE vacation_payouts SET employee_id = $2 WHERE employee_id = $1`},
	{"leave_requests", `UPDATE leave_requests SET employee_id = $2 WHERE employee_id = $1`},
	{"benefit_enrollments", `UPDATE benefit_enrollments SET employee_id = $2 WHERE employee_id = $1`},
	{"documents", `UPDATE documents SET employee_id = $2 WHERE employee_id = $1`},
	{"users", `UPDATE users SET employee_id = $2 WHERE employee_id = $1`},
}

// leftovers are the colliding rows that stayed with the source.
var leftovers = []string{
	`DELETE FROM time_entries WHERE employee_id = $1`,
	`DELETE FROM commissions WHERE employee_id = $1`,
	`DELETE FROM payrolls WHERE employee_id = $1`,
}

// Reassign should run inside a transaction.
func (r *PostgresRepository) Reassign(ctx context.Context, fromID, toID string) (map[string]int64, error) {
	moved := make(map[string]int64, len(reassignments))
	for _, ra := range reassignments {
		res, err := r.db.ExecContext(ctx, ra.query, fromID, toID)
		if err != nil {
			return nil, fmt.Errorf("db error: reassign %s: %w", ra.table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("rows affected error: %w", err)
		}
		moved[ra.table] = n
	}
	for _, q := range leftovers {
		if _, err := r.db.ExecContext(ctx, q, fromID); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
	}
	return moved, nil
}
