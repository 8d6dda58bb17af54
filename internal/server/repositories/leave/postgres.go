package leave

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
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectRequests = `SELECT l.id, l.employee_id, e.first_name || ' ' || e.last_name, l.leave_type,
	l.start_date, l.end_date, l.total_days, l.reason, l.status, l.reviewed_by, l.reviewed_at, l.review_notes, l.created_at
	FROM leave_requests l JOIN employees e ON e.id = l.employee_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(s scanner) (*models.LeaveRequest, error) {
	l := &models.LeaveRequest{}
	var reviewedBy sql.NullString
	var reviewedAt sql.NullTime
	err := s.Scan(&l.ID, &l.EmployeeID, &l.EmployeeName, &l.LeaveType, &l.StartDate, &l.EndDate, &l.TotalDays,
		&l.Reason, &l.Status, &reviewedBy, &reviewedAt, &l.ReviewNotes, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	l.EmployeeName = strings.TrimSpace(l.EmployeeName)
	if reviewedBy.Valid {
		l.ReviewedBy = &reviewedBy.String
	}
	if reviewedAt.Valid {
		l.ReviewedAt = &reviewedAt.Time
	}
	return l, nil
}

func (r *PostgresRepository) many(ctx context.Context, query string, args ...any) ([]*models.LeaveRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.LeaveRequest
	for rows.Next() {
		l, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, l *models.LeaveRequest) (*models.LeaveRequest, error) {
	query := `
		INSERT INTO leave_requests (employee_id, leave_type, start_date, end_date, total_days, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, l.EmployeeID, l.LeaveType, l.StartDate, l.EndDate, l.TotalDays, l.Reason, l.Status).
		Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return l, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.LeaveRequest, error) {
	l, err := scanRequest(r.db.QueryRowContext(ctx, selectRequests+` WHERE l.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return l, nil
}

func (r *PostgresRepository) List(ctx context.Context, f models.LeaveFilter) ([]*models.LeaveRequest, error) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.EmployeeID != "" {
		where = append(where, "l.employee_id = "+arg(f.EmployeeID))
	}
	if f.Status != "" {
		where = append(where, "l.status = "+arg(f.Status))
	}
	if !f.From.IsZero() {
		where = append(where, "l.end_date >= "+arg(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "l.start_date <= "+arg(f.To))
	}

	query := selectRequests
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY l.start_date DESC, l.created_at DESC"
	return r.many(ctx, query, args...)
}

func (r *PostgresRepository) Overlapping(ctx context.Context, employeeID string, start, end timex.Date) ([]*models.LeaveRequest, error) {
	query := selectRequests + `
		WHERE l.employee_id = $1 AND l.status IN ('Pending', 'Approved')
			AND l.start_date <= $3 AND l.end_date >= $2
		ORDER BY l.start_date`
	return r.many(ctx, query, employeeID, start, end)
}

func (r *PostgresRepository) Review(ctx context.Context, id, status, reviewer, notes string) error {
	query := `
		UPDATE leave_requests SET status = $2, reviewed_by = $3, reviewed_at = now(), review_notes = $4
		WHERE id = $1 AND status = 'Pending'
	`
	return transition(r.db.ExecContext(ctx, query, id, status, reviewer, notes))
}

func (r *PostgresRepository) Cancel(ctx context.Context, id string) error {
	query := `UPDATE leave_requests SET status = 'Cancelled' WHERE id = $1 AND status IN ('Pending', 'Approved')`
	return transition(r.db.ExecContext(ctx, query, id))
}

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
