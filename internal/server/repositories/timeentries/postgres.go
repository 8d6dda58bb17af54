package timeentries

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

const selectEntries = `SELECT t.id, t.employee_id, e.first_name || ' ' || e.last_name, t.work_date,
	t.clock_in, t.clock_out, t.hours, t.overtime_hours, t.status, t.source, t.notes, t.created_at
	FROM time_entries t JOIN employees e ON e.id = t.employee_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*models.TimeEntry, error) {
	t := &models.TimeEntry{}
	err := s.Scan(&t.ID, &t.EmployeeID, &t.EmployeeName, &t.WorkDate, &t.ClockIn, &t.ClockOut,
		&t.Hours, &t.OvertimeHours, &t.Status, &t.Source, &t.Notes, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.EmployeeName = strings.TrimSpace(t.EmployeeName)
	return t, nil
}

const insertEntry = `
	INSERT INTO time_entries (employee_id, work_date, clock_in, clock_out, hours, overtime_hours, status, source, notes)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

func entryArgs(e *models.TimeEntry) []any {
	return []any{e.EmployeeID, e.WorkDate, e.ClockIn, e.ClockOut, e.Hours, e.OvertimeHours, e.Status, e.Source, e.Notes}
}

func (r *PostgresRepository) Create(ctx context.Context, e *models.TimeEntry) (*models.TimeEntry, error) {
	err := r.db.QueryRowContext(ctx, insertEntry+` RETURNING id, created_at`, entryArgs(e)...).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) InsertIfAbsent(ctx context.Context, e *models.TimeEntry) (bool, error) {
	res, err := r.db.ExecContext(ctx, insertEntry+` ON CONFLICT (employee_id, work_date) DO NOTHING`, entryArgs(e)...)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.TimeEntry, error) {
	t, err := scanEntry(r.db.QueryRowContext(ctx, selectEntries+` WHERE t.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) List(ctx context.Context, f models.TimeEntryFilter) ([]*models.TimeEntry, error) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.EmployeeID != "" {
		where = append(where, "t.employee_id = "+arg(f.EmployeeID))
	}
	if !f.Start.IsZero() {
		where = append(where, "t.work_date >= "+arg(f.Start))
	}
	if !f.End.IsZero() {
		where = append(where, "t.work_date <= "+arg(f.End))
	}
	if f.Status != "" {
		where = append(where, "t.status = "+arg(f.Status))
	}

	query := selectEntries
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY t.work_date, e.last_name, e.first_name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.TimeEntry
	for rows.Next() {
		t, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) affected(res sql.Result, err error) error {
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
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

func (r *PostgresRepository) Update(ctx context.Context, e *models.TimeEntry) error {
	query := `
		UPDATE time_entries SET work_date = $2, clock_in = $3, clock_out = $4, hours = $5,
			overtime_hours = $6, status = $7, notes = $8
		WHERE id = $1
	`
	return r.affected(r.db.ExecContext(ctx, query, e.ID, e.WorkDate, e.ClockIn, e.ClockOut, e.Hours, e.OvertimeHours, e.Status, e.Notes))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	return r.affected(r.db.ExecContext(ctx, `DELETE FROM time_entries WHERE id = $1`, id))
}

func (r *PostgresRepository) Approve(ctx context.Context, start, end timex.Date, employeeID string) (int64, error) {
	query := `
		UPDATE time_entries SET status = 'Approved'
		WHERE status = 'Pending' AND work_date BETWEEN $1 AND $2 AND ($3 = '' OR employee_id::text = $3)
	`
	res, err := r.db.ExecContext(ctx, query, start, end, employeeID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}
