package employees

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

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectEmployees = `SELECT e.id, e.first_name, e.last_name, e.nickname, e.email, e.phone,
	e.department_id, COALESCE(d.name, ''), e.job_title, e.hire_date, e.status, e.hourly_rate,
	e.onboarding_source, e.work_schedule, e.sin_encrypted, e.bank_encrypted,
	e.termination_date, e.termination_reason, e.created_at, e.updated_at
	FROM employees e LEFT JOIN departments d ON d.id = e.department_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(s scanner) (*models.Employee, error) {
	e := &models.Employee{}
	var dept sql.NullString
	err := s.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Nickname, &e.Email, &e.Phone,
		&dept, &e.DepartmentName, &e.JobTitle, &e.HireDate, &e.Status, &e.HourlyRate,
		&e.OnboardingSource, &e.WorkSchedule, &e.SINEncrypted, &e.BankEncrypted,
		&e.TerminationDate, &e.TerminationReason, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if dept.Valid {
		e.DepartmentID = &dept.String
	}
	return e, nil
}

func (r *PostgresRepository) one(ctx context.Context, query string, args ...any) (*models.Employee, error) {
	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) many(ctx context.Context, query string, args ...any) ([]*models.Employee, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, e *models.Employee) (*models.Employee, error) {
	query := `
		INSERT INTO employees (first_name, last_name, nickname, email, phone, department_id, job_title,
			hire_date, status, hourly_rate, onboarding_source, work_schedule, sin_encrypted, bank_encrypted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		e.FirstName, e.LastName, e.Nickname, e.Email, e.Phone, e.DepartmentID, e.JobTitle,
		e.HireDate, e.Status, e.HourlyRate, e.OnboardingSource, e.WorkSchedule, e.SINEncrypted, e.BankEncrypted,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Employee, error) {
	return r.one(ctx, selectEmployees+` WHERE e.id = $1`, id)
}

// List applies the filter; results are ordered by last then first name.
func (r *PostgresRepository) List(ctx context.Context, f models.EmployeeFilter) ([]*models.Employee, error) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Status != "" {
		where = append(where, "e.status = "+arg(f.Status))
	}
	if f.ExcludeTerminated {
		where = append(where, "e.status <> "+arg(common.EmployeeStatusTerminated))
	}
	if f.DepartmentID != "" {
		where = append(where, "e.department_id = "+arg(f.DepartmentID))
	}
	if f.Search != "" {
		p := arg("%" + strings.ToLower(f.Search) + "%")
		where = append(where, fmt.Sprintf("(lower(e.first_name || ' ' || e.last_name) LIKE %s OR lower(e.email) LIKE %s OR lower(e.nickname) LIKE %s)", p, p, p))
	}

	query := selectEmployees
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY e.last_name, e.first_name"
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit)
	}
	if f.Offset > 0 {
		query += " OFFSET " + arg(f.Offset)
	}
	return r.many(ctx, query, args...)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
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

func (r *PostgresRepository) Update(ctx context.Context, e *models.Employee) error {
	query := `
		UPDATE employees SET first_name = $2, last_name = $3, nickname = $4, email = $5, phone = $6,
			department_id = $7, job_title = $8, hire_date = $9, status = $10, hourly_rate = $11,
			onboarding_source = $12, work_schedule = $13, sin_encrypted = $14, bank_encrypted = $15,
			updated_at = now()
		WHERE id = $1
	`
	return r.exec(ctx, query, e.ID, e.FirstName, e.LastName, e.Nickname, e.Email, e.Phone,
		e.DepartmentID, e.JobTitle, e.HireDate, e.Status, e.HourlyRate,
		e.OnboardingSource, e.WorkSchedule, e.SINEncrypted, e.BankEncrypted)
}

func (r *PostgresRepository) Terminate(ctx context.Context, id string, date timex.Date, reason string) error {
	query := `
		UPDATE employees SET status = $2, termination_date = $3, termination_reason = $4, updated_at = now()
		WHERE id = $1
	`
	return r.exec(ctx, query, id, common.EmployeeStatusTerminated, date, reason)
}
