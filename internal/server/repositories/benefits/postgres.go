package benefits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

type scanner interface {
	Scan(dest ...any) error
}

const planColumns = `id, name, plan_type, provider, employee_cost, employer_cost, active, created_at`

func scanPlan(s scanner) (*models.BenefitPlan, error) {
	p := &models.BenefitPlan{}
	if err := s.Scan(&p.ID, &p.Name, &p.PlanType, &p.Provider, &p.EmployeeCost, &p.EmployerCost, &p.Active, &p.CreatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) CreatePlan(ctx context.Context, p *models.BenefitPlan) (*models.BenefitPlan, error) {
	query := `
		INSERT INTO benefit_plans (name, plan_type, provider, employee_cost, employer_cost, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, p.Name, p.PlanType, p.Provider, p.EmployeeCost, p.EmployerCost, p.Active).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) GetPlan(ctx context.Context, id string) (*models.BenefitPlan, error) {
	p, err := scanPlan(r.db.QueryRowContext(ctx, `SELECT `+planColumns+` FROM benefit_plans WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) ListPlans(ctx context.Context, activeOnly bool) ([]*models.BenefitPlan, error) {
	query := `SELECT ` + planColumns + ` FROM benefit_plans WHERE ($1 = false OR active) ORDER BY plan_type, name`
	rows, err := r.db.QueryContext(ctx, query, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.BenefitPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *PostgresRepository) SetPlanActive(ctx context.Context, id string, active bool) error {
	return affected(r.db.ExecContext(ctx, `UPDATE benefit_plans SET active = $2 WHERE id = $1`, id, active))
}

const selectEnrollments = `SELECT b.id, b.employee_id, b.plan_id, p.name, b.coverage_level, b.employee_contribution,
	b.start_date, b.end_date, b.status, b.created_at
	FROM benefit_enrollments b JOIN benefit_plans p ON p.id = b.plan_id`

func scanEnrollment(s scanner) (*models.BenefitEnrollment, error) {
	e := &models.BenefitEnrollment{}
	err := s.Scan(&e.ID, &e.EmployeeID, &e.PlanID, &e.PlanName, &e.CoverageLevel, &e.EmployeeContribution,
		&e.StartDate, &e.EndDate, &e.Status, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *PostgresRepository) enrollments(ctx context.Context, query string, args ...any) ([]*models.BenefitEnrollment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.BenefitEnrollment
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *PostgresRepository) Enroll(ctx context.Context, e *models.BenefitEnrollment) (*models.BenefitEnrollment, error) {
	query := `
		INSERT INTO benefit_enrollments (employee_id, plan_id, coverage_level, employee_contribution, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, e.EmployeeID, e.PlanID, e.CoverageLevel, e.EmployeeContribution,
		e.StartDate, e.EndDate, e.Status).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) GetEnrollment(ctx context.Context, id string) (*models.BenefitEnrollment, error) {
	e, err := scanEnrollment(r.db.QueryRowContext(ctx, selectEnrollments+` WHERE b.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) ListEnrollments(ctx context.Context, employeeID string) ([]*models.BenefitEnrollment, error) {
	return r.enrollments(ctx, selectEnrollments+` WHERE b.employee_id = $1 ORDER BY b.start_date DESC`, employeeID)
}

func (r *PostgresRepository) CancelEnrollment(ctx context.Context, id string, endDate timex.Date) error {
	query := `UPDATE benefit_enrollments SET status = 'Cancelled', end_date = $2 WHERE id = $1 AND status = 'Active'`
	return affected(r.db.ExecContext(ctx, query, id, endDate))
}

func (r *PostgresRepository) ActiveEnrollments(ctx context.Context, start, end timex.Date) ([]*models.BenefitEnrollment, error) {
	query := selectEnrollments + `
		WHERE b.status = 'Active' AND b.start_date <= $2 AND (b.end_date IS NULL OR b.end_date >= $1)
		ORDER BY b.employee_id, p.name`
	return r.enrollments(ctx, query, start, end)
}

func affected(res sql.Result, err error) error {
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
