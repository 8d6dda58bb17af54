package benefits

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

var enrollmentCols = []string{"id", "employee_id", "plan_id", "plan_name", "coverage_level", "contribution",
	"start_date", "end_date", "status", "created_at"}

func TestPlans(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+benefit_plans`).
		WithArgs("Dental", "Dental", "Acme", "25.5", "40", true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("bp-1", now))
	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+benefit_plans`).WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectQuery(`(?s)FROM\s+benefit_plans\s+WHERE\s+id\s*=\s*\$1`).WithArgs("bp-2").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`(?s)FROM\s+benefit_plans\s+WHERE\s+\(\$1\s*=\s*false\s+OR\s+active\)`).WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "plan_type", "provider", "ec", "rc", "active", "created_at"}).
			AddRow("bp-1", "Dental", "Dental", "Acme", "25.5", "40", true, now))
	mock.ExpectExec(`^UPDATE benefit_plans SET active = \$2 WHERE id = \$1$`).WithArgs("bp-1", false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	plan := &models.BenefitPlan{Name: "Dental", PlanType: "Dental", Provider: "Acme",
		EmployeeCost: decimal.RequireFromString("25.50"), EmployerCost: decimal.NewFromInt(40), Active: true}
	p, err := repo.CreatePlan(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, "bp-1", p.ID)

	_, err = repo.CreatePlan(context.Background(), plan)
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = repo.GetPlan(context.Background(), "bp-2")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	plans, err := repo.ListPlans(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "25.5", plans[0].EmployeeCost.String())

	require.NoError(t, repo.SetPlanActive(context.Background(), "bp-1", false))
}

func TestEnrollments(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	start := timex.MustParseDate("2025-01-01")
	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+benefit_enrollments`).
		WithArgs("e-1", "bp-1", "Family", "50", start, nil, "Active").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("be-1", now))
	mock.ExpectQuery(`(?s)FROM\s+benefit_enrollments\s+b\s+JOIN\s+benefit_plans\s+p.*WHERE\s+b\.employee_id\s*=\s*\$1`).WithArgs("e-1").
		WillReturnRows(sqlmock.NewRows(enrollmentCols).
			AddRow("be-1", "e-1", "bp-1", "Dental", "Family", "50", start.Time(), nil, "Active", now))
	mock.ExpectExec(`(?s)UPDATE\s+benefit_enrollments\s+SET\s+status\s*=\s*'Cancelled'`).
		WithArgs("be-1", timex.MustParseDate("2025-06-30")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`(?s)WHERE\s+b\.status\s*=\s*'Active'\s+AND\s+b\.start_date\s*<=\s*\$2\s+AND\s+\(b\.end_date\s+IS\s+NULL\s+OR\s+b\.end_date\s*>=\s*\$1\)`).
		WithArgs(timex.MustParseDate("2025-09-01"), timex.MustParseDate("2025-09-14")).
		WillReturnRows(sqlmock.NewRows(enrollmentCols).
			AddRow("be-1", "e-1", "bp-1", "Dental", "Family", "50", start.Time(), nil, "Active", now))

	e, err := repo.Enroll(context.Background(), &models.BenefitEnrollment{
		EmployeeID: "e-1", PlanID: "bp-1", CoverageLevel: "Family", EmployeeContribution: decimal.NewFromInt(50),
		StartDate: start, Status: models.EnrollmentActive,
	})
	require.NoError(t, err)
	assert.Equal(t, "be-1", e.ID)

	list, err := repo.ListEnrollments(context.Background(), "e-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].EndDate.IsZero())
	assert.Equal(t, "Dental", list[0].PlanName)

	err = repo.CancelEnrollment(context.Background(), "be-1", timex.MustParseDate("2025-06-30"))
	assert.ErrorIs(t, err, common.ErrorNotFound)

	active, err := repo.ActiveEnrollments(context.Background(), timex.MustParseDate("2025-09-01"), timex.MustParseDate("2025-09-14"))
	require.NoError(t, err)
	assert.Len(t, active, 1)
}
