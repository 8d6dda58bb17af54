package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/server/payroll"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
)

// Plan types.
const (
	PlanHealth     = "Health"
	PlanDental     = "Dental"
	PlanVision     = "Vision"
	PlanLife       = "Life"
	PlanDisability = "Disability"
	PlanRetirement = "Retirement"
	PlanOther      = "Other"
)

var planTypes = map[string]bool{
	PlanHealth: true, PlanDental: true, PlanVision: true, PlanLife: true,
	PlanDisability: true, PlanRetirement: true, PlanOther: true,
}

// Coverage levels.
const (
	CoverageEmployee       = "Employee"
	CoverageEmployeeSpouse = "Employee + Spouse"
	CoverageEmployeeChild  = "Employee + Children"
	CoverageFamily         = "Family"
)

var coverageLevels = map[string]bool{
	CoverageEmployee: true, CoverageEmployeeSpouse: true, CoverageEmployeeChild: true, CoverageFamily: true,
}

type BenefitService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewBenefitService(db *sql.DB, m repomanager.RepositoryManager) *BenefitService {
	return &BenefitService{db: db, repomanager: m, now: time.Now}
}

func (s *BenefitService) CreatePlan(ctx context.Context, p *models.BenefitPlan) (*models.BenefitPlan, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, fmt.Errorf("%w: plan name is required", common.ErrorValidation)
	}
	if !planTypes[p.PlanType] {
		return nil, fmt.Errorf("%w: unknown plan type %q", common.ErrorValidation, p.PlanType)
	}
	if p.EmployeeCost.IsNegative() || p.EmployerCost.IsNegative() {
		return nil, fmt.Errorf("%w: plan costs must not be negative", common.ErrorValidation)
	}
	p.Active = true
	return s.repomanager.Benefits(s.db).CreatePlan(ctx, p)
}

func (s *BenefitService) GetPlan(ctx context.Context, id string) (*models.BenefitPlan, error) {
	return s.repomanager.Benefits(s.db).GetPlan(ctx, id)
}

func (s *BenefitService) ListPlans(ctx context.Context, activeOnly bool) ([]*models.BenefitPlan, error) {
	return s.repomanager.Benefits(s.db).ListPlans(ctx, activeOnly)
}

func (s *BenefitService) SetPlanActive(ctx context.Context, id string, active bool) error {
	return s.repomanager.Benefits(s.db).SetPlanActive(ctx, id, active)
}

// Enroll signs an employee up for an active plan. A zero contribution
// defaults to the plan's employee cost.
func (s *BenefitService) Enroll(ctx context.Context, e *models.BenefitEnrollment) (*models.BenefitEnrollment, error) {
	if e.EmployeeID == "" || e.PlanID == "" {
		return nil, fmt.Errorf("%w: employee and plan are required", common.ErrorValidation)
	}
	if e.CoverageLevel == "" {
		e.CoverageLevel = CoverageEmployee
	}
	if !coverageLevels[e.CoverageLevel] {
		return nil, fmt.Errorf("%w: unknown coverage level %q", common.ErrorValidation, e.CoverageLevel)
	}
	if e.EmployeeContribution.IsNegative() {
		return nil, fmt.Errorf("%w: contribution must not be negative", common.ErrorValidation)
	}
	if e.StartDate.IsZero() {
		e.StartDate = timex.DateOf(s.now())
	}
	if !e.EndDate.IsZero() && e.EndDate.Before(e.StartDate) {
		return nil, fmt.Errorf("%w: end date before start date", common.ErrorValidation)
	}

	emp, err := s.repomanager.Employees(s.db).Get(ctx, e.EmployeeID)
	if err != nil {
		return nil, err
	}
	if emp.Status == common.EmployeeStatusTerminated {
		return nil, fmt.Errorf("%w: employee is terminated", common.ErrorInvalidState)
	}

	repo := s.repomanager.Benefits(s.db)
	plan, err := repo.GetPlan(ctx, e.PlanID)
	if err != nil {
		return nil, err
	}
	if !plan.Active {
		return nil, fmt.Errorf("%w: plan %q is not active", common.ErrorInvalidState, plan.Name)
	}

	current, err := repo.ListEnrollments(ctx, e.EmployeeID)
	if err != nil {
		return nil, err
	}
	for _, c := range current {
		if c.PlanID == e.PlanID && c.Status == models.EnrollmentActive {
			return nil, fmt.Errorf("%w: already enrolled in %q", common.ErrorConflict, plan.Name)
		}
	}

	if e.EmployeeContribution.IsZero() {
		e.EmployeeContribution = plan.EmployeeCost
	}
	e.Status = models.EnrollmentActive
	created, err := repo.Enroll(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("error enrolling employee: %w", err)
	}
	created.PlanName = plan.Name
	return created, nil
}

func (s *BenefitService) ListEnrollments(ctx context.Context, employeeID string) ([]*models.BenefitEnrollment, error) {
	return s.repomanager.Benefits(s.db).ListEnrollments(ctx, employeeID)
}

// CancelEnrollment ends an active enrollment on endDate (today when zero).
func (s *BenefitService) CancelEnrollment(ctx context.Context, id string, endDate timex.Date) error {
	repo := s.repomanager.Benefits(s.db)
	e, err := repo.GetEnrollment(ctx, id)
	if err != nil {
		return err
	}
	if e.Status != models.EnrollmentActive {
		return fmt.Errorf("%w: enrollment is %s", common.ErrorInvalidState, strings.ToLower(e.Status))
	}
	if endDate.IsZero() {
		endDate = timex.DateOf(s.now())
	}
	if endDate.Before(e.StartDate) {
		endDate = e.StartDate
	}
	return repo.CancelEnrollment(ctx, id, endDate)
}

// Deductions returns the per-employee paycheque deductions of enrollments
// covering any day of [start, end].
func (s *BenefitService) Deductions(ctx context.Context, start, end timex.Date) (map[string][]payroll.Deduction, error) {
	enrollments, err := s.repomanager.Benefits(s.db).ActiveEnrollments(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return groupDeductions(enrollments), nil
}

func groupDeductions(enrollments []*models.BenefitEnrollment) map[string][]payroll.Deduction {
	out := map[string][]payroll.Deduction{}
	for _, en := range enrollments {
		if !en.EmployeeContribution.IsPositive() {
			continue
		}
		out[en.EmployeeID] = append(out[en.EmployeeID], payroll.Deduction{Name: en.PlanName, Amount: en.EmployeeContribution})
	}
	return out
}
