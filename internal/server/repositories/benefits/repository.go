// Package benefits stores benefit plans and employee enrollments.
package benefits

import (
	"context"

	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
)

type Repository interface {
	CreatePlan(ctx context.Context, p *models.BenefitPlan) (*models.BenefitPlan, error)
	GetPlan(ctx context.Context, id string) (*models.BenefitPlan, error)
	ListPlans(ctx context.Context, activeOnly bool) ([]*models.BenefitPlan, error)
	SetPlanActive(ctx context.Context, id string, active bool) error

	Enroll(ctx context.Context, e *models.BenefitEnrollment) (*models.BenefitEnrollment, error)
	GetEnrollment(ctx context.Context, id string) (*models.BenefitEnrollment, error)
	ListEnrollments(ctx context.Context, employeeID string) ([]*models.BenefitEnrollment, error)
	CancelEnrollment(ctx context.Context, id string, endDate timex.Date) error
	// ActiveEnrollments returns active enrollments covering at least one day
	// of [start, end].
	ActiveEnrollments(ctx context.Context, start, end timex.Date) ([]*models.BenefitEnrollment, error)
}
