package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/server/payroll"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBenefitFixture(t *testing.T) (*BenefitService, *fakeRepoManager) {
	t.Helper()
	rm := newFakeRepoManager()
	svc := NewBenefitService(nil, rm)
	svc.now = func() time.Time { return time.Date(2025, 9, 20, 9, 0, 0, 0, time.UTC) }
	return svc, rm
}

func TestBenefitService_CreatePlan(t *testing.T) {
	svc, _ := newBenefitFixture(t)
	ctx := context.Background()

	p, err := svc.CreatePlan(ctx, &models.BenefitPlan{Name: " Dental Basic ", PlanType: PlanDental, EmployeeCost: dec("12.50")})
	require.NoError(t, err)
	assert.Equal(t, "Dental Basic", p.Name)
	assert.True(t, p.Active)

	_, err = svc.CreatePlan(ctx, &models.BenefitPlan{Name: "X", PlanType: "Spa"})
	assert.ErrorIs(t, err, common.ErrorValidation)
	_, err = svc.CreatePlan(ctx, &models.BenefitPlan{Name: "X", PlanType: PlanLife, EmployerCost: dec("-1")})
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestBenefitService_Enroll(t *testing.T) {
	svc, rm := newBenefitFixture(t)
	ctx := context.Background()
	emp := rm.employees.add(models.Employee{FirstName: "Jane", LastName: "Doe"})
	plan, err := svc.CreatePlan(ctx, &models.BenefitPlan{Name: "Health Plus", PlanType: PlanHealth, EmployeeCost: dec("45")})
	require.NoError(t, err)

	en, err := svc.Enroll(ctx, &models.BenefitEnrollment{EmployeeID: emp.ID, PlanID: plan.ID})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentActive, en.Status)
	assert.Equal(t, CoverageEmployee, en.CoverageLevel)
	assert.Equal(t, "45", en.EmployeeContribution.String())
	assert.Equal(t, timex.MustParseDate("2025-09-20"), en.StartDate)
	assert.Equal(t, "Health Plus", en.PlanName)

	_, err = svc.Enroll(ctx, &models.BenefitEnrollment{EmployeeID: emp.ID, PlanID: plan.ID})
	assert.ErrorIs(t, err, common.ErrorConflict)

	_, err = svc.Enroll(ctx, &models.BenefitEnrollment{EmployeeID: emp.ID, PlanID: plan.ID, CoverageLevel: "Pets"})
	assert.ErrorIs(t, err, common.ErrorValidation)

	gone := rm.employees.add(models.Employee{FirstName: "Old", LastName: "Timer", Status: common.EmployeeStatusTerminated})
	_, err = svc.Enroll(ctx, &models.BenefitEnrollment{EmployeeID: gone.ID, PlanID: plan.ID})
	assert.ErrorIs(t, err, common.ErrorInvalidState)

	require.NoError(t, svc.SetPlanActive(ctx, plan.ID, false))
	other := rm.employees.add(models.Employee{FirstName: "New", LastName: "Hire"})
	_, err = svc.Enroll(ctx, &models.BenefitEnrollment{EmployeeID: other.ID, PlanID: plan.ID})
	assert.ErrorIs(t, err, common.ErrorInvalidState)
}

func TestBenefitService_CancelEnrollment(t *testing.T) {
	svc, rm := newBenefitFixture(t)
	ctx := context.Background()
	emp := rm.employees.add(models.Employee{FirstName: "Jane", LastName: "Doe"})
	plan, err := svc.CreatePlan(ctx, &models.BenefitPlan{Name: "Vision", PlanType: PlanVision, EmployeeCost: dec("5")})
	require.NoError(t, err)

	en, err := svc.Enroll(ctx, &models.BenefitEnrollment{
		EmployeeID: emp.ID, PlanID: plan.ID, StartDate: timex.MustParseDate("2025-10-01"),
	})
	require.NoError(t, err)

	// ending before the start clamps to the start
	require.NoError(t, svc.CancelEnrollment(ctx, en.ID, timex.Date{}))
	got := rm.benefits.enrollments[en.ID]
	assert.Equal(t, models.EnrollmentCancelled, got.Status)
	assert.Equal(t, timex.MustParseDate("2025-10-01"), got.EndDate)

	assert.ErrorIs(t, svc.CancelEnrollment(ctx, en.ID, timex.Date{}), common.ErrorInvalidState)

	// a cancelled enrollment no longer blocks a new one
	_, err = svc.Enroll(ctx, &models.BenefitEnrollment{EmployeeID: emp.ID, PlanID: plan.ID})
	assert.NoError(t, err)
}

func TestBenefitService_Deductions(t *testing.T) {
	svc, rm := newBenefitFixture(t)
	ctx := context.Background()
	a := rm.employees.add(models.Employee{FirstName: "Jane", LastName: "Doe"})
	b := rm.employees.add(models.Employee{FirstName: "John", LastName: "Roe"})

	dental, err := svc.CreatePlan(ctx, &models.BenefitPlan{Name: "Dental", PlanType: PlanDental, EmployeeCost: dec("10")})
	require.NoError(t, err)
	life, err := svc.CreatePlan(ctx, &models.BenefitPlan{Name: "Life", PlanType: PlanLife})
	require.NoError(t, err)

	start := timex.MustParseDate("2025-09-01")
	for _, en := range []*models.BenefitEnrollment{
		{EmployeeID: a.ID, PlanID: dental.ID, StartDate: start},
		{EmployeeID: a.ID, PlanID: life.ID, StartDate: start},
		{EmployeeID: b.ID, PlanID: dental.ID, StartDate: timex.MustParseDate("2025-10-01")},
	} {
		_, err := svc.Enroll(ctx, en)
		require.NoError(t, err)
	}

	got, err := svc.Deductions(ctx, start, timex.MustParseDate("2025-09-14"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []payroll.Deduction{{Name: "Dental", Amount: dec("10")}}, got[a.ID])
}
