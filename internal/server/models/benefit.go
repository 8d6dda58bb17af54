package models

import (
	"time"

	"github.com/dmitrijs2005/hrkeeper/internal/timex"
	"github.com/shopspring/decimal"
)

type BenefitPlan struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	PlanType     string          `json:"plan_type"`
	Provider     string          `json:"provider,omitempty"`
	EmployeeCost decimal.Decimal `json:"employee_cost"`
	EmployerCost decimal.Decimal `json:"employer_cost"`
	Active       bool            `json:"active"`
	CreatedAt    time.Time       `json:"created_at"`
}

const (
	EnrollmentActive    = "Active"
	EnrollmentCancelled = "Cancelled"
)

// BenefitEnrollment links an employee to a plan. EmployeeContribution is
// deducted from each paycheque while the enrollment covers the period.
type BenefitEnrollment struct {
	ID                   string          `json:"id"`
	EmployeeID           string          `json:"employee_id"`
	PlanID               string          `json:"plan_id"`
	PlanName             string          `json:"plan_name,omitempty"`
	CoverageLevel        string          `json:"coverage_level"`
	EmployeeContribution decimal.Decimal `json:"employee_contribution"`
	StartDate            timex.Date      `json:"start_date"`
	EndDate              timex.Date      `json:"end_date"`
	Status               string          `json:"status"`
	CreatedAt            time.Time       `json:"created_at"`
}
