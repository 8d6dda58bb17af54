package models

import (
	"time"

	"github.com/dmitrijs2005/hrkeeper/internal/timex"
	"github.com/shopspring/decimal"
)

const (
	PayrollDraft    = "Draft"
	PayrollApproved = "Approved"
	PayrollPaid     = "Paid"
)

// Payroll is one employee's calculated pay for one period.
type Payroll struct {
	ID                   string          `json:"id"`
	EmployeeID           string          `json:"employee_id"`
	EmployeeName         string          `json:"employee_name,omitempty"`
	PeriodStart          timex.Date      `json:"period_start"`
	PeriodEnd            timex.Date      `json:"period_end"`
	PayDate              timex.Date      `json:"pay_date"`
	RegularHours         decimal.Decimal `json:"regular_hours"`
	OvertimeHours        decimal.Decimal `json:"overtime_hours"`
	HourlyRate           decimal.Decimal `json:"hourly_rate"`
	RegularPay           decimal.Decimal `json:"regular_pay"`
	OvertimePay          decimal.Decimal `json:"overtime_pay"`
	Commissions          decimal.Decimal `json:"commissions"`
	Bonuses              decimal.Decimal `json:"bonuses"`
	GrossPay             decimal.Decimal `json:"gross_pay"`
	Deductions           decimal.Decimal `json:"deductions"`
	NetPay               decimal.Decimal `json:"net_pay"`
	VacationHoursAccrued decimal.Decimal `json:"vacation_hours_accrued"`
	VacationPayAccrued   decimal.Decimal `json:"vacation_pay_accrued"`
	Status               string          `json:"status"`
	ApprovedBy           *string         `json:"approved_by,omitempty"`
	ApprovedAt           *time.Time      `json:"approved_at,omitempty"`
	PaidAt               *time.Time      `json:"paid_at,omitempty"`
	Notes                string          `json:"notes,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

type PayrollFilter struct {
	EmployeeID  string
	PeriodStart timex.Date
	PeriodEnd   timex.Date
	Status      string
}

// PayrollSummary aggregates payrolls of one period.
type PayrollSummary struct {
	PeriodStart          timex.Date      `json:"period_start"`
	PeriodEnd            timex.Date      `json:"period_end"`
	Employees            int             `json:"employees"`
	RegularHours         decimal.Decimal `json:"regular_hours"`
	OvertimeHours        decimal.Decimal `json:"overtime_hours"`
	GrossPay             decimal.Decimal `json:"gross_pay"`
	Deductions           decimal.Decimal `json:"deductions"`
	NetPay               decimal.Decimal `json:"net_pay"`
	VacationPayAccrued   decimal.Decimal `json:"vacation_pay_accrued"`
	VacationHoursAccrued decimal.Decimal `json:"vacation_hours_accrued"`
	ByStatus             map[string]int  `json:"by_status"`
}

type VacationPayout struct {
	ID         string          `json:"id"`
	EmployeeID string          `json:"employee_id"`
	Hours      decimal.Decimal `json:"hours"`
	Amount     decimal.Decimal `json:"amount"`
	PayoutDate timex.Date      `json:"payout_date"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// VacationBalance is accrued minus paid-out vacation for an employee.
type VacationBalance struct {
	EmployeeID   string          `json:"employee_id"`
	EmployeeName string          `json:"employee_name,omitempty"`
	HoursEarned  decimal.Decimal `json:"hours_earned"`
	PayEarned    decimal.Decimal `json:"pay_earned"`
	HoursPaid    decimal.Decimal `json:"hours_paid"`
	PayPaid      decimal.Decimal `json:"pay_paid"`
	HoursBalance decimal.Decimal `json:"hours_balance"`
	PayBalance   decimal.Decimal `json:"pay_balance"`
}
