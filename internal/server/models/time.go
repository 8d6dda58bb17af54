package models

import (
	"time"

	"github.com/dmitrijs2005/hrkeeper/internal/timex"
	"github.com/shopspring/decimal"
)

const (
	TimeEntryPending  = "Pending"
	TimeEntryApproved = "Approved"
	TimeEntryRejected = "Rejected"
)

// TimeEntry is one worked day on a timecard.
type TimeEntry struct {
	ID            string          `json:"id"`
	EmployeeID    string          `json:"employee_id"`
	EmployeeName  string          `json:"employee_name,omitempty"`
	WorkDate      timex.Date      `json:"work_date"`
	ClockIn       string          `json:"clock_in,omitempty"`
	ClockOut      string          `json:"clock_out,omitempty"`
	Hours         decimal.Decimal `json:"hours"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
	Status        string          `json:"status"`
	Source        string          `json:"source,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type TimeEntryFilter struct {
	EmployeeID string
	Start      timex.Date
	End        timex.Date
	Status     string
}

// Commission is variable pay imported from a sales spreadsheet for a period.
type Commission struct {
	ID           string          `json:"id"`
	EmployeeID   string          `json:"employee_id"`
	EmployeeName string          `json:"employee_name,omitempty"`
	PeriodStart  timex.Date      `json:"period_start"`
	PeriodEnd    timex.Date      `json:"period_end"`
	Amount       decimal.Decimal `json:"amount"`
	Kind         string          `json:"kind"`
	Source       string          `json:"source,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Commission kinds. Bonuses share the table and are paid the same way.
const (
	CommissionKindCommission = "commission"
	CommissionKindBonus      = "bonus"
)
