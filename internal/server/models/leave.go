package models

import (
	"time"

	"github.com/dmitrijs2005/hrkeeper/internal/timex"
)

const (
	LeavePending   = "Pending"
	LeaveApproved  = "Approved"
	LeaveRejected  = "Rejected"
	LeaveCancelled = "Cancelled"
)

type LeaveRequest struct {
	ID           string     `json:"id"`
	EmployeeID   string     `json:"employee_id"`
	EmployeeName string     `json:"employee_name,omitempty"`
	LeaveType    string     `json:"leave_type"`
	StartDate    timex.Date `json:"start_date"`
	EndDate      timex.Date `json:"end_date"`
	TotalDays    int        `json:"total_days"`
	Reason       string     `json:"reason,omitempty"`
	Status       string     `json:"status"`
	ReviewedBy   *string    `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	ReviewNotes  string     `json:"review_notes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type LeaveFilter struct {
	EmployeeID string
	Status     string
	From       timex.Date
	To         timex.Date
}

// LeavePolicy is the yearly allowance of a leave type.
type LeavePolicy struct {
	LeaveType   string `json:"leave_type"`
	DaysPerYear int    `json:"days_per_year"`
}

type LeaveBalance struct {
	LeaveType string `json:"leave_type"`
	Allowance int    `json:"allowance"`
	Used      int    `json:"used"`
	Pending   int    `json:"pending"`
	Remaining int    `json:"remaining"`
}

// Holiday scopes.
const (
	HolidayAll        = "All"
	HolidayDepartment = "Department"
	HolidayJobTitle   = "JobTitle"
	HolidayEmployee   = "Employee"
)

type Holiday struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Date      timex.Date `json:"date"`
	AppliesTo string     `json:"applies_to"`
	Target    string     `json:"target,omitempty"`
}
