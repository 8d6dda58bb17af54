package models

import (
	"time"

	"github.com/dmitrijs2005/hrkeeper/internal/timex"
	"github.com/shopspring/decimal"
)

type Department struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Employee is the HR record. SIN and BankAccount hold plaintext in memory
// and are encrypted by the service layer before they reach the database.
type Employee struct {
	ID                string          `json:"id"`
	FirstName         string          `json:"first_name"`
	LastName          string          `json:"last_name"`
	Nickname          string          `json:"nickname,omitempty"`
	Email             string          `json:"email,omitempty"`
	Phone             string          `json:"phone,omitempty"`
	DepartmentID      *string         `json:"department_id,omitempty"`
	DepartmentName    string          `json:"department_name,omitempty"`
	JobTitle          string          `json:"job_title,omitempty"`
	HireDate          timex.Date      `json:"hire_date"`
	Status            string          `json:"status"`
	HourlyRate        decimal.Decimal `json:"hourly_rate"`
	OnboardingSource  string          `json:"onboarding_source,omitempty"`
	WorkSchedule      string          `json:"work_schedule,omitempty"`
	SIN               string          `json:"sin,omitempty"`
	BankAccount       string          `json:"bank_account,omitempty"`
	SINEncrypted      []byte          `json:"-"`
	BankEncrypted     []byte          `json:"-"`
	TerminationDate   timex.Date      `json:"termination_date"`
	TerminationReason string          `json:"termination_reason,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// FullName returns "First Last", trimmed when either part is missing.
func (e *Employee) FullName() string {
	switch {
	case e.FirstName == "":
		return e.LastName
	case e.LastName == "":
		return e.FirstName
	default:
		return e.FirstName + " " + e.LastName
	}
}

// EmployeeFilter narrows employee listings.
type EmployeeFilter struct {
	Status            string
	ExcludeTerminated bool
	DepartmentID      string
	Search            string
	Limit             int
	Offset            int
}
