package models

import "time"

const (
	PostingDraft  = "Draft"
	PostingOpen   = "Open"
	PostingClosed = "Closed"
)

type JobPosting struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	DepartmentID   *string    `json:"department_id,omitempty"`
	Description    string     `json:"description,omitempty"`
	Location       string     `json:"location,omitempty"`
	EmploymentType string     `json:"employment_type,omitempty"`
	Status         string     `json:"status"`
	OpenedAt       *time.Time `json:"opened_at,omitempty"`
	ClosedAt       *time.Time `json:"closed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Candidate pipeline statuses.
const (
	CandidateApplied   = "Applied"
	CandidateScreening = "Screening"
	CandidateInterview = "Interview"
	CandidateOffer     = "Offer"
	CandidateHired     = "Hired"
	CandidateRejected  = "Rejected"
	CandidateWithdrawn = "Withdrawn"
)

type Candidate struct {
	ID        string    `json:"id"`
	PostingID string    `json:"posting_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Status    string    `json:"status"`
	ResumeKey string    `json:"resume_key,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	AppliedAt time.Time `json:"applied_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Interview struct {
	ID          string    `json:"id"`
	CandidateID string    `json:"candidate_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Interviewer string    `json:"interviewer"`
	Kind        string    `json:"kind,omitempty"`
	Feedback    string    `json:"feedback,omitempty"`
	Rating      int       `json:"rating,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
