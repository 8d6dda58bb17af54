package httpapi

import (
	"context"
	"io"

	"github.com/dmitrijs2005/hrkeeper/internal/server/leave"
	"github.com/dmitrijs2005/hrkeeper/internal/server/matching"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/server/payperiod"
	"github.com/dmitrijs2005/hrkeeper/internal/server/services"
	"github.com/dmitrijs2005/hrkeeper/internal/server/timecards"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
	"github.com/shopspring/decimal"
)

// The handlers depend on these narrow views of the services package so
// tests can substitute fakes.

type AuthService interface {
	Login(ctx context.Context, login, password string, client services.ClientInfo) (*services.LoginResult, error)
	VerifyMFA(ctx context.Context, mfaToken, code string, trustDevice bool, deviceName string, client services.ClientInfo) (*services.LoginResult, error)
	ChangePassword(ctx context.Context, req services.ChangePasswordRequest, client services.ClientInfo) (*services.LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	Authenticate(ctx context.Context, token string) (*services.Principal, error)
	CSRFToken(sessionID string) string
	VerifyCSRF(sessionID, token string) bool
	SetupMFA(ctx context.Context, userID string) (*services.MFASetup, error)
	EnableMFA(ctx context.Context, userID, code string) error
	DisableMFA(ctx context.Context, userID, password string) error
	RegenerateBackupCodes(ctx context.Context, userID, code string) ([]string, error)
	MFAStatus(ctx context.Context, userID string) (*services.MFAStatus, error)
	ListTrustedDevices(ctx context.Context, userID string) ([]*models.TrustedDevice, error)
	RevokeTrustedDevice(ctx context.Context, userID, deviceID string) error
	CreateUser(ctx context.Context, req services.CreateUserRequest) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
}

type EmployeeService interface {
	List(ctx context.Context, f models.EmployeeFilter) ([]*models.Employee, error)
	Get(ctx context.Context, id string) (*models.Employee, error)
	Create(ctx context.Context, e *models.Employee) (*models.Employee, error)
	Update(ctx context.Context, e *models.Employee) error
	Terminate(ctx context.Context, id string, date timex.Date, reason string) error
	ListDepartments(ctx context.Context) ([]*models.Department, error)
	CreateDepartment(ctx context.Context, name string) (*models.Department, error)
	FindMatch(ctx context.Context, q matching.Query) (*matching.Match, error)
	FindDuplicates(ctx context.Context) ([][]*models.Employee, error)
	Merge(ctx context.Context, sourceID, targetID string) (*services.MergeResult, error)
}

type TimecardService interface {
	ListEntries(ctx context.Context, f models.TimeEntryFilter) ([]*models.TimeEntry, error)
	CreateEntry(ctx context.Context, e *models.TimeEntry) (*models.TimeEntry, error)
	UpdateEntry(ctx context.Context, e *models.TimeEntry) error
	DeleteEntry(ctx context.Context, id string) error
	Approve(ctx context.Context, start, end timex.Date, employeeID string) (int64, error)
	Import(ctx context.Context, r io.Reader, filename string) (*timecards.Summary, error)
	ImportCommissions(ctx context.Context, r io.Reader, filename string, start, end timex.Date) (*services.CommissionSummary, error)
	CalculateSalesCommissions(ctx context.Context, r io.Reader, filename string, req services.SalesCommissionRequest) (*services.SalesCommissionSummary, error)
	ListCommissions(ctx context.Context, employeeID string, start, end timex.Date) ([]*models.Commission, error)
	DeleteCommission(ctx context.Context, id string) error
}

type PayrollService interface {
	Periods(year int) []payperiod.Period
	CurrentPeriod() payperiod.Period
	NextPeriod() payperiod.Period
	Generate(ctx context.Context, req services.GenerateRequest) (*services.GenerateResult, error)
	List(ctx context.Context, f models.PayrollFilter) ([]*models.Payroll, error)
	Get(ctx context.Context, id string) (*models.Payroll, error)
	Approve(ctx context.Context, id, approvedBy string) error
	BulkApprove(ctx context.Context, start, end timex.Date, approvedBy string) (int64, error)
	MarkPaid(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context, start, end timex.Date) (*models.PayrollSummary, error)
	VacationBalances(ctx context.Context, employeeID string) ([]*models.VacationBalance, error)
	VacationBalance(ctx context.Context, employeeID string) (*models.VacationBalance, error)
	VacationPayout(ctx context.Context, employeeID string, hours decimal.Decimal, date timex.Date, notes string) (*models.VacationPayout, error)
	ListPayouts(ctx context.Context, employeeID string) ([]*models.VacationPayout, error)
}

type LeaveService interface {
	Workdays(ctx context.Context, employeeID string, start, end timex.Date) (leave.Workdays, error)
	Submit(ctx context.Context, r *models.LeaveRequest) (*models.LeaveRequest, leave.Workdays, error)
	Get(ctx context.Context, id string) (*models.LeaveRequest, error)
	List(ctx context.Context, f models.LeaveFilter) ([]*models.LeaveRequest, error)
	Pending(ctx context.Context) ([]*models.LeaveRequest, error)
	Review(ctx context.Context, id, status, reviewer, notes string) error
	Cancel(ctx context.Context, id string) error
	Balances(ctx context.Context, employeeID string, year int) ([]models.LeaveBalance, error)
	ListPolicies(ctx context.Context) ([]*models.LeavePolicy, error)
	SavePolicy(ctx context.Context, p *models.LeavePolicy) error
	Holidays(ctx context.Context, from, to timex.Date) ([]*models.Holiday, error)
	CreateHoliday(ctx context.Context, h *models.Holiday) (*models.Holiday, error)
	DeleteHoliday(ctx context.Context, id string) error
}

type BenefitService interface {
	CreatePlan(ctx context.Context, p *models.BenefitPlan) (*models.BenefitPlan, error)
	GetPlan(ctx context.Context, id string) (*models.BenefitPlan, error)
	ListPlans(ctx context.Context, activeOnly bool) ([]*models.BenefitPlan, error)
	SetPlanActive(ctx context.Context, id string, active bool) error
	Enroll(ctx context.Context, e *models.BenefitEnrollment) (*models.BenefitEnrollment, error)
	ListEnrollments(ctx context.Context, employeeID string) ([]*models.BenefitEnrollment, error)
	CancelEnrollment(ctx context.Context, id string, endDate timex.Date) error
}

type RecruitingService interface {
	CreatePosting(ctx context.Context, p *models.JobPosting) (*models.JobPosting, error)
	GetPosting(ctx context.Context, id string) (*models.JobPosting, error)
	ListPostings(ctx context.Context, status string) ([]*models.JobPosting, error)
	SetPostingStatus(ctx context.Context, id, status string) error
	AddCandidate(ctx context.Context, c *models.Candidate) (*models.Candidate, error)
	GetCandidate(ctx context.Context, id string) (*models.Candidate, error)
	ListCandidates(ctx context.Context, postingID, status string) ([]*models.Candidate, error)
	UpdateCandidateNotes(ctx context.Context, id, notes string) error
	MoveCandidate(ctx context.Context, id, to string) (*services.CandidateMove, error)
	ScheduleInterview(ctx context.Context, i *models.Interview) (*models.Interview, error)
	ListInterviews(ctx context.Context, candidateID string) ([]*models.Interview, error)
	RecordFeedback(ctx context.Context, id, feedback string, rating int) error
}

type DocumentService interface {
	RequestUpload(ctx context.Context, employeeID, name, contentType, uploadedBy string) (*services.UploadTicket, error)
	ConfirmUpload(ctx context.Context, id string, size int64) error
	DownloadURL(ctx context.Context, id string) (string, error)
	List(ctx context.Context, employeeID string) ([]*models.Document, error)
	Delete(ctx context.Context, id string) error
}

// Services bundles everything the router serves.
type Services struct {
	Auth       AuthService
	Employees  EmployeeService
	Timecards  TimecardService
	Payroll    PayrollService
	Leave      LeaveService
	Benefits   BenefitService
	Recruiting RecruitingService
	Documents  DocumentService
}
