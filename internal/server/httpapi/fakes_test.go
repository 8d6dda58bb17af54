package httpapi

import (
	"context"
	"io"
	"time"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/server/auth"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/server/payperiod"
	"github.com/dmitrijs2005/hrkeeper/internal/server/payroll"
	"github.com/dmitrijs2005/hrkeeper/internal/server/services"
	"github.com/dmitrijs2005/hrkeeper/internal/server/timecards"
)

// Each fake embeds the interface it stands in for; calling a method the
// test did not implement panics on the nil embedded value.

type fakeAuth struct {
	AuthService
	principals map[string]*services.Principal

	loginResult *services.LoginResult
	loginErr    error
	// lockout, when set, makes Login reject every password and count the
	// failures the way the real service does.
	lockout    *auth.Lockout
	lastClient services.ClientInfo
	lastTrust  bool
	changeReq  services.ChangePasswordRequest
	loggedOut  string
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{principals: map[string]*services.Principal{}}
}

// addUser registers a session token for a user with the given role.
func (f *fakeAuth) addUser(token, role string) *services.Principal {
	p := &services.Principal{
		User:    &models.User{ID: "user-" + role, Username: role, Role: role, IsActive: true},
		Session: &models.Session{ID: "session-" + token, UserID: "user-" + role, ExpiresAt: time.Now().Add(time.Hour)},
	}
	f.principals[token] = p
	return p
}

func (f *fakeAuth) Authenticate(ctx context.Context, token string) (*services.Principal, error) {
	p, ok := f.principals[token]
	if !ok {
		return nil, common.ErrorUnauthorized
	}
	return p, nil
}

func (f *fakeAuth) CSRFToken(sessionID string) string { return "csrf:" + sessionID }

func (f *fakeAuth) VerifyCSRF(sessionID, token string) bool { return token == "csrf:"+sessionID }

func (f *fakeAuth) Login(ctx context.Context, login, password string, client services.ClientInfo) (*services.LoginResult, error) {
	f.lastClient = client
	if f.lockout != nil {
		key := auth.LockoutKey(login, client.IP)
		if left, locked := f.lockout.Locked(key); locked {
			return nil, &services.LockedError{RetryAfter: left}
		}
		if f.lockout.Fail(key) == 0 {
			return nil, &services.LockedError{RetryAfter: time.Minute}
		}
		return nil, common.ErrorUnauthorized
	}
	return f.loginResult, f.loginErr
}

func (f *fakeAuth) VerifyMFA(ctx context.Context, mfaToken, code string, trustDevice bool, deviceName string, client services.ClientInfo) (*services.LoginResult, error) {
	f.lastClient = client
	f.lastTrust = trustDevice
	return f.loginResult, f.loginErr
}

func (f *fakeAuth) ChangePassword(ctx context.Context, req services.ChangePasswordRequest, client services.ClientInfo) (*services.LoginResult, error) {
	f.changeReq = req
	return f.loginResult, f.loginErr
}

func (f *fakeAuth) Logout(ctx context.Context, sessionID string) error {
	f.loggedOut = sessionID
	return nil
}

func (f *fakeAuth) CreateUser(ctx context.Context, req services.CreateUserRequest) (*models.User, error) {
	if !auth.IsValidRole(req.Role) {
		return nil, common.ErrorValidation
	}
	return &models.User{ID: "new-user", Username: req.Username, Role: req.Role, IsActive: true}, nil
}

type fakeEmployees struct {
	EmployeeService
	byID    map[string]*models.Employee
	updated *models.Employee
}

func (f *fakeEmployees) Get(ctx context.Context, id string) (*models.Employee, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEmployees) Update(ctx context.Context, e *models.Employee) error {
	f.updated = e
	return nil
}

func (f *fakeEmployees) List(ctx context.Context, flt models.EmployeeFilter) ([]*models.Employee, error) {
	var out []*models.Employee
	for _, e := range f.byID {
		if flt.Status == "" || e.Status == flt.Status {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeTimecards struct {
	TimecardService
	importedName string
	importedBody string
	salesReq     services.SalesCommissionRequest
}

func (f *fakeTimecards) CalculateSalesCommissions(ctx context.Context, r io.Reader, filename string, req services.SalesCommissionRequest) (*services.SalesCommissionSummary, error) {
	f.salesReq = req
	return &services.SalesCommissionSummary{
		SalesCommissions: payroll.ComputeSalesCommissions(nil, req.Managers),
		File:             filename,
		DryRun:           req.DryRun,
	}, nil
}

func (f *fakeTimecards) Import(ctx context.Context, r io.Reader, filename string) (*timecards.Summary, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.importedName, f.importedBody = filename, string(b)
	return &timecards.Summary{File: filename, EntriesInserted: 3}, nil
}

type fakePayroll struct {
	PayrollService
	approvedBy string
	payrolls   map[string]*models.Payroll
}

func (f *fakePayroll) CurrentPeriod() payperiod.Period {
	return payperiod.Period{Year: 2025, Number: 19}
}

func (f *fakePayroll) Periods(year int) []payperiod.Period {
	return []payperiod.Period{{Year: year, Number: 1}, {Year: year, Number: 2}}
}

func (f *fakePayroll) Get(ctx context.Context, id string) (*models.Payroll, error) {
	p, ok := f.payrolls[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

func (f *fakePayroll) Approve(ctx context.Context, id, approvedBy string) error {
	p, ok := f.payrolls[id]
	if !ok {
		return common.ErrorNotFound
	}
	if p.Status != models.PayrollDraft {
		return common.ErrorInvalidState
	}
	p.Status = models.PayrollApproved
	f.approvedBy = approvedBy
	return nil
}

type fakeDocuments struct {
	DocumentService
	deleteErr error
}

func (f *fakeDocuments) Delete(ctx context.Context, id string) error { return f.deleteErr }
