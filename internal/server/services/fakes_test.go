package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/dbx"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/benefits"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/documents"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/employees"
	leaverepo "github.com/dmitrijs2005/hrkeeper/internal/server/repositories/leave"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/mfa"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/payrolls"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/recruiting"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/timeentries"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/trusteddevices"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
	"github.com/shopspring/decimal"
)

// In-memory repositories. Unused interface methods are left to the embedded
// nil interface and panic if a test reaches them.

var idSeq struct {
	sync.Mutex
	n int
}

func nextID(prefix string) string {
	idSeq.Lock()
	defer idSeq.Unlock()
	idSeq.n++
	return fmt.Sprintf("%s-%d", prefix, idSeq.n)
}

type fakeRepoManager struct {
	repomanager.RepositoryManager

	users      *fakeUsers
	sessions   *fakeSessions
	mfa        *fakeMFA
	devices    *fakeDevices
	employees  *fakeEmployees
	entries    *fakeEntries
	payrolls   *fakePayrolls
	leave      *fakeLeave
	benefits   *fakeBenefits
	recruiting *fakeRecruiting
	documents  *fakeDocuments
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:      &fakeUsers{byID: map[string]*models.User{}},
		sessions:   &fakeSessions{byID: map[string]*models.Session{}},
		mfa:        &fakeMFA{byUser: map[string]*models.MFASettings{}},
		devices:    &fakeDevices{byID: map[string]*models.TrustedDevice{}},
		employees:  &fakeEmployees{byID: map[string]*models.Employee{}},
		entries:    &fakeEntries{byID: map[string]*models.TimeEntry{}, commissions: map[string]*models.Commission{}},
		payrolls:   &fakePayrolls{byID: map[string]*models.Payroll{}},
		leave:      &fakeLeave{byID: map[string]*models.LeaveRequest{}, holidays: map[string]*models.Holiday{}},
		benefits:   &fakeBenefits{plans: map[string]*models.BenefitPlan{}, enrollments: map[string]*models.BenefitEnrollment{}},
		recruiting: &fakeRecruiting{postings: map[string]*models.JobPosting{}, candidates: map[string]*models.Candidate{}, interviews: map[string]*models.Interview{}},
		documents:  &fakeDocuments{byID: map[string]*models.Document{}},
	}
}

func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                   { return m.users }
func (m *fakeRepoManager) Sessions(dbx.DBTX) sessions.Repository             { return m.sessions }
func (m *fakeRepoManager) MFA(dbx.DBTX) mfa.Repository                       { return m.mfa }
func (m *fakeRepoManager) TrustedDevices(dbx.DBTX) trusteddevices.Repository { return m.devices }
func (m *fakeRepoManager) Employees(dbx.DBTX) employees.Repository           { return m.employees }
func (m *fakeRepoManager) TimeEntries(dbx.DBTX) timeentries.Repository       { return m.entries }
func (m *fakeRepoManager) Payrolls(dbx.DBTX) payrolls.Repository             { return m.payrolls }
func (m *fakeRepoManager) Leave(dbx.DBTX) leaverepo.Repository               { return m.leave }
func (m *fakeRepoManager) Benefits(dbx.DBTX) benefits.Repository             { return m.benefits }
func (m *fakeRepoManager) Recruiting(dbx.DBTX) recruiting.Repository         { return m.recruiting }
func (m *fakeRepoManager) Documents(dbx.DBTX) documents.Repository           { return m.documents }

// newTxDB returns a sqlmock database that accepts n transactions, each
// committed when commit is true and rolled back otherwise.
func newTxDB(t *testing.T, commits ...bool) *sql.DB {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	for _, commit := range commits {
		mock.ExpectBegin()
		if commit {
			mock.ExpectCommit()
		} else {
			mock.ExpectRollback()
		}
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("sql expectations: %v", err)
		}
		db.Close()
	})
	return db
}

// ---- users

type fakeUsers struct {
	users.Repository
	byID map[string]*models.User
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	for _, x := range f.byID {
		if strings.EqualFold(x.Username, u.Username) || strings.EqualFold(x.Email, u.Email) {
			return nil, common.ErrorAlreadyExists
		}
	}
	c := *u
	c.ID = nextID("user")
	c.CreatedAt = time.Now()
	if c.PasswordChangedAt.IsZero() {
		c.PasswordChangedAt = time.Now()
	}
	f.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) GetByLogin(_ context.Context, login string) (*models.User, error) {
	for _, u := range f.byID {
		if strings.EqualFold(u.Username, login) || strings.EqualFold(u.Email, login) {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) List(context.Context) ([]*models.User, error) {
	var out []*models.User
	for _, u := range f.byID {
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (f *fakeUsers) Count(context.Context) (int, error) { return len(f.byID), nil }

func (f *fakeUsers) UpdatePassword(_ context.Context, id, hash string, mustChange bool) error {
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	u.MustChangePassword = mustChange
	u.PasswordChangedAt = time.Now()
	return nil
}

func (f *fakeUsers) TouchLogin(_ context.Context, id string, at time.Time) error {
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.LastLoginAt = &at
	return nil
}

// ---- sessions

type fakeSessions struct {
	sessions.Repository
	byID map[string]*models.Session
}

func (f *fakeSessions) Create(_ context.Context, s *models.Session) (*models.Session, error) {
	c := *s
	c.ID = nextID("session")
	c.CreatedAt = time.Now()
	c.LastActivity = c.CreatedAt
	f.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeSessions) FindValid(_ context.Context, hash string) (*models.Session, error) {
	for _, s := range f.byID {
		if s.TokenHash == hash && s.ExpiresAt.After(time.Now()) {
			c := *s
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeSessions) Touch(_ context.Context, id string, expiresAt time.Time) error {
	s, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	s.ExpiresAt = expiresAt
	s.LastActivity = time.Now()
	return nil
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeSessions) DeleteByUser(_ context.Context, userID string) error {
	for id, s := range f.byID {
		if s.UserID == userID {
			delete(f.byID, id)
		}
	}
	return nil
}

func (f *fakeSessions) DeleteExpired(context.Context) (int64, error) {
	var n int64
	for id, s := range f.byID {
		if !s.ExpiresAt.After(time.Now()) {
			delete(f.byID, id)
			n++
		}
	}
	return n, nil
}

// ---- mfa

type fakeMFA struct {
	mfa.Repository
	byUser map[string]*models.MFASettings
	// stale, when set for a user, is what Get returns instead of the
	// stored row: a read that raced with another request's write.
	stale map[string]*models.MFASettings
}

func (f *fakeMFA) Get(_ context.Context, userID string) (*models.MFASettings, error) {
	m, ok := f.byUser[userID]
	if s, isStale := f.stale[userID]; isStale {
		m, ok = s, true
	}
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *m
	c.BackupCodes = append([]string(nil), m.BackupCodes...)
	return &c, nil
}

func (f *fakeMFA) Save(_ context.Context, m *models.MFASettings) error {
	c := *m
	c.BackupCodes = append([]string(nil), m.BackupCodes...)
	f.byUser[m.UserID] = &c
	return nil
}

func (f *fakeMFA) SetBackupCodes(_ context.Context, userID string, hashes []string) error {
	m, ok := f.byUser[userID]
	if !ok {
		return common.ErrorNotFound
	}
	m.BackupCodes = append([]string(nil), hashes...)
	return nil
}

func (f *fakeMFA) ConsumeBackupCode(_ context.Context, userID, hash string) (bool, error) {
	m, ok := f.byUser[userID]
	if !ok {
		return false, nil
	}
	for i, h := range m.BackupCodes {
		if h == hash {
			m.BackupCodes = append(append([]string(nil), m.BackupCodes[:i]...), m.BackupCodes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMFA) Delete(_ context.Context, userID string) error {
	if _, ok := f.byUser[userID]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byUser, userID)
	return nil
}

// ---- trusted devices

type fakeDevices struct {
	trusteddevices.Repository
	byID map[string]*models.TrustedDevice
}

func (f *fakeDevices) Create(_ context.Context, d *models.TrustedDevice) (*models.TrustedDevice, error) {
	c := *d
	c.ID = nextID("device")
	c.CreatedAt = time.Now()
	f.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeDevices) FindValid(_ context.Context, userID, hash string) (*models.TrustedDevice, error) {
	for _, d := range f.byID {
		if d.UserID == userID && d.FingerprintHash == hash && d.ExpiresAt.After(time.Now()) {
			c := *d
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeDevices) Touch(_ context.Context, id string) error {
	d, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	d.LastUsedAt = time.Now()
	return nil
}

func (f *fakeDevices) ListByUser(_ context.Context, userID string) ([]*models.TrustedDevice, error) {
	var out []*models.TrustedDevice
	for _, d := range f.byID {
		if d.UserID == userID {
			c := *d
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeDevices) Delete(_ context.Context, userID, id string) error {
	d, ok := f.byID[id]
	if !ok || d.UserID != userID {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeDevices) DeleteByUser(_ context.Context, userID string) error {
	for id, d := range f.byID {
		if d.UserID == userID {
			delete(f.byID, id)
		}
	}
	return nil
}

func (f *fakeDevices) DeleteExpired(context.Context) (int64, error) {
	var n int64
	for id, d := range f.byID {
		if !d.ExpiresAt.After(time.Now()) {
			delete(f.byID, id)
			n++
		}
	}
	return n, nil
}

// ---- employees

type fakeEmployees struct {
	employees.Repository
	byID     map[string]*models.Employee
	depts    []*models.Department
	reassign map[string]int64
}

func (f *fakeEmployees) add(e models.Employee) *models.Employee {
	if e.ID == "" {
		e.ID = nextID("emp")
	}
	if e.Status == "" {
		e.Status = common.EmployeeStatusActive
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	f.byID[e.ID] = &e
	return &e
}

func (f *fakeEmployees) Create(_ context.Context, e *models.Employee) (*models.Employee, error) {
	c := f.add(*e)
	out := *c
	return &out, nil
}

func (f *fakeEmployees) Get(_ context.Context, id string) (*models.Employee, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *e
	return &c, nil
}

func (f *fakeEmployees) current() []*models.Employee {
	var out []*models.Employee
	for _, e := range f.byID {
		if e.Status != common.EmployeeStatusTerminated {
			c := *e
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeEmployees) List(_ context.Context, flt models.EmployeeFilter) ([]*models.Employee, error) {
	var out []*models.Employee
	for _, e := range f.byID {
		if flt.ExcludeTerminated && e.Status == common.EmployeeStatusTerminated {
			continue
		}
		if flt.Status != "" && e.Status != flt.Status {
			continue
		}
		c := *e
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeEmployees) Update(_ context.Context, e *models.Employee) error {
	if _, ok := f.byID[e.ID]; !ok {
		return common.ErrorNotFound
	}
	c := *e
	f.byID[e.ID] = &c
	return nil
}

func (f *fakeEmployees) Terminate(_ context.Context, id string, date timex.Date, reason string) error {
	e, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	e.Status = common.EmployeeStatusTerminated
	e.TerminationDate = date
	e.TerminationReason = reason
	return nil
}

func (f *fakeEmployees) CreateDepartment(_ context.Context, name string) (*models.Department, error) {
	for _, d := range f.depts {
		if strings.EqualFold(d.Name, name) {
			return nil, common.ErrorAlreadyExists
		}
	}
	d := &models.Department{ID: nextID("dept"), Name: name}
	f.depts = append(f.depts, d)
	return d, nil
}

func (f *fakeEmployees) ListDepartments(context.Context) ([]*models.Department, error) {
	return f.depts, nil
}

func (f *fakeEmployees) FindByExactName(_ context.Context, first, last string) (*models.Employee, error) {
	for _, e := range f.current() {
		if strings.EqualFold(e.FirstName, first) && strings.EqualFold(e.LastName, last) {
			return e, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeEmployees) ListWithNickname(context.Context) ([]*models.Employee, error) {
	var out []*models.Employee
	for _, e := range f.current() {
		if e.Nickname != "" {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEmployees) FindByEmail(_ context.Context, email string) (*models.Employee, error) {
	for _, e := range f.current() {
		if e.Email != "" && strings.EqualFold(e.Email, email) {
			return e, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeEmployees) ListByLastName(_ context.Context, last string) ([]*models.Employee, error) {
	var out []*models.Employee
	for _, e := range f.current() {
		if strings.EqualFold(e.LastName, last) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEmployees) FindByFullName(_ context.Context, name string) (*models.Employee, error) {
	for _, e := range f.current() {
		if strings.EqualFold(e.FullName(), name) {
			return e, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeEmployees) FindByPhoneDigits(context.Context, string) (*models.Employee, error) {
	return nil, common.ErrorNotFound
}

func (f *fakeEmployees) Reassign(context.Context, string, string) (map[string]int64, error) {
	if f.reassign == nil {
		return map[string]int64{}, nil
	}
	return f.reassign, nil
}

// ---- time entries and commissions

type fakeEntries struct {
	timeentries.Repository
	byID        map[string]*models.TimeEntry
	commissions map[string]*models.Commission
}

func (f *fakeEntries) Create(_ context.Context, e *models.TimeEntry) (*models.TimeEntry, error) {
	for _, x := range f.byID {
		if x.EmployeeID == e.EmployeeID && x.WorkDate == e.WorkDate {
			return nil, common.ErrorAlreadyExists
		}
	}
	c := *e
	c.ID = nextID("entry")
	f.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeEntries) InsertIfAbsent(ctx context.Context, e *models.TimeEntry) (bool, error) {
	if _, err := f.Create(ctx, e); err != nil {
		if err == common.ErrorAlreadyExists {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (f *fakeEntries) Get(_ context.Context, id string) (*models.TimeEntry, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *e
	return &c, nil
}

func (f *fakeEntries) List(_ context.Context, flt models.TimeEntryFilter) ([]*models.TimeEntry, error) {
	var out []*models.TimeEntry
	for _, e := range f.byID {
		switch {
		case flt.EmployeeID != "" && e.EmployeeID != flt.EmployeeID,
			flt.Status != "" && e.Status != flt.Status,
			!flt.Start.IsZero() && e.WorkDate.Before(flt.Start),
			!flt.End.IsZero() && e.WorkDate.After(flt.End):
			continue
		}
		c := *e
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WorkDate.Before(out[j].WorkDate) })
	return out, nil
}

func (f *fakeEntries) Update(_ context.Context, e *models.TimeEntry) error {
	if _, ok := f.byID[e.ID]; !ok {
		return common.ErrorNotFound
	}
	c := *e
	f.byID[e.ID] = &c
	return nil
}

func (f *fakeEntries) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeEntries) Approve(_ context.Context, start, end timex.Date, employeeID string) (int64, error) {
	var n int64
	for _, e := range f.byID {
		if e.Status == models.TimeEntryPending && e.WorkDate.Between(start, end) && (employeeID == "" || e.EmployeeID == employeeID) {
			e.Status = models.TimeEntryApproved
			n++
		}
	}
	return n, nil
}

func (f *fakeEntries) UpsertCommission(_ context.Context, c *models.Commission) error {
	for _, x := range f.commissions {
		if x.EmployeeID == c.EmployeeID && x.PeriodStart == c.PeriodStart && x.PeriodEnd == c.PeriodEnd && x.Kind == c.Kind {
			x.Amount = c.Amount
			c.ID = x.ID
			return nil
		}
	}
	n := *c
	n.ID = nextID("commission")
	f.commissions[n.ID] = &n
	c.ID = n.ID
	return nil
}

func (f *fakeEntries) ListCommissions(_ context.Context, employeeID string, start, end timex.Date) ([]*models.Commission, error) {
	var out []*models.Commission
	for _, c := range f.commissions {
		if (employeeID == "" || c.EmployeeID == employeeID) && !c.PeriodStart.Before(start) && !c.PeriodEnd.After(end) {
			x := *c
			out = append(out, &x)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---- payrolls

type fakePayrolls struct {
	payrolls.Repository
	byID    map[string]*models.Payroll
	payouts []*models.VacationPayout
}

func (f *fakePayrolls) Save(_ context.Context, p *models.Payroll) (bool, error) {
	for _, x := range f.byID {
		if x.EmployeeID == p.EmployeeID && x.PeriodStart == p.PeriodStart && x.PeriodEnd == p.PeriodEnd {
			if x.Status != models.PayrollDraft {
				return false, nil
			}
			id := x.ID
			c := *p
			c.ID = id
			f.byID[id] = &c
			p.ID = id
			return true, nil
		}
	}
	c := *p
	c.ID = nextID("payroll")
	f.byID[c.ID] = &c
	p.ID = c.ID
	return true, nil
}

func (f *fakePayrolls) Get(_ context.Context, id string) (*models.Payroll, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *p
	return &c, nil
}

func (f *fakePayrolls) List(_ context.Context, flt models.PayrollFilter) ([]*models.Payroll, error) {
	var out []*models.Payroll
	for _, p := range f.byID {
		if (flt.EmployeeID == "" || p.EmployeeID == flt.EmployeeID) && (flt.Status == "" || p.Status == flt.Status) {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

func (f *fakePayrolls) transition(id, from, to string) error {
	p, ok := f.byID[id]
	if !ok || p.Status != from {
		return common.ErrorInvalidState
	}
	p.Status = to
	return nil
}

func (f *fakePayrolls) Approve(_ context.Context, id, approvedBy string) error {
	if err := f.transition(id, models.PayrollDraft, models.PayrollApproved); err != nil {
		return err
	}
	f.byID[id].ApprovedBy = &approvedBy
	return nil
}

func (f *fakePayrolls) MarkPaid(_ context.Context, id string) error {
	return f.transition(id, models.PayrollApproved, models.PayrollPaid)
}

func (f *fakePayrolls) Delete(_ context.Context, id string) error {
	if err := f.transition(id, models.PayrollDraft, ""); err != nil {
		return err
	}
	delete(f.byID, id)
	return nil
}

func (f *fakePayrolls) VacationBalances(_ context.Context, employeeID string) ([]*models.VacationBalance, error) {
	b := &models.VacationBalance{EmployeeID: employeeID}
	found := false
	for _, p := range f.byID {
		if p.EmployeeID == employeeID && p.Status != models.PayrollDraft {
			found = true
			b.HoursEarned = b.HoursEarned.Add(p.VacationHoursAccrued)
			b.PayEarned = b.PayEarned.Add(p.VacationPayAccrued)
		}
	}
	for _, po := range f.payouts {
		if po.EmployeeID == employeeID {
			found = true
			b.HoursPaid = b.HoursPaid.Add(po.Hours)
			b.PayPaid = b.PayPaid.Add(po.Amount)
		}
	}
	if !found {
		return nil, nil
	}
	b.HoursBalance = b.HoursEarned.Sub(b.HoursPaid)
	b.PayBalance = b.PayEarned.Sub(b.PayPaid)
	return []*models.VacationBalance{b}, nil
}

func (f *fakePayrolls) CreatePayout(_ context.Context, p *models.VacationPayout) (*models.VacationPayout, error) {
	c := *p
	c.ID = nextID("payout")
	f.payouts = append(f.payouts, &c)
	out := c
	return &out, nil
}

// ---- leave

type fakeLeave struct {
	leaverepo.Repository
	byID     map[string]*models.LeaveRequest
	policies []*models.LeavePolicy
	holidays map[string]*models.Holiday
}

func (f *fakeLeave) Create(_ context.Context, r *models.LeaveRequest) (*models.LeaveRequest, error) {
	c := *r
	c.ID = nextID("leave")
	f.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeLeave) Get(_ context.Context, id string) (*models.LeaveRequest, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *r
	return &c, nil
}

func (f *fakeLeave) List(_ context.Context, flt models.LeaveFilter) ([]*models.LeaveRequest, error) {
	var out []*models.LeaveRequest
	for _, r := range f.byID {
		switch {
		case flt.EmployeeID != "" && r.EmployeeID != flt.EmployeeID,
			flt.Status != "" && r.Status != flt.Status,
			!flt.From.IsZero() && r.EndDate.Before(flt.From),
			!flt.To.IsZero() && r.StartDate.After(flt.To):
			continue
		}
		c := *r
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (f *fakeLeave) Review(_ context.Context, id, status, reviewer, notes string) error {
	r, ok := f.byID[id]
	if !ok || r.Status != models.LeavePending {
		return common.ErrorInvalidState
	}
	r.Status = status
	r.ReviewedBy = &reviewer
	r.ReviewNotes = notes
	return nil
}

func (f *fakeLeave) Cancel(_ context.Context, id string) error {
	r, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	r.Status = models.LeaveCancelled
	return nil
}

func (f *fakeLeave) Overlapping(_ context.Context, employeeID string, start, end timex.Date) ([]*models.LeaveRequest, error) {
	var out []*models.LeaveRequest
	for _, r := range f.byID {
		if r.EmployeeID == employeeID && (r.Status == models.LeavePending || r.Status == models.LeaveApproved) &&
			!r.EndDate.Before(start) && !end.Before(r.StartDate) {
			c := *r
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeLeave) ListPolicies(context.Context) ([]*models.LeavePolicy, error) {
	return f.policies, nil
}

func (f *fakeLeave) ListHolidays(_ context.Context, from, to timex.Date) ([]*models.Holiday, error) {
	var out []*models.Holiday
	for _, h := range f.holidays {
		if h.Date.Between(from, to) {
			c := *h
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeLeave) CreateHoliday(_ context.Context, h *models.Holiday) (*models.Holiday, error) {
	c := *h
	c.ID = nextID("holiday")
	f.holidays[c.ID] = &c
	out := c
	return &out, nil
}

// ---- benefits

type fakeBenefits struct {
	benefits.Repository
	plans       map[string]*models.BenefitPlan
	enrollments map[string]*models.BenefitEnrollment
}

func (f *fakeBenefits) CreatePlan(_ context.Context, p *models.BenefitPlan) (*models.BenefitPlan, error) {
	c := *p
	c.ID = nextID("plan")
	f.plans[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeBenefits) GetPlan(_ context.Context, id string) (*models.BenefitPlan, error) {
	p, ok := f.plans[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *p
	return &c, nil
}

func (f *fakeBenefits) SetPlanActive(_ context.Context, id string, active bool) error {
	p, ok := f.plans[id]
	if !ok {
		return common.ErrorNotFound
	}
	p.Active = active
	return nil
}

func (f *fakeBenefits) Enroll(_ context.Context, e *models.BenefitEnrollment) (*models.BenefitEnrollment, error) {
	c := *e
	c.ID = nextID("enrollment")
	if p, ok := f.plans[c.PlanID]; ok {
		c.PlanName = p.Name
	}
	f.enrollments[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeBenefits) GetEnrollment(_ context.Context, id string) (*models.BenefitEnrollment, error) {
	e, ok := f.enrollments[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *e
	return &c, nil
}

func (f *fakeBenefits) ListEnrollments(_ context.Context, employeeID string) ([]*models.BenefitEnrollment, error) {
	var out []*models.BenefitEnrollment
	for _, e := range f.enrollments {
		if e.EmployeeID == employeeID {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeBenefits) CancelEnrollment(_ context.Context, id string, end timex.Date) error {
	e, ok := f.enrollments[id]
	if !ok {
		return common.ErrorNotFound
	}
	e.Status = models.EnrollmentCancelled
	e.EndDate = end
	return nil
}

func (f *fakeBenefits) ActiveEnrollments(_ context.Context, start, end timex.Date) ([]*models.BenefitEnrollment, error) {
	var out []*models.BenefitEnrollment
	for _, e := range f.enrollments {
		if e.Status == models.EnrollmentActive && !e.StartDate.After(end) && (e.EndDate.IsZero() || !e.EndDate.Before(start)) {
			c := *e
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---- recruiting

type fakeRecruiting struct {
	recruiting.Repository
	postings   map[string]*models.JobPosting
	candidates map[string]*models.Candidate
	interviews map[string]*models.Interview
}

func (f *fakeRecruiting) CreatePosting(_ context.Context, p *models.JobPosting) (*models.JobPosting, error) {
	c := *p
	c.ID = nextID("posting")
	f.postings[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeRecruiting) GetPosting(_ context.Context, id string) (*models.JobPosting, error) {
	p, ok := f.postings[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *p
	return &c, nil
}

func (f *fakeRecruiting) SetPostingStatus(_ context.Context, id, status string) error {
	p, ok := f.postings[id]
	if !ok {
		return common.ErrorNotFound
	}
	p.Status = status
	return nil
}

func (f *fakeRecruiting) CreateCandidate(_ context.Context, c *models.Candidate) (*models.Candidate, error) {
	for _, x := range f.candidates {
		if x.PostingID == c.PostingID && x.Email == c.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	n := *c
	n.ID = nextID("candidate")
	f.candidates[n.ID] = &n
	out := n
	return &out, nil
}

func (f *fakeRecruiting) GetCandidate(_ context.Context, id string) (*models.Candidate, error) {
	c, ok := f.candidates[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	x := *c
	return &x, nil
}

func (f *fakeRecruiting) SetCandidateStatus(_ context.Context, id, from, to string) error {
	c, ok := f.candidates[id]
	if !ok || c.Status != from {
		return common.ErrorConflict
	}
	c.Status = to
	return nil
}

func (f *fakeRecruiting) CreateInterview(_ context.Context, i *models.Interview) (*models.Interview, error) {
	c := *i
	c.ID = nextID("interview")
	f.interviews[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeRecruiting) RecordFeedback(_ context.Context, id, feedback string, rating int) error {
	i, ok := f.interviews[id]
	if !ok {
		return common.ErrorNotFound
	}
	i.Feedback = feedback
	i.Rating = rating
	return nil
}

// ---- documents

type fakeDocuments struct {
	documents.Repository
	byID map[string]*models.Document
}

func (f *fakeDocuments) Create(_ context.Context, d *models.Document) (*models.Document, error) {
	c := *d
	c.ID = nextID("doc")
	f.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeDocuments) Get(_ context.Context, id string) (*models.Document, error) {
	d, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *d
	return &c, nil
}

func (f *fakeDocuments) MarkUploaded(_ context.Context, id string, size int64) error {
	d, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	d.Uploaded = true
	d.Size = size
	return nil
}

func (f *fakeDocuments) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
