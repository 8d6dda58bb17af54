package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/cryptox"
	"github.com/dmitrijs2005/hrkeeper/internal/dbx"
	"github.com/dmitrijs2005/hrkeeper/internal/server/config"
	"github.com/dmitrijs2005/hrkeeper/internal/server/leave"
	"github.com/dmitrijs2005/hrkeeper/internal/server/matching"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
)

// MergeResult describes a completed duplicate merge.
type MergeResult struct {
	Target        *models.Employee `json:"target"`
	SourceID      string           `json:"source_id"`
	Moved         map[string]int64 `json:"moved"`
	ChangedFields []string         `json:"changed_fields"`
}

type EmployeeService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	box           *cryptox.Box
	companyDomain string
	now           func() time.Time
}

func NewEmployeeService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, box *cryptox.Box) *EmployeeService {
	return &EmployeeService{
		db:            db,
		repomanager:   m,
		box:           box,
		companyDomain: cfg.CompanyEmailDomain,
		now:           time.Now,
	}
}

func (s *EmployeeService) today() timex.Date {
	return timex.DateOf(s.now())
}

// seal encrypts the sensitive fields. Empty plaintext keeps whatever
// ciphertext the record already carries.
func (s *EmployeeService) seal(e *models.Employee) error {
	if e.SIN != "" {
		b, err := s.box.EncryptString(e.SIN)
		if err != nil {
			return err
		}
		e.SINEncrypted = b
	}
	if e.BankAccount != "" {
		b, err := s.box.EncryptString(e.BankAccount)
		if err != nil {
			return err
		}
		e.BankEncrypted = b
	}
	return nil
}

func (s *EmployeeService) open(e *models.Employee) error {
	if len(e.SINEncrypted) > 0 {
		v, err := s.box.DecryptString(e.SINEncrypted)
		if err != nil {
			return err
		}
		e.SIN = v
	}
	if len(e.BankEncrypted) > 0 {
		v, err := s.box.DecryptString(e.BankEncrypted)
		if err != nil {
			return err
		}
		e.BankAccount = v
	}
	return nil
}

func normalizeEmployee(e *models.Employee) error {
	e.FirstName = strings.TrimSpace(e.FirstName)
	e.LastName = strings.TrimSpace(e.LastName)
	e.Email = strings.ToLower(strings.TrimSpace(e.Email))
	e.Phone = strings.TrimSpace(e.Phone)
	if e.FirstName == "" {
		return fmt.Errorf("%w: first name is required", common.ErrorValidation)
	}
	if e.HourlyRate.IsNegative() {
		return fmt.Errorf("%w: hourly rate must not be negative", common.ErrorValidation)
	}
	switch e.Status {
	case "":
		e.Status = common.EmployeeStatusActive
	case common.EmployeeStatusActive, common.EmployeeStatusOnLeave, common.EmployeeStatusTerminated:
	default:
		return fmt.Errorf("%w: unknown status %q", common.ErrorValidation, e.Status)
	}
	if e.WorkSchedule != "" {
		if _, err := leave.ParseSchedule(strings.Split(e.WorkSchedule, ",")); err != nil {
			return err
		}
	}
	return nil
}

// List returns employees without their sensitive fields.
func (s *EmployeeService) List(ctx context.Context, f models.EmployeeFilter) ([]*models.Employee, error) {
	return s.repomanager.Employees(s.db).List(ctx, f)
}

// Get returns one employee with SIN and bank account decrypted.
func (s *EmployeeService) Get(ctx context.Context, id string) (*models.Employee, error) {
	e, err := s.repomanager.Employees(s.db).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.open(e); err != nil {
		return nil, common.ErrorInternal
	}
	return e, nil
}

func (s *EmployeeService) Create(ctx context.Context, e *models.Employee) (*models.Employee, error) {
	if err := normalizeEmployee(e); err != nil {
		return nil, err
	}
	if e.HireDate.IsZero() {
		e.HireDate = s.today()
	}
	if e.OnboardingSource == "" {
		e.OnboardingSource = common.SourceManual
	}
	if err := s.seal(e); err != nil {
		return nil, common.ErrorInternal
	}
	created, err := s.repomanager.Employees(s.db).Create(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("error creating employee: %w", err)
	}
	created.SIN, created.BankAccount = e.SIN, e.BankAccount
	return created, nil
}

func (s *EmployeeService) Update(ctx context.Context, e *models.Employee) error {
	repo := s.repomanager.Employees(s.db)
	current, err := repo.Get(ctx, e.ID)
	if err != nil {
		return err
	}
	if err := normalizeEmployee(e); err != nil {
		return err
	}
	e.SINEncrypted, e.BankEncrypted = current.SINEncrypted, current.BankEncrypted
	if err := s.seal(e); err != nil {
		return common.ErrorInternal
	}
	return repo.Update(ctx, e)
}

func (s *EmployeeService) Terminate(ctx context.Context, id string, date timex.Date, reason string) error {
	if date.IsZero() {
		date = s.today()
	}
	return s.repomanager.Employees(s.db).Terminate(ctx, id, date, strings.TrimSpace(reason))
}

func (s *EmployeeService) ListDepartments(ctx context.Context) ([]*models.Department, error) {
	return s.repomanager.Employees(s.db).ListDepartments(ctx)
}

func (s *EmployeeService) CreateDepartment(ctx context.Context, name string) (*models.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: department name is required", common.ErrorValidation)
	}
	return s.repomanager.Employees(s.db).CreateDepartment(ctx, name)
}

// FindMatch runs the name matcher against current employees.
func (s *EmployeeService) FindMatch(ctx context.Context, q matching.Query) (*matching.Match, error) {
	return s.findMatch(ctx, s.db, q)
}

func (s *EmployeeService) findMatch(ctx context.Context, db dbx.DBTX, q matching.Query) (*matching.Match, error) {
	return matching.NewFinder(s.repomanager.Employees(db), s.companyDomain).Find(ctx, q)
}

// FindOrCreate returns the employee matching q, creating a minimal active
// record tagged with source when nobody matches.
func (s *EmployeeService) FindOrCreate(ctx context.Context, q matching.Query, source string) (*models.Employee, bool, error) {
	return s.findOrCreate(ctx, s.db, q, source)
}

func (s *EmployeeService) findOrCreate(ctx context.Context, db dbx.DBTX, q matching.Query, source string) (*models.Employee, bool, error) {
	m, err := s.findMatch(ctx, db, q)
	if err == nil {
		return m.Employee, false, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, false, err
	}

	first, last := strings.TrimSpace(q.FirstName), strings.TrimSpace(q.LastName)
	if first == "" {
		first, last = matching.SplitFullName(q.FullName)
	}
	if first == "" {
		return nil, false, fmt.Errorf("%w: employee name is required", common.ErrorValidation)
	}
	e := &models.Employee{
		FirstName:        first,
		LastName:         last,
		Email:            strings.ToLower(strings.TrimSpace(q.Email)),
		Phone:            strings.TrimSpace(q.Phone),
		HireDate:         s.today(),
		Status:           common.EmployeeStatusActive,
		OnboardingSource: source,
	}
	created, err := s.repomanager.Employees(db).Create(ctx, e)
	if err != nil {
		return nil, false, fmt.Errorf("error creating employee %q: %w", e.FullName(), err)
	}
	return created, true, nil
}

// FindDuplicates groups current employees with similar names, the record
// to keep first in each group.
func (s *EmployeeService) FindDuplicates(ctx context.Context) ([][]*models.Employee, error) {
	all, err := s.repomanager.Employees(s.db).List(ctx, models.EmployeeFilter{ExcludeTerminated: true})
	if err != nil {
		return nil, err
	}
	return matching.FindDuplicateGroups(all), nil
}

// Merge moves everything owned by sourceID to targetID, folds the source's
// fields into the target and terminates the source, all in one transaction.
func (s *EmployeeService) Merge(ctx context.Context, sourceID, targetID string) (*MergeResult, error) {
	if sourceID == "" || targetID == "" {
		return nil, fmt.Errorf("%w: source and target are required", common.ErrorValidation)
	}
	if sourceID == targetID {
		return nil, fmt.Errorf("%w: cannot merge an employee into itself", common.ErrorValidation)
	}

	res := &MergeResult{SourceID: sourceID}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Employees(tx)

		source, err := repo.Get(ctx, sourceID)
		if err != nil {
			return err
		}
		target, err := repo.Get(ctx, targetID)
		if err != nil {
			return err
		}
		if target.Status == common.EmployeeStatusTerminated {
			return fmt.Errorf("%w: target employee is terminated", common.ErrorInvalidState)
		}
		if err := s.open(source); err != nil {
			return err
		}
		if err := s.open(target); err != nil {
			return err
		}

		moved, err := repo.Reassign(ctx, sourceID, targetID)
		if err != nil {
			return err
		}

		origin := source.OnboardingSource
		if origin == "" {
			origin = common.SourceManual
		}
		merged, changed := matching.Merge(target, source, origin)
		if len(changed) > 0 {
			if err := s.seal(merged); err != nil {
				return err
			}
			if err := repo.Update(ctx, merged); err != nil {
				return err
			}
		}

		if source.Status != common.EmployeeStatusTerminated {
			reason := fmt.Sprintf("merged into %s", target.FullName())
			if err := repo.Terminate(ctx, sourceID, s.today(), reason); err != nil {
				return err
			}
		}

		res.Target = merged
		res.Moved = moved
		res.ChangedFields = changed
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error merging employees: %w", err)
	}
	return res, nil
}
