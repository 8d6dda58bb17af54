package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/dbx"
	"github.com/dmitrijs2005/hrkeeper/internal/server/matching"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hrkeeper/internal/server/timecards"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
	"github.com/shopspring/decimal"
)

// CommissionSummary is returned by a commission import.
type CommissionSummary struct {
	File             string               `json:"file"`
	PeriodStart      timex.Date           `json:"pay_period_start"`
	PeriodEnd        timex.Date           `json:"pay_period_end"`
	Imported         int                  `json:"imported"`
	Total            decimal.Decimal      `json:"total"`
	EmployeesMatched int                  `json:"employees_matched"`
	EmployeesCreated int                  `json:"employees_created"`
	Errors           []timecards.RowError `json:"errors"`
}

type TimecardService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	employees   *EmployeeService
	now         func() time.Time
}

func NewTimecardService(db *sql.DB, m repomanager.RepositoryManager, employees *EmployeeService) *TimecardService {
	return &TimecardService{db: db, repomanager: m, employees: employees, now: time.Now}
}

func (s *TimecardService) ListEntries(ctx context.Context, f models.TimeEntryFilter) ([]*models.TimeEntry, error) {
	if !f.Start.IsZero() && !f.End.IsZero() && f.End.Before(f.Start) {
		return nil, fmt.Errorf("%w: end date before start date", common.ErrorValidation)
	}
	return s.repomanager.TimeEntries(s.db).List(ctx, f)
}

func validateEntry(e *models.TimeEntry) error {
	switch {
	case e.EmployeeID == "":
		return fmt.Errorf("%w: employee is required", common.ErrorValidation)
	case e.WorkDate.IsZero():
		return fmt.Errorf("%w: work date is required", common.ErrorValidation)
	case !e.Hours.IsPositive() || e.Hours.GreaterThan(timecards.MaxDailyHours):
		return fmt.Errorf("%w: hours must be between 0 and 24", common.ErrorValidation)
	case e.OvertimeHours.IsNegative() || e.OvertimeHours.GreaterThan(e.Hours):
		return fmt.Errorf("%w: overtime must be between 0 and the hours worked", common.ErrorValidation)
	}
	if e.ClockIn != "" {
		v, ok := timecards.ParseTime(e.ClockIn)
		if !ok {
			return fmt.Errorf("%w: invalid clock-in time %q", common.ErrorValidation, e.ClockIn)
		}
		e.ClockIn = v
	}
	if e.ClockOut != "" {
		v, ok := timecards.ParseTime(e.ClockOut)
		if !ok {
			return fmt.Errorf("%w: invalid clock-out time %q", common.ErrorValidation, e.ClockOut)
		}
		e.ClockOut = v
	}
	return nil
}

func (s *TimecardService) CreateEntry(ctx context.Context, e *models.TimeEntry) (*models.TimeEntry, error) {
	if err := validateEntry(e); err != nil {
		return nil, err
	}
	if _, err := s.repomanager.Employees(s.db).Get(ctx, e.EmployeeID); err != nil {
		return nil, err
	}
	e.Status = models.TimeEntryPending
	if e.Source == "" {
		e.Source = common.SourceManual
	}
	return s.repomanager.TimeEntries(s.db).Create(ctx, e)
}

// UpdateEntry edits a pending entry. Approved entries are frozen.
func (s *TimecardService) UpdateEntry(ctx context.Context, e *models.TimeEntry) error {
	repo := s.repomanager.TimeEntries(s.db)
	current, err := repo.Get(ctx, e.ID)
	if err != nil {
		return err
	}
	if current.Status == models.TimeEntryApproved {
		return fmt.Errorf("%w: approved entries cannot be edited", common.ErrorInvalidState)
	}
	e.EmployeeID = current.EmployeeID
	if err := validateEntry(e); err != nil {
		return err
	}
	if e.Status == "" {
		e.Status = current.Status
	}
	return repo.Update(ctx, e)
}

func (s *TimecardService) DeleteEntry(ctx context.Context, id string) error {
	repo := s.repomanager.TimeEntries(s.db)
	current, err := repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.Status == models.TimeEntryApproved {
		return fmt.Errorf("%w: approved entries cannot be deleted", common.ErrorInvalidState)
	}
	return repo.Delete(ctx, id)
}

// Approve approves pending entries dated within [start, end].
func (s *TimecardService) Approve(ctx context.Context, start, end timex.Date, employeeID string) (int64, error) {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return 0, fmt.Errorf("%w: a valid date range is required", common.ErrorValidation)
	}
	return s.repomanager.TimeEntries(s.db).Approve(ctx, start, end, employeeID)
}

// Import reads a timecard spreadsheet and stores one pending entry per
// employee and day. Days that already have an entry are skipped, and
// unknown names create employees tagged as timecard imports.
func (s *TimecardService) Import(ctx context.Context, r io.Reader, filename string) (*timecards.Summary, error) {
	rows, err := timecards.ReadRows(r, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorValidation, err)
	}
	sheet := timecards.ParseSheet(rows)

	sum := &timecards.Summary{
		File:        filepath.Base(filename),
		PeriodStart: sheet.PeriodStart,
		PeriodEnd:   sheet.PeriodEnd,
		Errors:      append([]timecards.RowError{}, sheet.Errors...),
		Warnings:    append([]string{}, sheet.Warnings...),
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		resolved := map[string]*models.Employee{}
		entries := s.repomanager.TimeEntries(tx)

		for _, row := range sheet.Entries {
			key := matching.NormalizeName(row.EmployeeName)
			emp, ok := resolved[key]
			if !ok {
				found, created, ferr := s.employees.findOrCreate(ctx, tx, matching.Query{FullName: row.EmployeeName}, common.SourceTimecard)
				emp = found
				if ferr != nil {
					sum.Errors = append(sum.Errors, timecards.RowError{Row: row.Row, Employee: row.EmployeeName, Reason: ferr.Error()})
					resolved[key] = nil
					continue
				}
				resolved[key] = emp
				if created {
					sum.EmployeesCreated++
				} else {
					sum.EmployeesMatched++
				}
			}
			if emp == nil {
				continue
			}

			entry := &models.TimeEntry{
				EmployeeID:    emp.ID,
				WorkDate:      row.Date,
				ClockIn:       row.ClockIn,
				ClockOut:      row.ClockOut,
				Hours:         row.Hours,
				OvertimeHours: row.Overtime,
				Status:        models.TimeEntryPending,
				Source:        common.SourceTimecard,
				Notes:         row.Notes,
			}
			if err := validateEntry(entry); err != nil {
				sum.Errors = append(sum.Errors, timecards.RowError{Row: row.Row, Employee: row.EmployeeName, Reason: err.Error()})
				continue
			}
			inserted, err := entries.InsertIfAbsent(ctx, entry)
			if err != nil {
				return err
			}
			if inserted {
				sum.EntriesInserted++
			} else {
				sum.EntriesSkipped++
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error importing timecards: %w", err)
	}
	return sum, nil
}

// ImportCommissions stores commission and bonus amounts of a sales report
// for a period. A zero period is read from the file name. Several rows for
// one employee are summed. Re-importing the same period replaces the
// amounts, and Imported counts the stored amounts.
func (s *TimecardService) ImportCommissions(ctx context.Context, r io.Reader, filename string, start, end timex.Date) (*CommissionSummary, error) {
	if start.IsZero() || end.IsZero() {
		var ok bool
		start, end, ok = timecards.ParsePeriod(strings.ReplaceAll(filepath.Base(filename), "_", " "))
		if !ok {
			return nil, fmt.Errorf("%w: pay period is required", common.ErrorValidation)
		}
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date before start date", common.ErrorValidation)
	}

	rows, err := timecards.ReadRows(r, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorValidation, err)
	}
	lines, errs := timecards.ParseCommissionSheet(rows)

	sum := &CommissionSummary{
		File:        filepath.Base(filename),
		PeriodStart: start,
		PeriodEnd:   end,
		Total:       decimal.Zero,
		Errors:      append([]timecards.RowError{}, errs...),
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		// rows resolving to the same employee and kind are added up before
		// storing, as the upsert keeps one amount per period
		type key struct{ employee, kind string }
		var order []key
		amounts := map[key]decimal.Decimal{}
		seen := map[string]bool{}

		for _, line := range lines {
			emp, created, err := s.employees.findOrCreate(ctx, tx, matching.Query{FullName: line.Name}, common.SourceCommission)
			if err != nil {
				sum.Errors = append(sum.Errors, timecards.RowError{Row: line.Row, Employee: line.Name, Reason: err.Error()})
				continue
			}
			if !seen[emp.ID] {
				seen[emp.ID] = true
				if created {
					sum.EmployeesCreated++
				} else {
					sum.EmployeesMatched++
				}
			}
			k := key{emp.ID, line.Kind}
			if _, ok := amounts[k]; !ok {
				order = append(order, k)
			}
			amounts[k] = amounts[k].Add(line.Amount)
		}

		repo := s.repomanager.TimeEntries(tx)
		for _, k := range order {
			err := repo.UpsertCommission(ctx, &models.Commission{
				EmployeeID:  k.employee,
				PeriodStart: start,
				PeriodEnd:   end,
				Amount:      amounts[k],
				Kind:        k.kind,
				Source:      sum.File,
			})
			if err != nil {
				return err
			}
			sum.Imported++
			sum.Total = sum.Total.Add(amounts[k])
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error importing commissions: %w", err)
	}
	return sum, nil
}

func (s *TimecardService) ListCommissions(ctx context.Context, employeeID string, start, end timex.Date) ([]*models.Commission, error) {
	return s.repomanager.TimeEntries(s.db).ListCommissions(ctx, employeeID, start, end)
}

func (s *TimecardService) DeleteCommission(ctx context.Context, id string) error {
	return s.repomanager.TimeEntries(s.db).DeleteCommission(ctx, id)
}
