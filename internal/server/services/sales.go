package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/dbx"
	"github.com/dmitrijs2005/hrkeeper/internal/server/matching"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/server/payroll"
	"github.com/dmitrijs2005/hrkeeper/internal/server/timecards"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
	"github.com/shopspring/decimal"
)

var hundredPct = decimal.NewFromInt(100)

// SalesCommissionRequest names the period of a sales performance report
// and the managers paid from it. With DryRun nothing is stored.
type SalesCommissionRequest struct {
	Start    timex.Date
	End      timex.Date
	Managers []payroll.SalesManager
	DryRun   bool
}

// SalesCommissionSummary is the calculation plus what was stored.
type SalesCommissionSummary struct {
	*payroll.SalesCommissions
	File        string               `json:"file"`
	PeriodStart timex.Date           `json:"pay_period_start"`
	PeriodEnd   timex.Date           `json:"pay_period_end"`
	DryRun      bool                 `json:"dry_run"`
	Stored      int                  `json:"stored"`
	Errors      []timecards.RowError `json:"errors"`
}

// CalculateSalesCommissions pays agents by booking tier and managers from
// the pooled revenue of a sales performance report. Names are matched but
// never create employees. Stored amounts replace the period's commission
// of each employee.
func (s *TimecardService) CalculateSalesCommissions(ctx context.Context, r io.Reader, filename string, req SalesCommissionRequest) (*SalesCommissionSummary, error) {
	if req.Start.IsZero() || req.End.IsZero() || req.End.Before(req.Start) {
		return nil, fmt.Errorf("%w: a valid pay period is required", common.ErrorValidation)
	}
	managers := map[string]bool{}
	for _, m := range req.Managers {
		if m.EmployeeID == "" {
			return nil, fmt.Errorf("%w: manager employee id is required", common.ErrorValidation)
		}
		if m.FixedPct != nil && (m.FixedPct.IsNegative() || m.FixedPct.GreaterThan(hundredPct)) {
			return nil, fmt.Errorf("%w: manager fixed percentage must be between 0 and 100", common.ErrorValidation)
		}
		managers[m.EmployeeID] = true
	}

	rows, err := timecards.ReadRows(r, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorValidation, err)
	}
	lines, rowErrs := timecards.ParseSalesSheet(rows)

	sum := &SalesCommissionSummary{
		File:        filepath.Base(filename),
		PeriodStart: req.Start,
		PeriodEnd:   req.End,
		DryRun:      req.DryRun,
		Errors:      append([]timecards.RowError{}, rowErrs...),
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		perf := make([]payroll.SalesPerformance, 0, len(lines))
		for _, l := range lines {
			p := payroll.SalesPerformance{Name: l.Name, Role: payroll.SalesRoleAgent, BookingPct: l.BookingPct, Revenue: l.Revenue}
			m, err := s.employees.findMatch(ctx, tx, matching.Query{FullName: l.Name})
			switch {
			case err == nil:
				p.EmployeeID = m.Employee.ID
				p.Name = m.Employee.FullName()
				if managers[p.EmployeeID] {
					p.Role = payroll.SalesRoleManager
				}
			case !errors.Is(err, common.ErrorNotFound):
				return err
			}
			perf = append(perf, p)
		}
		sum.SalesCommissions = payroll.ComputeSalesCommissions(perf, req.Managers)
		if req.DryRun {
			return nil
		}

		repo := s.repomanager.TimeEntries(tx)
		store := func(employeeID string, c *models.Commission) error {
			c.EmployeeID = employeeID
			c.PeriodStart, c.PeriodEnd = req.Start, req.End
			c.Kind = models.CommissionKindCommission
			c.Source = sum.File
			if err := repo.UpsertCommission(ctx, c); err != nil {
				return err
			}
			sum.Stored++
			return nil
		}
		for _, a := range sum.Agents {
			if !a.Amount.IsPositive() {
				continue
			}
			if err := store(a.EmployeeID, &models.Commission{Amount: a.Amount}); err != nil {
				return err
			}
		}
		for _, m := range sum.Managers {
			if !m.Amount.IsPositive() {
				continue
			}
			if err := store(m.EmployeeID, &models.Commission{Amount: m.Amount}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error calculating sales commissions: %w", err)
	}
	return sum, nil
}
