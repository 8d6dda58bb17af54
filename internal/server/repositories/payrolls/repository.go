// Package payrolls stores calculated pay per employee and period, and
// vacation pay paid out from the accrued balance.
package payrolls

import (
	"context"

	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
)

type Repository interface {
	// Save inserts p or replaces the existing payroll of the same employee
	// and period while it is still a Draft. It reports false when an
	// approved or paid payroll blocked the write.
	Save(ctx context.Context, p *models.Payroll) (bool, error)
	Get(ctx context.Context, id string) (*models.Payroll, error)
	List(ctx context.Context, f models.PayrollFilter) ([]*models.Payroll, error)
	Approve(ctx context.Context, id, approvedBy string) error
	BulkApprove(ctx context.Context, start, end timex.Date, approvedBy string) (int64, error)
	MarkPaid(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context, start, end timex.Date) (*models.PayrollSummary, error)

	CreatePayout(ctx context.Context, p *models.VacationPayout) (*models.VacationPayout, error)
	ListPayouts(ctx context.Context, employeeID string) ([]*models.VacationPayout, error)
	// VacationBalances sums accrual of approved and paid payrolls against
	// payouts. An empty employeeID returns every employee with activity.
	VacationBalances(ctx context.Context, employeeID string) ([]*models.VacationBalance, error)
}
