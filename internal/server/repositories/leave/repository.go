// Package leave persists leave requests, yearly allowances and holidays.
package leave

import (
	"context"

	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
)

type Repository interface {
	Create(ctx context.Context, r *models.LeaveRequest) (*models.LeaveRequest, error)
	Get(ctx context.Context, id string) (*models.LeaveRequest, error)
	List(ctx context.Context, f models.LeaveFilter) ([]*models.LeaveRequest, error)
	// Review moves a pending request to status and records the reviewer.
	Review(ctx context.Context, id, status, reviewer, notes string) error
	Cancel(ctx context.Context, id string) error
	// Overlapping returns pending or approved requests of the employee that
	// share at least one day with [start, end].
	Overlapping(ctx context.Context, employeeID string, start, end timex.Date) ([]*models.LeaveRequest, error)

	ListPolicies(ctx context.Context) ([]*models.LeavePolicy, error)
	SavePolicy(ctx context.Context, p *models.LeavePolicy) error

	ListHolidays(ctx context.Context, from, to timex.Date) ([]*models.Holiday, error)
	CreateHoliday(ctx context.Context, h *models.Holiday) (*models.Holiday, error)
	DeleteHoliday(ctx context.Context, id string) error
}
