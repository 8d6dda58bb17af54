// Package timeentries persists timecard lines and imported commissions.
package timeentries

import (
	"context"

	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
)

type Repository interface {
	Create(ctx context.Context, e *models.TimeEntry) (*models.TimeEntry, error)
	// InsertIfAbsent adds e unless the employee already has an entry on
	// that date. It reports whether a row was inserted.
	InsertIfAbsent(ctx context.Context, e *models.TimeEntry) (bool, error)
	Get(ctx context.Context, id string) (*models.TimeEntry, error)
	List(ctx context.Context, f models.TimeEntryFilter) ([]*models.TimeEntry, error)
	Update(ctx context.Context, e *models.TimeEntry) error
	Delete(ctx context.Context, id string) error
	// Approve marks pending entries in [start, end] approved. An empty
	// employeeID approves everyone's.
	Approve(ctx context.Context, start, end timex.Date, employeeID string) (int64, error)

	UpsertCommission(ctx context.Context, c *models.Commission) error
	// ListCommissions returns commissions whose period lies within [start, end].
	ListCommissions(ctx context.Context, employeeID string, start, end timex.Date) ([]*models.Commission, error)
	DeleteCommission(ctx context.Context, id string) error
}
