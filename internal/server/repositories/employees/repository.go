// Package employees persists employee records and departments, and serves
// the lookups used by name matching and duplicate merging.
package employees

import (
	"context"

	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
)

type Repository interface {
	Create(ctx context.Context, e *models.Employee) (*models.Employee, error)
	Get(ctx context.Context, id string) (*models.Employee, error)
	List(ctx context.Context, f models.EmployeeFilter) ([]*models.Employee, error)
	Update(ctx context.Context, e *models.Employee) error
	Terminate(ctx context.Context, id string, date timex.Date, reason string) error

	CreateDepartment(ctx context.Context, name string) (*models.Department, error)
	// EnsureDepartment returns the department with name, creating it if needed.
	EnsureDepartment(ctx context.Context, name string) (*models.Department, error)
	ListDepartments(ctx context.Context) ([]*models.Department, error)

	// Lookups for name matching. Terminated employees are never returned.
	FindByExactName(ctx context.Context, first, last string) (*models.Employee, error)
	ListWithNickname(ctx context.Context) ([]*models.Employee, error)
	FindByEmail(ctx context.Context, email string) (*models.Employee, error)
	ListByLastName(ctx context.Context, last string) ([]*models.Employee, error)
	FindByFullName(ctx context.Context, name string) (*models.Employee, error)
	FindByPhoneDigits(ctx context.Context, digits string) (*models.Employee, error)

	// Reassign moves every record owned by fromID to toID. Rows that would
	// collide with one toID already has are dropped. It returns the number
	// of moved rows per table.
	Reassign(ctx context.Context, fromID, toID string) (map[string]int64, error)
}
