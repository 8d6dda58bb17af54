package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByLogin matches username or email, case-insensitively.
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
	UpdatePassword(ctx context.Context, id, hash string, mustChange bool) error
	TouchLogin(ctx context.Context, id string, at time.Time) error
	Update(ctx context.Context, user *models.User) error
}
