// Package sessions stores server-side login sessions keyed by the hash of
// their bearer token.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.Session) (*models.Session, error)
	// FindValid returns the unexpired session with the given token hash or
	// common.ErrorNotFound.
	FindValid(ctx context.Context, tokenHash string) (*models.Session, error)
	// Touch records activity and slides the expiry.
	Touch(ctx context.Context, id string, expiresAt time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
