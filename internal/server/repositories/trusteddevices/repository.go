// Package trusteddevices stores browsers that may skip the MFA prompt
// until their trust expires.
package trusteddevices

import (
	"context"

	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, d *models.TrustedDevice) (*models.TrustedDevice, error)
	// FindValid returns the unexpired device of userID with the given
	// fingerprint hash, or common.ErrorNotFound.
	FindValid(ctx context.Context, userID, fingerprintHash string) (*models.TrustedDevice, error)
	Touch(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]*models.TrustedDevice, error)
	Delete(ctx context.Context, userID, id string) error
	DeleteByUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
