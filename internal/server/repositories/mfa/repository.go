// Package mfa stores per-user TOTP settings and backup codes.
package mfa

import (
	"context"

	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
)

type Repository interface {
	// Get returns common.ErrorNotFound when the user never started MFA setup.
	Get(ctx context.Context, userID string) (*models.MFASettings, error)
	// Save inserts or replaces the settings row.
	Save(ctx context.Context, m *models.MFASettings) error
	SetBackupCodes(ctx context.Context, userID string, hashes []string) error
	// ConsumeBackupCode removes one stored hash in a single statement. It
	// reports false when the hash was already gone, so concurrent logins
	// cannot both spend the same code.
	ConsumeBackupCode(ctx context.Context, userID, hash string) (bool, error)
	Delete(ctx context.Context, userID string) error
}
