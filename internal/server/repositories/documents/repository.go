// Package documents keeps metadata of employee files held in object storage.
package documents

import (
	"context"

	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, d *models.Document) (*models.Document, error)
	Get(ctx context.Context, id string) (*models.Document, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]*models.Document, error)
	MarkUploaded(ctx context.Context, id string, size int64) error
	Delete(ctx context.Context, id string) error
}
