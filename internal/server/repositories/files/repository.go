package files

import (
	"context"

	"github.com/dmitrijs2005/gophvault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, f *models.FileRecord) (*models.FileRecord, error)
	GetByBlobID(ctx context.Context, blobID string) (*models.FileRecord, error)
	UpdateVisibility(ctx context.Context, blobID string, v models.Visibility) error
	Delete(ctx context.Context, blobID string) error
	ListByOwner(ctx context.Context, ownerID string) ([]*models.FileRecord, error)
}
