package directories

import (
	"context"

	"github.com/dmitrijs2005/gophvault/internal/server/models"
)

type Repository interface {
	// Create stores d and fills its ID and CreatedAt. A sibling with the same
	// name yields common.ErrConflict.
	Create(ctx context.Context, d *models.Directory) (*models.Directory, error)
	FindByPath(ctx context.Context, ownerID, path string) (*models.Directory, error)
	// FindChild looks up name below parentID; a nil parentID means the root.
	FindChild(ctx context.Context, ownerID string, parentID *string, name string) (*models.Directory, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Directory, error)
}
