package users

import (
	"context"

	"github.com/dmitrijs2005/gophvault/internal/server/models"
)

type Repository interface {
	// Create inserts u and fills its ID and CreatedAt. A taken username or
	// email yields common.ErrConflict.
	Create(ctx context.Context, u *models.User) (*models.User, error)
	GetByUserName(ctx context.Context, userName string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	ExistsByUserNameOrEmail(ctx context.Context, userName, email string) (bool, error)
}
