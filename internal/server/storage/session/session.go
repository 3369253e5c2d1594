// Package session holds the CLI's single session slot: at most one
// {user_id, token} pair is recorded at a time, and logging in overwrites it.
package session

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
)

// ErrEmpty is returned by Get when nobody is logged in.
var ErrEmpty = fmt.Errorf("session slot empty: %w", common.ErrNoSession)

type Store interface {
	Get(ctx context.Context) (*models.Session, error)
	Set(ctx context.Context, s *models.Session) error
	Delete(ctx context.Context) error
	Healthcheck(ctx context.Context) error
}
