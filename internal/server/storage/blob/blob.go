// Package blob defines the store that holds raw file bytes. The store
// assigns the id on write; the id is what the metadata index and the file
// records refer to.
package blob

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophvault/internal/common"
)

// ErrNotFound is returned by Get when no bytes exist under the id.
// It matches common.ErrorNotFound as well.
var ErrNotFound = fmt.Errorf("blob %w", common.ErrorNotFound)

type Store interface {
	// Put stores data and returns the id it can be fetched by. name is a
	// hint only (content type, debugging); ids never collide across names.
	Put(ctx context.Context, name string, data []byte) (string, error)
	Get(ctx context.Context, id string) ([]byte, error)
	// Delete removes the bytes under id. Deleting a missing id succeeds.
	Delete(ctx context.Context, id string) error
	Healthcheck(ctx context.Context) error
}
