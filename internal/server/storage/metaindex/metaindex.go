// Package metaindex is the flat key/value index of file metadata entries,
// keyed by blob id. It is the authoritative source for every access
// decision the vault makes.
package metaindex

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
)

// ErrNotFound is returned by Get for unknown keys.
var ErrNotFound = fmt.Errorf("metadata entry %w", common.ErrorNotFound)

type Index interface {
	Get(ctx context.Context, key string) (*models.MetadataEntry, error)
	// Set creates or replaces the entry under key.
	Set(ctx context.Context, key string, entry *models.MetadataEntry) error
	// Delete removes key; removing a missing key succeeds.
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]*models.MetadataEntry, error)
	Healthcheck(ctx context.Context) error
}

// Encode validates entry and serializes it for storage.
func Encode(entry *models.MetadataEntry) ([]byte, error) {
	if entry == nil {
		return nil, fmt.Errorf("%w: nil metadata entry", common.ErrorValidation)
	}
	if err := models.Validate(entry); err != nil {
		return nil, err
	}
	return json.Marshal(entry)
}

func Decode(data []byte) (*models.MetadataEntry, error) {
	entry := &models.MetadataEntry{}
	if err := json.Unmarshal(data, entry); err != nil {
		return nil, fmt.Errorf("decode metadata entry: %w", err)
	}
	return entry, nil
}
