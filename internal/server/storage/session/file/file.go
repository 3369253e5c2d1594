// Package file keeps the session slot in a local JSON file. It is the
// fallback for machines without Redis.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/gophvault/internal/filex"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
	"github.com/dmitrijs2005/gophvault/internal/server/storage/session"
)

type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Get(ctx context.Context) (*models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, session.ErrEmpty
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	if err := models.Validate(&sess); err != nil {
		return nil, fmt.Errorf("%w: %w", session.ErrEmpty, err)
	}
	return &sess, nil
}

// Set replaces the file atomically with 0600 permissions.
func (s *Store) Set(ctx context.Context, sess *models.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := models.Validate(sess); err != nil {
		return err
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	if err := filex.WriteAtomic(s.path, data, 0o700, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// Healthcheck verifies the directory holding the slot exists.
func (s *Store) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return os.MkdirAll(dir, 0o700)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("session dir %q is not a directory", dir)
	}
	return nil
}
