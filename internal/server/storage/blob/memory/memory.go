// Package memory keeps blobs in a map. Used in tests and with
// `-blob memory` for throwaway development servers.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophvault/internal/server/storage/blob"
	"github.com/google/uuid"
)

type Store struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func New() *Store {
	return &Store{blobs: make(map[string][]byte)}
}

func (s *Store) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()

	s.mu.Lock()
	s.blobs[id] = bytes.Clone(data)
	s.mu.Unlock()

	return id, nil
}

func (s *Store) Get(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, ok := s.blobs[id]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%q: %w", id, blob.ErrNotFound)
	}
	return bytes.Clone(data), nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.blobs, id)
	s.mu.Unlock()
	return nil
}

func (s *Store) Healthcheck(ctx context.Context) error {
	return ctx.Err()
}

// Len is the number of stored blobs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
