// Package badger keeps the metadata index in an embedded BadgerDB.
//
// Badger locks its directory, so only one process can open an index at a
// time. Use the postgres or sqlite backend when the server and the CLI share
// one index.
package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
	"github.com/dmitrijs2005/gophvault/internal/server/storage/metaindex"
)

const keyPrefix = "m:"

type Index struct {
	db *badger.DB
}

// Open opens (or creates) the database in dir. An empty dir keeps
// everything in memory.
func Open(dir string) (*Index, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", dir, err)
	}
	return &Index{db: db}, nil
}

func entryKey(key string) []byte {
	return []byte(keyPrefix + key)
}

func (i *Index) Get(ctx context.Context, key string) (*models.MetadataEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entry *models.MetadataEntry
	err := i.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(entryKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			entry, err = metaindex.Decode(val)
			return err
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("%q: %w", key, metaindex.ErrNotFound)
		}
		return nil, fmt.Errorf("badger get %q: %w", key, err)
	}
	return entry, nil
}

func (i *Index) Set(ctx context.Context, key string, entry *models.MetadataEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := metaindex.Encode(entry)
	if err != nil {
		return err
	}

	if err := i.db.Update(func(txn *badger.Txn) error {
		return txn.Set(entryKey(key), data)
	}); err != nil {
		return fmt.Errorf("badger set %q: %w", key, err)
	}
	return nil
}

func (i *Index) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := i.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(entryKey(key))
	}); err != nil {
		return fmt.Errorf("badger delete %q: %w", key, err)
	}
	return nil
}

func (i *Index) List(ctx context.Context) ([]*models.MetadataEntry, error) {
	var entries []*models.MetadataEntry

	err := i.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := it.Item().Value(func(val []byte) error {
				entry, err := metaindex.Decode(val)
				if err != nil {
					return err
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger list: %w", err)
	}
	return entries, nil
}

func (i *Index) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if i.db.IsClosed() {
		return errors.New("badger: database is closed")
	}
	return nil
}

func (i *Index) Close() error {
	return i.db.Close()
}
