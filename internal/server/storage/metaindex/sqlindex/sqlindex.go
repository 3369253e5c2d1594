// Package sqlindex keeps the metadata index in a single SQL table. The same
// queries run on PostgreSQL (table created by the server migrations) and on
// a local SQLite file (table created by OpenSQLite).
package sqlindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/dbx"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
	"github.com/dmitrijs2005/gophvault/internal/server/storage/metaindex"
)

type Index struct {
	db    dbx.DBTX
	close func() error
}

func New(db dbx.DBTX) *Index {
	return &Index{db: db}
}

func (i *Index) Get(ctx context.Context, key string) (*models.MetadataEntry, error) {
	query := `SELECT value FROM metadata_index WHERE key = $1`

	var value []byte
	if err := i.db.QueryRowContext(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%q: %w", key, metaindex.ErrNotFound)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return metaindex.Decode(value)
}

func (i *Index) Set(ctx context.Context, key string, entry *models.MetadataEntry) error {
	value, err := metaindex.Encode(entry)
	if err != nil {
		return err
	}

	query :=
		`INSERT INTO metadata_index (key, value, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE
		 SET value = excluded.value, updated_at = excluded.updated_at`

	if _, err := i.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (i *Index) Delete(ctx context.Context, key string) error {
	if _, err := i.db.ExecContext(ctx, `DELETE FROM metadata_index WHERE key = $1`, key); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (i *Index) List(ctx context.Context) ([]*models.MetadataEntry, error) {
	rows, err := i.db.QueryContext(ctx, `SELECT value FROM metadata_index ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var entries []*models.MetadataEntry
	for rows.Next() {
		var value []byte
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		entry, err := metaindex.Decode(value)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entries, nil
}

func (i *Index) Healthcheck(ctx context.Context) error {
	var one int
	if err := i.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Close closes the database only when the index opened it itself.
func (i *Index) Close() error {
	if i.close == nil {
		return nil
	}
	return i.close()
}
