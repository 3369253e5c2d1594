// Package storage builds the blob store, metadata index and session store
// selected in the server configuration.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gophvault/internal/server/config"
	"github.com/dmitrijs2005/gophvault/internal/server/storage/blob"
	"github.com/dmitrijs2005/gophvault/internal/server/storage/blob/local"
	"github.com/dmitrijs2005/gophvault/internal/server/storage/blob/memory"
	"github.com/dmitrijs2005/gophvault/internal/server/storage/blob/s3"
	"github.com/dmitrijs2005/gophvault/internal/server/storage/metaindex"
	"github.com/dmitrijs2005/gophvault/internal/server/storage/metaindex/badger"
	"github.com/dmitrijs2005/gophvault/internal/server/storage/metaindex/sqlindex"
	"github.com/dmitrijs2005/gophvault/internal/server/storage/session"
	"github.com/dmitrijs2005/gophvault/internal/server/storage/session/file"
	"github.com/dmitrijs2005/gophvault/internal/server/storage/session/redis"
)

// Stores bundles the configured backends. Close releases all of them.
type Stores struct {
	Blobs    blob.Store
	Index    metaindex.Index
	Sessions session.Store

	closers []io.Closer
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// Open builds every store. db is the PostgreSQL handle, used by the
// "postgres" metadata backend.
func Open(ctx context.Context, cfg *config.Config, db *sql.DB) (*Stores, error) {
	s := &Stores{}

	blobs, err := s.openBlobs(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s.Blobs = blobs

	index, err := s.openIndex(ctx, cfg, db)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.Index = index

	s.Sessions = s.openSessions(cfg)
	return s, nil
}

func (s *Stores) openBlobs(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	switch cfg.BlobBackend {
	case "s3":
		return s3.New(ctx, s3.Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3BaseEndpoint,
			AccessKey: cfg.S3RootUser,
			SecretKey: cfg.S3RootPassword,
		})
	case "local":
		st, err := local.New(cfg.BlobPath)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, st)
		return st, nil
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
	}
}

func (s *Stores) openIndex(ctx context.Context, cfg *config.Config, db *sql.DB) (metaindex.Index, error) {
	switch cfg.MetaBackend {
	case "badger":
		idx, err := badger.Open(cfg.MetaPath)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, idx)
		return idx, nil
	case "postgres":
		if db == nil {
			return nil, errors.New("postgres metadata index needs a database handle")
		}
		return sqlindex.New(db), nil
	case "sqlite":
		idx, err := sqlindex.OpenSQLite(ctx, cfg.MetaPath)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, idx)
		return idx, nil
	default:
		return nil, fmt.Errorf("unknown metadata backend %q", cfg.MetaBackend)
	}
}

func (s *Stores) openSessions(cfg *config.Config) session.Store {
	if cfg.SessionBackend == "redis" {
		pool := redis.NewPool(cfg.RedisURL)
		s.closers = append(s.closers, pool)
		return redis.New(pool, cfg.AccessTokenValidityDuration)
	}
	return file.New(cfg.SessionFile)
}

// Healthchecks names the health check of every store.
func (s *Stores) Healthchecks() map[string]func(context.Context) error {
	return map[string]func(context.Context) error{
		"blobs":    s.Blobs.Healthcheck,
		"metadata": s.Index.Healthcheck,
		"sessions": s.Sessions.Healthcheck,
	}
}

func (s *Stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
