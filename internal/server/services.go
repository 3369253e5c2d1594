package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophvault/internal/logging"
	"github.com/dmitrijs2005/gophvault/internal/server/config"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophvault/internal/server/sessions"
	"github.com/dmitrijs2005/gophvault/internal/server/storage"
	"github.com/dmitrijs2005/gophvault/internal/server/thumbnails"
	"github.com/dmitrijs2005/gophvault/internal/server/users"
	"github.com/dmitrijs2005/gophvault/internal/server/vault"
)

// sqlOpen is a test seam.
var sqlOpen = sql.Open

// Services is everything the HTTP server and the CLI share: the database,
// the configured stores, the thumbnail pool and the services built on them.
type Services struct {
	DB         *sql.DB
	Stores     *storage.Stores
	Thumbnails *thumbnails.Pool
	Vault      *vault.Vault
	Users      *users.Service
	Sessions   *sessions.Service
}

// OpenServices connects to PostgreSQL, applies migrations, opens the stores
// and starts the thumbnail workers. Close releases everything.
func OpenServices(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Services, error) {
	db, err := sqlOpen("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	stores, err := storage.Open(ctx, cfg, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	pool := thumbnails.New(stores.Blobs, cfg.ThumbnailDir, cfg.ThumbnailWorkers, cfg.ThumbnailQueueSize, logger)
	pool.Start(ctx)

	v := vault.New(db, rm, stores.Index, stores.Blobs, pool, logger,
		vault.Options{Mode: vault.ConsistencyMode(cfg.ConsistencyMode)})

	return &Services{
		DB:         db,
		Stores:     stores,
		Thumbnails: pool,
		Vault:      v,
		Users:      users.NewService(db, rm, cfg),
		Sessions:   sessions.NewService(stores.Sessions, []byte(cfg.SecretKey)),
	}, nil
}

// Close drains the thumbnail queue, then closes the stores and the database.
func (s *Services) Close() error {
	s.Thumbnails.Stop()
	return errors.Join(s.Stores.Close(), s.DB.Close())
}
