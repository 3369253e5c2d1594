package directories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/dbx"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `id, owner_id, name, parent_id, path, visibility, created_at`

func (r *PostgresRepository) Create(ctx context.Context, d *models.Directory) (*models.Directory, error) {
	query :=
		`INSERT INTO directories (owner_id, name, parent_id, path, visibility)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, d.OwnerID, d.Name, d.ParentID, d.Path, string(d.Visibility)).
		Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("directory %q: %w", d.Path, common.ErrConflict)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

func (r *PostgresRepository) FindByPath(ctx context.Context, ownerID, path string) (*models.Directory, error) {
	query := `SELECT ` + selectColumns + ` FROM directories WHERE owner_id = $1 AND path = $2`
	return one(r.db.QueryRowContext(ctx, query, ownerID, path))
}

func (r *PostgresRepository) FindChild(ctx context.Context, ownerID string, parentID *string, name string) (*models.Directory, error) {
	query :=
		`SELECT ` + selectColumns + ` FROM directories
		 WHERE owner_id = $1 AND parent_id IS NOT DISTINCT FROM $2 AND name = $3`
	return one(r.db.QueryRowContext(ctx, query, ownerID, parentID, name))
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Directory, error) {
	query := `SELECT ` + selectColumns + ` FROM directories WHERE owner_id = $1 ORDER BY path`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Directory
	for rows.Next() {
		d, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.Directory, error) {
	var (
		d      models.Directory
		parent sql.NullString
		vis    string
	)
	if err := s.Scan(&d.ID, &d.OwnerID, &d.Name, &parent, &d.Path, &vis, &d.CreatedAt); err != nil {
		return nil, err
	}
	if parent.Valid {
		d.ParentID = &parent.String
	}
	d.Visibility = models.Visibility(vis)
	return &d, nil
}

func one(row *sql.Row) (*models.Directory, error) {
	d, err := scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}
