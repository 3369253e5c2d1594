package files

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

const selectColumns = `blob_id, owner_id, file_name, file_size, directory_name, type, visibility, created_at`

func (r *PostgresRepository) Create(ctx context.Context, f *models.FileRecord) (*models.FileRecord, error) {
	query :=
		`INSERT INTO files (blob_id, owner_id, file_name, file_size, directory_name, type, visibility, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		f.BlobID, f.OwnerID, f.FileName, f.FileSize, f.DirectoryName, string(f.Type), string(f.Visibility), f.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("file %q: %w", f.BlobID, common.ErrConflict)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) GetByBlobID(ctx context.Context, blobID string) (*models.FileRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM files WHERE blob_id = $1`

	f, err := scan(r.db.QueryRowContext(ctx, query, blobID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) UpdateVisibility(ctx context.Context, blobID string, v models.Visibility) error {
	query := `UPDATE files SET visibility = $2 WHERE blob_id = $1`

	res, err := r.db.ExecContext(ctx, query, blobID, string(v))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, blobID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE blob_id = $1`, blobID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.FileRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM files WHERE owner_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.FileRecord
	for rows.Next() {
		f, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.FileRecord, error) {
	var (
		f        models.FileRecord
		typ, vis string
	)
	if err := s.Scan(&f.BlobID, &f.OwnerID, &f.FileName, &f.FileSize, &f.DirectoryName, &typ, &vis, &f.CreatedAt); err != nil {
		return nil, err
	}
	f.Type = models.FileType(typ)
	f.Visibility = models.Visibility(vis)
	return &f, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
