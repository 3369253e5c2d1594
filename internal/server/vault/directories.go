package vault

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/dbx"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
)

// CreateDirectory creates name below parentPath in p's tree. An empty
// parentPath means the root.
func (v *Vault) CreateDirectory(ctx context.Context, p models.Principal, name, parentPath string) (*models.Directory, error) {
	if err := requireSession(p); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, models.PathSeparator) {
		return nil, fmt.Errorf("mkdir %q: %w: directory name must be a bare name", name, common.ErrorValidation)
	}

	parent, err := v.findDirectory(ctx, p, models.NormalizePath(parentPath))
	if err != nil {
		return nil, fmt.Errorf("mkdir %q: parent: %w", name, err)
	}

	d, err := v.createChild(ctx, p, parent, name)
	if err != nil {
		return nil, fmt.Errorf("mkdir %q: %w", name, err)
	}

	v.log.Info(ctx, "directory created", "owner", p.String(), "path", d.Path)
	return d, nil
}

// Directories lists p's directories, root excluded.
func (v *Vault) Directories(ctx context.Context, p models.Principal) ([]*models.Directory, error) {
	if err := requireSession(p); err != nil {
		return nil, err
	}
	dirs, err := v.directories().ListByOwner(ctx, string(p))
	if err != nil {
		return nil, storeFailure("directories", err)
	}
	return dirs, nil
}

// findDirectory returns the directory at path in p's tree. The root always
// exists.
func (v *Vault) findDirectory(ctx context.Context, p models.Principal, path string) (*models.Directory, error) {
	if path == models.RootPath {
		return models.RootDirectory(string(p)), nil
	}

	d, err := v.directories().FindByPath(ctx, string(p), path)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("directory %q: %w", path, common.ErrorNotFound)
		}
		return nil, storeFailure("directories", err)
	}
	return d, nil
}

func (v *Vault) createChild(ctx context.Context, p models.Principal, parent *models.Directory, name string) (*models.Directory, error) {
	var parentID *string
	if !parent.IsRoot() {
		parentID = &parent.ID
	}

	d, err := models.NewDirectory(string(p), name, parent)
	if err != nil {
		return nil, err
	}

	var created *models.Directory
	err = dbx.WithTx(ctx, v.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := v.repomanager.Directories(tx)
		_, err := repo.FindChild(ctx, string(p), parentID, name)
		switch {
		case err == nil:
			return fmt.Errorf("directory %q: %w", d.Path, common.ErrConflict)
		case !isNotFound(err):
			return storeFailure("directories", err)
		}

		created, err = repo.Create(ctx, d)
		if err != nil && !errors.Is(err, common.ErrConflict) {
			return storeFailure("directories", err)
		}
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) || errors.Is(err, common.ErrStoreFailure) {
			return nil, err
		}
		return nil, storeFailure("directories", err)
	}
	return created, nil
}

// resolveUploadDirectory finds the upload target, creating it when only the
// last path element is missing.
func (v *Vault) resolveUploadDirectory(ctx context.Context, p models.Principal, in string) (*models.Directory, error) {
	path := models.NormalizePath(in)

	d, err := v.findDirectory(ctx, p, path)
	if err == nil {
		return d, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	parentPath, name := models.SplitPath(path)
	parent, err := v.findDirectory(ctx, p, parentPath)
	if err != nil {
		return nil, fmt.Errorf("resolve directory %q: %w", path, err)
	}

	d, err = v.createChild(ctx, p, parent, name)
	if errors.Is(err, common.ErrConflict) {
		// created concurrently
		return v.findDirectory(ctx, p, path)
	}
	if err != nil {
		return nil, err
	}

	v.log.Info(ctx, "directory created on upload", "owner", p.String(), "path", d.Path)
	return d, nil
}
