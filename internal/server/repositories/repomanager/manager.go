package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophvault/internal/dbx"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/directories"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/files"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a DB handle or an open
// transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Files(db dbx.DBTX) files.Repository
	Directories(db dbx.DBTX) directories.Repository
}
