// Package vault is the access-control and consistency core. It is the only
// component that talks to the structured records, the metadata index and the
// blob store, and it decides for every call whether the principal may act.
//
// The three stores share no transaction. Mutations run as ordered,
// sequential calls:
//
//	upload:            blob -> record -> metadata entry (-> thumbnail job)
//	publish/unpublish: metadata entry -> record
//	delete:            blob -> record -> metadata entry
//
// In ModeBestEffort a failure part way through is reported and leaves a
// detectable partial state. ModeCompensating additionally undoes the steps
// that already succeeded.
package vault

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/dbx"
	"github.com/dmitrijs2005/gophvault/internal/logging"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/directories"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/files"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophvault/internal/server/storage/blob"
	"github.com/dmitrijs2005/gophvault/internal/server/storage/metaindex"
)

type ConsistencyMode string

const (
	ModeBestEffort   ConsistencyMode = "best-effort"
	ModeCompensating ConsistencyMode = "compensating"
)

// ThumbnailQueue receives fire-and-forget thumbnail jobs. Enqueue reports
// whether the job was accepted.
type ThumbnailQueue interface {
	Enqueue(blobID, fileName string) bool
}

type Options struct {
	Mode ConsistencyMode
}

var now = time.Now

type Vault struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	index       metaindex.Index
	blobs       blob.Store
	thumbnails  ThumbnailQueue
	log         logging.Logger
	mode        ConsistencyMode
}

// New wires the core to its stores. thumbnails may be nil.
func New(db dbx.DBTX, repomanager repomanager.RepositoryManager, index metaindex.Index, blobs blob.Store,
	thumbnails ThumbnailQueue, log logging.Logger, opts Options) *Vault {
	mode := opts.Mode
	if mode == "" {
		mode = ModeBestEffort
	}
	if log == nil {
		log = logging.Nop{}
	}
	return &Vault{
		db:          db,
		repomanager: repomanager,
		index:       index,
		blobs:       blobs,
		thumbnails:  thumbnails,
		log:         log.With("module", "vault"),
		mode:        mode,
	}
}

func (v *Vault) Mode() ConsistencyMode { return v.mode }

func (v *Vault) files() files.Repository {
	return v.repomanager.Files(v.db)
}

func (v *Vault) directories() directories.Repository {
	return v.repomanager.Directories(v.db)
}

// CanRead reports whether p may read or list e.
func CanRead(p models.Principal, e *models.MetadataEntry) bool {
	return e.IsPublic() || p.Owns(e.UserID)
}

// CanMutate reports whether p may delete, publish or unpublish e.
func CanMutate(p models.Principal, e *models.MetadataEntry) bool {
	return p.Owns(e.UserID)
}

func requireSession(p models.Principal) error {
	if p.IsAnonymous() {
		return common.ErrNoSession
	}
	return nil
}

// storeFailure marks err as a failed store call while keeping its cause
// matchable.
func storeFailure(step string, err error) error {
	return fmt.Errorf("%s: %w: %w", step, common.ErrStoreFailure, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, common.ErrorNotFound)
}

// List returns the entries p may see: its own plus every public one. The
// anonymous principal sees public entries only.
func (v *Vault) List(ctx context.Context, p models.Principal) ([]*models.MetadataEntry, error) {
	all, err := v.index.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list: %w", storeFailure("metadata index", err))
	}

	out := make([]*models.MetadataEntry, 0, len(all))
	for _, e := range all {
		if CanRead(p, e) {
			out = append(out, e)
		}
	}
	sortEntries(out)
	return out, nil
}

func sortEntries(entries []*models.MetadataEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].FileName < entries[j].FileName
	})
}

// resolve finds the entry ref names for p. ref is tried as a blob id first,
// then as a file name: p's newest own entry wins over a public one.
func (v *Vault) resolve(ctx context.Context, p models.Principal, ref string) (*models.MetadataEntry, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: empty file reference", common.ErrorValidation)
	}

	e, err := v.index.Get(ctx, ref)
	switch {
	case err == nil:
		if !CanRead(p, e) {
			return nil, common.ErrorUnauthorized
		}
		return e, nil
	case !isNotFound(err):
		return nil, storeFailure("metadata index", err)
	}

	all, err := v.index.List(ctx)
	if err != nil {
		return nil, storeFailure("metadata index", err)
	}

	var own, public *models.MetadataEntry
	foreign := false
	for _, e := range all {
		if e.FileName != ref {
			continue
		}
		switch {
		case p.Owns(e.UserID):
			if own == nil || e.CreatedAt.After(own.CreatedAt) {
				own = e
			}
		case e.IsPublic():
			if public == nil || e.CreatedAt.After(public.CreatedAt) {
				public = e
			}
		default:
			foreign = true
		}
	}

	switch {
	case own != nil:
		return own, nil
	case public != nil:
		return public, nil
	case foreign:
		return nil, common.ErrorUnauthorized
	default:
		return nil, common.ErrorNotFound
	}
}

// resolveOwned is resolve for mutating operations.
func (v *Vault) resolveOwned(ctx context.Context, p models.Principal, ref string) (*models.MetadataEntry, error) {
	if err := requireSession(p); err != nil {
		return nil, err
	}
	e, err := v.resolve(ctx, p, ref)
	if err != nil {
		return nil, err
	}
	if !CanMutate(p, e) {
		return nil, common.ErrorUnauthorized
	}
	return e, nil
}
