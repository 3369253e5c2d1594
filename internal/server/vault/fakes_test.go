package vault

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/dbx"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/directories"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/files"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/users"
	"github.com/dmitrijs2005/gophvault/internal/server/storage/blob"
	"github.com/dmitrijs2005/gophvault/internal/server/storage/metaindex"
)

type fakeRepoManager struct {
	files *fakeFiles
	dirs  *fakeDirs
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return nil }
func (m *fakeRepoManager) Files(dbx.DBTX) files.Repository              { return m.files }
func (m *fakeRepoManager) Directories(dbx.DBTX) directories.Repository {
	return m.dirs
}

type fakeFiles struct {
	mu      sync.Mutex
	records map[string]*models.FileRecord

	createErr error
	updateErr error
	deleteErr error
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{records: map[string]*models.FileRecord{}}
}

func (f *fakeFiles) Create(_ context.Context, r *models.FileRecord) (*models.FileRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	cp := *r
	f.records[r.BlobID] = &cp
	return r, nil
}

func (f *fakeFiles) GetByBlobID(_ context.Context, id string) (*models.FileRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeFiles) UpdateVisibility(_ context.Context, id string, v models.Visibility) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	r, ok := f.records[id]
	if !ok {
		return common.ErrorNotFound
	}
	r.Visibility = v
	return nil
}

func (f *fakeFiles) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.records[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.records, id)
	return nil
}

func (f *fakeFiles) ListByOwner(_ context.Context, owner string) ([]*models.FileRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.FileRecord
	for _, r := range f.records {
		if r.OwnerID == owner {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BlobID < out[j].BlobID })
	return out, nil
}

func (f *fakeFiles) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

type fakeDirs struct {
	mu   sync.Mutex
	seq  int
	dirs map[string]*models.Directory

	findErr error
}

func newFakeDirs() *fakeDirs {
	return &fakeDirs{dirs: map[string]*models.Directory{}}
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (d *fakeDirs) Create(_ context.Context, dir *models.Directory) (*models.Directory, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, x := range d.dirs {
		if x.OwnerID == dir.OwnerID && x.Name == dir.Name && sameParent(x.ParentID, dir.ParentID) {
			return nil, common.ErrConflict
		}
	}
	d.seq++
	dir.ID = fmt.Sprintf("d-%d", d.seq)
	cp := *dir
	d.dirs[dir.ID] = &cp
	return dir, nil
}

func (d *fakeDirs) FindByPath(_ context.Context, owner, path string) (*models.Directory, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.findErr != nil {
		return nil, d.findErr
	}
	for _, x := range d.dirs {
		if x.OwnerID == owner && x.Path == path {
			cp := *x
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (d *fakeDirs) FindChild(_ context.Context, owner string, parentID *string, name string) (*models.Directory, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, x := range d.dirs {
		if x.OwnerID == owner && x.Name == name && sameParent(x.ParentID, parentID) {
			cp := *x
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (d *fakeDirs) ListByOwner(_ context.Context, owner string) ([]*models.Directory, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []*models.Directory
	for _, x := range d.dirs {
		if x.OwnerID == owner {
			cp := *x
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// fakeIndex is an in-memory metaindex.Index. setErr is consulted on every
// Set with the 1-based call number.
type fakeIndex struct {
	mu      sync.Mutex
	entries map[string]models.MetadataEntry
	sets    int

	setErr    func(call int) error
	deleteErr error
	listErr   error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{entries: map[string]models.MetadataEntry{}}
}

func (x *fakeIndex) Get(_ context.Context, key string) (*models.MetadataEntry, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	e, ok := x.entries[key]
	if !ok {
		return nil, metaindex.ErrNotFound
	}
	return &e, nil
}

func (x *fakeIndex) Set(_ context.Context, key string, e *models.MetadataEntry) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.sets++
	if x.setErr != nil {
		if err := x.setErr(x.sets); err != nil {
			return err
		}
	}
	x.entries[key] = *e
	return nil
}

func (x *fakeIndex) Delete(_ context.Context, key string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.deleteErr != nil {
		return x.deleteErr
	}
	delete(x.entries, key)
	return nil
}

func (x *fakeIndex) List(context.Context) ([]*models.MetadataEntry, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.listErr != nil {
		return nil, x.listErr
	}
	out := make([]*models.MetadataEntry, 0, len(x.entries))
	for _, e := range x.entries {
		cp := e
		out = append(out, &cp)
	}
	return out, nil
}

func (x *fakeIndex) Healthcheck(context.Context) error { return nil }

func (x *fakeIndex) len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.entries)
}

// flakyBlobs wraps a real store and fails selected calls.
type flakyBlobs struct {
	blob.Store

	putErr    error
	getErr    error
	deleteErr error
}

func (b *flakyBlobs) Put(ctx context.Context, name string, data []byte) (string, error) {
	if b.putErr != nil {
		return "", b.putErr
	}
	return b.Store.Put(ctx, name, data)
}

func (b *flakyBlobs) Get(ctx context.Context, id string) ([]byte, error) {
	if b.getErr != nil {
		return nil, b.getErr
	}
	return b.Store.Get(ctx, id)
}

func (b *flakyBlobs) Delete(ctx context.Context, id string) error {
	if b.deleteErr != nil {
		return b.deleteErr
	}
	return b.Store.Delete(ctx, id)
}

type fakeQueue struct {
	mu   sync.Mutex
	jobs []string
	full bool
}

func (q *fakeQueue) Enqueue(blobID, _ string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.full {
		return false
	}
	q.jobs = append(q.jobs, blobID)
	return true
}
