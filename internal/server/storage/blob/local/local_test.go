package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/gophvault/internal/server/storage/blob"
	"github.com/dmitrijs2005/gophvault/internal/server/storage/blob/blobtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLocalStore(t *testing.T) {
	suite := &blobtest.StoreTestSuite{
		NewStore: func(t *testing.T) blob.Store { return newStore(t) },
	}
	suite.Run(t)
}

func TestLocalStore_CompressesOnDisk(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	data := make([]byte, 64*1024)
	for i := range data {
		data[i] = 'a'
	}

	id, err := s.Put(ctx, "aaaa.txt", data)
	require.NoError(t, err)

	info, err := os.Stat(s.pathFor(id))
	require.NoError(t, err)
	assert.Less(t, info.Size(), int64(len(data)/10))
}

func TestLocalStore_NoTempLeftovers(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.Put(ctx, "a.txt", []byte("x"))
	require.NoError(t, err)
	require.NoError(t, s.Healthcheck(ctx))

	entries, err := os.ReadDir(filepath.Join(s.root, tempDirName))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStore_DeleteCleansShards(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	id, err := s.Put(ctx, "a.txt", []byte("x"))
	require.NoError(t, err)
	shard := filepath.Dir(s.pathFor(id))

	require.NoError(t, s.Delete(ctx, id))
	_, err = os.Stat(shard)
	assert.True(t, os.IsNotExist(err))

	_, err = os.Stat(filepath.Join(s.root, blobDirName))
	assert.NoError(t, err)
}

func TestLocalStore_RejectsPathLikeIDs(t *testing.T) {
	s := newStore(t)

	_, err := s.Get(context.Background(), "../../etc/passwd")
	assert.ErrorIs(t, err, blob.ErrNotFound)
	assert.NoError(t, s.Delete(context.Background(), "../../etc/passwd"))
}

func TestLocalStore_CorruptBlob(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	id, err := s.Put(ctx, "a.txt", []byte("payload"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.pathFor(id), []byte("not zstd"), 0o600))

	_, err = s.Get(ctx, id)
	require.Error(t, err)
	assert.NotErrorIs(t, err, blob.ErrNotFound)
}
