// Package blobtest is a conformance suite every blob.Store backend runs.
//
//	func TestLocalStore(t *testing.T) {
//	    suite := &blobtest.StoreTestSuite{
//	        NewStore: func(t *testing.T) blob.Store { return mustOpen(t) },
//	    }
//	    suite.Run(t)
//	}
package blobtest

import (
	"bytes"
	"context"
	"crypto/rand"
	"testing"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/server/storage/blob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type StoreTestSuite struct {
	// NewStore returns a fresh, empty store for each subtest.
	NewStore func(t *testing.T) blob.Store
}

func (suite *StoreTestSuite) Run(t *testing.T) {
	t.Run("PutGet_RoundTrip", suite.testPutGet)
	t.Run("Put_EmptyContent", suite.testPutEmpty)
	t.Run("Put_LargeContent", suite.testPutLarge)
	t.Run("Put_SameNameDistinctIDs", suite.testDistinctIDs)
	t.Run("Get_NotFound", suite.testGetNotFound)
	t.Run("Delete_RemovesBlob", suite.testDelete)
	t.Run("Delete_Idempotent", suite.testDeleteMissing)
	t.Run("Healthcheck", suite.testHealthcheck)
}

func (suite *StoreTestSuite) testPutGet(t *testing.T) {
	s := suite.NewStore(t)
	ctx := context.Background()

	id, err := s.Put(ctx, "notes.txt", []byte("hello vault"))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello vault"), got)
}

func (suite *StoreTestSuite) testPutEmpty(t *testing.T) {
	s := suite.NewStore(t)
	ctx := context.Background()

	id, err := s.Put(ctx, "empty.txt", []byte{})
	require.NoError(t, err)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Len(t, got, 0)
}

func (suite *StoreTestSuite) testPutLarge(t *testing.T) {
	s := suite.NewStore(t)
	ctx := context.Background()

	data := make([]byte, 1<<20)
	_, err := rand.Read(data)
	require.NoError(t, err)

	id, err := s.Put(ctx, "random.bin", data)
	require.NoError(t, err)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, got), "content differs")
}

func (suite *StoreTestSuite) testDistinctIDs(t *testing.T) {
	s := suite.NewStore(t)
	ctx := context.Background()

	a, err := s.Put(ctx, "same.txt", []byte("a"))
	require.NoError(t, err)
	b, err := s.Put(ctx, "same.txt", []byte("b"))
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	got, err := s.Get(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), got)
}

func (suite *StoreTestSuite) testGetNotFound(t *testing.T) {
	s := suite.NewStore(t)

	_, err := s.Get(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, blob.ErrNotFound)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func (suite *StoreTestSuite) testDelete(t *testing.T) {
	s := suite.NewStore(t)
	ctx := context.Background()

	id, err := s.Put(ctx, "gone.txt", []byte("bye"))
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, id))

	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, blob.ErrNotFound)
}

func (suite *StoreTestSuite) testDeleteMissing(t *testing.T) {
	s := suite.NewStore(t)
	assert.NoError(t, s.Delete(context.Background(), "never-existed"))
}

func (suite *StoreTestSuite) testHealthcheck(t *testing.T) {
	s := suite.NewStore(t)
	assert.NoError(t, s.Healthcheck(context.Background()))
}
