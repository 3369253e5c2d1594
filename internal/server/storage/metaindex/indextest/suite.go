// Package indextest is a conformance suite every metaindex.Index backend runs.
package indextest

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
	"github.com/dmitrijs2005/gophvault/internal/server/storage/metaindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type IndexTestSuite struct {
	// NewIndex returns a fresh, empty index for each subtest.
	NewIndex func(t *testing.T) metaindex.Index
}

func (suite *IndexTestSuite) Run(t *testing.T) {
	t.Run("SetGet_RoundTrip", suite.testSetGet)
	t.Run("Get_NotFound", suite.testGetNotFound)
	t.Run("Set_Overwrites", suite.testOverwrite)
	t.Run("Set_RejectsInvalid", suite.testRejectsInvalid)
	t.Run("Delete", suite.testDelete)
	t.Run("Delete_Idempotent", suite.testDeleteMissing)
	t.Run("List", suite.testList)
	t.Run("List_Empty", suite.testListEmpty)
	t.Run("Healthcheck", suite.testHealthcheck)
}

// Entry builds a valid entry for tests.
func Entry(id, owner string, v models.Visibility) *models.MetadataEntry {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return &models.MetadataEntry{
		FileID:     id,
		FileName:   id + ".txt",
		FileSize:   12,
		UserID:     owner,
		Visibility: v,
		Directory:  "/docs",
		Type:       models.FileTypeFile,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
}

func (suite *IndexTestSuite) testSetGet(t *testing.T) {
	idx := suite.NewIndex(t)
	ctx := context.Background()

	want := Entry("b1", "u1", models.VisibilityPrivate)
	require.NoError(t, idx.Set(ctx, "b1", want))

	got, err := idx.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, want.FileID, got.FileID)
	assert.Equal(t, want.FileName, got.FileName)
	assert.Equal(t, want.UserID, got.UserID)
	assert.Equal(t, want.Visibility, got.Visibility)
	assert.Equal(t, want.Directory, got.Directory)
	assert.Equal(t, want.Type, got.Type)
	assert.Equal(t, want.FileSize, got.FileSize)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
}

func (suite *IndexTestSuite) testGetNotFound(t *testing.T) {
	idx := suite.NewIndex(t)

	_, err := idx.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, metaindex.ErrNotFound)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func (suite *IndexTestSuite) testOverwrite(t *testing.T) {
	idx := suite.NewIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Set(ctx, "b1", Entry("b1", "u1", models.VisibilityPrivate)))
	require.NoError(t, idx.Set(ctx, "b1", Entry("b1", "u1", models.VisibilityPublic)))

	got, err := idx.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, models.VisibilityPublic, got.Visibility)

	all, err := idx.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func (suite *IndexTestSuite) testRejectsInvalid(t *testing.T) {
	idx := suite.NewIndex(t)
	ctx := context.Background()

	bad := Entry("b1", "u1", "shared")
	assert.ErrorIs(t, idx.Set(ctx, "b1", bad), common.ErrorValidation)
	assert.ErrorIs(t, idx.Set(ctx, "b1", nil), common.ErrorValidation)

	_, err := idx.Get(ctx, "b1")
	assert.ErrorIs(t, err, metaindex.ErrNotFound)
}

func (suite *IndexTestSuite) testDelete(t *testing.T) {
	idx := suite.NewIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Set(ctx, "b1", Entry("b1", "u1", models.VisibilityPrivate)))
	require.NoError(t, idx.Delete(ctx, "b1"))

	_, err := idx.Get(ctx, "b1")
	assert.ErrorIs(t, err, metaindex.ErrNotFound)
}

func (suite *IndexTestSuite) testDeleteMissing(t *testing.T) {
	idx := suite.NewIndex(t)
	assert.NoError(t, idx.Delete(context.Background(), "nope"))
}

func (suite *IndexTestSuite) testList(t *testing.T) {
	idx := suite.NewIndex(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("b%d", i)
		require.NoError(t, idx.Set(ctx, id, Entry(id, "u1", models.VisibilityPrivate)))
	}

	all, err := idx.List(ctx)
	require.NoError(t, err)

	ids := make([]string, 0, len(all))
	for _, e := range all {
		ids = append(ids, e.FileID)
	}
	sort.Strings(ids)
	assert.Equal(t, []string{"b0", "b1", "b2", "b3", "b4"}, ids)
}

func (suite *IndexTestSuite) testListEmpty(t *testing.T) {
	idx := suite.NewIndex(t)

	all, err := idx.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func (suite *IndexTestSuite) testHealthcheck(t *testing.T) {
	idx := suite.NewIndex(t)
	assert.NoError(t, idx.Healthcheck(context.Background()))
}
