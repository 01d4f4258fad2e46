package testing

import (
	"context"
	"testing"

	"github.com/marmos91/dittoprovider/pkg/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *StoreTestSuite) RunDirectoryTests(t *testing.T) {
	t.Run("PutAndLookup", suite.TestDirectory_PutAndLookup)
	t.Run("LookupMissing", suite.TestDirectory_LookupMissing)
	t.Run("TwoHopResolution", suite.TestDirectory_TwoHopResolution)
	t.Run("Delete", suite.TestDirectory_Delete)
	t.Run("RequiresFileID", suite.TestDirectory_RequiresFileID)
}

// TestDirectory_PutAndLookup verifies a folder row round trips.
func (suite *StoreTestSuite) TestDirectory_PutAndLookup(t *testing.T) {
	store := suite.newStore(t)

	dir := &metadata.DirectoryRecord{
		Account:     TestAccount,
		DirectoryID: "D1",
		FileID:      "F-D1",
		ServerURL:   "https://cloud.example.com/remote.php/webdav/Photos",
	}
	mustPutDirectory(t, store, dir)

	got, err := store.LookupDirectory(context.Background(), TestAccount, "D1")
	require.NoError(t, err)
	assert.Equal(t, *dir, *got)
}

// TestDirectory_LookupMissing verifies a miss is reported as ErrNotFound.
func (suite *StoreTestSuite) TestDirectory_LookupMissing(t *testing.T) {
	store := suite.newStore(t)

	_, err := store.LookupDirectory(context.Background(), TestAccount, "D404")
	assert.True(t, metadata.IsNotFound(err), "expected not found, got %v", err)
}

// TestDirectory_TwoHopResolution verifies the folder table links to the folder's own record.
func (suite *StoreTestSuite) TestDirectory_TwoHopResolution(t *testing.T) {
	store := suite.newStore(t)
	ctx := context.Background()

	mustPutRecord(t, store, FolderRecord(TestAccount, "F-D1", "D0", "Photos"))
	mustPutDirectory(t, store, &metadata.DirectoryRecord{Account: TestAccount, DirectoryID: "D1", FileID: "F-D1"})
	mustPutRecord(t, store, FileRecord(TestAccount, "F2", "D1", "cat.jpg"))

	child, err := store.LookupRecordByFileID(ctx, TestAccount, "F2")
	require.NoError(t, err)

	dir, err := store.LookupDirectory(ctx, TestAccount, child.DirectoryID)
	require.NoError(t, err)

	parent, err := store.LookupRecordByFileID(ctx, TestAccount, dir.FileID)
	require.NoError(t, err)
	assert.Equal(t, "F-D1", parent.FileID)
	assert.True(t, parent.Directory)
}

// TestDirectory_Delete verifies removal.
func (suite *StoreTestSuite) TestDirectory_Delete(t *testing.T) {
	store := suite.newStore(t)
	ctx := context.Background()

	mustPutDirectory(t, store, &metadata.DirectoryRecord{Account: TestAccount, DirectoryID: "D1", FileID: "F-D1"})
	require.NoError(t, store.DeleteDirectory(ctx, TestAccount, "D1"))

	_, err := store.LookupDirectory(ctx, TestAccount, "D1")
	assert.True(t, metadata.IsNotFound(err))
	assert.True(t, metadata.IsNotFound(store.DeleteDirectory(ctx, TestAccount, "D1")))
}

// TestDirectory_RequiresFileID verifies a folder row without a file ID is rejected.
func (suite *StoreTestSuite) TestDirectory_RequiresFileID(t *testing.T) {
	store := suite.newStore(t)

	err := store.PutDirectory(context.Background(), &metadata.DirectoryRecord{Account: TestAccount, DirectoryID: "D1"})
	assert.True(t, metadata.IsInvalidArgument(err))
}
