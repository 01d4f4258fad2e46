package testing

import (
	"context"
	"testing"

	"github.com/marmos91/dittoprovider/pkg/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *StoreTestSuite) RunRecordTests(t *testing.T) {
	t.Run("PutAndLookup", suite.TestRecord_PutAndLookup)
	t.Run("LookupMissing", suite.TestRecord_LookupMissing)
	t.Run("Overwrite", suite.TestRecord_Overwrite)
	t.Run("AccountIsolation", suite.TestRecord_AccountIsolation)
	t.Run("ReturnsCopy", suite.TestRecord_ReturnsCopy)
	t.Run("Delete", suite.TestRecord_Delete)
	t.Run("InvalidArguments", suite.TestRecord_InvalidArguments)
	t.Run("ContextCancelled", suite.TestRecord_ContextCancelled)
}

// TestRecord_PutAndLookup verifies every field survives a round trip.
func (suite *StoreTestSuite) TestRecord_PutAndLookup(t *testing.T) {
	store := suite.newStore(t)
	ctx := context.Background()

	rec := FileRecord(TestAccount, "F1", "D1", "report.pdf")
	mustPutRecord(t, store, rec)

	got, err := store.LookupRecordByFileID(ctx, TestAccount, "F1")
	require.NoError(t, err)
	assert.Equal(t, rec.Account, got.Account)
	assert.Equal(t, rec.FileID, got.FileID)
	assert.Equal(t, rec.DirectoryID, got.DirectoryID)
	assert.Equal(t, rec.ServerURL, got.ServerURL)
	assert.Equal(t, rec.FileNameView, got.FileNameView)
	assert.Equal(t, rec.Etag, got.Etag)
	assert.True(t, rec.Date.Equal(got.Date), "date should round trip")
	assert.Equal(t, rec.Size, got.Size)
	assert.Equal(t, rec.Directory, got.Directory)
}

// TestRecord_LookupMissing verifies a miss is reported as ErrNotFound.
func (suite *StoreTestSuite) TestRecord_LookupMissing(t *testing.T) {
	store := suite.newStore(t)

	_, err := store.LookupRecordByFileID(context.Background(), TestAccount, "nope")
	require.Error(t, err)
	assert.True(t, metadata.IsNotFound(err), "expected not found, got %v", err)
}

// TestRecord_Overwrite verifies Put replaces an existing row.
func (suite *StoreTestSuite) TestRecord_Overwrite(t *testing.T) {
	store := suite.newStore(t)

	rec := FileRecord(TestAccount, "F1", "D1", "a.txt")
	mustPutRecord(t, store, rec)

	rec.FileNameView = "b.txt"
	rec.Etag = "v2"
	mustPutRecord(t, store, rec)

	got, err := store.LookupRecordByFileID(context.Background(), TestAccount, "F1")
	require.NoError(t, err)
	assert.Equal(t, "b.txt", got.FileNameView)
	assert.Equal(t, "v2", got.Etag)
}

// TestRecord_AccountIsolation verifies identical file IDs in different accounts don't collide.
func (suite *StoreTestSuite) TestRecord_AccountIsolation(t *testing.T) {
	store := suite.newStore(t)
	ctx := context.Background()

	mustPutRecord(t, store, FileRecord("alice", "F1", "D1", "alice.txt"))
	mustPutRecord(t, store, FileRecord("bob", "F1", "D1", "bob.txt"))

	got, err := store.LookupRecordByFileID(ctx, "alice", "F1")
	require.NoError(t, err)
	assert.Equal(t, "alice.txt", got.FileNameView)

	got, err = store.LookupRecordByFileID(ctx, "bob", "F1")
	require.NoError(t, err)
	assert.Equal(t, "bob.txt", got.FileNameView)

	_, err = store.LookupRecordByFileID(ctx, "carol", "F1")
	assert.True(t, metadata.IsNotFound(err))
}

// TestRecord_ReturnsCopy verifies callers cannot mutate stored state.
func (suite *StoreTestSuite) TestRecord_ReturnsCopy(t *testing.T) {
	store := suite.newStore(t)
	ctx := context.Background()

	mustPutRecord(t, store, FileRecord(TestAccount, "F1", "D1", "a.txt"))

	got, err := store.LookupRecordByFileID(ctx, TestAccount, "F1")
	require.NoError(t, err)
	got.FileNameView = "mutated"

	again, err := store.LookupRecordByFileID(ctx, TestAccount, "F1")
	require.NoError(t, err)
	assert.Equal(t, "a.txt", again.FileNameView)
}

// TestRecord_Delete verifies removal and not-found on a second delete.
func (suite *StoreTestSuite) TestRecord_Delete(t *testing.T) {
	store := suite.newStore(t)
	ctx := context.Background()

	mustPutRecord(t, store, FileRecord(TestAccount, "F1", "D1", "a.txt"))
	require.NoError(t, store.DeleteRecord(ctx, TestAccount, "F1"))

	_, err := store.LookupRecordByFileID(ctx, TestAccount, "F1")
	assert.True(t, metadata.IsNotFound(err))

	err = store.DeleteRecord(ctx, TestAccount, "F1")
	assert.True(t, metadata.IsNotFound(err))
}

// TestRecord_InvalidArguments verifies empty keys are rejected.
func (suite *StoreTestSuite) TestRecord_InvalidArguments(t *testing.T) {
	store := suite.newStore(t)
	ctx := context.Background()

	err := store.PutRecord(ctx, FileRecord("", "F1", "D1", "a.txt"))
	assert.True(t, metadata.IsInvalidArgument(err))

	err = store.PutRecord(ctx, FileRecord(TestAccount, "", "D1", "a.txt"))
	assert.True(t, metadata.IsInvalidArgument(err))

	err = store.PutRecord(ctx, nil)
	assert.True(t, metadata.IsInvalidArgument(err))

	_, err = store.LookupRecordByFileID(ctx, TestAccount, "")
	assert.True(t, metadata.IsInvalidArgument(err))
}

// TestRecord_ContextCancelled verifies operations respect cancellation.
func (suite *StoreTestSuite) TestRecord_ContextCancelled(t *testing.T) {
	store := suite.newStore(t)
	ctx := cancelledContext()

	err := store.PutRecord(ctx, FileRecord(TestAccount, "F1", "D1", "a.txt"))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = store.LookupRecordByFileID(ctx, TestAccount, "F1")
	assert.ErrorIs(t, err, context.Canceled)
}
