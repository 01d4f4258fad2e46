package testing

import (
	"context"
	"testing"

	"github.com/marmos91/dittoprovider/pkg/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *StoreTestSuite) RunTagTests(t *testing.T) {
	t.Run("PutAndLookup", suite.TestTag_PutAndLookup)
	t.Run("LookupMissing", suite.TestTag_LookupMissing)
	t.Run("Delete", suite.TestTag_Delete)
}

// TestTag_PutAndLookup verifies tag bytes round trip unchanged.
func (suite *StoreTestSuite) TestTag_PutAndLookup(t *testing.T) {
	store := suite.newStore(t)

	data := []byte{0x62, 0x70, 0x6c, 0x69, 0x73, 0x74, 0x00, 0xff}
	mustPutTag(t, store, &metadata.TagRecord{Account: TestAccount, FileID: "F1", TagData: data})

	got, err := store.LookupTag(context.Background(), TestAccount, "F1")
	require.NoError(t, err)
	assert.Equal(t, data, got.TagData)
}

// TestTag_LookupMissing verifies a miss is reported as ErrNotFound.
func (suite *StoreTestSuite) TestTag_LookupMissing(t *testing.T) {
	store := suite.newStore(t)

	_, err := store.LookupTag(context.Background(), TestAccount, "F1")
	assert.True(t, metadata.IsNotFound(err))
}

// TestTag_Delete verifies removal.
func (suite *StoreTestSuite) TestTag_Delete(t *testing.T) {
	store := suite.newStore(t)
	ctx := context.Background()

	mustPutTag(t, store, &metadata.TagRecord{Account: TestAccount, FileID: "F1", TagData: []byte("x")})
	require.NoError(t, store.DeleteTag(ctx, TestAccount, "F1"))

	_, err := store.LookupTag(ctx, TestAccount, "F1")
	assert.True(t, metadata.IsNotFound(err))
}
