package badger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/marmos91/dittoprovider/pkg/metadata"
	metadatatesting "github.com/marmos91/dittoprovider/pkg/metadata/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgerMetadataStore(t *testing.T) {
	suite := &metadatatesting.StoreTestSuite{
		NewStore: func(t *testing.T) metadata.WritableStore {
			store, err := NewBadgerMetadataStore(context.Background(), BadgerMetadataStoreConfig{
				DBPath: filepath.Join(t.TempDir(), "metadata"),
			})
			require.NoError(t, err)
			return store
		},
	}

	suite.Run(t)
}

func TestBadgerMetadataStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "metadata")

	store, err := NewBadgerMetadataStore(ctx, BadgerMetadataStoreConfig{DBPath: dbPath})
	require.NoError(t, err)
	require.NoError(t, store.PutRecord(ctx, metadatatesting.FileRecord("alice", "F1", "D1", "a.txt")))
	require.NoError(t, store.Close())

	reopened, err := NewBadgerMetadataStore(ctx, BadgerMetadataStoreConfig{DBPath: dbPath})
	require.NoError(t, err)
	defer reopened.Close()

	rec, err := reopened.LookupRecordByFileID(ctx, "alice", "F1")
	require.NoError(t, err)
	assert.Equal(t, "a.txt", rec.FileNameView)
}

func TestBadgerMetadataStore_RequiresPath(t *testing.T) {
	_, err := NewBadgerMetadataStore(context.Background(), BadgerMetadataStoreConfig{})
	assert.Error(t, err)
}

func TestKeysDoNotCollide(t *testing.T) {
	assert.NotEqual(t, string(keyRecord("a", "b\x00c")), string(keyDirectory("a", "b\x00c")))
	assert.NotEqual(t, string(keyRecord("a:b", "c")), string(keyRecord("a", "b:c")))
}
