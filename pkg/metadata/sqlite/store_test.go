package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/marmos91/dittoprovider/pkg/metadata"
	metadatatesting "github.com/marmos91/dittoprovider/pkg/metadata/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteMetadataStore(t *testing.T) {
	suite := &metadatatesting.StoreTestSuite{
		NewStore: func(t *testing.T) metadata.WritableStore {
			store, err := NewSQLiteMetadataStore(context.Background(), SQLiteMetadataStoreConfig{
				Path: filepath.Join(t.TempDir(), "metadata.db"),
			})
			require.NoError(t, err)
			return store
		},
	}

	suite.Run(t)
}

func TestSQLiteMetadataStore_InMemory(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteMetadataStore(ctx, SQLiteMetadataStoreConfig{Path: ":memory:"})
	require.NoError(t, err)
	defer store.Close()

	folder := metadatatesting.FolderRecord("alice", "F-D1", "D0", "Photos")
	require.NoError(t, store.PutRecord(ctx, folder))

	got, err := store.LookupRecordByFileID(ctx, "alice", "F-D1")
	require.NoError(t, err)
	assert.True(t, got.Directory)
	assert.True(t, folder.Date.Equal(got.Date))
}

func TestSQLiteMetadataStore_RequiresPath(t *testing.T) {
	_, err := NewSQLiteMetadataStore(context.Background(), SQLiteMetadataStoreConfig{})
	assert.Error(t, err)
}

func TestSQLiteMetadataStore_PragmasOnEveryConnection(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteMetadataStore(ctx, SQLiteMetadataStoreConfig{
		Path:         filepath.Join(t.TempDir(), "metadata.db"),
		MaxOpenConns: 4,
	})
	require.NoError(t, err)
	defer store.Close()

	// Holding each connection forces the pool to open a new one.
	conns := make([]*sql.Conn, 3)
	for i := range conns {
		conn, err := store.db.Conn(ctx)
		require.NoError(t, err)
		defer conn.Close()
		conns[i] = conn
	}

	for i, conn := range conns {
		var busyTimeout, synchronous int
		var journalMode string
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&busyTimeout))
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA synchronous").Scan(&synchronous))
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journalMode))

		assert.Equal(t, 5000, busyTimeout, "conn %d", i)
		assert.Equal(t, 1, synchronous, "conn %d synchronous=NORMAL", i)
		assert.Equal(t, "wal", journalMode, "conn %d", i)
	}
}

func TestDataSourceName(t *testing.T) {
	assert.Equal(t,
		"/tmp/m.db?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)&_pragma=temp_store(MEMORY)",
		dataSourceName("/tmp/m.db"))
	assert.Contains(t, dataSourceName("file:m.db?mode=rwc"), "mode=rwc&_pragma=journal_mode(WAL)")
}
