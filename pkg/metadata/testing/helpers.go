package testing

import (
	"context"
	"testing"
	"time"

	"github.com/marmos91/dittoprovider/pkg/metadata"
	"github.com/stretchr/testify/require"
)

// TestAccount is the account used by fixtures unless a test needs isolation.
const TestAccount = "alice@cloud.example.com"

// FileRecord returns a regular file record with sensible defaults.
func FileRecord(account, fileID, directoryID, name string) *metadata.Record {
	return &metadata.Record{
		Account:      account,
		FileID:       fileID,
		DirectoryID:  directoryID,
		ServerURL:    "https://cloud.example.com/remote.php/webdav/Documents",
		FileNameView: name,
		Etag:         "etag-" + fileID,
		Date:         time.Date(2024, 3, 26, 10, 0, 0, 0, time.UTC),
		Size:         1024,
	}
}

// FolderRecord returns a folder record with sensible defaults.
func FolderRecord(account, fileID, directoryID, name string) *metadata.Record {
	rec := FileRecord(account, fileID, directoryID, name)
	rec.Directory = true
	rec.Size = 0
	return rec
}

// mustPutRecord stores a record and fails the test if it errors.
func mustPutRecord(t *testing.T, store metadata.WritableStore, rec *metadata.Record) {
	t.Helper()
	require.NoError(t, store.PutRecord(context.Background(), rec), "PutRecord should succeed")
}

// mustPutDirectory stores a folder row and fails the test if it errors.
func mustPutDirectory(t *testing.T, store metadata.WritableStore, dir *metadata.DirectoryRecord) {
	t.Helper()
	require.NoError(t, store.PutDirectory(context.Background(), dir), "PutDirectory should succeed")
}

// mustPutTag stores a tag and fails the test if it errors.
func mustPutTag(t *testing.T, store metadata.WritableStore, tag *metadata.TagRecord) {
	t.Helper()
	require.NoError(t, store.PutTag(context.Background(), tag), "PutTag should succeed")
}

// cancelledContext returns a context that is already cancelled.
func cancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}
