package item

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/marmos91/dittoprovider/pkg/content"
	contentmemory "github.com/marmos91/dittoprovider/pkg/content/memory"
	"github.com/marmos91/dittoprovider/pkg/metadata"
	"github.com/marmos91/dittoprovider/pkg/metadata/memory"
	"github.com/stretchr/testify/require"
)

const (
	testAccount = "alice@cloud.example.com"
	homeURL     = "https://cloud.example.com/remote.php/webdav"
)

var testDate = time.Date(2024, 3, 26, 10, 30, 0, 0, time.UTC)

// fixture is a populated store and cache with the tree:
//
//	home/
//	  report.pdf      (F-ROOTFILE)
//	  Photos/         (F-PHOTOS, directory ID D-PHOTOS)
//	    beach.jpg     (F1)
type fixture struct {
	store *memory.MemoryMetadataStore
	cache *contentmemory.MemoryContentCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		store: memory.NewMemoryMetadataStore(),
		cache: contentmemory.NewMemoryContentCache(),
	}

	require.NoError(t, f.store.PutRecord(ctx, photosFolder()))
	require.NoError(t, f.store.PutDirectory(ctx, &metadata.DirectoryRecord{
		Account:     testAccount,
		DirectoryID: "D-PHOTOS",
		FileID:      "F-PHOTOS",
		ServerURL:   homeURL + "/Photos",
	}))
	require.NoError(t, f.store.PutRecord(ctx, beachPhoto()))
	require.NoError(t, f.store.PutRecord(ctx, rootFile()))

	return f
}

func photosFolder() *metadata.Record {
	return &metadata.Record{
		Account:      testAccount,
		FileID:       "F-PHOTOS",
		DirectoryID:  "D-HOME",
		ServerURL:    homeURL,
		FileNameView: "Photos",
		Etag:         "dir-etag",
		Date:         testDate,
		Directory:    true,
	}
}

func beachPhoto() *metadata.Record {
	return &metadata.Record{
		Account:      testAccount,
		FileID:       "F1",
		DirectoryID:  "D-PHOTOS",
		ServerURL:    homeURL + "/Photos",
		FileNameView: "beach.jpg",
		Etag:         "abc",
		Date:         testDate,
		Size:         1024,
	}
}

func rootFile() *metadata.Record {
	return &metadata.Record{
		Account:      testAccount,
		FileID:       "F-ROOTFILE",
		DirectoryID:  "D-HOME",
		ServerURL:    homeURL,
		FileNameView: "report.pdf",
		Etag:         "r1",
		Date:         testDate,
		Size:         2048,
	}
}

func (f *fixture) cacheBytes(t *testing.T, fileID, filename string, n int) {
	t.Helper()
	_, err := f.cache.Put(context.Background(), fileID, filename, strings.NewReader(strings.Repeat("x", n)))
	require.NoError(t, err)
}

func (f *fixture) materializer(t *testing.T, mutate ...func(*Options)) *Materializer {
	t.Helper()
	opts := Options{
		HomeServerURL: homeURL,
		Store:         f.store,
		Cache:         f.cache,
	}
	for _, fn := range mutate {
		fn(&opts)
	}

	m, err := NewMaterializer(opts)
	require.NoError(t, err)
	return m
}

// failingCache fails every probe with err.
type failingCache struct {
	err error
}

func (c failingCache) Stat(context.Context, string, string) (int64, error) { return 0, c.err }
func (c failingCache) Healthcheck(context.Context) error                   { return nil }
func (c failingCache) Close() error                                        { return nil }

var _ content.Cache = failingCache{}

// brokenStore fails lookups selectively with a non-not-found error.
type brokenStore struct {
	metadata.Store
	failDirectory bool
	failRecord    bool
	failTag       bool
}

var errBackend = errors.New("disk I/O error")

func (s *brokenStore) LookupDirectory(ctx context.Context, account, directoryID string) (*metadata.DirectoryRecord, error) {
	if s.failDirectory {
		return nil, errBackend
	}
	return s.Store.LookupDirectory(ctx, account, directoryID)
}

func (s *brokenStore) LookupRecordByFileID(ctx context.Context, account, fileID string) (*metadata.Record, error) {
	if s.failRecord {
		return nil, errBackend
	}
	return s.Store.LookupRecordByFileID(ctx, account, fileID)
}

func (s *brokenStore) LookupTag(ctx context.Context, account, fileID string) (*metadata.TagRecord, error) {
	if s.failTag {
		return nil, errBackend
	}
	return s.Store.LookupTag(ctx, account, fileID)
}

type fakeUploads struct {
	pending map[string]bool
	err     error
}

func (u fakeUploads) HasPendingUpload(_ context.Context, _ string, fileID string) (bool, error) {
	return u.pending[fileID], u.err
}

type fakeFavorites struct {
	ranks map[string]uint64
	err   error
}

func (f fakeFavorites) FavoriteRank(_ context.Context, _ string, fileID string) (uint64, bool, error) {
	if f.err != nil {
		return 0, false, f.err
	}
	rank, ok := f.ranks[fileID]
	return rank, ok, nil
}
