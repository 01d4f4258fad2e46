package item

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/marmos91/dittoprovider/pkg/content"
	"github.com/marmos91/dittoprovider/pkg/metadata"
	"github.com/marmos91/dittoprovider/pkg/pending"
	"github.com/marmos91/dittoprovider/pkg/typeid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMaterializer_RequiresCollaborators(t *testing.T) {
	f := newFixture(t)

	_, err := NewMaterializer(Options{Cache: f.cache})
	assert.Error(t, err)

	_, err = NewMaterializer(Options{Store: f.store})
	assert.Error(t, err)

	m, err := NewMaterializer(Options{Store: f.store, Cache: f.cache})
	require.NoError(t, err)
	assert.NotNil(t, m.Queue())
}

func TestNewMaterializer_ZeroOptionsUseHierarchicalIdentifiers(t *testing.T) {
	f := newFixture(t)
	queue := pending.New[*Descriptor]()
	queue.Enqueue(&Descriptor{ItemIdentifier: "F1", Filename: "stale.jpg"})

	m, err := NewMaterializer(Options{HomeServerURL: homeURL, Store: f.store, Cache: f.cache, Queue: queue})
	require.NoError(t, err)

	d := m.Materialize(context.Background(), beachPhoto(), "")
	assert.Equal(t, Identifier("F1"), d.ItemIdentifier)
	assert.Equal(t, Identifier("F-PHOTOS"), d.ParentItemIdentifier)
	assert.Zero(t, queue.Len(), "the fresh descriptor supersedes the queued one")
}

func TestMaterialize_CachedFile(t *testing.T) {
	f := newFixture(t)
	f.cacheBytes(t, "F1", "beach.jpg", 1024)
	m := f.materializer(t)

	d := m.Materialize(context.Background(), beachPhoto(), "")

	assert.Equal(t, Identifier("F1"), d.ItemIdentifier)
	assert.Equal(t, Identifier("F-PHOTOS"), d.ParentItemIdentifier)
	assert.Equal(t, "beach.jpg", d.Filename)
	assert.Equal(t, "public.jpeg", d.TypeIdentifier)
	assert.False(t, d.IsDirectory)
	assert.True(t, d.IsDownloaded)
	assert.True(t, d.IsMostRecentVersionDownloaded)
	assert.Equal(t, int64(1024), d.DocumentSize)
	assert.Equal(t, []byte("abc"), d.VersionIdentifier)
	assert.Equal(t, testDate, d.ContentModificationDate)
	assert.Equal(t, testDate, d.CreationDate)
	assert.True(t, d.IsUploaded)
	assert.False(t, d.IsUploading)
	assert.Nil(t, d.ChildItemCount)
	assert.False(t, d.IsTrashed)
	assert.False(t, d.IsDownloading)
	assert.Empty(t, d.DownloadingError)
	assert.Empty(t, d.UploadingError)
}

func TestMaterialize_CachedSizeOverridesRemoteSize(t *testing.T) {
	f := newFixture(t)
	f.cacheBytes(t, "F1", "beach.jpg", 700)
	m := f.materializer(t)

	d := m.Materialize(context.Background(), beachPhoto(), "")

	assert.True(t, d.IsDownloaded)
	assert.Equal(t, int64(700), d.DocumentSize)
}

func TestMaterialize_DownloadState(t *testing.T) {
	tests := []struct {
		name           string
		cache          func(t *testing.T, f *fixture) content.Cache
		wantDownloaded bool
		wantSize       int64
	}{
		{
			name:     "not cached",
			cache:    func(t *testing.T, f *fixture) content.Cache { return f.cache },
			wantSize: 1024,
		},
		{
			name: "empty cache entry",
			cache: func(t *testing.T, f *fixture) content.Cache {
				f.cacheBytes(t, "F1", "beach.jpg", 0)
				return f.cache
			},
			wantSize: 1024,
		},
		{
			name: "single byte cached",
			cache: func(t *testing.T, f *fixture) content.Cache {
				f.cacheBytes(t, "F1", "beach.jpg", 1)
				return f.cache
			},
			wantDownloaded: true,
			wantSize:       1,
		},
		{
			name: "cached under an older name",
			cache: func(t *testing.T, f *fixture) content.Cache {
				f.cacheBytes(t, "F1", "IMG_0001.jpg", 1024)
				return f.cache
			},
			wantSize: 1024,
		},
		{
			name: "probe I/O error",
			cache: func(t *testing.T, f *fixture) content.Cache {
				return failingCache{err: errors.New("permission denied")}
			},
			wantSize: 1024,
		},
		{
			name: "probe not found error",
			cache: func(t *testing.T, f *fixture) content.Cache {
				return failingCache{err: fmt.Errorf("F1: %w", content.ErrContentNotFound)}
			},
			wantSize: 1024,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			cache := tt.cache(t, f)
			m := f.materializer(t, func(o *Options) { o.Cache = cache })

			d := m.Materialize(context.Background(), beachPhoto(), "")

			assert.Equal(t, tt.wantDownloaded, d.IsDownloaded)
			assert.Equal(t, tt.wantDownloaded, d.IsMostRecentVersionDownloaded)
			assert.Equal(t, tt.wantSize, d.DocumentSize)
		})
	}
}

func TestMaterialize_Directory(t *testing.T) {
	f := newFixture(t)
	// A failing cache proves folders never probe it.
	m := f.materializer(t, func(o *Options) { o.Cache = failingCache{err: errors.New("must not be called")} })

	d := m.Materialize(context.Background(), photosFolder(), "")

	assert.Equal(t, Identifier("F-PHOTOS"), d.ItemIdentifier)
	assert.Equal(t, RootContainer, d.ParentItemIdentifier)
	assert.True(t, d.IsDirectory)
	assert.Equal(t, typeid.Folder, d.TypeIdentifier)
	assert.Equal(t, AllowsContentEnumerating|AllowsAddingSubItems|AllowsReading|AllowsDeleting|AllowsRenaming, d.Capabilities)
	assert.True(t, d.IsDownloaded)
	assert.True(t, d.IsMostRecentVersionDownloaded)
	assert.True(t, d.IsUploaded)
	assert.Nil(t, d.FavoriteRank)
}

func TestMaterialize_CapabilitiesFollowKind(t *testing.T) {
	f := newFixture(t)
	m := f.materializer(t)
	ctx := context.Background()

	for _, rec := range []*metadata.Record{beachPhoto(), rootFile(), photosFolder()} {
		d := m.Materialize(ctx, rec, "")
		if rec.Directory {
			assert.True(t, d.Capabilities.Has(AllowsContentEnumerating|AllowsAddingSubItems), rec.FileID)
			assert.False(t, d.Capabilities.Has(AllowsWriting), rec.FileID)
			assert.False(t, d.Capabilities.Has(AllowsReparenting), rec.FileID)
		} else {
			assert.True(t, d.Capabilities.Has(AllowsWriting|AllowsReparenting), rec.FileID)
			assert.False(t, d.Capabilities.Has(AllowsContentEnumerating), rec.FileID)
			assert.False(t, d.Capabilities.Has(AllowsAddingSubItems), rec.FileID)
		}
	}
}

func TestMaterialize_ParentResolution(t *testing.T) {
	f := newFixture(t)
	m := f.materializer(t)
	ctx := context.Background()

	t.Run("top level", func(t *testing.T) {
		d := m.Materialize(ctx, rootFile(), homeURL)
		assert.Equal(t, RootContainer, d.ParentItemIdentifier)
	})

	t.Run("explicit scope overrides record", func(t *testing.T) {
		d := m.Materialize(ctx, beachPhoto(), homeURL)
		assert.Equal(t, RootContainer, d.ParentItemIdentifier)
	})

	t.Run("unknown folder", func(t *testing.T) {
		rec := beachPhoto()
		rec.DirectoryID = "D-DELETED"
		rec.ServerURL = homeURL + "/Deleted"

		d := m.Materialize(ctx, rec, "")
		assert.Equal(t, RootContainer, d.ParentItemIdentifier)
		assert.Equal(t, Identifier("F1"), d.ItemIdentifier)
	})

	t.Run("store failure", func(t *testing.T) {
		broken := f.materializer(t, func(o *Options) {
			o.Store = &brokenStore{Store: f.store, failDirectory: true, failTag: true}
		})
		d := broken.Materialize(ctx, beachPhoto(), "")
		assert.Equal(t, RootContainer, d.ParentItemIdentifier)
		assert.Nil(t, d.TagData)
	})
}

func TestMaterialize_LegacyHostIdentifiers(t *testing.T) {
	f := newFixture(t)
	counting := &countingStore{Store: f.store}
	m := f.materializer(t, func(o *Options) {
		o.LegacyIdentifiers = true
		o.Store = counting
	})

	d := m.Materialize(context.Background(), beachPhoto(), "")

	assert.Empty(t, d.ItemIdentifier)
	assert.Empty(t, d.ParentItemIdentifier)
	assert.Equal(t, "beach.jpg", d.Filename)
	assert.Empty(t, counting.calls, "parent resolution is skipped entirely")
}

func TestMaterialize_TypeClassification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("unknown type stays empty", func(t *testing.T) {
		m := f.materializer(t)
		rec := beachPhoto()
		rec.FileNameView = "blob.unknownext"

		d := m.Materialize(ctx, rec, "")
		assert.Empty(t, d.TypeIdentifier)
	})

	t.Run("custom classifier", func(t *testing.T) {
		var gotName string
		m := f.materializer(t, func(o *Options) {
			o.Classifier = typeid.ClassifierFunc(func(_ context.Context, filename string, _ *metadata.Record) (string, bool) {
				gotName = filename
				return "com.example.custom", true
			})
		})

		d := m.Materialize(ctx, beachPhoto(), "")
		assert.Equal(t, "com.example.custom", d.TypeIdentifier)
		assert.Equal(t, "beach.jpg", gotName)
	})
}

func TestMaterialize_VersionIdentifierTracksEtag(t *testing.T) {
	f := newFixture(t)
	m := f.materializer(t)
	ctx := context.Background()

	rec := beachPhoto()
	first := m.Materialize(ctx, rec, "")
	same := m.Materialize(ctx, rec, "")
	assert.Equal(t, first.VersionIdentifier, same.VersionIdentifier)

	rec.Etag = "def"
	changed := m.Materialize(ctx, rec, "")
	assert.NotEqual(t, first.VersionIdentifier, changed.VersionIdentifier)
	assert.Equal(t, "def", changed.VersionString())
}

func TestMaterialize_TagData(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.PutTag(ctx, &metadata.TagRecord{
		Account: testAccount,
		FileID:  "F1",
		TagData: []byte{0x01, 0x02},
	}))
	m := f.materializer(t)

	tagged := m.Materialize(ctx, beachPhoto(), "")
	assert.Equal(t, []byte{0x01, 0x02}, tagged.TagData)

	untagged := m.Materialize(ctx, rootFile(), "")
	assert.Nil(t, untagged.TagData)
}

func TestMaterialize_UploadState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("pending upload", func(t *testing.T) {
		m := f.materializer(t, func(o *Options) {
			o.Uploads = fakeUploads{pending: map[string]bool{"F1": true}}
		})
		d := m.Materialize(ctx, beachPhoto(), "")
		assert.False(t, d.IsUploaded)
		assert.True(t, d.IsUploading)

		other := m.Materialize(ctx, rootFile(), "")
		assert.True(t, other.IsUploaded)
		assert.False(t, other.IsUploading)
	})

	t.Run("tracker error falls back to uploaded", func(t *testing.T) {
		m := f.materializer(t, func(o *Options) {
			o.Uploads = fakeUploads{pending: map[string]bool{"F1": true}, err: errors.New("queue db locked")}
		})
		d := m.Materialize(ctx, beachPhoto(), "")
		assert.True(t, d.IsUploaded)
		assert.False(t, d.IsUploading)
	})

	t.Run("folders are never uploading", func(t *testing.T) {
		m := f.materializer(t, func(o *Options) {
			o.Uploads = fakeUploads{pending: map[string]bool{"F-PHOTOS": true}}
		})
		d := m.Materialize(ctx, photosFolder(), "")
		assert.True(t, d.IsUploaded)
		assert.False(t, d.IsUploading)
	})
}

func TestMaterialize_FavoriteRank(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m := f.materializer(t, func(o *Options) {
		o.Favorites = fakeFavorites{ranks: map[string]uint64{"F-PHOTOS": 3, "F1": 9}}
	})

	folder := m.Materialize(ctx, photosFolder(), "")
	require.NotNil(t, folder.FavoriteRank)
	assert.Equal(t, uint64(3), *folder.FavoriteRank)

	file := m.Materialize(ctx, beachPhoto(), "")
	assert.Nil(t, file.FavoriteRank, "files are not ranked")

	unranked := f.materializer(t, func(o *Options) { o.Favorites = fakeFavorites{} })
	d := unranked.Materialize(ctx, photosFolder(), "")
	require.NotNil(t, d.FavoriteRank)
	assert.Equal(t, FavoriteRankUnranked, *d.FavoriteRank)

	failing := f.materializer(t, func(o *Options) { o.Favorites = fakeFavorites{err: errors.New("boom")} })
	assert.Nil(t, failing.Materialize(ctx, photosFolder(), "").FavoriteRank)
}

func TestMaterialize_DropsStalePendingUpdate(t *testing.T) {
	f := newFixture(t)
	queue := pending.New[*Descriptor]()
	m := f.materializer(t, func(o *Options) { o.Queue = queue })
	ctx := context.Background()

	queue.Enqueue(&Descriptor{ItemIdentifier: "X"})
	queue.Enqueue(&Descriptor{ItemIdentifier: "F1", Filename: "stale.jpg"})
	queue.Enqueue(&Descriptor{ItemIdentifier: "Z"})

	m.Materialize(ctx, beachPhoto(), "")

	var keys []string
	for _, d := range queue.Snapshot() {
		keys = append(keys, d.Key())
	}
	assert.Equal(t, []string{"X", "Z"}, keys)

	// Absent identifier: no-op.
	m.Materialize(ctx, rootFile(), "")
	assert.Equal(t, 2, queue.Len())
}

func TestMaterialize_TwiceLeavesAtMostOneEntry(t *testing.T) {
	f := newFixture(t)
	m := f.materializer(t)
	ctx := context.Background()

	rec := beachPhoto()
	m.MaterializeAndEnqueue(ctx, rec, "")

	rec.Etag = "newer"
	m.MaterializeAndEnqueue(ctx, rec, "")

	snap := m.Queue().Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "newer", snap[0].VersionString())

	m.Materialize(ctx, rec, "")
	assert.Zero(t, m.Queue().Len())
}

func TestMaterialize_LegacyModeLeavesQueueAlone(t *testing.T) {
	f := newFixture(t)
	queue := pending.New[*Descriptor]()
	queue.Enqueue(&Descriptor{})
	m := f.materializer(t, func(o *Options) {
		o.Queue = queue
		o.LegacyIdentifiers = true
	})

	m.Materialize(context.Background(), beachPhoto(), "")
	assert.Equal(t, 1, queue.Len())
}

func TestMaterializeAndEnqueue_LegacyModeAppends(t *testing.T) {
	f := newFixture(t)
	m := f.materializer(t, func(o *Options) { o.LegacyIdentifiers = true })
	ctx := context.Background()

	m.MaterializeAndEnqueue(ctx, beachPhoto(), "")
	m.MaterializeAndEnqueue(ctx, rootFile(), "")

	snap := m.Queue().Snapshot()
	require.Len(t, snap, 2, "keyless descriptors must not replace each other")
	assert.Equal(t, "beach.jpg", snap[0].Filename)
	assert.Equal(t, "report.pdf", snap[1].Filename)
}

func TestMaterializeByID(t *testing.T) {
	f := newFixture(t)
	f.cacheBytes(t, "F1", "beach.jpg", 1024)
	m := f.materializer(t)
	ctx := context.Background()

	d, err := m.MaterializeByID(ctx, testAccount, "F1")
	require.NoError(t, err)
	assert.Equal(t, Identifier("F-PHOTOS"), d.ParentItemIdentifier)
	assert.True(t, d.IsDownloaded)

	_, err = m.MaterializeByID(ctx, testAccount, "missing")
	require.Error(t, err)
	assert.True(t, metadata.IsNotFound(err))
}

func TestEnqueueByID(t *testing.T) {
	f := newFixture(t)
	m := f.materializer(t)
	ctx := context.Background()

	d, err := m.EnqueueByID(ctx, testAccount, "F1")
	require.NoError(t, err)
	assert.Equal(t, Identifier("F1"), d.ItemIdentifier)

	// A second enqueue replaces the first instead of duplicating it
	_, err = m.EnqueueByID(ctx, testAccount, "F1")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Queue().Len())
	assert.True(t, m.Queue().Contains("F1"))

	_, err = m.EnqueueByID(ctx, testAccount, "missing")
	assert.True(t, metadata.IsNotFound(err))
	assert.Equal(t, 1, m.Queue().Len())
}

func TestMaterialize_Concurrent(t *testing.T) {
	f := newFixture(t)
	f.cacheBytes(t, "F1", "beach.jpg", 1024)
	m := f.materializer(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				m.MaterializeAndEnqueue(ctx, beachPhoto(), "")
				return
			}
			d := m.Materialize(ctx, beachPhoto(), "")
			assert.True(t, d.IsDownloaded)
			assert.Equal(t, Identifier("F-PHOTOS"), d.ParentItemIdentifier)
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, m.Queue().Len(), 1)
}
