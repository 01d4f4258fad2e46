//go:build integration

package persistence_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/marmos91/dittoprovider/internal/seed"
	"github.com/marmos91/dittoprovider/pkg/config"
	"github.com/marmos91/dittoprovider/pkg/item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedDoc = `
account: alice
entries:
  - file_id: F-DOCS
    directory_id: D-HOME
    server_url: /webdav
    name: Documents
    directory: true
    folder_id: D-DOCS
    etag: d1
  - file_id: F-REPORT
    directory_id: D-DOCS
    server_url: /webdav/Documents
    name: report.pdf
    etag: r7
    tag: reviewed
    content: "%PDF-1.7 report"
`

// TestPersistentStores_Integration seeds each persistent metadata backend,
// reopens it and checks that materialization sees the same tree.
//
// Prerequisites:
//   - None (BadgerDB and SQLite are embedded)
//   - Run with: go test -tags=integration ./test/integration/persistence/...
func TestPersistentStores_Integration(t *testing.T) {
	tests := []struct {
		name string
		cfg  func(dir string) config.MetadataConfig
	}{
		{
			name: "badger",
			cfg: func(dir string) config.MetadataConfig {
				return config.MetadataConfig{Type: "badger", Badger: map[string]any{"db_path": filepath.Join(dir, "badger")}}
			},
		},
		{
			name: "sqlite",
			cfg: func(dir string) config.MetadataConfig {
				return config.MetadataConfig{Type: "sqlite", Sqlite: map[string]any{"path": filepath.Join(dir, "metadata.db")}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			dir := t.TempDir()
			metaCfg := tt.cfg(dir)
			contentCfg := config.ContentConfig{
				Type:       "filesystem",
				Filesystem: map[string]any{"path": filepath.Join(dir, "content")},
			}

			// Phase 1: seed and close
			doc, err := seed.Parse(strings.NewReader(seedDoc))
			require.NoError(t, err)

			store, err := config.CreateMetadataStore(ctx, &metaCfg, nil)
			require.NoError(t, err)
			cache, err := config.CreateContentCache(ctx, &contentCfg)
			require.NoError(t, err)

			_, err = seed.Apply(ctx, doc, store, cache)
			require.NoError(t, err)
			require.NoError(t, store.Close())
			require.NoError(t, cache.Close())

			// Phase 2: reopen through the cached decorator and materialize
			metaCfg.Cache = config.LookupCacheConfig{Enabled: true, TTL: 5 * time.Second, MaxEntries: 100}
			store, err = config.CreateMetadataStore(ctx, &metaCfg, nil)
			require.NoError(t, err)
			defer store.Close()
			cache, err = config.CreateContentCache(ctx, &contentCfg)
			require.NoError(t, err)
			defer cache.Close()

			m, err := config.CreateMaterializer(&config.ProviderConfig{
				HomeServerURL:           "/webdav",
				HierarchicalIdentifiers: true,
				ContentSniffing:         true,
			}, store, cache, nil, nil)
			require.NoError(t, err)

			folder, err := m.MaterializeByID(ctx, "alice", "F-DOCS")
			require.NoError(t, err)
			assert.Equal(t, item.RootContainer, folder.ParentItemIdentifier)
			assert.True(t, folder.IsDownloaded)

			report, err := m.MaterializeByID(ctx, "alice", "F-REPORT")
			require.NoError(t, err)
			assert.Equal(t, item.Identifier("F-DOCS"), report.ParentItemIdentifier)
			assert.Equal(t, "com.adobe.pdf", report.TypeIdentifier)
			assert.Equal(t, "r7", report.VersionString())
			assert.Equal(t, []byte("reviewed"), report.TagData)
			assert.True(t, report.IsDownloaded)
			assert.Equal(t, int64(len("%PDF-1.7 report")), report.DocumentSize)
		})
	}
}
