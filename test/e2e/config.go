package e2e

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/marmos91/dittoprovider/pkg/config"
)

// MetadataStoreType represents the type of metadata store
type MetadataStoreType string

const (
	MetadataMemory MetadataStoreType = "memory"
	MetadataBadger MetadataStoreType = "badger"
	MetadataSQLite MetadataStoreType = "sqlite"
)

// ContentCacheType represents the type of content cache
type ContentCacheType string

const (
	ContentMemory     ContentCacheType = "memory"
	ContentFilesystem ContentCacheType = "filesystem"
)

// TestConfig holds the configuration for a test run
type TestConfig struct {
	Name          string
	MetadataStore MetadataStoreType
	ContentCache  ContentCacheType

	// LookupCache wraps the metadata store in the LRU lookup cache
	LookupCache bool
}

// String returns a string representation of the configuration
func (tc *TestConfig) String() string {
	return fmt.Sprintf("%s/%s", tc.MetadataStore, tc.ContentCache)
}

// Build returns a complete configuration rooted at dir.
func (tc *TestConfig) Build(dir string) *config.Config {
	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = "ERROR"
	cfg.Provider.HomeServerURL = homeServerURL
	cfg.Server.Listen = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = 5 * time.Second

	cfg.Metadata.Type = string(tc.MetadataStore)
	cfg.Metadata.Cache.Enabled = tc.LookupCache
	switch tc.MetadataStore {
	case MetadataBadger:
		cfg.Metadata.Badger = map[string]any{"db_path": filepath.Join(dir, "badger")}
	case MetadataSQLite:
		cfg.Metadata.Sqlite = map[string]any{"path": filepath.Join(dir, "metadata.db")}
	}

	cfg.Content.Type = string(tc.ContentCache)
	if tc.ContentCache == ContentFilesystem {
		cfg.Content.Filesystem = map[string]any{"path": filepath.Join(dir, "content")}
	}

	return cfg
}

// AllConfigurations returns all test configurations to run
func AllConfigurations() []*TestConfig {
	return []*TestConfig{
		{
			Name:          "memory-memory",
			MetadataStore: MetadataMemory,
			ContentCache:  ContentMemory,
		},
		{
			Name:          "memory-filesystem-cached",
			MetadataStore: MetadataMemory,
			ContentCache:  ContentFilesystem,
			LookupCache:   true,
		},
		{
			Name:          "badger-filesystem",
			MetadataStore: MetadataBadger,
			ContentCache:  ContentFilesystem,
		},
		{
			Name:          "sqlite-filesystem-cached",
			MetadataStore: MetadataSQLite,
			ContentCache:  ContentFilesystem,
			LookupCache:   true,
		},
	}
}
