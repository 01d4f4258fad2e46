package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{Logging: LoggingConfig{Level: "debug"}}
	ApplyDefaults(cfg)

	assert.Equal(t, "DEBUG", cfg.Logging.Level, "level is normalized to uppercase")
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
}

func TestApplyDefaults_Provider(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, "/", cfg.Provider.HomeServerURL)
}

func TestApplyDefaults_Metadata(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, "memory", cfg.Metadata.Type)
	assert.NotNil(t, cfg.Metadata.Memory)
	assert.Contains(t, cfg.Metadata.Badger, "db_path")
	assert.Contains(t, cfg.Metadata.Sqlite, "path")
	assert.Equal(t, 5*time.Second, cfg.Metadata.Cache.TTL)
	assert.Equal(t, 10000, cfg.Metadata.Cache.MaxEntries)
}

func TestApplyDefaults_Content(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, "filesystem", cfg.Content.Type)
	assert.Contains(t, cfg.Content.Filesystem, "path")
	assert.NotNil(t, cfg.Content.Memory)
	assert.Equal(t, 10, cfg.Content.S3["max_retries"])
}

func TestApplyDefaults_Server(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Listen)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 9090, cfg.Server.Metrics.Port)
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{Level: "WARN", Format: "json", Output: "stderr"},
		Provider: ProviderConfig{
			HomeServerURL: "/files/alice",
		},
		Metadata: MetadataConfig{
			Type:   "badger",
			Badger: map[string]any{"db_path": "/data/meta"},
			Cache:  LookupCacheConfig{TTL: time.Minute, MaxEntries: 5},
		},
		Content: ContentConfig{
			Type:       "s3",
			Filesystem: map[string]any{"path": "/data/content"},
			S3:         map[string]any{"max_retries": 3},
		},
		Server: ServerConfig{
			Listen:          ":7000",
			ShutdownTimeout: 10 * time.Second,
			Metrics:         MetricsConfig{Enabled: true, Port: 9100},
		},
	}

	ApplyDefaults(cfg)

	assert.Equal(t, "WARN", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, "/files/alice", cfg.Provider.HomeServerURL)
	assert.Equal(t, "badger", cfg.Metadata.Type)
	assert.Equal(t, "/data/meta", cfg.Metadata.Badger["db_path"])
	assert.Equal(t, time.Minute, cfg.Metadata.Cache.TTL)
	assert.Equal(t, 5, cfg.Metadata.Cache.MaxEntries)
	assert.Equal(t, "s3", cfg.Content.Type)
	assert.Equal(t, "/data/content", cfg.Content.Filesystem["path"])
	assert.Equal(t, 3, cfg.Content.S3["max_retries"])
	assert.Equal(t, ":7000", cfg.Server.Listen)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 9100, cfg.Server.Metrics.Port)
}

func TestGetDefaultConfig_IsValid(t *testing.T) {
	require.NoError(t, Validate(GetDefaultConfig()))
}
