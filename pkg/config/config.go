package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete dittoprovider configuration.
//
// This structure captures all configurable aspects of the provider:
//   - Logging configuration
//   - Provider behavior (home folder, host capabilities, type sniffing)
//   - Metadata store selection and configuration (store-specific)
//   - Content cache selection and configuration (cache-specific)
//   - Host-facing HTTP server and metrics
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (DITTOPROVIDER_*)
//  3. Configuration file (YAML or TOML)
//  4. Default values (lowest priority)
//
// Store Configuration Pattern:
// Each store implementation defines its own configuration type with
// mapstructure tags. The Config struct contains type-specific sections
// (e.g., metadata.badger, content.s3) and only the section matching the
// selected type is decoded.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Provider controls how descriptors are materialized
	Provider ProviderConfig `mapstructure:"provider" yaml:"provider"`

	// Metadata specifies the metadata store type and type-specific configuration
	Metadata MetadataConfig `mapstructure:"metadata" yaml:"metadata"`

	// Content specifies the content cache type and type-specific configuration
	Content ContentConfig `mapstructure:"content" yaml:"content"`

	// Server contains the host-facing HTTP server settings
	Server ServerConfig `mapstructure:"server" yaml:"server"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" yaml:"output" validate:"required"`
}

// ProviderConfig controls descriptor materialization.
type ProviderConfig struct {
	// HomeServerURL is the remote path of the account's top-level folder.
	// Records whose server URL equals it are children of the root container.
	HomeServerURL string `mapstructure:"home_server_url" yaml:"home_server_url" validate:"required"`

	// HierarchicalIdentifiers reports whether the host understands item and
	// parent identifiers. Resolved once at startup. Default: true
	HierarchicalIdentifiers bool `mapstructure:"hierarchical_identifiers" yaml:"hierarchical_identifiers"`

	// ContentSniffing lets the type classifier inspect cached bytes when the
	// file extension is unknown. Default: true
	ContentSniffing bool `mapstructure:"content_sniffing" yaml:"content_sniffing"`
}

// MetadataConfig specifies metadata store configuration.
//
// The Type field determines which store implementation is used.
// Only the corresponding type-specific configuration section is used.
type MetadataConfig struct {
	// Type specifies which metadata store implementation to use
	// Valid values: memory, badger, sqlite
	Type string `mapstructure:"type" yaml:"type" validate:"required,oneof=memory badger sqlite"`

	// Memory contains memory-specific configuration
	// Only used when Type = "memory"
	Memory map[string]any `mapstructure:"memory" yaml:"memory"`

	// Badger contains BadgerDB-specific configuration
	// Only used when Type = "badger"
	Badger map[string]any `mapstructure:"badger" yaml:"badger"`

	// Sqlite contains SQLite-specific configuration
	// Only used when Type = "sqlite"
	Sqlite map[string]any `mapstructure:"sqlite" yaml:"sqlite"`

	// Cache configures the lookup cache placed in front of the store
	Cache LookupCacheConfig `mapstructure:"cache" yaml:"cache"`
}

// LookupCacheConfig configures the metadata lookup cache.
type LookupCacheConfig struct {
	// Enabled wraps the store with an LRU+TTL cache. Default: true
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// TTL bounds how long a cached lookup is served
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl" validate:"gte=0"`

	// MaxEntries bounds the cache size across all lookup kinds
	MaxEntries int `mapstructure:"max_entries" yaml:"max_entries" validate:"gte=0"`
}

// ContentConfig specifies content cache configuration.
//
// The Type field determines which cache implementation is used.
// Only the corresponding type-specific configuration section is used.
type ContentConfig struct {
	// Type specifies which content cache implementation to use
	// Valid values: filesystem, memory, s3
	Type string `mapstructure:"type" yaml:"type" validate:"required,oneof=filesystem memory s3"`

	// Filesystem contains filesystem-specific configuration
	// Only used when Type = "filesystem"
	Filesystem map[string]any `mapstructure:"filesystem" yaml:"filesystem"`

	// Memory contains memory-specific configuration
	// Only used when Type = "memory"
	Memory map[string]any `mapstructure:"memory" yaml:"memory"`

	// S3 contains S3-specific configuration
	// Only used when Type = "s3"
	S3 map[string]any `mapstructure:"s3" yaml:"s3"`
}

// ServerConfig contains the host-facing HTTP server settings.
type ServerConfig struct {
	// Listen is the address the item API binds to
	Listen string `mapstructure:"listen" yaml:"listen" validate:"required,hostname_port"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"required,gt=0"`

	// Metrics configures the Prometheus endpoint
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	// Enabled turns on metrics collection and the /metrics endpoint
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the TCP port of the metrics server
	Port int `mapstructure:"port" yaml:"port" validate:"omitempty,min=1,max=65535"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (DITTOPROVIDER_*)
//  2. Configuration file
//  3. Default values
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use the DITTOPROVIDER_ prefix and underscores
	// Example: DITTOPROVIDER_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("DITTOPROVIDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// ApplyDefaults cannot tell an explicit false from an absent key, so
	// booleans that default to true are registered here.
	v.SetDefault("provider.hierarchical_identifiers", true)
	v.SetDefault("provider.content_sniffing", true)
	v.SetDefault("metadata.cache.enabled", true)

	// Registering the remaining scalar keys lets AutomaticEnv override them
	// even when the config file omits them.
	v.SetDefault("logging.level", "")
	v.SetDefault("provider.home_server_url", "")
	v.SetDefault("metadata.type", "")
	v.SetDefault("content.type", "")
	v.SetDefault("server.listen", "")
	v.SetDefault("server.metrics.enabled", false)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default location: $XDG_CONFIG_HOME/dittoprovider/config.{yaml,toml}
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		// An explicit path that does not exist is reported as a PathError
		// rather than ConfigFileNotFoundError.
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "dittoprovider")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "dittoprovider")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// ConfigExists checks if a config file exists at the default location.
func ConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for init command).
func GetConfigDir() string {
	return getConfigDir()
}
