package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/marmos91/dittoprovider/internal/logger"
	"github.com/marmos91/dittoprovider/internal/ratelimiter"
	"github.com/marmos91/dittoprovider/pkg/content"
	contentFs "github.com/marmos91/dittoprovider/pkg/content/fs"
	contentMemory "github.com/marmos91/dittoprovider/pkg/content/memory"
	contentS3 "github.com/marmos91/dittoprovider/pkg/content/s3"
	"github.com/marmos91/dittoprovider/pkg/item"
	"github.com/marmos91/dittoprovider/pkg/metadata"
	"github.com/marmos91/dittoprovider/pkg/metadata/badger"
	metadataCache "github.com/marmos91/dittoprovider/pkg/metadata/cache"
	"github.com/marmos91/dittoprovider/pkg/metadata/memory"
	"github.com/marmos91/dittoprovider/pkg/metadata/sqlite"
	"github.com/marmos91/dittoprovider/pkg/metrics"
	"github.com/marmos91/dittoprovider/pkg/pending"
	"github.com/marmos91/dittoprovider/pkg/typeid"
	"github.com/mitchellh/mapstructure"
)

// decodeOptions decodes a type-specific options map into out, accepting
// duration strings such as "5s".
func decodeOptions(options map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	return decoder.Decode(options)
}

// CreateContentCache creates a content cache based on configuration.
//
// This factory function uses the Type field to determine which cache implementation
// to create, then decodes the type-specific configuration from the corresponding
// map and passes it to the cache's constructor.
//
// Supported types:
//   - "filesystem": Uses pkg/content/fs (local directory <path>/<fileID>/<filename>)
//   - "memory": Uses pkg/content/memory (ephemeral)
//   - "s3": Uses pkg/content/s3 (Amazon S3 or compatible storage)
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: Content cache configuration
//
// Returns:
//   - content.WritableCache: Initialized content cache
//   - error: Configuration or initialization error
func CreateContentCache(ctx context.Context, cfg *ContentConfig) (content.WritableCache, error) {
	switch cfg.Type {
	case "filesystem":
		return createFilesystemContentCache(ctx, cfg.Filesystem)
	case "memory":
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return contentMemory.NewMemoryContentCache(), nil
	case "s3":
		return createS3ContentCache(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown content cache type: %q (supported: filesystem, memory, s3)", cfg.Type)
	}
}

// createFilesystemContentCache creates a filesystem-based content cache.
func createFilesystemContentCache(ctx context.Context, options map[string]any) (content.WritableCache, error) {
	type FilesystemContentCacheConfig struct {
		Path string `mapstructure:"path"`
	}

	var cacheCfg FilesystemContentCacheConfig
	if err := decodeOptions(options, &cacheCfg); err != nil {
		return nil, fmt.Errorf("failed to decode filesystem content cache config: %w", err)
	}

	if cacheCfg.Path == "" {
		return nil, fmt.Errorf("filesystem content cache: path is required")
	}

	cache, err := contentFs.NewFSContentCache(ctx, cacheCfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem content cache: %w", err)
	}

	return cache, nil
}

// S3ContentCacheOptions is the decoded form of the content.s3 section.
type S3ContentCacheOptions struct {
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	KeyPrefix       string `mapstructure:"key_prefix"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	MaxRetries      int    `mapstructure:"max_retries"`
	SkipBucketCheck bool   `mapstructure:"skip_bucket_check"`

	// RateLimit throttles HeadObject probes (requests_per_second, burst)
	RateLimit ratelimiter.Config `mapstructure:",squash"`
}

// createS3ContentCache creates an S3-based content cache.
func createS3ContentCache(ctx context.Context, options map[string]any) (content.WritableCache, error) {
	var cacheCfg S3ContentCacheOptions
	if err := decodeOptions(options, &cacheCfg); err != nil {
		return nil, fmt.Errorf("failed to decode S3 content cache config: %w", err)
	}

	if cacheCfg.Bucket == "" {
		return nil, fmt.Errorf("S3 content cache: bucket is required")
	}
	if cacheCfg.Region == "" {
		return nil, fmt.Errorf("S3 content cache: region is required")
	}

	client, err := newS3Client(ctx, cacheCfg)
	if err != nil {
		return nil, err
	}

	cache, err := contentS3.NewS3ContentCache(ctx, contentS3.S3ContentCacheConfig{
		Client:          client,
		Bucket:          cacheCfg.Bucket,
		KeyPrefix:       cacheCfg.KeyPrefix,
		Limiter:         ratelimiter.FromConfig(cacheCfg.RateLimit),
		SkipBucketCheck: cacheCfg.SkipBucketCheck,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 content cache: %w", err)
	}

	logger.Info("S3 content cache initialized: bucket=%s, region=%s, prefix=%s, rps=%d",
		cacheCfg.Bucket, cacheCfg.Region, cacheCfg.KeyPrefix, cacheCfg.RateLimit.RequestsPerSecond)

	return cache, nil
}

// newS3Client builds an S3 client from the decoded options.
func newS3Client(ctx context.Context, opts S3ContentCacheOptions) (*s3.Client, error) {
	var configOptions []func(*awsConfig.LoadOptions) error

	configOptions = append(configOptions, awsConfig.WithRegion(opts.Region))

	// Custom endpoint for MinIO, Localstack, etc.
	if opts.Endpoint != "" {
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
				return aws.Endpoint{
					URL:               opts.Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		configOptions = append(configOptions, awsConfig.WithEndpointResolverWithOptions(customResolver))
	}

	// Static credentials when provided, otherwise the default credential chain
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(
			opts.AccessKeyID,
			opts.SecretAccessKey,
			"",
		)
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	maxRetries := opts.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	cfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		// Path-style addressing for MinIO/Localstack
		if opts.Endpoint != "" {
			o.UsePathStyle = true
		}
	}), nil
}

// CreateMetadataStore creates a metadata store based on configuration.
//
// This factory function uses the Type field to determine which store implementation
// to create, then decodes the type-specific configuration from the corresponding
// map and passes it to the store's constructor. When the lookup cache is
// enabled the store is wrapped in a CachedMetadataStore.
//
// Supported types:
//   - "memory": Uses pkg/metadata/memory (in-memory storage, ephemeral)
//   - "badger": Uses pkg/metadata/badger (BadgerDB storage, persistent)
//   - "sqlite": Uses pkg/metadata/sqlite (SQLite storage, persistent)
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: Metadata store configuration
//   - m: Lookup cache metrics (nil for no-op)
//
// Returns:
//   - metadata.WritableStore: Initialized metadata store
//   - error: Configuration or initialization error
func CreateMetadataStore(ctx context.Context, cfg *MetadataConfig, m metrics.LookupCacheMetrics) (metadata.WritableStore, error) {
	var (
		store metadata.WritableStore
		err   error
	)

	switch cfg.Type {
	case "memory":
		store, err = createMemoryMetadataStore(ctx)
	case "badger":
		store, err = createBadgerMetadataStore(ctx, cfg.Badger)
	case "sqlite":
		store, err = createSQLiteMetadataStore(ctx, cfg.Sqlite)
	default:
		return nil, fmt.Errorf("unknown metadata store type: %q (supported: memory, badger, sqlite)", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	if !cfg.Cache.Enabled {
		return store, nil
	}

	return metadataCache.NewCachedMetadataStore(store, metadataCache.CacheConfig{
		TTL:        cfg.Cache.TTL,
		MaxEntries: cfg.Cache.MaxEntries,
	}, m), nil
}

// createMemoryMetadataStore creates an in-memory metadata store.
func createMemoryMetadataStore(ctx context.Context) (metadata.WritableStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return memory.NewMemoryMetadataStore(), nil
}

// createBadgerMetadataStore creates a BadgerDB-based persistent metadata store.
func createBadgerMetadataStore(ctx context.Context, options map[string]any) (metadata.WritableStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var storeConfig badger.BadgerMetadataStoreConfig
	if err := decodeOptions(options, &storeConfig); err != nil {
		return nil, fmt.Errorf("failed to decode badger metadata store options: %w", err)
	}

	if storeConfig.DBPath == "" && !storeConfig.InMemory {
		return nil, fmt.Errorf("badger metadata store: db_path is required")
	}

	store, err := badger.NewBadgerMetadataStore(ctx, storeConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create badger metadata store: %w", err)
	}

	return store, nil
}

// createSQLiteMetadataStore creates a SQLite-based persistent metadata store.
func createSQLiteMetadataStore(ctx context.Context, options map[string]any) (metadata.WritableStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var storeConfig sqlite.SQLiteMetadataStoreConfig
	if err := decodeOptions(options, &storeConfig); err != nil {
		return nil, fmt.Errorf("failed to decode sqlite metadata store options: %w", err)
	}

	if storeConfig.Path == "" {
		return nil, fmt.Errorf("sqlite metadata store: path is required")
	}

	store, err := sqlite.NewSQLiteMetadataStore(ctx, storeConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite metadata store: %w", err)
	}

	return store, nil
}

// CreateMaterializer wires a Materializer from the provider section.
//
// Content sniffing reads through the cache, so it is only enabled when the
// configuration asks for it.
func CreateMaterializer(cfg *ProviderConfig, store metadata.Store, cache content.WritableCache, queue *pending.Queue[*item.Descriptor], m metrics.MaterializerMetrics) (*item.Materializer, error) {
	var classifierOpts []typeid.Option
	if cfg.ContentSniffing {
		classifierOpts = append(classifierOpts, typeid.WithSniffing(cache))
	}

	return item.NewMaterializer(item.Options{
		HomeServerURL:     cfg.HomeServerURL,
		LegacyIdentifiers: !cfg.HierarchicalIdentifiers,
		Store:             store,
		Cache:             cache,
		Classifier:        typeid.NewTable(classifierOpts...),
		Queue:             queue,
		Metrics:           m,
	})
}
