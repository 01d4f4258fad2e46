// Package s3 implements the content cache probe on Amazon S3 or any
// S3-compatible object store.
//
// Some deployments keep the "local" cache on a shared object store so that
// several provider instances see the same download state. Objects are keyed
// as <prefix><fileID>/<filename>.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/marmos91/dittoprovider/internal/ratelimiter"
	"github.com/marmos91/dittoprovider/pkg/content"
)

// API is the subset of *s3.Client used by the cache.
type API interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3ContentCache implements content.WritableCache on an S3 bucket.
//
// Every request first waits on a shared token bucket. Materializing a large
// folder issues one HEAD per child, and the limiter keeps those enumerations
// from tripping the provider's request quotas.
//
// Thread Safety:
// Safe for concurrent use; the AWS client and the limiter are both
// goroutine-safe.
type S3ContentCache struct {
	client    API
	bucket    string
	keyPrefix string
	limiter   *ratelimiter.RateLimiter
}

// S3ContentCacheConfig contains configuration for the S3 cache.
type S3ContentCacheConfig struct {
	// Client is the configured S3 client
	Client API

	// Bucket is the S3 bucket name
	Bucket string

	// KeyPrefix is an optional prefix for all object keys
	// Example: "cache/" results in keys like "cache/F1/report.pdf"
	KeyPrefix string

	// Limiter throttles requests. Nil means unlimited.
	Limiter *ratelimiter.RateLimiter

	// SkipBucketCheck disables the HeadBucket call in the constructor.
	SkipBucketCheck bool
}

// NewS3ContentCache creates a new S3-backed content cache.
//
// The bucket must already exist. Unless SkipBucketCheck is set, access is
// verified with a HeadBucket request.
//
// Parameters:
//   - ctx: Context for cancellation and timeouts
//   - cfg: S3 configuration
//
// Returns:
//   - *S3ContentCache: Initialized cache
//   - error: If configuration is invalid, the bucket is unreachable, or ctx is cancelled
func NewS3ContentCache(ctx context.Context, cfg S3ContentCacheConfig) (*S3ContentCache, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cfg.Client == nil {
		return nil, fmt.Errorf("S3 client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	limiter := cfg.Limiter
	if limiter == nil {
		limiter = ratelimiter.New(0, 0)
	}

	c := &S3ContentCache{
		client:    cfg.Client,
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
		limiter:   limiter,
	}

	if !cfg.SkipBucketCheck {
		if err := c.Healthcheck(ctx); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// objectKey returns the full S3 key for a file.
func (c *S3ContentCache) objectKey(fileID, filename string) (string, error) {
	rel, err := content.ObjectPath(fileID, filename)
	if err != nil {
		return "", err
	}
	return c.keyPrefix + rel, nil
}

// isNotFound matches both the typed NoSuchKey error (GetObject) and the bare
// 404 "NotFound" code HeadObject returns, since HEAD responses carry no body.
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

// Stat returns the object size via HeadObject.
func (c *S3ContentCache) Stat(ctx context.Context, fileID, filename string) (int64, error) {
	key, err := c.objectKey(fileID, filename)
	if err != nil {
		return 0, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	result, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return 0, fmt.Errorf("content %s: %w", key, content.ErrContentNotFound)
		}
		return 0, fmt.Errorf("failed to head object: %w", err)
	}

	if result.ContentLength == nil {
		return 0, fmt.Errorf("content length not available for %s", key)
	}
	return *result.ContentLength, nil
}

// Open downloads the object. The caller closes the returned body.
func (c *S3ContentCache) Open(ctx context.Context, fileID, filename string) (io.ReadCloser, error) {
	key, err := c.objectKey(fileID, filename)
	if err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	result, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("content %s: %w", key, content.ErrContentNotFound)
		}
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	return result.Body, nil
}

// Put uploads r as a single object. The body is buffered so that the SDK can
// compute the payload checksum and content length.
func (c *S3ContentCache) Put(ctx context.Context, fileID, filename string, r io.Reader) (int64, error) {
	key, err := c.objectKey(fileID, filename)
	if err != nil {
		return 0, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("failed to read content: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	_, err = c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to put object: %w", err)
	}
	return int64(len(data)), nil
}

// Delete removes the object. S3 deletes are idempotent, so existence is
// checked first to report ErrContentNotFound consistently with other caches.
func (c *S3ContentCache) Delete(ctx context.Context, fileID, filename string) error {
	if _, err := c.Stat(ctx, fileID, filename); err != nil {
		return err
	}

	key, err := c.objectKey(fileID, filename)
	if err != nil {
		return err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	_, err = c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// Healthcheck verifies bucket access with HeadBucket.
func (c *S3ContentCache) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	_, err := c.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to access bucket %q: %w", c.bucket, err)
	}
	return nil
}

// Close is a no-op; the AWS client has no resources to release.
func (c *S3ContentCache) Close() error {
	return nil
}
