package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/marmos91/dittoprovider/internal/ratelimiter"
	"github.com/marmos91/dittoprovider/pkg/content"
	contenttesting "github.com/marmos91/dittoprovider/pkg/content/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 is an in-memory stand-in for a bucket. HeadObject misses return
// types.NotFound and GetObject misses return types.NoSuchKey, as S3 does.
type fakeS3 struct {
	mu      sync.Mutex
	bucket  string
	objects map[string][]byte
	heads   int
	failAll error
}

func newFakeS3(bucket string) *fakeS3 {
	return &fakeS3{bucket: bucket, objects: make(map[string][]byte)}
}

func (f *fakeS3) checkBucket(name *string) error {
	if f.failAll != nil {
		return f.failAll
	}
	if aws.ToString(name) != f.bucket {
		return &types.NoSuchBucket{}
	}
	return nil
}

func (f *fakeS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkBucket(in.Bucket); err != nil {
		return nil, err
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.heads++
	if err := f.checkBucket(in.Bucket); err != nil {
		return nil, err
	}
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(data)))}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkBucket(in.Bucket); err != nil {
		return nil, err
	}
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkBucket(in.Bucket); err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkBucket(in.Bucket); err != nil {
		return nil, err
	}
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3ContentCache(t *testing.T) {
	suite := &contenttesting.CacheTestSuite{
		NewCache: func(t *testing.T) content.WritableCache {
			c, err := NewS3ContentCache(context.Background(), S3ContentCacheConfig{
				Client:    newFakeS3("cache"),
				Bucket:    "cache",
				KeyPrefix: "provider/",
			})
			require.NoError(t, err)
			return c
		},
	}

	suite.Run(t)
}

func TestS3ContentCache_KeyPrefix(t *testing.T) {
	fake := newFakeS3("cache")
	c, err := NewS3ContentCache(context.Background(), S3ContentCacheConfig{
		Client:    fake,
		Bucket:    "cache",
		KeyPrefix: "provider/",
	})
	require.NoError(t, err)

	_, err = c.Put(context.Background(), "F1", "a.txt", bytes.NewReader([]byte("abc")))
	require.NoError(t, err)

	assert.Contains(t, fake.objects, "provider/F1/a.txt")
}

func TestS3ContentCache_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := NewS3ContentCache(ctx, S3ContentCacheConfig{Bucket: "cache"})
	assert.Error(t, err, "client is required")

	_, err = NewS3ContentCache(ctx, S3ContentCacheConfig{Client: newFakeS3("cache")})
	assert.Error(t, err, "bucket is required")

	_, err = NewS3ContentCache(ctx, S3ContentCacheConfig{Client: newFakeS3("cache"), Bucket: "other"})
	assert.Error(t, err, "bucket must be reachable")

	_, err = NewS3ContentCache(ctx, S3ContentCacheConfig{Client: newFakeS3("cache"), Bucket: "other", SkipBucketCheck: true})
	assert.NoError(t, err)
}

func TestS3ContentCache_BackendErrorIsNotNotFound(t *testing.T) {
	fake := newFakeS3("cache")
	c, err := NewS3ContentCache(context.Background(), S3ContentCacheConfig{Client: fake, Bucket: "cache"})
	require.NoError(t, err)

	fake.failAll = errors.New("connection reset")

	_, err = c.Stat(context.Background(), "F1", "a.txt")
	require.Error(t, err)
	assert.NotErrorIs(t, err, content.ErrContentNotFound)
}

func TestS3ContentCache_RateLimited(t *testing.T) {
	fake := newFakeS3("cache")
	limiter := ratelimiter.New(1, 1)
	c, err := NewS3ContentCache(context.Background(), S3ContentCacheConfig{
		Client:          fake,
		Bucket:          "cache",
		Limiter:         limiter,
		SkipBucketCheck: true,
	})
	require.NoError(t, err)

	_, err = c.Stat(context.Background(), "F1", "a.txt")
	require.ErrorIs(t, err, content.ErrContentNotFound)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Stat(ctx, "F1", "a.txt")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, fake.heads, "throttled request must not reach S3")
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&types.NoSuchKey{}))
	assert.True(t, isNotFound(&types.NotFound{}))
	assert.False(t, isNotFound(errors.New("boom")))
}
