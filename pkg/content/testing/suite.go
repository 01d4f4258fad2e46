// Package testing provides a conformance suite for content.WritableCache
// implementations.
package testing

import (
	"context"
	"testing"

	"github.com/marmos91/dittoprovider/pkg/content"
)

// CacheTestSuite tests the content cache contract, not implementation
// details, so that it is reusable across memory, filesystem and S3 caches.
//
// Usage:
//
//	func TestMyCache(t *testing.T) {
//	    suite := &contenttesting.CacheTestSuite{
//	        NewCache: func(t *testing.T) content.WritableCache {
//	            return mycache.New()
//	        },
//	    }
//	    suite.Run(t)
//	}
type CacheTestSuite struct {
	// NewCache creates a fresh, empty cache for each test.
	NewCache func(t *testing.T) content.WritableCache
}

// Run executes all tests in the suite.
func (suite *CacheTestSuite) Run(t *testing.T) {
	t.Run("Stat", suite.RunStatTests)
	t.Run("Write", suite.RunWriteTests)
	t.Run("Validation", suite.RunValidationTests)
	t.Run("Lifecycle", suite.RunLifecycleTests)
}

func (suite *CacheTestSuite) newCache(t *testing.T) content.WritableCache {
	t.Helper()
	c := suite.NewCache(t)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func testContext() context.Context {
	return context.Background()
}

func cancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}
