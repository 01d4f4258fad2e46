package testing

import (
	"context"
	"strings"
	"testing"

	"github.com/marmos91/dittoprovider/pkg/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunValidationTests ensures crafted names cannot escape the cache layout.
func (suite *CacheTestSuite) RunValidationTests(t *testing.T) {
	invalid := []struct {
		name     string
		fileID   string
		filename string
	}{
		{"EmptyFileID", "", "a.txt"},
		{"EmptyFilename", "F1", ""},
		{"TraversalFilename", "F1", "../../etc/passwd"},
		{"DotDotFileID", "..", "a.txt"},
		{"SlashInFileID", "F1/F2", "a.txt"},
	}

	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			c := suite.newCache(t)

			_, err := c.Stat(testContext(), tc.fileID, tc.filename)
			assert.ErrorIs(t, err, content.ErrInvalidID)

			_, err = c.Put(testContext(), tc.fileID, tc.filename, strings.NewReader("x"))
			assert.ErrorIs(t, err, content.ErrInvalidID)
		})
	}
}

// RunLifecycleTests covers health checks and context cancellation.
func (suite *CacheTestSuite) RunLifecycleTests(t *testing.T) {
	t.Run("Healthcheck", func(t *testing.T) {
		c := suite.newCache(t)
		require.NoError(t, c.Healthcheck(testContext()))
	})

	t.Run("CancelledContext", func(t *testing.T) {
		c := suite.newCache(t)
		mustPut(t, c, "F1", "a.txt", "data")
		ctx := cancelledContext()

		_, err := c.Stat(ctx, "F1", "a.txt")
		assert.ErrorIs(t, err, context.Canceled)

		_, err = c.Open(ctx, "F1", "a.txt")
		assert.ErrorIs(t, err, context.Canceled)

		_, err = c.Put(ctx, "F1", "b.txt", strings.NewReader("x"))
		assert.ErrorIs(t, err, context.Canceled)

		err = c.Delete(ctx, "F1", "a.txt")
		assert.ErrorIs(t, err, context.Canceled)

		assert.ErrorIs(t, c.Healthcheck(ctx), context.Canceled)
	})
}
