package testing

import (
	"strings"
	"testing"

	"github.com/marmos91/dittoprovider/pkg/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStatTests covers cache probing.
func (suite *CacheTestSuite) RunStatTests(t *testing.T) {
	t.Run("MissingIsNotFound", func(t *testing.T) {
		c := suite.newCache(t)

		size, err := c.Stat(testContext(), "F1", "missing.txt")
		require.Error(t, err)
		assert.ErrorIs(t, err, content.ErrContentNotFound)
		assert.Zero(t, size)
	})

	t.Run("ReportsCachedSize", func(t *testing.T) {
		c := suite.newCache(t)
		mustPut(t, c, "F1", "report.pdf", "hello world")

		size, err := c.Stat(testContext(), "F1", "report.pdf")
		require.NoError(t, err)
		assert.Equal(t, int64(11), size)
	})

	t.Run("EmptyContentHasZeroSize", func(t *testing.T) {
		c := suite.newCache(t)
		mustPut(t, c, "F1", "empty.txt", "")

		size, err := c.Stat(testContext(), "F1", "empty.txt")
		require.NoError(t, err)
		assert.Zero(t, size)
	})

	t.Run("FilenameIsPartOfLocation", func(t *testing.T) {
		c := suite.newCache(t)
		mustPut(t, c, "F1", "old-name.txt", "data")

		_, err := c.Stat(testContext(), "F1", "new-name.txt")
		assert.ErrorIs(t, err, content.ErrContentNotFound)
	})

	t.Run("FileIDIsPartOfLocation", func(t *testing.T) {
		c := suite.newCache(t)
		mustPut(t, c, "F1", "a.txt", "data")

		_, err := c.Stat(testContext(), "F2", "a.txt")
		assert.ErrorIs(t, err, content.ErrContentNotFound)
	})

	t.Run("LargeContent", func(t *testing.T) {
		c := suite.newCache(t)
		payload := strings.Repeat("x", 256*1024)
		mustPut(t, c, "F1", "big.bin", payload)

		size, err := c.Stat(testContext(), "F1", "big.bin")
		require.NoError(t, err)
		assert.Equal(t, int64(len(payload)), size)
	})
}
