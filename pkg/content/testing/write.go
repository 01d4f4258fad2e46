package testing

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/marmos91/dittoprovider/pkg/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunWriteTests covers Put, Open and Delete.
func (suite *CacheTestSuite) RunWriteTests(t *testing.T) {
	t.Run("PutReturnsBytesWritten", func(t *testing.T) {
		c := suite.newCache(t)

		n, err := c.Put(testContext(), "F1", "a.txt", strings.NewReader("abc"))
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("OpenReturnsContent", func(t *testing.T) {
		c := suite.newCache(t)
		mustPut(t, c, "F1", "a.txt", "payload")

		assert.Equal(t, "payload", mustRead(t, c, "F1", "a.txt"))
	})

	t.Run("OpenMissingIsNotFound", func(t *testing.T) {
		c := suite.newCache(t)

		_, err := c.Open(testContext(), "F1", "a.txt")
		assert.ErrorIs(t, err, content.ErrContentNotFound)
	})

	t.Run("PutOverwrites", func(t *testing.T) {
		c := suite.newCache(t)
		mustPut(t, c, "F1", "a.txt", "first version")
		mustPut(t, c, "F1", "a.txt", "v2")

		size, err := c.Stat(testContext(), "F1", "a.txt")
		require.NoError(t, err)
		assert.Equal(t, int64(2), size)
		assert.Equal(t, "v2", mustRead(t, c, "F1", "a.txt"))
	})

	t.Run("DeleteRemoves", func(t *testing.T) {
		c := suite.newCache(t)
		mustPut(t, c, "F1", "a.txt", "data")

		require.NoError(t, c.Delete(testContext(), "F1", "a.txt"))

		_, err := c.Stat(testContext(), "F1", "a.txt")
		assert.ErrorIs(t, err, content.ErrContentNotFound)
	})

	t.Run("DeleteMissingIsNotFound", func(t *testing.T) {
		c := suite.newCache(t)

		err := c.Delete(testContext(), "F1", "a.txt")
		assert.ErrorIs(t, err, content.ErrContentNotFound)
	})

	t.Run("DeleteKeepsSiblings", func(t *testing.T) {
		c := suite.newCache(t)
		mustPut(t, c, "F1", "a.txt", "a")
		mustPut(t, c, "F1", "b.txt", "bb")

		require.NoError(t, c.Delete(testContext(), "F1", "a.txt"))

		size, err := c.Stat(testContext(), "F1", "b.txt")
		require.NoError(t, err)
		assert.Equal(t, int64(2), size)
	})

	t.Run("ConcurrentPutAndStat", func(t *testing.T) {
		c := suite.newCache(t)

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id := fmt.Sprintf("F%d", i)
				_, err := c.Put(testContext(), id, "file.txt", strings.NewReader(id))
				assert.NoError(t, err)
				size, err := c.Stat(testContext(), id, "file.txt")
				assert.NoError(t, err)
				assert.Equal(t, int64(len(id)), size)
			}(i)
		}
		wg.Wait()
	})
}

func mustPut(t *testing.T, c content.WritableCache, fileID, filename, data string) {
	t.Helper()
	_, err := c.Put(testContext(), fileID, filename, strings.NewReader(data))
	require.NoError(t, err)
}

func mustRead(t *testing.T, c content.WritableCache, fileID, filename string) string {
	t.Helper()
	rc, err := c.Open(testContext(), fileID, filename)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}
