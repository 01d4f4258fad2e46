package e2e

import (
	"net/http"
	"testing"

	"github.com/marmos91/dittoprovider/pkg/item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemPath(fileID string) string {
	return "/v1/items/" + testAccount + "/" + fileID
}

// TestMaterializeFolder checks a top-level folder attaches to the root.
func TestMaterializeFolder(t *testing.T) {
	runOnAllConfigs(t, func(t *testing.T, tc *TestContext) {
		var d item.Descriptor
		require.Equal(t, http.StatusOK, tc.Do(http.MethodGet, itemPath("F-PHOTOS"), nil, &d))

		assert.Equal(t, item.Identifier("F-PHOTOS"), d.ItemIdentifier)
		assert.Equal(t, item.RootContainer, d.ParentItemIdentifier)
		assert.True(t, d.IsDirectory)
		assert.Equal(t, item.CapabilitiesFor(true), d.Capabilities)
		assert.True(t, d.IsDownloaded)
		assert.True(t, d.IsMostRecentVersionDownloaded)
		assert.True(t, d.IsUploaded)
		assert.Equal(t, "p1", d.VersionString())
	})
}

// TestMaterializeNestedFile checks parent resolution through the folder
// table and the cached size override.
func TestMaterializeNestedFile(t *testing.T) {
	runOnAllConfigs(t, func(t *testing.T, tc *TestContext) {
		var d item.Descriptor
		require.Equal(t, http.StatusOK, tc.Do(http.MethodGet, itemPath("F-BEACH"), nil, &d))

		assert.Equal(t, item.Identifier("F-PHOTOS"), d.ParentItemIdentifier)
		assert.Equal(t, "beach.jpg", d.Filename)
		assert.Equal(t, "public.jpeg", d.TypeIdentifier)
		assert.Equal(t, item.CapabilitiesFor(false), d.Capabilities)
		assert.True(t, d.IsDownloaded)
		assert.Equal(t, int64(len("jpeg")), d.DocumentSize)
		assert.Equal(t, []byte("sunset"), d.TagData)
		assert.Equal(t, d.ContentModificationDate, d.CreationDate)
	})
}

// TestMaterializeUncachedFile checks remote-only files keep their remote size.
func TestMaterializeUncachedFile(t *testing.T) {
	runOnAllConfigs(t, func(t *testing.T, tc *TestContext) {
		var d item.Descriptor
		require.Equal(t, http.StatusOK, tc.Do(http.MethodGet, itemPath("F-NOTES"), nil, &d))

		assert.Equal(t, item.RootContainer, d.ParentItemIdentifier)
		assert.False(t, d.IsDownloaded)
		assert.False(t, d.IsMostRecentVersionDownloaded)
		assert.Equal(t, int64(120), d.DocumentSize)
		assert.Equal(t, "public.plain-text", d.TypeIdentifier)
		assert.Empty(t, d.TagData)
	})
}

// TestMaterializeSniffedType checks extensionless files are classified
// from cached content.
func TestMaterializeSniffedType(t *testing.T) {
	runOnAllConfigs(t, func(t *testing.T, tc *TestContext) {
		var d item.Descriptor
		require.Equal(t, http.StatusOK, tc.Do(http.MethodGet, itemPath("F-SCAN"), nil, &d))

		assert.Equal(t, "com.adobe.pdf", d.TypeIdentifier)
	})
}

// TestMaterializeUnknownRecord checks a missing record is a 404.
func TestMaterializeUnknownRecord(t *testing.T) {
	runOnAllConfigs(t, func(t *testing.T, tc *TestContext) {
		assert.Equal(t, http.StatusNotFound, tc.Do(http.MethodGet, itemPath("F-GONE"), nil, nil))
	})
}

// TestHealth checks both stores report healthy.
func TestHealth(t *testing.T) {
	runOnAllConfigs(t, func(t *testing.T, tc *TestContext) {
		var health struct {
			Status string            `json:"status"`
			Checks map[string]string `json:"checks"`
		}
		require.Equal(t, http.StatusOK, tc.Do(http.MethodGet, "/healthz", nil, &health))
		assert.Equal(t, "ok", health.Status)
		assert.Len(t, health.Checks, 2)
	})
}
