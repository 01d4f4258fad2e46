package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/marmos91/dittoprovider/pkg/adapter/rest"
	contentmemory "github.com/marmos91/dittoprovider/pkg/content/memory"
	"github.com/marmos91/dittoprovider/pkg/item"
	"github.com/marmos91/dittoprovider/pkg/metadata"
	"github.com/marmos91/dittoprovider/pkg/metadata/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQueueTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	store := memory.NewMemoryMetadataStore()
	require.NoError(t, store.PutRecord(ctx, &metadata.Record{
		Account:      "alice",
		FileID:       "F1",
		DirectoryID:  "D0",
		ServerURL:    "/",
		FileNameView: "notes.txt",
		Etag:         "e1",
		Date:         time.Now(),
	}))

	m, err := item.NewMaterializer(item.Options{
		HomeServerURL: "/",
		Store:         store,
		Cache:         contentmemory.NewMemoryContentCache(),
	})
	require.NoError(t, err)

	api := rest.New(rest.RESTConfig{})
	api.SetMaterializer(m)

	ts := httptest.NewServer(api.Handler())
	t.Cleanup(ts.Close)

	queueServer = ts.URL
	queueTimeout = 5 * time.Second
	return ts
}

func TestQueueRequest_RoundTrip(t *testing.T) {
	newQueueTestServer(t)

	var d item.Descriptor
	err := queueRequest(http.MethodPost, "/v1/pending", enqueueBody{Account: "alice", FileID: "F1"}, http.StatusAccepted, &d)
	require.NoError(t, err)
	assert.Equal(t, item.Identifier("F1"), d.ItemIdentifier)
	assert.Equal(t, item.CapabilitiesFor(false), d.Capabilities)

	var list pendingList
	require.NoError(t, queueRequest(http.MethodGet, "/v1/pending", nil, http.StatusOK, &list))
	assert.Equal(t, 1, list.Count)

	require.NoError(t, queueRequest(http.MethodDelete, "/v1/pending/F1", nil, http.StatusNoContent, nil))

	require.NoError(t, queueRequest(http.MethodPost, "/v1/pending/drain", nil, http.StatusOK, &list))
	assert.Equal(t, 0, list.Count)
}

func TestQueueRequest_ServerError(t *testing.T) {
	newQueueTestServer(t)

	err := queueRequest(http.MethodPost, "/v1/pending", enqueueBody{Account: "alice", FileID: "missing"}, http.StatusAccepted, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "not found")
}

func TestPrintDescriptors_UnknownFormat(t *testing.T) {
	err := printDescriptors("xml", nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unknown output format"))
}
