package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/marmos91/dittoprovider/internal/logger"
	"github.com/marmos91/dittoprovider/internal/seed"
	"github.com/marmos91/dittoprovider/pkg/adapter/rest"
	"github.com/marmos91/dittoprovider/pkg/config"
	"github.com/marmos91/dittoprovider/pkg/content"
	"github.com/marmos91/dittoprovider/pkg/metadata"
	"github.com/marmos91/dittoprovider/pkg/server"
)

const (
	testAccount   = "alice@cloud.example.com"
	homeServerURL = "/remote.php/webdav"
)

// fixture is the tree every test starts from:
//
//	/remote.php/webdav
//	├── Photos/           (F-PHOTOS, folder D-PHOTOS)
//	│   ├── beach.jpg     (F-BEACH, cached)
//	│   └── scan          (F-SCAN, cached, sniffed as PDF)
//	└── notes.txt         (F-NOTES, not cached)
const fixture = `
account: alice@cloud.example.com
entries:
  - file_id: F-PHOTOS
    directory_id: D-HOME
    server_url: /remote.php/webdav
    name: Photos
    directory: true
    folder_id: D-PHOTOS
    etag: p1
  - file_id: F-BEACH
    directory_id: D-PHOTOS
    server_url: /remote.php/webdav/Photos
    name: beach.jpg
    etag: b1
    size: 4096
    tag: sunset
    content: "jpeg"
  - file_id: F-SCAN
    directory_id: D-PHOTOS
    server_url: /remote.php/webdav/Photos
    name: scan
    etag: s1
    content: "%PDF-1.4 scanned page"
  - file_id: F-NOTES
    directory_id: D-HOME
    server_url: /remote.php/webdav
    name: notes.txt
    etag: n1
    size: 120
`

// TestContext provides a complete testing environment with:
// - Seeded metadata store and content cache
// - Running provider server with the REST adapter
// - Cleanup mechanisms
type TestContext struct {
	T        *testing.T
	Config   *TestConfig
	Store    metadata.WritableStore
	Cache    content.WritableCache
	Server   *server.ProviderServer
	Adapter  *rest.RESTAdapter
	BaseURL  string
	ctx      context.Context
	cancel   context.CancelFunc
	serveErr chan error
}

// NewTestContext seeds the stores described by cfg and starts the server.
func NewTestContext(t *testing.T, cfg *TestConfig) *TestContext {
	t.Helper()

	// Functional tests, keep output clean
	logger.SetLevel("ERROR")

	ctx, cancel := context.WithCancel(context.Background())
	tc := &TestContext{
		T:        t,
		Config:   cfg,
		ctx:      ctx,
		cancel:   cancel,
		serveErr: make(chan error, 1),
	}

	full := cfg.Build(t.TempDir())
	tc.setupStores(full)
	tc.startServer(full)
	return tc
}

func (tc *TestContext) setupStores(cfg *config.Config) {
	tc.T.Helper()

	var err error
	tc.Store, err = config.CreateMetadataStore(tc.ctx, &cfg.Metadata, nil)
	if err != nil {
		tc.T.Fatalf("Failed to create metadata store: %v", err)
	}

	tc.Cache, err = config.CreateContentCache(tc.ctx, &cfg.Content)
	if err != nil {
		tc.T.Fatalf("Failed to create content cache: %v", err)
	}

	doc, err := seed.Parse(strings.NewReader(fixture))
	if err != nil {
		tc.T.Fatalf("Failed to parse fixture: %v", err)
	}
	if _, err := seed.Apply(tc.ctx, doc, tc.Store, tc.Cache); err != nil {
		tc.T.Fatalf("Failed to seed stores: %v", err)
	}
}

func (tc *TestContext) startServer(cfg *config.Config) {
	tc.T.Helper()

	m, err := config.CreateMaterializer(&cfg.Provider, tc.Store, tc.Cache, nil, nil)
	if err != nil {
		tc.T.Fatalf("Failed to create materializer: %v", err)
	}

	tc.Adapter = rest.New(rest.RESTConfig{
		Listen:          cfg.Server.Listen,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tc.Adapter.AddHealthCheck("metadata", tc.Store.Healthcheck)
	tc.Adapter.AddHealthCheck("content", tc.Cache.Healthcheck)

	tc.Server = server.New(m)
	tc.Server.StopTimeout = cfg.Server.ShutdownTimeout
	if err := tc.Server.AddAdapter(tc.Adapter); err != nil {
		tc.T.Fatalf("Failed to add adapter: %v", err)
	}

	go func() {
		tc.serveErr <- tc.Server.Serve(tc.ctx)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for tc.Adapter.Port() == 0 {
		if time.Now().After(deadline) {
			tc.T.Fatalf("Server did not start within 5s")
		}
		time.Sleep(10 * time.Millisecond)
	}
	tc.BaseURL = fmt.Sprintf("http://127.0.0.1:%d", tc.Adapter.Port())
}

// Cleanup stops the server and closes the stores.
func (tc *TestContext) Cleanup() {
	tc.cancel()

	select {
	case err := <-tc.serveErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			tc.T.Errorf("Server stopped with error: %v", err)
		}
	case <-time.After(10 * time.Second):
		tc.T.Errorf("Server did not stop within 10s")
	}

	if err := tc.Store.Close(); err != nil {
		tc.T.Errorf("Failed to close metadata store: %v", err)
	}
	if err := tc.Cache.Close(); err != nil {
		tc.T.Errorf("Failed to close content cache: %v", err)
	}
}

// Do sends a request and decodes a JSON response into out when non-nil.
// It returns the status code.
func (tc *TestContext) Do(method, path string, body any, out any) int {
	tc.T.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			tc.T.Fatalf("Failed to encode body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(tc.ctx, method, tc.BaseURL+path, reader)
	if err != nil {
		tc.T.Fatalf("Failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		tc.T.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			tc.T.Fatalf("Failed to decode %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}
