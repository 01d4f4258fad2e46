package adapter

import (
	"context"

	"github.com/marmos91/dittoprovider/pkg/item"
)

// Adapter represents a host-facing transport that can be managed by ProviderServer.
//
// Each adapter exposes item materialization over a specific transport (e.g.
// HTTP) and provides a unified interface for lifecycle management. All
// adapters share the same materializer, and therefore the same pending
// update queue.
//
// Lifecycle:
//  1. Creation: Adapter is created with transport-specific configuration
//  2. Injection: SetMaterializer() provides the shared materializer
//  3. Startup: Serve() starts the transport and blocks until shutdown
//  4. Shutdown: Stop() initiates graceful shutdown with timeout
//
// Thread safety:
// Implementations must be safe for concurrent use. SetMaterializer() is
// called once before Serve(), but Stop() may be called concurrently with Serve().
type Adapter interface {
	// Serve starts the transport and blocks until the context is cancelled
	// or an unrecoverable error occurs.
	//
	// When the context is cancelled, Serve must initiate graceful shutdown:
	//   - Stop accepting new connections
	//   - Wait for active requests to complete (with timeout)
	//   - Return context.Canceled or nil
	//
	// If Serve returns before context cancellation, ProviderServer treats it
	// as a fatal error and stops all other adapters.
	Serve(ctx context.Context) error

	// SetMaterializer injects the shared materializer.
	//
	// Called exactly once by ProviderServer before Serve().
	SetMaterializer(m *item.Materializer)

	// Stop initiates graceful shutdown of the transport.
	//
	// Implementations must be idempotent, safe to call concurrently with
	// Serve(), and respect the context deadline.
	Stop(ctx context.Context) error

	// Protocol returns the human-readable protocol name for logging.
	//
	// Examples: "HTTP"
	Protocol() string

	// Port returns the TCP port the adapter is listening on.
	//
	// Returns 0 if the adapter has not yet started.
	Port() int
}
