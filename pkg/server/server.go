package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/marmos91/dittoprovider/internal/logger"
	"github.com/marmos91/dittoprovider/pkg/adapter"
	"github.com/marmos91/dittoprovider/pkg/item"
)

// DefaultStopTimeout bounds the Stop() calls issued during shutdown.
const DefaultStopTimeout = 30 * time.Second

// ProviderServer manages the lifecycle of the transports that expose a
// single materializer.
//
// All adapters share the same materializer and therefore the same pending
// update queue: an item enqueued through one transport is drained through
// any other.
//
// Lifecycle:
//  1. Creation: New() with the materializer
//  2. Registration: AddAdapter() for each transport
//  3. Startup: Serve() starts all adapters concurrently
//  4. Shutdown: Context cancellation triggers graceful shutdown of all adapters
//
// Thread safety:
// ProviderServer is safe for concurrent use. Serve() may only be called once;
// later calls return an error.
//
// Example usage:
//
//	srv := server.New(materializer)
//	if err := srv.AddAdapter(rest.New(restConfig)); err != nil {
//	    return err
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//
//	if err := srv.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
//	    return err
//	}
type ProviderServer struct {
	materializer *item.Materializer

	// StopTimeout bounds each adapter's Stop() during shutdown.
	StopTimeout time.Duration

	// mu protects adapters and served
	mu       sync.RWMutex
	adapters []adapter.Adapter
	served   bool
}

// ErrAlreadyServed is returned by Serve and AddAdapter once Serve has been
// called.
var ErrAlreadyServed = errors.New("server has already been started")

// New creates a ProviderServer around m.
//
// Panics if m is nil (programmer error).
func New(m *item.Materializer) *ProviderServer {
	if m == nil {
		panic("materializer cannot be nil")
	}

	return &ProviderServer{
		materializer: m,
		StopTimeout:  DefaultStopTimeout,
		adapters:     make([]adapter.Adapter, 0, 2),
	}
}

// AddAdapter registers a transport and injects the shared materializer.
//
// Each adapter must implement a different protocol. Adapters that already
// know their port (non-zero Port()) must not collide with each other.
//
// Returns:
//   - ErrAlreadyServed if Serve() has been called
//   - error if the adapter conflicts with an existing adapter
//
// Panics if a is nil (programmer error).
func (s *ProviderServer) AddAdapter(a adapter.Adapter) error {
	if a == nil {
		panic("adapter cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.served {
		return ErrAlreadyServed
	}

	protocol := a.Protocol()
	port := a.Port()

	for _, existing := range s.adapters {
		if existing.Protocol() == protocol {
			return fmt.Errorf("adapter for protocol %s already registered", protocol)
		}
		// Port 0 means the adapter binds lazily
		if port != 0 && existing.Port() == port {
			return fmt.Errorf("port %d already in use by %s adapter", port, existing.Protocol())
		}
	}

	a.SetMaterializer(s.materializer)
	s.adapters = append(s.adapters, a)

	logger.Info("Registered %s adapter", protocol)
	return nil
}

// Serve starts all registered adapters and blocks until the context is
// cancelled or an adapter fails.
//
// On shutdown every adapter receives Stop() in reverse registration order,
// then Serve waits for all of them to return.
//
// Returns:
//   - ctx.Err() if shutdown was triggered by context cancellation
//   - error wrapping the first adapter failure otherwise
//   - ErrAlreadyServed on a second call
func (s *ProviderServer) Serve(ctx context.Context) error {
	s.mu.Lock()
	if s.served {
		s.mu.Unlock()
		return ErrAlreadyServed
	}
	s.served = true
	if len(s.adapters) == 0 {
		s.mu.Unlock()
		return fmt.Errorf("no adapters registered; call AddAdapter() before Serve()")
	}
	adapters := make([]adapter.Adapter, len(s.adapters))
	copy(adapters, s.adapters)
	s.mu.Unlock()

	logger.Info("Starting provider server with %d adapter(s)", len(adapters))

	// Buffered so failing adapters never block
	errChan := make(chan adapterError, len(adapters))
	var wg sync.WaitGroup

	for _, adp := range adapters {
		wg.Add(1)
		go func(a adapter.Adapter) {
			defer wg.Done()

			protocol := a.Protocol()
			if err := a.Serve(ctx); err != nil {
				if !errors.Is(err, context.Canceled) && ctx.Err() == nil {
					logger.Error("%s adapter failed: %v", protocol, err)
					errChan <- adapterError{protocol: protocol, err: err}
					return
				}
				logger.Debug("%s adapter stopped gracefully", protocol)
				return
			}
			if ctx.Err() == nil {
				// Returning early without a context signal is treated as a failure
				errChan <- adapterError{protocol: protocol, err: errors.New("stopped unexpectedly")}
			}
			logger.Info("%s adapter stopped", protocol)
		}(adp)
	}

	var shutdownErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received (reason: %v)", ctx.Err())
		shutdownErr = ctx.Err()

	case adapterErr := <-errChan:
		logger.Error("Adapter %s failed: %v - initiating shutdown of all adapters",
			adapterErr.protocol, adapterErr.err)
		shutdownErr = fmt.Errorf("%s adapter error: %w", adapterErr.protocol, adapterErr.err)
	}

	s.stopAllAdapters(adapters)

	logger.Debug("Waiting for all adapters to complete shutdown")
	wg.Wait()

	if pending := s.materializer.Queue().Len(); pending > 0 {
		logger.Warn("Provider server stopped with %d undelivered pending update(s)", pending)
	}
	logger.Info("Provider server stopped")

	return shutdownErr
}

// adapterError pairs an adapter protocol name with its error.
type adapterError struct {
	protocol string
	err      error
}

// stopAllAdapters signals every adapter to stop, newest first. Errors are
// logged and do not prevent the remaining adapters from stopping.
func (s *ProviderServer) stopAllAdapters(adapters []adapter.Adapter) {
	timeout := s.StopTimeout
	if timeout <= 0 {
		timeout = DefaultStopTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logger.Info("Initiating graceful shutdown of %d adapter(s)", len(adapters))

	for i := len(adapters) - 1; i >= 0; i-- {
		adp := adapters[i]
		protocol := adp.Protocol()

		logger.Debug("Stopping %s adapter (port %d)", protocol, adp.Port())
		if err := adp.Stop(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Error stopping %s adapter: %v", protocol, err)
		}
	}
}

// Adapters returns a copy of the registered adapters.
func (s *ProviderServer) Adapters() []adapter.Adapter {
	s.mu.RLock()
	defer s.mu.RUnlock()

	adapters := make([]adapter.Adapter, len(s.adapters))
	copy(adapters, s.adapters)
	return adapters
}
