package rest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/marmos91/dittoprovider/internal/logger"
	"github.com/marmos91/dittoprovider/pkg/item"
)

// RESTAdapter implements the adapter.Adapter interface for the JSON item API.
//
// Routes:
//   - GET    /v1/items/{account}/{fileID}  materialize one item
//   - GET    /v1/pending                   list queued updates
//   - POST   /v1/pending                   materialize and queue an item
//   - POST   /v1/pending/drain             return and clear queued updates
//   - DELETE /v1/pending/{identifier}      drop one queued update
//   - GET    /healthz                      run registered health checks
//
// Shutdown flow:
//  1. Context cancelled or Stop() called
//  2. http.Server.Shutdown closes the listener and idle connections
//  3. In-flight requests complete (up to ShutdownTimeout)
//  4. Serve returns
//
// Thread safety:
// All methods are safe for concurrent use. Shutdown is guarded by sync.Once
// so Stop() may be called any number of times.
type RESTAdapter struct {
	config RESTConfig

	materializer *item.Materializer

	// checks run on /healthz in registration order
	checks []HealthCheck

	// mu guards server between Serve and Stop
	mu     sync.Mutex
	server *http.Server

	// port is the bound port, 0 until Serve has a listener
	port atomic.Int32

	shutdownOnce sync.Once
	shutdown     chan struct{}
	stopped      chan struct{}
	stopErr      error
}

// RESTConfig holds configuration parameters for the item API.
//
// Default values (applied by New if zero):
//   - Listen: 127.0.0.1:8080
//   - ReadTimeout: 30s
//   - WriteTimeout: 30s
//   - IdleTimeout: 2m
//   - ShutdownTimeout: 30s
type RESTConfig struct {
	// Listen is the TCP address to bind. Port 0 picks a free port.
	Listen string `mapstructure:"listen"`

	// ReadTimeout bounds reading a full request, body included.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout bounds writing the response.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// IdleTimeout closes keep-alive connections without traffic.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown after context cancellation.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func (c *RESTConfig) applyDefaults() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 30 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 30 * time.Second
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 2 * time.Minute
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 30 * time.Second
	}
}

// HealthCheck is a named probe run by /healthz.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// New creates a RESTAdapter. Call SetMaterializer before Serve.
func New(config RESTConfig) *RESTAdapter {
	config.applyDefaults()

	return &RESTAdapter{
		config:   config,
		shutdown: make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// SetMaterializer injects the shared materializer.
func (s *RESTAdapter) SetMaterializer(m *item.Materializer) {
	s.materializer = m
}

// AddHealthCheck registers a probe reported by /healthz. Must be called
// before Serve.
func (s *RESTAdapter) AddHealthCheck(name string, check func(ctx context.Context) error) {
	s.checks = append(s.checks, HealthCheck{Name: name, Check: check})
}

// Serve binds the listener and serves requests until ctx is cancelled or
// Stop is called.
//
// Returns:
//   - context error if shutdown was triggered by ctx
//   - nil if shutdown was triggered by Stop
//   - error if the listener cannot be created or the server fails
func (s *RESTAdapter) Serve(ctx context.Context) error {
	if s.materializer == nil {
		return fmt.Errorf("materializer not set; call SetMaterializer() before Serve()")
	}

	listener, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to create REST listener on %s: %w", s.config.Listen, err)
	}
	if addr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.port.Store(int32(addr.Port))
	}

	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	s.mu.Lock()
	select {
	case <-s.shutdown:
		s.mu.Unlock()
		_ = listener.Close()
		return nil
	default:
	}
	s.server = srv
	s.mu.Unlock()

	logger.Info("REST API listening on %s", listener.Addr())

	go func() {
		select {
		case <-ctx.Done():
			logger.Info("REST shutdown signal received: %v", ctx.Err())
			stopCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
			defer cancel()
			if err := s.Stop(stopCtx); err != nil {
				logger.Warn("REST shutdown did not complete cleanly: %v", err)
			}
		case <-s.shutdown:
		}
	}()

	err = srv.Serve(listener)
	if !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("REST server failed: %w", err)
	}

	// Serve returns as soon as Shutdown starts; wait for in-flight requests.
	<-s.stopped
	logger.Info("REST API stopped")

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

// Stop gracefully shuts the server down. Safe to call multiple times and
// before Serve.
func (s *RESTAdapter) Stop(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		close(s.shutdown)

		s.mu.Lock()
		srv := s.server
		s.mu.Unlock()

		if srv != nil {
			s.stopErr = srv.Shutdown(ctx)
		}
		close(s.stopped)
	})
	return s.stopErr
}

// Port returns the bound TCP port, or 0 before Serve has a listener.
func (s *RESTAdapter) Port() int {
	return int(s.port.Load())
}

// Protocol returns "REST".
func (s *RESTAdapter) Protocol() string {
	return "REST"
}
