package config

import (
	"github.com/marmos91/dittoprovider/pkg/metrics"
	promMetrics "github.com/marmos91/dittoprovider/pkg/metrics/prometheus"
)

// MetricsResult contains all metrics-related components created from configuration.
type MetricsResult struct {
	// Server is the HTTP server exposing Prometheus metrics (nil if disabled)
	Server *metrics.Server

	// Materializer is the collector for item materialization (never nil, uses noop if disabled)
	Materializer metrics.MaterializerMetrics

	// LookupCache is the collector for the metadata lookup cache (never nil, uses noop if disabled)
	LookupCache metrics.LookupCacheMetrics
}

// InitializeMetrics creates and initializes all metrics components based on configuration.
//
// If metrics are enabled in the configuration:
//   - Initializes the global Prometheus registry
//   - Creates the metrics HTTP server
//   - Creates Prometheus-backed metrics instances for all components
//
// If metrics are disabled:
//   - Returns nil server
//   - Returns no-op metrics implementations (zero overhead)
//
// Collectors are registered once per process; call this a single time at
// startup and hand the result to the factories.
func InitializeMetrics(cfg *Config) *MetricsResult {
	if !cfg.Server.Metrics.Enabled {
		return &MetricsResult{
			Server:       nil,
			Materializer: metrics.NewNoopMaterializerMetrics(),
			LookupCache:  metrics.NewNoopLookupCacheMetrics(),
		}
	}

	metrics.InitRegistry()

	server := metrics.NewServer(metrics.ServerConfig{
		Port:            cfg.Server.Metrics.Port,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	return &MetricsResult{
		Server:       server,
		Materializer: promMetrics.NewMaterializerMetrics(),
		LookupCache:  promMetrics.NewLookupCacheMetrics(cfg.Metadata.Type),
	}
}
