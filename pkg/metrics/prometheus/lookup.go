package prometheus

import (
	"github.com/marmos91/dittoprovider/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// lookupCacheMetrics is the Prometheus implementation of metrics.LookupCacheMetrics.
type lookupCacheMetrics struct {
	hits      *prometheus.CounterVec
	misses    *prometheus.CounterVec
	evictions prometheus.Counter
}

// NewLookupCacheMetrics creates a Prometheus-backed LookupCacheMetrics.
//
// Returns a no-op implementation if metrics are not enabled.
func NewLookupCacheMetrics(storeType string) metrics.LookupCacheMetrics {
	if !metrics.IsEnabled() {
		return metrics.NewNoopLookupCacheMetrics()
	}

	reg := metrics.GetRegistry()
	labels := prometheus.Labels{"store_type": storeType}

	return &lookupCacheMetrics{
		hits: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name:        "dittoprovider_metadata_cache_hits_total",
				Help:        "Metadata lookups served from cache, by lookup kind",
				ConstLabels: labels,
			},
			[]string{"kind"},
		),
		misses: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name:        "dittoprovider_metadata_cache_misses_total",
				Help:        "Metadata lookups that reached the store, by lookup kind",
				ConstLabels: labels,
			},
			[]string{"kind"},
		),
		evictions: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name:        "dittoprovider_metadata_cache_evictions_total",
				Help:        "Metadata cache entries evicted to honor the size limit",
				ConstLabels: labels,
			},
		),
	}
}

func (m *lookupCacheMetrics) RecordHit(kind string) {
	m.hits.WithLabelValues(kind).Inc()
}

func (m *lookupCacheMetrics) RecordMiss(kind string) {
	m.misses.WithLabelValues(kind).Inc()
}

func (m *lookupCacheMetrics) RecordEviction() {
	m.evictions.Inc()
}
