// Package prometheus implements the metrics interfaces on the global
// Prometheus registry.
package prometheus

import (
	"strconv"
	"time"

	"github.com/marmos91/dittoprovider/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// materializerMetrics is the Prometheus implementation of metrics.MaterializerMetrics.
type materializerMetrics struct {
	materializeTotal    *prometheus.CounterVec
	materializeDuration prometheus.Histogram
	parentResolutions   *prometheus.CounterVec
	cacheProbes         *prometheus.CounterVec
	classifications     *prometheus.CounterVec
	pendingRemovals     *prometheus.CounterVec
	pendingLength       prometheus.Gauge
}

// NewMaterializerMetrics creates a Prometheus-backed MaterializerMetrics.
//
// Returns a no-op implementation if metrics are not enabled (InitRegistry not called).
func NewMaterializerMetrics() metrics.MaterializerMetrics {
	if !metrics.IsEnabled() {
		return metrics.NewNoopMaterializerMetrics()
	}

	reg := metrics.GetRegistry()

	return &materializerMetrics{
		materializeTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittoprovider_items_materialized_total",
				Help: "Total number of item descriptors built, by kind",
			},
			[]string{"kind"},
		),
		materializeDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "dittoprovider_materialize_duration_seconds",
				Help: "Duration of descriptor materialization in seconds",
				Buckets: []float64{
					0.00001, // 10µs
					0.0001,  // 100µs
					0.001,   // 1ms
					0.01,    // 10ms
					0.1,     // 100ms
					1,       // 1s
				},
			},
		),
		parentResolutions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittoprovider_parent_resolutions_total",
				Help: "Parent identifier resolutions by outcome",
			},
			[]string{"outcome"},
		),
		cacheProbes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittoprovider_cache_probes_total",
				Help: "Content cache probes by outcome",
			},
			[]string{"outcome"},
		),
		classifications: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittoprovider_type_classifications_total",
				Help: "Type classifications by whether a type was found",
			},
			[]string{"found"},
		),
		pendingRemovals: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittoprovider_pending_removals_total",
				Help: "Pending queue removal attempts after materialization",
			},
			[]string{"removed"},
		),
		pendingLength: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "dittoprovider_pending_queue_length",
				Help: "Current number of queued pending updates",
			},
		),
	}
}

func (m *materializerMetrics) RecordMaterialize(duration time.Duration, directory bool) {
	kind := "file"
	if directory {
		kind = "directory"
	}
	m.materializeTotal.WithLabelValues(kind).Inc()
	m.materializeDuration.Observe(duration.Seconds())
}

func (m *materializerMetrics) RecordParentResolution(outcome string) {
	m.parentResolutions.WithLabelValues(outcome).Inc()
}

func (m *materializerMetrics) RecordCacheProbe(outcome string) {
	m.cacheProbes.WithLabelValues(outcome).Inc()
}

func (m *materializerMetrics) RecordTypeClassification(found bool) {
	m.classifications.WithLabelValues(strconv.FormatBool(found)).Inc()
}

func (m *materializerMetrics) RecordPendingRemoval(removed bool) {
	m.pendingRemovals.WithLabelValues(strconv.FormatBool(removed)).Inc()
}

func (m *materializerMetrics) SetPendingQueueLength(n int) {
	m.pendingLength.Set(float64(n))
}
