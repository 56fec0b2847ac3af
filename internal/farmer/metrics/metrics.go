// Package metrics provides observability for the farmer module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks farmer record lifecycle counts and store round-trip
// durations per operation.
type Metrics struct {
	FarmersCreated prometheus.Counter
	FarmersDeleted prometheus.Counter
	StoreDuration  *prometheus.HistogramVec
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
}

// New creates a Metrics instance with all farmer module metrics registered.
func New() *Metrics {
	return &Metrics{
		FarmersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "plantas_farmers_created_total",
			Help: "Total number of farmer records created",
		}),
		FarmersDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "plantas_farmers_deleted_total",
			Help: "Total number of farmer records deleted",
		}),
		StoreDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "plantas_farmer_store_duration_seconds",
			Help:    "Duration of farmer store operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "plantas_farmer_cache_hits_total",
			Help: "Farmer lookups served from the cache",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "plantas_farmer_cache_misses_total",
			Help: "Farmer lookups that fell through to the store",
		}),
	}
}

// ObserveStore records the duration of a store operation.
// Call with time.Now() captured at the start of the operation.
func (m *Metrics) ObserveStore(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.StoreDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// IncrementCreated records a successful farmer creation.
func (m *Metrics) IncrementCreated() {
	if m != nil {
		m.FarmersCreated.Inc()
	}
}

// IncrementDeleted records a successful farmer deletion.
func (m *Metrics) IncrementDeleted() {
	if m != nil {
		m.FarmersDeleted.Inc()
	}
}

// RecordCacheHit counts a lookup served from the cache.
func (m *Metrics) RecordCacheHit() {
	if m != nil {
		m.CacheHits.Inc()
	}
}

// RecordCacheMiss counts a lookup that fell through to the store.
func (m *Metrics) RecordCacheMiss() {
	if m != nil {
		m.CacheMisses.Inc()
	}
}
