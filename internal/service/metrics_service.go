package service

import (
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/linguasaurus-bot/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and keeps lightweight counters for /stats.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	updateDuration  *prometheus.HistogramVec
	updateTotal     *prometheus.CounterVec
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec
	broadcastSent   *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	updateCount          uint64
	updateFailureCount   uint64
	updateDurationTotal  uint64
	dbQueryCount         uint64
	dbQueryDurationTotal uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	updateDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bot_update_duration_seconds",
		Help:    "Duration of bot update handling in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	updateTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_updates_total",
		Help: "Total number of handled bot updates",
	}, []string{"kind", "outcome"})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	broadcastSent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_broadcast_messages_total",
		Help: "Broadcast deliveries by outcome",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(updateDuration, updateTotal, cacheHitRatio, cacheHits, cacheMisses, dbQueryDuration, broadcastSent, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		updateDuration:  updateDuration,
		updateTotal:     updateTotal,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		dbQueryDuration: dbQueryDuration,
		broadcastSent:   broadcastSent,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Update outcomes. Rejected updates were answered with a user notice.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// ObserveUpdate records one handled update. Only OutcomeError counts as a failure.
func (m *MetricsService) ObserveUpdate(kind, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	if outcome == OutcomeError {
		atomic.AddUint64(&m.updateFailureCount, 1)
	}
	m.updateDuration.WithLabelValues(kind).Observe(duration.Seconds())
	m.updateTotal.WithLabelValues(kind, outcome).Inc()
	atomic.AddUint64(&m.updateCount, 1)
	atomic.AddUint64(&m.updateDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
	atomic.AddUint64(&m.dbQueryCount, 1)
	atomic.AddUint64(&m.dbQueryDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordBroadcast counts a broadcast delivery attempt.
func (m *MetricsService) RecordBroadcast(delivered bool) {
	if m == nil {
		return
	}
	if delivered {
		m.broadcastSent.WithLabelValues("delivered").Inc()
		return
	}
	m.broadcastSent.WithLabelValues("failed").Inc()
}

// Snapshot returns aggregated runtime counters.
func (m *MetricsService) Snapshot() models.BotStats {
	if m == nil {
		return models.BotStats{GeneratedAt: time.Now().UTC()}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	updates := atomic.LoadUint64(&m.updateCount)
	failures := atomic.LoadUint64(&m.updateFailureCount)
	updDuration := atomic.LoadUint64(&m.updateDurationTotal)
	dbCount := atomic.LoadUint64(&m.dbQueryCount)
	dbDuration := atomic.LoadUint64(&m.dbQueryDurationTotal)

	var cacheRatio float64
	if totalLookups := hits + misses; totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgUpdateMs float64
	if updates > 0 {
		avgUpdateMs = float64(updDuration) / float64(updates) / float64(time.Millisecond)
	}

	var avgDBMs float64
	if dbCount > 0 {
		avgDBMs = float64(dbDuration) / float64(dbCount) / float64(time.Millisecond)
	}

	return models.BotStats{
		UpdatesTotal:     updates,
		UpdateFailures:   failures,
		AverageUpdateMs:  avgUpdateMs,
		CacheHitRatio:    cacheRatio,
		DBQueryCount:     dbCount,
		AverageDBQueryMs: avgDBMs,
		Goroutines:       runtime.NumGoroutine(),
		GeneratedAt:      time.Now().UTC(),
	}
}
