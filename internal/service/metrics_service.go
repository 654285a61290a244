package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation and a lightweight snapshot for the health endpoint.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	storeDuration   *prometheus.HistogramVec
	storeErrors     *prometheus.CounterVec
	visitsRecorded  *prometheus.CounterVec
	exitsRecorded   prometheus.Counter
	logins          *prometheus.CounterVec

	cacheHitCount      uint64
	cacheMissCount     uint64
	requestCount       uint64
	storeQueryCount    uint64
	storeDurationTotal uint64
}

// MetricsSnapshot is a point-in-time summary of the collectors above.
type MetricsSnapshot struct {
	RequestsTotal          uint64    `json:"requests_total"`
	CacheHitRatio          float64   `json:"cache_hit_ratio"`
	StoreQueryCount        uint64    `json:"store_query_count"`
	AverageStoreDurationMs float64   `json:"average_store_duration_ms"`
	Goroutines             int       `json:"goroutines"`
	GeneratedAt            time.Time `json:"generated_at"`
}

// NewMetricsService registers the service's Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

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

	storeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "visitor_store_duration_seconds",
		Help:    "Duration of visitor store operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	storeErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "visitor_store_errors_total",
		Help: "Visitor store operations that failed",
	}, []string{"operation"})

	visitsRecorded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "library_visits_recorded_total",
		Help: "Visits recorded, by level and source",
	}, []string{"level", "source"})

	exitsRecorded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "library_exits_recorded_total",
		Help: "Exits recorded",
	})

	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_logins_total",
		Help: "Admin login attempts by outcome",
	}, []string{"outcome"})

	registry.MustRegister(
		requestDuration, requestTotal,
		cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		storeDuration, storeErrors, visitsRecorded, exitsRecorded, logins,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		storeDuration:   storeDuration,
		storeErrors:     storeErrors,
		visitsRecorded:  visitsRecorded,
		exitsRecorded:   exitsRecorded,
		logins:          logins,
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	if ratio, ok := m.hitRatio(); ok {
		m.cacheHitRatio.Set(ratio)
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveStoreOperation records the duration and outcome of one visitor store call.
func (m *MetricsService) ObserveStoreOperation(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.storeDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.storeErrors.WithLabelValues(operation).Inc()
	}
	atomic.AddUint64(&m.storeQueryCount, 1)
	atomic.AddUint64(&m.storeDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordVisit counts a stored visit. source is "student", "admin" or "import".
func (m *MetricsService) RecordVisit(level, source string) {
	if m == nil {
		return
	}
	m.visitsRecorded.WithLabelValues(level, source).Inc()
}

// RecordExit counts a stored exit.
func (m *MetricsService) RecordExit() {
	if m == nil {
		return
	}
	m.exitsRecorded.Inc()
}

// RecordLogin counts a login attempt by outcome ("success", "rejected", "error").
func (m *MetricsService) RecordLogin(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

// Snapshot returns aggregated metrics for the health endpoint.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{GeneratedAt: time.Now().UTC()}
	}
	count := atomic.LoadUint64(&m.storeQueryCount)
	total := atomic.LoadUint64(&m.storeDurationTotal)

	var avgStoreMs float64
	if count > 0 {
		avgStoreMs = float64(total) / float64(count) / float64(time.Millisecond)
	}
	ratio, _ := m.hitRatio()

	return MetricsSnapshot{
		RequestsTotal:          atomic.LoadUint64(&m.requestCount),
		CacheHitRatio:          ratio,
		StoreQueryCount:        count,
		AverageStoreDurationMs: avgStoreMs,
		Goroutines:             runtime.NumGoroutine(),
		GeneratedAt:            time.Now().UTC(),
	}
}

func (m *MetricsService) hitRatio() (float64, bool) {
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if hits+misses == 0 {
		return 0, false
	}
	return float64(hits) / float64(hits+misses), true
}
