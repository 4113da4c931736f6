package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API
// and the solver pipeline.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	generationTotal *prometheus.CounterVec
	solveDuration   prometheus.Observer
	timetableSlots  prometheus.Gauge
	moveTotal       *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
}

// NewMetricsService registers core Prometheus collectors.
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

	generationTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_generation_runs_total",
		Help: "Total generation runs by solver status",
	}, []string{"status"})

	solveDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_solve_duration_seconds",
		Help:    "Wall time spent in the constraint solver",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
	})

	timetableSlots := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetable_slots_current",
		Help: "Slot count of the latest successful generation",
	})

	moveTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_moves_total",
		Help: "Manual move attempts by result",
	}, []string{"result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheHitRatio, cacheHits, cacheMisses,
		generationTotal, solveDuration, timetableSlots, moveTotal, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		generationTotal: generationTotal,
		solveDuration:   solveDuration,
		timetableSlots:  timetableSlots,
		moveTotal:       moveTotal,
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
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
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

// ObserveGeneration records a finished run's solver status, wall time
// and produced slot count.
func (m *MetricsService) ObserveGeneration(solverStatus string, duration time.Duration, slots int) {
	if m == nil {
		return
	}
	m.generationTotal.WithLabelValues(solverStatus).Inc()
	m.solveDuration.Observe(duration.Seconds())
	if slots > 0 {
		m.timetableSlots.Set(float64(slots))
	}
}

// ObserveMove records a manual edit attempt.
func (m *MetricsService) ObserveMove(result string) {
	if m == nil {
		return
	}
	m.moveTotal.WithLabelValues(result).Inc()
}

// MetricsSnapshot aggregates counters for the status endpoint.
type MetricsSnapshot struct {
	Requests      uint64  `json:"requests"`
	AvgRequestMs  float64 `json:"avgRequestMs"`
	CacheHitRatio float64 `json:"cacheHitRatio"`
	CacheLookups  uint64  `json:"cacheLookups"`
}

// Snapshot returns aggregated metrics for API consumption.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	snap := MetricsSnapshot{Requests: requests, CacheLookups: hits + misses}
	if snap.CacheLookups > 0 {
		snap.CacheHitRatio = float64(hits) / float64(snap.CacheLookups)
	}
	if requests > 0 {
		snap.AvgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}
	return snap
}
