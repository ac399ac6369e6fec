package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheLookups    *prometheus.CounterVec
	cycleTotal      *prometheus.CounterVec
	cycleDuration   prometheus.Observer
	lastSuccess     prometheus.Gauge
	regionEntries   *prometheus.GaugeVec
	canvasDuration  *prometheus.HistogramVec
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

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups by result",
	}, []string{"result"})

	cycleTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_cycles_total",
		Help: "Sync cycles by outcome (ok or error code)",
	}, []string{"outcome"})

	cycleDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sync_cycle_duration_seconds",
		Help:    "Duration of a full fetch, validate and render cycle",
		Buckets: prometheus.DefBuckets,
	})

	lastSuccess := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sync_last_success_timestamp_seconds",
		Help: "Unix time of the last successful sync cycle",
	})

	regionEntries := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "display_region_entries",
		Help: "Entries rendered into each display region by the last cycle",
	}, []string{"region"})

	canvasDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "canvas_aggregation_duration_seconds",
		Help:    "Duration of building the combined payload from Canvas",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheLookups, cycleTotal, cycleDuration, lastSuccess, regionEntries, canvasDuration, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheLookups:    cacheLookups,
		cycleTotal:      cycleTotal,
		cycleDuration:   cycleDuration,
		lastSuccess:     lastSuccess,
		regionEntries:   regionEntries,
		canvasDuration:  canvasDuration,
	}
}

// Registry exposes the underlying registry, mostly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
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
}

// RecordCacheOperation records a cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveCycle records a finished sync cycle. outcome is "ok" or the error code.
func (m *MetricsService) ObserveCycle(outcome string, duration time.Duration, finishedAt time.Time) {
	if m == nil {
		return
	}
	m.cycleTotal.WithLabelValues(outcome).Inc()
	m.cycleDuration.Observe(duration.Seconds())
	if outcome == "ok" {
		m.lastSuccess.Set(float64(finishedAt.Unix()))
	}
}

// SetRegionEntries records how many entries a region displays.
func (m *MetricsService) SetRegionEntries(region string, entries int) {
	if m == nil {
		return
	}
	m.regionEntries.WithLabelValues(region).Set(float64(entries))
}

// ObserveCanvasAggregation records one /api/all build.
func (m *MetricsService) ObserveCanvasAggregation(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.canvasDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}
