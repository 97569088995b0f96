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

// MetricsService encapsulates Prometheus instrumentation for the validation
// pipeline: HTTP traffic, cache behaviour and domain counters such as blocked
// records and audit write failures.
type MetricsService struct {
	registry           *prometheus.Registry
	handler            http.Handler
	requestDuration    *prometheus.HistogramVec
	requestTotal       *prometheus.CounterVec
	validationChecks   *prometheus.CounterVec
	blockedRecords     *prometheus.CounterVec
	officialActions    *prometheus.CounterVec
	auditWriteFailures *prometheus.CounterVec
	exportJobs         *prometheus.CounterVec
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter

	cacheHitCount  uint64
	cacheMissCount uint64
	requestCount   uint64
	blockedCount   uint64
}

// NewMetricsService registers the collectors on a private registry.
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

	validationChecks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "validation_checks_total",
		Help: "Validation checks performed, by record type and outcome",
	}, []string{"record_type", "outcome"})

	blockedRecords := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "validation_blocked_records_total",
		Help: "Record writes blocked by validation errors",
	}, []string{"record_type"})

	officialActions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "official_record_actions_total",
		Help: "Student record lifecycle transitions",
	}, []string{"action"})

	auditWriteFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_write_failures_total",
		Help: "Failed best-effort audit writes, by ledger",
	}, []string{"ledger"})

	exportJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "export_jobs_total",
		Help: "Export jobs by terminal status",
	}, []string{"status"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, validationChecks, blockedRecords,
		officialActions, auditWriteFailures, exportJobs, cacheHits, cacheMisses, goroutines)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		validationChecks:   validationChecks,
		blockedRecords:     blockedRecords,
		officialActions:    officialActions,
		auditWriteFailures: auditWriteFailures,
		exportJobs:         exportJobs,
		cacheHits:          cacheHits,
		cacheMisses:        cacheMisses,
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

// RecordValidationCheck counts one guard evaluation. Outcome is "passed" or
// "blocked"; blocked checks also bump the blocked-records counter.
func (m *MetricsService) RecordValidationCheck(recordType string, blocked bool) {
	if m == nil {
		return
	}
	outcome := "passed"
	if blocked {
		outcome = "blocked"
		m.blockedRecords.WithLabelValues(recordType).Inc()
		atomic.AddUint64(&m.blockedCount, 1)
	}
	m.validationChecks.WithLabelValues(recordType, outcome).Inc()
}

// RecordOfficialAction counts a lifecycle transition (mark_official,
// mark_pending, validation_reset).
func (m *MetricsService) RecordOfficialAction(action string) {
	if m == nil {
		return
	}
	m.officialActions.WithLabelValues(action).Inc()
}

// RecordAuditWriteFailure counts a failed best-effort audit write.
func (m *MetricsService) RecordAuditWriteFailure(ledger string) {
	if m == nil {
		return
	}
	m.auditWriteFailures.WithLabelValues(ledger).Inc()
}

// RecordExportJob counts an export job reaching a terminal status.
func (m *MetricsService) RecordExportJob(status string) {
	if m == nil {
		return
	}
	m.exportJobs.WithLabelValues(status).Inc()
}

// RecordCacheOperation records a cache hit or miss.
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
}

// BlockedTotal returns the number of blocked writes seen since start.
func (m *MetricsService) BlockedTotal() uint64 {
	if m == nil {
		return 0
	}
	return atomic.LoadUint64(&m.blockedCount)
}
