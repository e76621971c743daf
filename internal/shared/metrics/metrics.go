package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mailsplit"

var (
	registry = prometheus.NewRegistry()

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"method", "path", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	parseDocumentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parse_document",
			Name:      "requests_total",
			Help:      "Parse-document requests by outcome code.",
		},
		[]string{"outcome"},
	)
	providerAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "provider_attempts_total",
			Help:      "AI provider calls by provider, purpose and outcome.",
		},
		[]string{"provider", "purpose", "outcome"},
	)
	providerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "provider_duration_seconds",
			Help:      "AI provider call latency in seconds.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"provider"},
	)
	fallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "heuristic_fallback_total",
			Help:      "Heuristic fallback invocations by purpose.",
		},
		[]string{"purpose"},
	)
	assignJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assign",
			Name:      "jobs_total",
			Help:      "Assignment jobs by outcome.",
		},
		[]string{"outcome"},
	)
	workerJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "jobs_total",
			Help:      "Queue jobs seen by the worker, by outcome.",
		},
		[]string{"outcome"},
	)
	searchSyncTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "sync_total",
			Help:      "Search index sync operations by index and outcome.",
		},
		[]string{"index", "outcome"},
	)
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequestsTotal,
		httpRequestDuration,
		parseDocumentTotal,
		providerAttemptsTotal,
		providerDuration,
		fallbackTotal,
		assignJobsTotal,
		workerJobsTotal,
		searchSyncTotal,
	)
}

// Registry exposes the process registry, mainly for tests.
func Registry() *prometheus.Registry {
	return registry
}

// ObserveHTTPRequest records one completed HTTP request.
func ObserveHTTPRequest(method, path string, status int, elapsed time.Duration) {
	if path == "" {
		path = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// IncParseDocument counts a parse-document outcome ("ok" or an error code).
func IncParseDocument(outcome string) {
	parseDocumentTotal.WithLabelValues(outcome).Inc()
}

// ObserveProviderAttempt records one provider call.
func ObserveProviderAttempt(provider, purpose, outcome string, elapsed time.Duration) {
	providerAttemptsTotal.WithLabelValues(provider, purpose, outcome).Inc()
	providerDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// IncFallback counts a heuristic fallback run.
func IncFallback(purpose string) {
	fallbackTotal.WithLabelValues(purpose).Inc()
}

// IncAssignJob counts an assignment job outcome.
func IncAssignJob(outcome string) {
	assignJobsTotal.WithLabelValues(outcome).Inc()
}

// IncWorkerJob counts a worker job outcome (received, completed, failed, duplicate, unrecoverable).
func IncWorkerJob(outcome string) {
	workerJobsTotal.WithLabelValues(outcome).Inc()
}

// IncSearchSync counts a search index sync outcome.
func IncSearchSync(index, outcome string) {
	searchSyncTotal.WithLabelValues(index, outcome).Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Middleware records request counts and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		ObserveHTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
