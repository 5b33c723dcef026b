// Package monitoring provides Prometheus metrics for the veritas pipeline.
//
// Usage:
//
//  1. Setup metrics in your main function:
//     router := gin.New()
//     monitoring.SetupPrometheusMetrics(router)
//
//  2. Record custom metrics from components:
//
//	monitoring.RecordArticleProcessed("validated")
//	monitoring.RecordCacheOperation("get", "hit")
//	monitoring.RecordValidationDuration(time.Since(start))
//
// Available Metrics:
//   - veritas_core_http_requests_total{method, endpoint, status_code}
//   - veritas_core_http_request_duration_seconds{method, endpoint}
//   - veritas_core_articles_processed_total{status}
//   - veritas_core_claims_extracted_total{kind}
//   - veritas_core_validation_duration_seconds
//   - veritas_core_cache_operations_total{operation, result}
//   - veritas_core_store_operations_total{operation, store, status}
//   - veritas_core_reputation_events_total{event_type}
//   - veritas_core_insights_emitted_total{type, severity}
//   - veritas_core_pipeline_queue_depth{stage}
//   - veritas_core_errors_total{type, component}
package monitoring

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "veritas_core_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "veritas_core_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	articlesProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "veritas_core_articles_processed_total",
			Help: "Total number of articles run through validation",
		},
		[]string{"status"}, // validated, degraded, skipped, failed
	)

	claimsExtractedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "veritas_core_claims_extracted_total",
			Help: "Total number of claims extracted from articles",
		},
		[]string{"kind"},
	)

	validationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "veritas_core_validation_duration_seconds",
			Help:    "End-to-end article validation duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	cacheOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "veritas_core_cache_operations_total",
			Help: "Total number of cache operations",
		},
		[]string{"operation", "result"}, // result: hit, miss, error, success
	)

	storeOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "veritas_core_store_operations_total",
			Help: "Total number of external store operations",
		},
		[]string{"operation", "store", "status"},
	)

	reputationEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "veritas_core_reputation_events_total",
			Help: "Total number of reputation events recorded",
		},
		[]string{"event_type"},
	)

	insightsEmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "veritas_core_insights_emitted_total",
			Help: "Total number of insights emitted by detectors",
		},
		[]string{"type", "severity"},
	)

	pipelineQueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "veritas_core_pipeline_queue_depth",
			Help: "Current depth of pipeline stage queues",
		},
		[]string{"stage"},
	)

	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "veritas_core_errors_total",
			Help: "Total number of errors",
		},
		[]string{"type", "component"},
	)
)

// SetupPrometheusMetrics registers all metrics and exposes /metrics.
func SetupPrometheusMetrics(router gin.IRoutes) {
	_ = prometheus.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "veritas_core_build_info",
		Help: "Build information for veritas-core",
		ConstLabels: prometheus.Labels{
			"component": "veritas-core",
		},
	}, func() float64 { return 1 }))

	_ = prometheus.Register(httpRequestsTotal)
	_ = prometheus.Register(httpRequestDuration)
	_ = prometheus.Register(articlesProcessedTotal)
	_ = prometheus.Register(claimsExtractedTotal)
	_ = prometheus.Register(validationDuration)
	_ = prometheus.Register(cacheOperationsTotal)
	_ = prometheus.Register(storeOperationsTotal)
	_ = prometheus.Register(reputationEventsTotal)
	_ = prometheus.Register(insightsEmittedTotal)
	_ = prometheus.Register(pipelineQueueDepth)
	_ = prometheus.Register(errorsTotal)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// HTTPMetricsMiddleware collects request count and latency per endpoint.
func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		endpoint := normalizeEndpoint(c.Request.URL.Path)

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
		httpRequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// normalizeEndpoint collapses path parameters so metric cardinality stays bounded.
func normalizeEndpoint(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p == "" {
			continue
		}
		// Heuristic: ids are long, contain digits or dashes beyond route words.
		if len(p) > 16 || strings.ContainsAny(p, "0123456789") {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

func RecordArticleProcessed(status string) {
	articlesProcessedTotal.WithLabelValues(status).Inc()
}

func RecordClaimExtracted(kind string) {
	claimsExtractedTotal.WithLabelValues(kind).Inc()
}

func RecordValidationDuration(d time.Duration) {
	validationDuration.Observe(d.Seconds())
}

func RecordCacheOperation(operation, result string) {
	cacheOperationsTotal.WithLabelValues(operation, result).Inc()
}

func RecordStoreOperation(operation, store string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	storeOperationsTotal.WithLabelValues(operation, store, status).Inc()
}

func RecordReputationEvent(eventType string) {
	reputationEventsTotal.WithLabelValues(eventType).Inc()
}

func RecordInsightEmitted(insightType, severity string) {
	insightsEmittedTotal.WithLabelValues(insightType, severity).Inc()
}

func SetPipelineQueueDepth(stage string, depth int) {
	pipelineQueueDepth.WithLabelValues(stage).Set(float64(depth))
}

func RecordError(errType, component string) {
	errorsTotal.WithLabelValues(errType, component).Inc()
}
