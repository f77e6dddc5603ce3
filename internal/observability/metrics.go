// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Analysis metrics
	AnalysesTotal      *prometheus.CounterVec
	AnalysisDuration   prometheus.Histogram
	ActivitiesSeen     prometheus.Counter
	TradesExtracted    prometheus.Counter
	ActivitiesRejected *prometheus.CounterVec
	LastScore          *prometheus.GaugeVec

	// Activity fetch metrics
	FetchLatency  *prometheus.HistogramVec
	FetchErrors   *prometheus.CounterVec
	FetchRetries  prometheus.Counter
	WSMessageLag  prometheus.Histogram
	CircuitOpened prometheus.Counter

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Snapshot metrics
	SnapshotRuns    *prometheus.CounterVec
	SnapshotWallets prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "degenscore_lab"
	}

	return &Metrics{
		// Analysis metrics
		AnalysesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "Total number of wallet analyses by status",
		}, []string{"status"}),
		AnalysisDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Wallet analysis duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		ActivitiesSeen: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "activities_seen_total",
			Help:      "Total number of raw activities inspected",
		}),
		TradesExtracted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "trades_extracted_total",
			Help:      "Total number of trades surviving extraction",
		}),
		ActivitiesRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "activities_rejected_total",
			Help:      "Total number of activities rejected by reason",
		}, []string{"reason"}),
		LastScore: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "last_score",
			Help:      "Most recently computed score by wallet",
		}, []string{"wallet"}),

		// Activity fetch metrics
		FetchLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "activity",
			Name:      "fetch_latency_seconds",
			Help:      "Activity provider request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		FetchErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "activity",
			Name:      "fetch_errors_total",
			Help:      "Total number of activity provider errors by endpoint",
		}, []string{"endpoint"}),
		FetchRetries: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "activity",
			Name:      "fetch_retries_total",
			Help:      "Total number of retried activity provider requests",
		}),
		WSMessageLag: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "activity",
			Name:      "ws_message_lag_seconds",
			Help:      "WebSocket message processing lag in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		CircuitOpened: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "activity",
			Name:      "circuit_opened_total",
			Help:      "Total number of times the provider circuit breaker opened",
		}),

		// Cache metrics
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of metrics cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of metrics cache misses",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Snapshot metrics
		SnapshotRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "runs_total",
			Help:      "Total number of snapshot recorder runs by status",
		}, []string{"status"}),
		SnapshotWallets: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "wallets_recorded_total",
			Help:      "Total number of wallet snapshots recorded",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordAnalysis records one analysis run.
func RecordAnalysis(status string, durationSeconds float64) {
	DefaultMetrics.AnalysesTotal.WithLabelValues(status).Inc()
	DefaultMetrics.AnalysisDuration.Observe(durationSeconds)
}

// RecordExtraction records extraction volume and per-reason rejections.
func RecordExtraction(seen, extracted int, rejects map[string]int) {
	DefaultMetrics.ActivitiesSeen.Add(float64(seen))
	DefaultMetrics.TradesExtracted.Add(float64(extracted))
	for reason, n := range rejects {
		if n > 0 {
			DefaultMetrics.ActivitiesRejected.WithLabelValues(reason).Add(float64(n))
		}
	}
}

// RecordScore updates the last score gauge for a wallet.
func RecordScore(wallet string, score float64) {
	DefaultMetrics.LastScore.WithLabelValues(wallet).Set(score)
}

// RecordFetch records an activity provider request.
func RecordFetch(endpoint string, seconds float64, err error) {
	DefaultMetrics.FetchLatency.WithLabelValues(endpoint).Observe(seconds)
	if err != nil {
		DefaultMetrics.FetchErrors.WithLabelValues(endpoint).Inc()
	}
}

// RecordCacheHit records a metrics cache lookup outcome.
func RecordCacheHit(hit bool) {
	if hit {
		DefaultMetrics.CacheHits.Inc()
	} else {
		DefaultMetrics.CacheMisses.Inc()
	}
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordSnapshotRun records a snapshot recorder run.
func RecordSnapshotRun(status string, wallets int) {
	DefaultMetrics.SnapshotRuns.WithLabelValues(status).Inc()
	DefaultMetrics.SnapshotWallets.Add(float64(wallets))
}
