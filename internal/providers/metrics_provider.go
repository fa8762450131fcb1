package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"supertube/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncRefreshTotal(result string)
	IncProviderErrors(op string)
	IncChangesDetected(kind string)
	SetQuotaUsage(percent float64)
	ObserveCompactionDuration(duration time.Duration)
	AddArchivedPoints(count int)
}

type MetricsProvider struct {
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	refreshTotal       *prometheus.CounterVec
	providerErrors     *prometheus.CounterVec
	changesDetected    *prometheus.CounterVec
	quotaUsage         prometheus.Gauge
	compactionDuration prometheus.Histogram
	archivedPoints     prometheus.Counter
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncRefreshTotal(result string) {
	m.refreshTotal.WithLabelValues(result).Inc()
}

func (m *MetricsProvider) IncProviderErrors(op string) {
	m.providerErrors.WithLabelValues(op).Inc()
}

func (m *MetricsProvider) IncChangesDetected(kind string) {
	m.changesDetected.WithLabelValues(kind).Inc()
}

func (m *MetricsProvider) SetQuotaUsage(percent float64) {
	m.quotaUsage.Set(percent)
}

func (m *MetricsProvider) ObserveCompactionDuration(duration time.Duration) {
	m.compactionDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) AddArchivedPoints(count int) {
	m.archivedPoints.Add(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "supertube_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "supertube_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "supertube_cache_hits_total",
			Help: "Total number of response cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "supertube_cache_misses_total",
			Help: "Total number of response cache misses",
		}),

		refreshTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "supertube_refresh_total",
			Help: "Refresh attempts per channel by result",
		}, []string{"result"}),

		providerErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "supertube_provider_errors_total",
			Help: "Provider API errors by operation",
		}, []string{"op"}),

		changesDetected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "supertube_changes_detected_total",
			Help: "Detected changes by kind",
		}, []string{"kind"}),

		quotaUsage: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "supertube_quota_usage_percent",
			Help: "Current API quota usage as a percentage of the daily limit",
		}),

		compactionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "supertube_compaction_duration_seconds",
			Help:    "Duration of archive compaction runs in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		archivedPoints: promauto.NewCounter(prometheus.CounterOpts{
			Name: "supertube_archived_points_total",
			Help: "Hot stat points migrated into archive blocks",
		}),
	}

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncRefreshTotal(_ string)                         {}
func (n *noopMetrics) IncProviderErrors(_ string)                       {}
func (n *noopMetrics) IncChangesDetected(_ string)                      {}
func (n *noopMetrics) SetQuotaUsage(_ float64)                          {}
func (n *noopMetrics) ObserveCompactionDuration(_ time.Duration)        {}
func (n *noopMetrics) AddArchivedPoints(_ int)                          {}
