package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   prometheus.CounterVec
	HTTPRequestDuration prometheus.HistogramVec

	// Domain metrics
	PostsCreatedTotal      prometheus.CounterVec
	ViewsRecordedTotal     prometheus.Counter
	DashboardRequestsTotal prometheus.CounterVec
	StatsCountFailures     prometheus.CounterVec
	MagicLinksSentTotal    prometheus.Counter

	// Rate limiting metrics
	RateLimitExceededTotal prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),

			PostsCreatedTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "posts_created_total",
					Help: "Total number of posts created",
				},
				[]string{"type"},
			),
			ViewsRecordedTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "post_views_recorded_total",
					Help: "Total number of post views ingested",
				},
			),
			DashboardRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "dashboard_requests_total",
					Help: "Total number of dashboard requests by endpoint and scope",
				},
				[]string{"endpoint", "scope"},
			),
			StatsCountFailures: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "dashboard_stats_count_failures_total",
					Help: "Aggregate stat counts that failed and were reported as 0",
				},
				[]string{"table"},
			),
			MagicLinksSentTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "magic_links_sent_total",
					Help: "Total number of magic-link emails sent",
				},
			),

			RateLimitExceededTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Total number of rate-limited requests",
				},
				[]string{"endpoint", "method"},
			),
		}
	})
	return instance
}

// Get returns the metrics instance, initializing it if needed
func Get() *Metrics {
	if instance == nil {
		return Initialize()
	}
	return instance
}
