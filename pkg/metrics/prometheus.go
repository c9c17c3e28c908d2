package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "google_ads_upstream_requests_total",
			Help: "Total number of requests sent to Google Ads endpoints",
		},
		[]string{"operation", "status_code"},
	)

	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "google_ads_upstream_request_duration_seconds",
			Help:    "Google Ads request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	TokenRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "google_ads_token_refreshes_total",
			Help: "Total number of OAuth access token refreshes",
		},
		[]string{"result"},
	)

	ResponseTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status_code"},
	)

	SnapshotsSaved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "metrics_snapshots_saved_total",
			Help: "Total number of daily metrics snapshots persisted",
		},
	)
)

func init() {
	prometheus.MustRegister(UpstreamRequests)
	prometheus.MustRegister(UpstreamDuration)
	prometheus.MustRegister(TokenRefreshes)
	prometheus.MustRegister(ResponseTime)
	prometheus.MustRegister(SnapshotsSaved)
}

// ObserveUpstream registra contagem e latência de uma chamada externa.
// statusCode 0 representa falha de transporte.
func ObserveUpstream(operation string, statusCode int, startedAt time.Time) {
	UpstreamRequests.WithLabelValues(operation, strconv.Itoa(statusCode)).Inc()
	UpstreamDuration.WithLabelValues(operation).Observe(time.Since(startedAt).Seconds())
}
