// Package metrics provides Prometheus metrics for article-admin.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by route template and status.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "articleadmin",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// RequestDuration measures handler latency.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "articleadmin",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// EventsTotal counts change events handed to the message bus.
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "articleadmin",
			Name:      "events_published_total",
			Help:      "Total number of article change events published",
		},
		[]string{"event", "status"},
	)
)

func RecordRequest(route, method, status string, duration float64) {
	RequestsTotal.WithLabelValues(route, method, status).Inc()
	RequestDuration.WithLabelValues(route, method).Observe(duration)
}

func RecordEvent(event, status string) {
	EventsTotal.WithLabelValues(event, status).Inc()
}
