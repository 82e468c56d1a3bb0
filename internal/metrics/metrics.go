// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/atinyakov/HydroPal/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hydropal_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hydropal_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hydropal_http_active_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// EntriesCreated counts stored tracking entries by log type.
	EntriesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hydropal_entries_created_total",
			Help: "Total number of tracking entries created",
		},
		[]string{"log_type"},
	)

	WaterLoggedMillilitres = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hydropal_water_logged_millilitres_total",
			Help: "Total millilitres of water logged",
		},
	)

	CleanedEntries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hydropal_retention_deleted_entries_total",
			Help: "Total number of entries removed by the retention cleaner",
		},
	)
)

// RecordHTTPRequest records one finished request.
func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(start bool) {
	if start {
		HTTPActiveRequests.Inc()
		return
	}
	HTTPActiveRequests.Dec()
}

// RecordEntryCreated counts a stored entry. Water entries also add their
// millilitres to WaterLoggedMillilitres.
func RecordEntryCreated(logType models.LogType, quantity float64) {
	EntriesCreated.WithLabelValues(string(logType)).Inc()
	if logType == models.Water && quantity > 0 {
		WaterLoggedMillilitres.Add(quantity)
	}
}
