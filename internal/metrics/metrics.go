// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"path", "method", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)

	EnrollmentSavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_enrollment_saves_total",
			Help: "Enrollment save transactions by outcome",
		},
		[]string{"result"},
	)

	RecordReplacesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_record_replaces_total",
			Help: "Bulk academic record replacements by outcome",
		},
		[]string{"result"},
	)
)
