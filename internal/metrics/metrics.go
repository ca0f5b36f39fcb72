package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nextrep_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nextrep_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"route", "status_code"},
	)
)

// Workout metrics
var (
	WorkoutsStartedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nextrep_workouts_started_total",
			Help: "Live workouts started",
		},
	)

	WorkoutsFinishedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nextrep_workouts_finished_total",
			Help: "Live workouts finished",
		},
	)

	SetsRecordedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nextrep_sets_recorded_total",
			Help: "History records persisted from finished workouts",
		},
	)

	SetsDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nextrep_sets_dropped_total",
			Help: "Done rows skipped at finish because weight or reps did not parse",
		},
	)
)
