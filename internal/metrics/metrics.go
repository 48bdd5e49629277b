// Package metrics holds the Prometheus instruments of the dispatch scheduler
// and the tracking callbacks. Instruments register on the default registry
// and are exposed by promhttp on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Dispatch
	DispatchTicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "awaresim_dispatch_ticks_total",
			Help: "Scheduler ticks by outcome",
		},
		[]string{"outcome"}, // "ran", "skipped_locked", "error"
	)

	DispatchOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "awaresim_dispatch_recipients_total",
			Help: "Recipients processed by dispatch status",
		},
		[]string{"status"}, // "sent", "failed", "bounced"
	)

	DispatchCommitErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "awaresim_dispatch_commit_errors_total",
			Help: "Outcome commits that failed after a send attempt",
		},
	)

	DispatchTickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "awaresim_dispatch_tick_duration_seconds",
			Help:    "Duration of a dispatch tick",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Tracking
	TrackingEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "awaresim_tracking_events_total",
			Help: "Engagement events recorded",
		},
		[]string{"event_type", "device_type"},
	)

	TrackingNotFound = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "awaresim_tracking_not_found_total",
			Help: "Callbacks carrying an unknown or malformed token",
		},
	)

	TrackingStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "awaresim_tracking_store_errors_total",
			Help: "Callbacks whose token resolved but whose write failed",
		},
		[]string{"event_type"},
	)

	PublishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "awaresim_event_publish_errors_total",
			Help: "Engagement events that could not be published to the queue",
		},
	)
)
