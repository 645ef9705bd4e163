// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// SessionsTotal tracks conversation sessions started.
	SessionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "planner_sessions_total",
			Help: "Total conversation sessions started",
		},
	)

	// TurnsTotal tracks transcript messages appended, by role.
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_turns_total",
			Help: "Total transcript messages appended",
		},
		[]string{"role"},
	)

	// TurnDuration tracks end-to-end turn latency, including external
	// adapter calls.
	TurnDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "planner_turn_duration_seconds",
			Help:    "Conversation turn duration",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20, 30},
		},
	)

	// ActionsDispatchedTotal tracks dispatched actions by parsed kind.
	ActionsDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_actions_dispatched_total",
			Help: "Total structured actions dispatched",
		},
		[]string{"kind"},
	)

	// VenueSearchesTotal tracks venue searches by outcome.
	VenueSearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_venue_searches_total",
			Help: "Total venue searches",
		},
		[]string{"status"},
	)

	// PipelineStepsTotal tracks creation pipeline sub-steps by outcome.
	PipelineStepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_pipeline_steps_total",
			Help: "Total creation pipeline sub-steps",
		},
		[]string{"step", "status"},
	)

	// PipelineDuration tracks end-to-end commit duration.
	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "planner_pipeline_duration_seconds",
			Help:    "Creation pipeline commit duration",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30, 60},
		},
	)

	// EventsCreatedTotal tracks successfully created root events.
	EventsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "planner_events_created_total",
			Help: "Total root events created",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}
