// Package metrics registers Prometheus collectors for pipeline activity
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pipeline runs partitioned by outcome: completed, skipped, locked, failed
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_pipeline_runs_total",
			Help: "Total number of campaign pipeline runs by outcome",
		},
		[]string{"outcome"},
	)

	// Pipeline run duration in seconds
	PipelineRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "outreach_pipeline_run_duration_seconds",
			Help:    "Campaign pipeline run latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Phase failures partitioned by phase: sync, discovery, connections, follow_ups
	PhaseFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_phase_failures_total",
			Help: "Total number of pipeline phase failures",
		},
		[]string{"phase"},
	)

	ProspectsDiscoveredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "outreach_prospects_discovered_total",
			Help: "Total number of prospects discovered and linked to campaigns",
		},
	)

	ConnectionsSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "outreach_connections_sent_total",
			Help: "Total number of connection requests sent",
		},
	)

	FollowUpsSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "outreach_follow_ups_sent_total",
			Help: "Total number of follow-up messages sent",
		},
	)

	PendingActionsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_pending_actions_created_total",
			Help: "Total number of pending actions created by action type",
		},
		[]string{"action_type"},
	)

	PendingActionsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "outreach_pending_actions_expired_total",
			Help: "Total number of pending actions flipped to expired by the sweep",
		},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Run outcomes
const (
	RunOutcomeCompleted = "completed"
	RunOutcomeSkipped   = "skipped"
	RunOutcomeLocked    = "locked"
	RunOutcomeFailed    = "failed"
)

// HTTPMiddleware returns a Fiber v3 middleware that records request metrics
// for the health server. Route templates keep label cardinality low.
func HTTPMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}

		labels := prometheus.Labels{
			"method": c.Method(),
			"route":  route,
			"status": strconv.Itoa(c.Response().StatusCode()),
		}
		httpRequestsTotal.With(labels).Inc()
		httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())

		return err
	}
}
