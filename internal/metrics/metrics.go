// Package metrics exposes Prometheus counters for tracker operations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the tracker.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Registry owns these metrics; served by Handler.
	Registry *prometheus.Registry

	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	generated         prometheus.Counter
	contributions     *prometheus.CounterVec
	notifications     prometheus.Counter
	externalErrors    *prometheus.CounterVec
	activeSessions    prometheus.Gauge
}

// New creates a dedicated registry and registers all metrics in it, so
// tests can build as many instances as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finance_operations_total",
				Help: "Tracker operations by name and outcome.",
			},
			[]string{"operation", "status"},
		),
		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finance_operation_duration_seconds",
				Help:    "Duration of tracker operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		generated: factory.NewCounter(prometheus.CounterOpts{
			Name: "finance_recurring_generated_total",
			Help: "Transactions materialized from recurring templates.",
		}),
		contributions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finance_goal_contributions_total",
				Help: "Goal contributions by direction and outcome.",
			},
			[]string{"direction", "outcome"},
		),
		notifications: factory.NewCounter(prometheus.CounterOpts{
			Name: "finance_notifications_emitted_total",
			Help: "Due notifications produced for users.",
		}),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finance_external_errors_total",
				Help: "Errors from external services.",
			},
			[]string{"service"},
		),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "finance_active_sessions",
			Help: "Users with an open session.",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// RecordOperation counts one operation and observes its duration.
func (m *Metrics) RecordOperation(operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.operations.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// AddGenerated adds materialized recurring transactions.
func (m *Metrics) AddGenerated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.generated.Add(float64(n))
}

// IncrContribution counts a goal contribution. outcome is applied, noop or rejected.
func (m *Metrics) IncrContribution(direction, outcome string) {
	if m == nil {
		return
	}
	m.contributions.WithLabelValues(direction, outcome).Inc()
}

// AddNotifications adds emitted due notifications.
func (m *Metrics) AddNotifications(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.notifications.Add(float64(n))
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	if m == nil {
		return
	}
	m.externalErrors.WithLabelValues(service).Inc()
}

// SetActiveSessions records the number of open sessions.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}
