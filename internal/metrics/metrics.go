package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/felixgeelhaar/placement/internal/errors"
)

// Metrics holds all Prometheus metrics for the placement client
type Metrics struct {
	// Command execution metrics
	CommandExecutions *prometheus.CounterVec
	CommandDuration   *prometheus.HistogramVec

	// Portal API metrics
	APIRequests *prometheus.CounterVec
	APILatency  *prometheus.HistogramVec

	// Session lifecycle metrics
	SessionTransitions *prometheus.CounterVec

	// Notification metrics
	NotificationPolls   *prometheus.CounterVec
	UnreadNotifications prometheus.Gauge

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		CommandExecutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "placement_command_executions_total",
				Help: "Total number of command executions",
			},
			[]string{"command", "success"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "placement_command_duration_seconds",
				Help:    "Command execution duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),

		APIRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "placement_api_requests_total",
				Help: "Total number of portal API requests by endpoint and HTTP status (0 = transport failure)",
			},
			[]string{"endpoint", "status"},
		),
		APILatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "placement_api_request_duration_seconds",
				Help:    "Portal API request latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint"},
		),

		SessionTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "placement_session_transitions_total",
				Help: "Total number of session phase transitions",
			},
			[]string{"phase"},
		),

		NotificationPolls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "placement_notification_polls_total",
				Help: "Total number of unread-count refreshes",
			},
			[]string{"result"},
		),
		UnreadNotifications: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "placement_unread_notifications",
				Help: "Unread notifications for the signed-in user",
			},
		),

		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "placement_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"error_code", "component"},
		),
	}
}

// RecordCommand records one CLI command execution
func (m *Metrics) RecordCommand(command string, success bool, elapsed time.Duration) {
	m.CommandExecutions.WithLabelValues(command, strconv.FormatBool(success)).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(elapsed.Seconds())
}

// RecordAPICall matches platform.Observer
func (m *Metrics) RecordAPICall(endpoint string, status int, elapsed time.Duration) {
	m.APIRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	m.APILatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// RecordSessionPhase counts entries into a session phase
func (m *Metrics) RecordSessionPhase(phase string) {
	m.SessionTransitions.WithLabelValues(phase).Inc()
}

// RecordPoll records an unread-count refresh
func (m *Metrics) RecordPoll(err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.NotificationPolls.WithLabelValues(result).Inc()
}

// SetUnread sets the unread gauge
func (m *Metrics) SetUnread(n int) {
	m.UnreadNotifications.Set(float64(n))
}

// RecordError counts err under its structured error code
func (m *Metrics) RecordError(err error, component string) {
	if err == nil {
		return
	}
	code := string(errors.CodeOf(err))
	if code == "" {
		code = "UNKNOWN"
	}
	m.Errors.WithLabelValues(code, component).Inc()
}
