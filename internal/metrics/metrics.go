// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Execution outcomes used as the "outcome" label.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeTimeout  = "timeout"
	OutcomeNotFound = "not_found"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// UnknownCommand is the command label for requests naming a command
// outside the registry, keeping the label set bounded.
const UnknownCommand = "unknown"

var (
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pddserve_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pddserve_http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "route"},
	)

	ExecutionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pddserve_executions_total",
			Help: "Total number of pdd command executions by outcome",
		},
		[]string{"command", "outcome"},
	)

	ExecutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pddserve_execution_duration_seconds",
			Help:    "pdd subprocess wall time in seconds",
			Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"command"},
	)

	ActiveExecutions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pddserve_active_executions",
			Help: "Number of pdd subprocesses currently running",
		},
	)

	FileOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pddserve_file_operations_total",
			Help: "Total number of /files reads and writes",
		},
		[]string{"op", "success"},
	)
)

// RecordExecution counts one dispatch outcome. A zero duration means no
// subprocess ran and only the counter is updated.
func RecordExecution(command, outcome string, d time.Duration) {
	ExecutionCount.WithLabelValues(command, outcome).Inc()
	if d > 0 {
		ExecutionDuration.WithLabelValues(command).Observe(d.Seconds())
	}
}

// RecordFileOp counts one /files operation.
func RecordFileOp(op string, ok bool) {
	success := "false"
	if ok {
		success = "true"
	}
	FileOperations.WithLabelValues(op, success).Inc()
}

// Handler returns the Prometheus exposition handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
