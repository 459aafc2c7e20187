package prometheus

import (
	"time"

	"github.com/marmos91/filebridge/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// repositoryMetrics is the Prometheus implementation of metrics.RepositoryMetrics.
type repositoryMetrics struct {
	operationsTotal    *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec
	operationsInFlight *prometheus.GaugeVec
	bytesTransferred   *prometheus.CounterVec
	itemFailures       *prometheus.CounterVec
}

// NewRepositoryMetrics creates a Prometheus-backed RepositoryMetrics.
//
// Returns a no-op implementation if metrics are not enabled (InitRegistry not called).
func NewRepositoryMetrics() metrics.RepositoryMetrics {
	if !metrics.IsEnabled() {
		return metrics.NewNoopRepositoryMetrics()
	}

	reg := metrics.GetRegistry()

	return &repositoryMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "filebridge_repository_operations_total",
				Help: "Total number of repository operations by operation, repository, and status",
			},
			[]string{"operation", "repository", "status", "error_code"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "filebridge_repository_operation_duration_milliseconds",
				Help: "Duration of repository operations in milliseconds",
				Buckets: []float64{
					1,     // 1ms
					10,    // 10ms
					100,   // 100ms
					1000,  // 1s
					10000, // 10s
				},
			},
			[]string{"operation", "repository"},
		),
		operationsInFlight: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "filebridge_repository_operations_in_flight",
				Help: "Current number of repository operations being processed",
			},
			[]string{"operation", "repository"},
		),
		bytesTransferred: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "filebridge_repository_bytes_transferred_total",
				Help: "Total content bytes read from or written to repositories",
			},
			[]string{"repository", "direction"},
		),
		itemFailures: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "filebridge_repository_item_failures_total",
				Help: "Per-item failures skipped by bulk update and tree deletion",
			},
			[]string{"operation", "repository"},
		),
	}
}

func (m *repositoryMetrics) RecordOperation(operation, repository string, duration time.Duration, errorCode string) {
	status := "success"
	if errorCode != "" {
		status = "error"
	}

	m.operationsTotal.WithLabelValues(operation, repository, status, errorCode).Inc()
	m.operationDuration.WithLabelValues(operation, repository).Observe(duration.Seconds() * 1000)
}

func (m *repositoryMetrics) RecordOperationStart(operation, repository string) {
	m.operationsInFlight.WithLabelValues(operation, repository).Inc()
}

func (m *repositoryMetrics) RecordOperationEnd(operation, repository string) {
	m.operationsInFlight.WithLabelValues(operation, repository).Dec()
}

func (m *repositoryMetrics) RecordBytesTransferred(repository, direction string, bytes int64) {
	if bytes <= 0 {
		return
	}
	m.bytesTransferred.WithLabelValues(repository, direction).Add(float64(bytes))
}

func (m *repositoryMetrics) RecordItemFailures(operation, repository string, count int) {
	if count <= 0 {
		return
	}
	m.itemFailures.WithLabelValues(operation, repository).Add(float64(count))
}

// authMetrics is the Prometheus implementation of metrics.AuthMetrics.
type authMetrics struct {
	attempts *prometheus.CounterVec
}

// NewAuthMetrics creates a Prometheus-backed AuthMetrics.
//
// Returns a no-op implementation if metrics are not enabled.
func NewAuthMetrics() metrics.AuthMetrics {
	if !metrics.IsEnabled() {
		return metrics.NewNoopAuthMetrics()
	}

	return &authMetrics{
		attempts: promauto.With(metrics.GetRegistry()).NewCounterVec(
			prometheus.CounterOpts{
				Name: "filebridge_auth_attempts_total",
				Help: "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
	}
}

func (m *authMetrics) RecordAuthentication(outcome string) {
	m.attempts.WithLabelValues(outcome).Inc()
}
