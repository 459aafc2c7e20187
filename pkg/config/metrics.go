package config

import (
	"github.com/marmos91/filebridge/pkg/metrics"
	promMetrics "github.com/marmos91/filebridge/pkg/metrics/prometheus"
)

// MetricsResult contains all metrics-related components created from configuration.
type MetricsResult struct {
	// Server is the HTTP server exposing Prometheus metrics (nil if disabled)
	Server *metrics.Server

	// Repository records repository operations (never nil, uses noop if disabled)
	Repository metrics.RepositoryMetrics

	// Auth records login outcomes (never nil, uses noop if disabled)
	Auth metrics.AuthMetrics
}

// InitializeMetrics creates and initializes all metrics components based on configuration.
//
// If metrics are enabled the global Prometheus registry is initialized and
// Prometheus-backed collectors are created. Otherwise no-op implementations
// are returned with a nil server.
//
// Collectors register with the global registry, so this must be called
// once per process.
func InitializeMetrics(cfg *Config) *MetricsResult {
	if !cfg.Metrics.Enabled {
		return &MetricsResult{
			Repository: metrics.NewNoopRepositoryMetrics(),
			Auth:       metrics.NewNoopAuthMetrics(),
		}
	}

	metrics.InitRegistry()

	return &MetricsResult{
		Server: metrics.NewServer(metrics.ServerConfig{
			Port: cfg.Metrics.Port,
		}),
		Repository: promMetrics.NewRepositoryMetrics(),
		Auth:       promMetrics.NewAuthMetrics(),
	}
}
