// Package metrics provides Prometheus metrics collection for FileBridge.
//
// Metrics are optional. Until InitRegistry is called every constructor in
// the prometheus subpackage hands back a no-op implementation, so
// repositories and the user manager can be used as plain libraries.
//
// Usage:
//
//	metrics.InitRegistry()
//	repoMetrics := prometheus.NewRepositoryMetrics()
//	authMetrics := prometheus.NewAuthMetrics()
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// registry is written once by InitRegistry and read-only afterwards
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// InitRegistry initializes the global Prometheus registry.
//
// This must be called before creating any metrics instances. It's safe to call
// multiple times - subsequent calls are ignored.
//
// If not called, GetRegistry() will return nil and all metrics constructors
// will return no-op implementations.
func InitRegistry() {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
	})
}

// GetRegistry returns the global Prometheus registry.
//
// Returns nil if InitRegistry() has not been called, indicating metrics
// are disabled.
func GetRegistry() *prometheus.Registry {
	return registry
}

// IsEnabled returns true if metrics collection is enabled.
func IsEnabled() bool {
	return GetRegistry() != nil
}
