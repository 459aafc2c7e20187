package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/marmos91/filebridge/internal/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultPort     = 9090
	shutdownTimeout = 5 * time.Second
)

// Server exposes the process metrics over HTTP.
//
// Routes:
//   - GET /metrics: Prometheus exposition, or 503 when collection is disabled
//   - GET /healthz: liveness, always "ok"
//   - GET /: short index naming the scrape URL
type Server struct {
	http *http.Server
	port int
	stop sync.Once
}

// ServerConfig configures the metrics HTTP server.
type ServerConfig struct {
	// Port to listen on. Zero or negative selects 9090.
	Port int
}

// NewServer builds a metrics server without starting it.
//
// Parameters:
//   - config: listening port; zero values fall back to defaults
//
// Returns a Server ready for Start. The /metrics route is bound to the
// registry installed by InitRegistry at the time NewServer is called.
func NewServer(config ServerConfig) *Server {
	port := config.Port
	if port <= 0 {
		port = defaultPort
	}

	return &Server{
		port: port,
		http: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      newMux(port),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

func newMux(port int) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metricsHandler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeText(w, http.StatusOK, "ok\n")
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		writeText(w, http.StatusOK, fmt.Sprintf("FileBridge metrics\n\nScrape http://<host>:%d/metrics\n", port))
	})
	return mux
}

func metricsHandler() http.Handler {
	if reg := GetRegistry(); IsEnabled() && reg != nil {
		logger.Debug("metrics: serving registry at /metrics")
		return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
	}
	logger.Debug("metrics: collection disabled, /metrics answers 503")
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeText(w, http.StatusServiceUnavailable, "metrics collection is disabled\n")
	})
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = fmt.Fprint(w, body)
}

// Start serves until ctx is cancelled or the listener fails.
//
// Parameters:
//   - ctx: cancellation stops the server gracefully
//
// Returns:
//   - nil after a graceful stop
//   - an error when the listener fails or shutdown does not complete
func (s *Server) Start(ctx context.Context) error {
	failed := make(chan error, 1)
	go func() {
		logger.Info("Metrics server listening on port %d", s.port)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
	}()

	select {
	case <-ctx.Done():
		// ctx is already done; shutdown needs its own deadline
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-failed:
		return fmt.Errorf("metrics server failed: %w", err)
	}
}

// Stop shuts the server down. Only the first call has any effect.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	s.stop.Do(func() {
		if err = s.http.Shutdown(ctx); err != nil {
			logger.Error("Metrics server shutdown: %v", err)
			err = fmt.Errorf("metrics server shutdown: %w", err)
			return
		}
		logger.Info("Metrics server stopped")
	})
	return err
}

// Port returns the configured TCP port.
func (s *Server) Port() int {
	return s.port
}
