package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/marmos91/filebridge/internal/logger"
	"github.com/marmos91/filebridge/pkg/config"
	"github.com/spf13/cobra"
)

var pruneInterval time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load the configuration and run until interrupted",
	Long: `Load the configured types, logins and repositories, expose Prometheus
metrics when enabled, and run until SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().DurationVar(&pruneInterval, "prune-interval", time.Minute, "interval for dropping idle login throttle state (0 to disable)")
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := config.InitializeMetrics(cfg)

	rt, err := config.BuildRuntime(ctx, cfg, m)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Error("Type store close error: %v", err)
		}
	}()

	logger.Info("Logins: %s", rt.Users)
	logger.Info("Repositories: %s", rt.Registry)

	var wg sync.WaitGroup
	errChan := make(chan error, 1)
	if m.Server != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.Server.Start(ctx); err != nil {
				errChan <- err
			}
		}()
	}

	if pruneInterval > 0 {
		go pruneThrottle(ctx, rt, pruneInterval)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	logger.Info("FileBridge is running with %d repositories. Press Ctrl+C to stop.", rt.Registry.Count())

	select {
	case <-sigChan:
		logger.Info("Shutdown signal received, initiating graceful shutdown...")
		cancel()
		wg.Wait()
	case err := <-errChan:
		logger.Error("Server error: %v", err)
		return err
	}

	logger.Info("Server stopped")
	return nil
}

func pruneThrottle(ctx context.Context, rt *config.Runtime, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rt.Users.PruneThrottle(); n > 0 {
				logger.Debug("Pruned login throttle state: entries=%d", n)
			}
		}
	}
}
