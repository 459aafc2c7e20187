package config

import (
	"fmt"

	"github.com/marmos91/filebridge/internal/logger"
	"github.com/marmos91/filebridge/pkg/cmis/types"
	"github.com/marmos91/filebridge/pkg/metrics"
	"github.com/marmos91/filebridge/pkg/registry"
	"github.com/marmos91/filebridge/pkg/repository"
)

// InitializeRegistry creates a Registry holding every configured repository.
//
// All repositories share catalog and record operations to repoMetrics.
// Fails if any repository root is not an existing directory.
func InitializeRegistry(cfg *Config, catalog *types.Catalog, repoMetrics metrics.RepositoryMetrics) (*registry.Registry, error) {
	logger.Debug("Initializing registry from configuration")

	reg := registry.NewRegistry()
	for i := range cfg.Repositories {
		repoCfg := &cfg.Repositories[i]
		_, err := reg.AddRepository(&registry.RepositoryConfig{
			ID:        repoCfg.ID,
			Root:      repoCfg.Root,
			ReadWrite: repoCfg.ReadWrite,
			ReadOnly:  repoCfg.ReadOnly,
		}, catalog, repository.WithMetrics(repoMetrics))
		if err != nil {
			return nil, fmt.Errorf("repositories[%d] %q: %w", i, repoCfg.ID, err)
		}
	}

	logger.Debug("Registered %d repositories", reg.Count())
	return reg, nil
}
