package config

import (
	"context"
	"errors"

	"github.com/marmos91/filebridge/internal/logger"
	"github.com/marmos91/filebridge/pkg/auth"
	"github.com/marmos91/filebridge/pkg/cmis/types"
	"github.com/marmos91/filebridge/pkg/metrics"
	"github.com/marmos91/filebridge/pkg/registry"
)

// Runtime bundles the components built from a configuration.
type Runtime struct {
	Catalog  *types.Catalog
	Users    *auth.UserManager
	Registry *registry.Registry
}

// Close releases the type store.
func (rt *Runtime) Close() error {
	if rt == nil || rt.Catalog == nil {
		return nil
	}
	return rt.Catalog.Close()
}

// CreateUserManager builds the user manager with the configured logins and
// throttling.
func CreateUserManager(cfg *Config, authMetrics metrics.AuthMetrics) *auth.UserManager {
	users := auth.NewUserManager(
		auth.WithThrottle(cfg.Auth.MaxFailuresPerSecond, cfg.Auth.Burst),
		auth.WithMetrics(authMetrics),
	)
	for _, login := range cfg.Logins {
		users.AddLogin(login.Username, login.Password)
	}
	return users
}

// BuildRuntime opens the type store, builds the catalog, the user manager
// and the repository registry. m may be nil, in which case no metrics are
// recorded.
func BuildRuntime(ctx context.Context, cfg *Config, m *MetricsResult) (*Runtime, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if m == nil {
		m = &MetricsResult{
			Repository: metrics.NewNoopRepositoryMetrics(),
			Auth:       metrics.NewNoopAuthMetrics(),
		}
	}

	catalog, err := CreateCatalog(ctx, &cfg.Types)
	if err != nil {
		return nil, err
	}

	reg, err := InitializeRegistry(cfg, catalog, m.Repository)
	if err != nil {
		_ = catalog.Close()
		return nil, err
	}

	users := CreateUserManager(cfg, m.Auth)

	logger.Info("Types: %s", catalog)
	return &Runtime{Catalog: catalog, Users: users, Registry: reg}, nil
}
