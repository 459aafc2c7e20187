package registry

import (
	"strings"

	"github.com/marmos91/filebridge/internal/logger"
	"github.com/marmos91/filebridge/pkg/cmis"
	"github.com/marmos91/filebridge/pkg/cmis/types"
	"github.com/marmos91/filebridge/pkg/repository"
)

// RepositoryConfig contains all configuration needed to create a repository:
// its id, the directory it serves and the users allowed in.
type RepositoryConfig struct {
	ID   string
	Root string

	// ReadWrite and ReadOnly list user names. A user named in both ends up
	// read-only, since read-only grants are applied last.
	ReadWrite []string
	ReadOnly  []string
}

// AddRepository creates a repository from cfg and registers it.
//
// Read-write users are granted before read-only users, so a user named in
// both lists ends up read-only.
//
// Parameters:
//   - cfg: repository id, root directory and user lists
//   - catalog: type catalog shared with the other repositories
//   - opts: passed through to repository.New
//
// Returns:
//   - *repository.Repository: the registered repository
//   - error: if cfg.ID is blank or already registered, or cfg.Root is not
//     an existing directory
//
// Thread safety: safe to call concurrently with Get and List.
func (r *Registry) AddRepository(cfg *RepositoryConfig, catalog *types.Catalog, opts ...repository.Option) (*repository.Repository, error) {
	if cfg == nil || strings.TrimSpace(cfg.ID) == "" {
		return nil, cmis.NewError(cmis.ErrInvalidArgument, "cannot add repository with empty id")
	}
	if r.Exists(cfg.ID) {
		return nil, cmis.NewError(cmis.ErrInvalidArgument, "repository '%s' already registered", cfg.ID)
	}

	repo, err := repository.New(cfg.ID, cfg.Root, catalog, opts...)
	if err != nil {
		return nil, err
	}

	applyAccess(repo, cfg)

	if err := r.Add(repo); err != nil {
		return nil, err
	}

	logger.Info("Repository: %s", repo)
	return repo, nil
}
