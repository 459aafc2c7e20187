package registry

import (
	"github.com/marmos91/filebridge/internal/logger"
	"github.com/marmos91/filebridge/pkg/cmis/permission"
	"github.com/marmos91/filebridge/pkg/repository"
)

// applyAccess grants the users listed in cfg. Read-write grants go first so
// that a user listed twice stays read-only.
func applyAccess(repo *repository.Repository, cfg *RepositoryConfig) {
	for _, user := range cfg.ReadWrite {
		repo.SetUserReadWrite(user)
	}
	for _, user := range cfg.ReadOnly {
		repo.SetUserReadOnly(user)
	}

	for _, u := range repo.Users() {
		logger.Debug("Repository %s: user=%s read_only=%t", repo.ID(), u.Username, u.ReadOnly)
	}
}

// Users returns the users configured on repository id.
func (r *Registry) Users(id string) ([]permission.UserEntry, error) {
	repo, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return repo.Users(), nil
}
