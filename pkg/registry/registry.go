// Package registry keeps the named repositories a server exposes.
package registry

import (
	"sort"
	"strings"
	"sync"

	"github.com/marmos91/filebridge/pkg/cmis"
	"github.com/marmos91/filebridge/pkg/repository"
)

// Registry manages all configured repositories by id.
// It provides thread-safe registration and lookup.
//
// Example usage:
//
//	reg := NewRegistry()
//	reg.AddRepository(&RepositoryConfig{ID: "docs", Root: "/srv/docs", ReadWrite: []string{"alice"}}, catalog)
//
//	repo, _ := reg.Get("docs")
type Registry struct {
	mu    sync.RWMutex
	repos map[string]*repository.Repository
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{repos: make(map[string]*repository.Repository)}
}

// Add registers an existing repository under its id.
// Returns an error if a repository with the same id already exists.
func (r *Registry) Add(repo *repository.Repository) error {
	if repo == nil {
		return cmis.NewError(cmis.ErrInvalidArgument, "cannot register nil repository")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.repos[repo.ID()]; exists {
		return cmis.NewError(cmis.ErrInvalidArgument, "repository '%s' already registered", repo.ID())
	}

	r.repos[repo.ID()] = repo
	return nil
}

// Remove drops a repository from the registry. Nothing on disk is touched.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.repos[id]; !exists {
		return unknownRepository(id)
	}
	delete(r.repos, id)
	return nil
}

// Get retrieves a repository by id.
// Fails with ErrNotFound if the repository doesn't exist.
func (r *Registry) Get(id string) (*repository.Repository, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	repo, exists := r.repos[id]
	if !exists {
		return nil, unknownRepository(id)
	}
	return repo, nil
}

func unknownRepository(id string) error {
	return cmis.NewError(cmis.ErrNotFound, "unknown repository '%s'", id)
}

// Exists checks if a repository with the given id is registered.
func (r *Registry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.repos[id]
	return exists
}

// List returns all registered repositories sorted by id.
// The returned slice is a copy and safe to modify.
func (r *Registry) List() []*repository.Repository {
	r.mu.RLock()
	out := make([]*repository.Repository, 0, len(r.repos))
	for _, repo := range r.repos {
		out = append(out, repo)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// IDs returns all registered repository ids, sorted.
func (r *Registry) IDs() []string {
	repos := r.List()
	ids := make([]string, 0, len(repos))
	for _, repo := range repos {
		ids = append(ids, repo.ID())
	}
	return ids
}

// Count returns the number of registered repositories.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.repos)
}

// String renders every repository as "[id -> root]", ordered by id.
func (r *Registry) String() string {
	var sb strings.Builder
	for _, repo := range r.List() {
		sb.WriteString(repo.String())
	}
	return sb.String()
}
