// Package repository implements a filesystem-backed object repository.
//
// A Repository presents one directory tree as folders and documents addressed
// by opaque identifiers. Every call is permission checked against a global
// user map, every object view is compiled fresh from the live filesystem, and
// mutations are applied directly to disk without engine-level locking: two
// concurrent operations on the same path race at the OS level and the loser
// sees whatever the filesystem reports.
package repository

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/marmos91/filebridge/internal/logger"
	"github.com/marmos91/filebridge/pkg/cmis"
	"github.com/marmos91/filebridge/pkg/cmis/identity"
	"github.com/marmos91/filebridge/pkg/cmis/permission"
	"github.com/marmos91/filebridge/pkg/cmis/types"
	"github.com/marmos91/filebridge/pkg/metrics"
)

// Repository is one configured root directory exposed as an object tree.
//
// The repository id and root are fixed at construction. The user access map
// and the shared type catalog may change afterwards; both are safe for
// concurrent use.
type Repository struct {
	id       string
	codec    *identity.Codec
	realRoot string // root with symbolic links resolved
	catalog  *types.Catalog
	access   *permission.UserAccess
	acl      permission.ACLProvider
	metrics  metrics.RepositoryMetrics
	now      func() time.Time

	info10 *Info
	info11 *Info
}

// Option configures a Repository.
type Option func(*Repository)

// WithMetrics records operation metrics to m.
func WithMetrics(m metrics.RepositoryMetrics) Option {
	return func(r *Repository) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithUserAccess shares an existing user access map instead of starting empty.
func WithUserAccess(a *permission.UserAccess) Option {
	return func(r *Repository) {
		if a != nil {
			r.access = a
		}
	}
}

// WithACLProvider replaces the global ACL provider.
func WithACLProvider(p permission.ACLProvider) Option {
	return func(r *Repository) {
		if p != nil {
			r.acl = p
		}
	}
}

// New creates a repository serving root.
//
// The root is made absolute, and symbolic links in it are resolved once so
// that later lookups can tell whether a path stays below it. No user has
// access until SetUserReadWrite or SetUserReadOnly is called.
//
// Parameters:
//   - id: repository id, unique within a registry
//   - root: existing directory presented as the root folder
//   - catalog: type catalog, usually shared by every repository
//   - opts: metrics, user access and ACL provider overrides
//
// Returns:
//   - *Repository: ready to serve calls
//   - error: ErrInvalidArgument when id or root is blank, root is not a
//     directory, or catalog is nil
//
// Thread safety: the returned Repository is safe for concurrent use.
func New(id, root string, catalog *types.Catalog, opts ...Option) (*Repository, error) {
	if strings.TrimSpace(id) == "" {
		return nil, cmis.NewError(cmis.ErrInvalidArgument, "invalid repository id")
	}
	if strings.TrimSpace(root) == "" {
		return nil, cmis.NewError(cmis.ErrInvalidArgument, "invalid root folder")
	}
	if catalog == nil {
		return nil, cmis.NewError(cmis.ErrInvalidArgument, "type catalog is required")
	}

	codec, err := identity.New(root)
	if err != nil {
		return nil, cmis.WrapError(cmis.ErrInvalidArgument, err, "invalid root folder")
	}

	info, err := os.Stat(codec.Root())
	if err != nil || !info.IsDir() {
		return nil, &cmis.Error{Code: cmis.ErrInvalidArgument, Message: "root is not a directory", Path: root, Err: err}
	}

	realRoot, err := filepath.EvalSymlinks(codec.Root())
	if err != nil {
		return nil, &cmis.Error{Code: cmis.ErrInvalidArgument, Message: "root is not a directory", Path: root, Err: err}
	}

	r := &Repository{
		id:       id,
		codec:    codec,
		realRoot: realRoot,
		catalog:  catalog,
		access:   permission.NewUserAccess(),
		metrics:  metrics.NewNoopRepositoryMetrics(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.acl == nil {
		r.acl = permission.NewGlobalACLProvider(r.access)
	}

	r.info10 = newInfo(id, cmis.Version10)
	r.info11 = newInfo(id, cmis.Version11)

	return r, nil
}

// ID returns the repository id.
func (r *Repository) ID() string {
	return r.id
}

// Root returns the absolute root directory.
func (r *Repository) Root() string {
	return r.codec.Root()
}

// Catalog returns the type catalog the repository validates against.
func (r *Repository) Catalog() *types.Catalog {
	return r.catalog
}

// SetUserReadOnly grants user read-only access. Blank names are ignored.
func (r *Repository) SetUserReadOnly(user string) {
	r.access.SetReadOnly(user)
}

// SetUserReadWrite grants user read-write access. Blank names are ignored.
func (r *Repository) SetUserReadWrite(user string) {
	r.access.SetReadWrite(user)
}

// Users lists the configured users sorted by name.
func (r *Repository) Users() []permission.UserEntry {
	return r.access.Users()
}

// String renders the repository as "[id -> root]".
func (r *Repository) String() string {
	return "[" + r.id + " -> " + r.codec.Root() + "]"
}

// checkUser runs the permission check for cc.
func (r *Repository) checkUser(cc *cmis.CallContext, writeRequired bool) (bool, error) {
	return r.access.CheckUser(cc, writeRequired)
}

// observe brackets an operation with in-flight accounting, a debug log line
// and a duration sample. Use as:
//
//	defer r.observe(cc, "getChildren")(&err)
func (r *Repository) observe(cc *cmis.CallContext, op string) func(*error) {
	start := r.now()
	r.metrics.RecordOperationStart(op, r.id)

	return func(errp *error) {
		elapsed := r.now().Sub(start)
		r.metrics.RecordOperationEnd(op, r.id)

		var user, reqID string
		if cc != nil {
			user, reqID = cc.Username, cc.RequestID
		}

		var err error
		if errp != nil {
			err = *errp
		}

		code := ""
		if err != nil {
			if c, ok := cmis.CodeOf(err); ok {
				code = c.String()
			} else {
				code = cmis.ErrRuntime.String()
			}
		}
		r.metrics.RecordOperation(op, r.id, elapsed, code)

		switch {
		case err == nil:
			logger.Debug("%s: repo=%s user=%s req=%s duration=%s", op, r.id, user, reqID, elapsed)
		case cmis.IsCode(err, cmis.ErrStorage) || cmis.IsCode(err, cmis.ErrRuntime):
			logger.Warn("%s failed: repo=%s user=%s req=%s duration=%s error=%v", op, r.id, user, reqID, elapsed, err)
		default:
			logger.Debug("%s rejected: repo=%s user=%s req=%s code=%s error=%v", op, r.id, user, reqID, code, err)
		}
	}
}
