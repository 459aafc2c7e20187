// Package permission derives who may do what in a repository.
//
// Access is a per-repository map from user name to a read-only flag. The map
// drives the caller check performed by every operation, the allowable
// actions of each object, and the access control list every object reports.
package permission

import (
	"sort"
	"strings"
	"sync"

	"github.com/marmos91/filebridge/pkg/cmis"
)

// UserAccess maps configured users to their read-only flag.
type UserAccess struct {
	mu    sync.RWMutex
	users map[string]bool
}

// UserEntry is one configured user.
type UserEntry struct {
	Username string
	ReadOnly bool
}

func NewUserAccess() *UserAccess {
	return &UserAccess{users: make(map[string]bool)}
}

// SetReadOnly grants read-only access. Empty names are ignored.
func (a *UserAccess) SetReadOnly(username string) {
	a.set(username, true)
}

// SetReadWrite grants read-write access. Empty names are ignored.
func (a *UserAccess) SetReadWrite(username string) {
	a.set(username, false)
}

func (a *UserAccess) set(username string, readOnly bool) {
	username = strings.TrimSpace(username)
	if username == "" {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.users[username] = readOnly
}

// Lookup returns the read-only flag of username and whether it is known.
func (a *UserAccess) Lookup(username string) (readOnly, ok bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	readOnly, ok = a.users[username]
	return readOnly, ok
}

// Users returns all configured users sorted by name.
func (a *UserAccess) Users() []UserEntry {
	a.mu.RLock()
	out := make([]UserEntry, 0, len(a.users))
	for name, ro := range a.users {
		out = append(out, UserEntry{Username: name, ReadOnly: ro})
	}
	a.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

// CheckUser verifies that the caller is configured and, when writeRequired
// is set, not read-only. It returns the caller's read-only flag.
func (a *UserAccess) CheckUser(cc *cmis.CallContext, writeRequired bool) (bool, error) {
	if cc == nil {
		return false, cmis.NewError(cmis.ErrPermissionDenied, "no user context")
	}

	readOnly, ok := a.Lookup(cc.Username)
	if !ok {
		return false, cmis.NewError(cmis.ErrPermissionDenied, "unknown user")
	}
	if readOnly && writeRequired {
		return false, cmis.NewError(cmis.ErrPermissionDenied, "no write permission")
	}
	return readOnly, nil
}
