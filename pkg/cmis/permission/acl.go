package permission

import "github.com/marmos91/filebridge/pkg/cmis"

// ACLProvider builds the access control list reported for an object.
type ACLProvider interface {
	ACL(obj ObjectState) *cmis.ACL
}

// GlobalACLProvider reports the same principals on every object: each
// configured user gets read, plus write and all when the user is read-write
// and the object is writable on disk.
type GlobalACLProvider struct {
	access *UserAccess
}

func NewGlobalACLProvider(access *UserAccess) *GlobalACLProvider {
	return &GlobalACLProvider{access: access}
}

func (p *GlobalACLProvider) ACL(obj ObjectState) *cmis.ACL {
	users := p.access.Users()
	acl := &cmis.ACL{ACEs: make([]cmis.ACE, 0, len(users)), Exact: true}

	for _, u := range users {
		perms := []string{cmis.PermissionRead}
		if !u.ReadOnly && obj.OSWritable {
			perms = append(perms, cmis.PermissionWrite, cmis.PermissionAll)
		}
		acl.ACEs = append(acl.ACEs, cmis.ACE{
			Principal:   u.Username,
			Permissions: perms,
			Direct:      true,
		})
	}
	return acl
}
