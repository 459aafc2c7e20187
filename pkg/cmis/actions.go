package cmis

import "sort"

// Action names an operation that may be permitted on an object.
type Action string

const (
	ActionGetObjectParents    Action = "canGetObjectParents"
	ActionGetProperties       Action = "canGetProperties"
	ActionUpdateProperties    Action = "canUpdateProperties"
	ActionMoveObject          Action = "canMoveObject"
	ActionDeleteObject        Action = "canDeleteObject"
	ActionGetACL              Action = "canGetACL"
	ActionGetChildren         Action = "canGetChildren"
	ActionGetDescendants      Action = "canGetDescendants"
	ActionGetFolderTree       Action = "canGetFolderTree"
	ActionGetFolderParent     Action = "canGetFolderParent"
	ActionCreateDocument      Action = "canCreateDocument"
	ActionCreateFolder        Action = "canCreateFolder"
	ActionDeleteTree          Action = "canDeleteTree"
	ActionGetContentStream    Action = "canGetContentStream"
	ActionSetContentStream    Action = "canSetContentStream"
	ActionDeleteContentStream Action = "canDeleteContentStream"
	ActionGetAllVersions      Action = "canGetAllVersions"
)

// AllowableActions is the set of actions currently permitted on an object.
type AllowableActions map[Action]struct{}

// Has reports whether a is in the set.
func (aa AllowableActions) Has(a Action) bool {
	_, ok := aa[a]
	return ok
}

// List returns the actions sorted by name.
func (aa AllowableActions) List() []Action {
	out := make([]Action, 0, len(aa))
	for a := range aa {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Permission names used in access control entries.
const (
	PermissionRead  = "cmis:read"
	PermissionWrite = "cmis:write"
	PermissionAll   = "cmis:all"
)

// ACE is one access control entry.
type ACE struct {
	Principal   string
	Permissions []string
	Direct      bool
}

// ACL is an access control list. Exact is set when the list is complete.
type ACL struct {
	ACEs  []ACE
	Exact bool
}

// Entry returns the entry for principal, or nil.
func (a *ACL) Entry(principal string) *ACE {
	if a == nil {
		return nil
	}
	for i := range a.ACEs {
		if a.ACEs[i].Principal == principal {
			return &a.ACEs[i]
		}
	}
	return nil
}
