package permission

import "github.com/marmos91/filebridge/pkg/cmis"

// ObjectState is the filesystem-derived input to action and ACL derivation.
type ObjectState struct {
	ID            string
	Kind          cmis.BaseKind
	IsRoot        bool
	OSWritable    bool
	ContentLength int64
}

// AllowableActions computes the actions a caller may perform on an object.
func AllowableActions(obj ObjectState, userReadOnly bool) cmis.AllowableActions {
	aa := cmis.AllowableActions{}
	add := func(a cmis.Action, cond bool) {
		if cond {
			aa[a] = struct{}{}
		}
	}

	canWrite := !userReadOnly && obj.OSWritable

	add(cmis.ActionGetObjectParents, !obj.IsRoot)
	add(cmis.ActionGetProperties, true)
	add(cmis.ActionUpdateProperties, canWrite)
	add(cmis.ActionMoveObject, !userReadOnly && !obj.IsRoot)
	add(cmis.ActionDeleteObject, canWrite && !obj.IsRoot)
	add(cmis.ActionGetACL, true)

	switch obj.Kind {
	case cmis.BaseFolder:
		add(cmis.ActionGetChildren, true)
		add(cmis.ActionGetDescendants, true)
		add(cmis.ActionGetFolderTree, true)
		add(cmis.ActionGetFolderParent, !obj.IsRoot)
		add(cmis.ActionCreateDocument, !userReadOnly)
		add(cmis.ActionCreateFolder, !userReadOnly)
		add(cmis.ActionDeleteTree, canWrite)
	case cmis.BaseDocument:
		add(cmis.ActionGetContentStream, obj.ContentLength > 0)
		add(cmis.ActionSetContentStream, canWrite)
		add(cmis.ActionDeleteContentStream, canWrite)
		add(cmis.ActionGetAllVersions, true)
	}

	return aa
}
