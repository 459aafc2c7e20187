package permission

import (
	"testing"

	"github.com/marmos91/filebridge/pkg/cmis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccess() *UserAccess {
	a := NewUserAccess()
	a.SetReadWrite("alice")
	a.SetReadOnly("bob")
	a.SetReadWrite("  ")
	return a
}

func TestCheckUser(t *testing.T) {
	a := newAccess()

	tests := []struct {
		name    string
		cc      *cmis.CallContext
		write   bool
		wantRO  bool
		wantMsg string
	}{
		{name: "read-write user reads", cc: &cmis.CallContext{Username: "alice"}},
		{name: "read-write user writes", cc: &cmis.CallContext{Username: "alice"}, write: true},
		{name: "read-only user reads", cc: &cmis.CallContext{Username: "bob"}, wantRO: true},
		{name: "read-only user writes", cc: &cmis.CallContext{Username: "bob"}, write: true, wantMsg: "no write permission"},
		{name: "unknown user reads", cc: &cmis.CallContext{Username: "eve"}, wantMsg: "unknown user"},
		{name: "unknown user writes", cc: &cmis.CallContext{Username: "eve"}, write: true, wantMsg: "unknown user"},
		{name: "no context", cc: nil, wantMsg: "no user context"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ro, err := a.CheckUser(tt.cc, tt.write)
			if tt.wantMsg != "" {
				require.Error(t, err)
				assert.True(t, cmis.IsCode(err, cmis.ErrPermissionDenied))
				assert.Contains(t, err.Error(), tt.wantMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRO, ro)
		})
	}
}

func TestUsersSortedAndBlankIgnored(t *testing.T) {
	users := newAccess().Users()
	require.Len(t, users, 2)
	assert.Equal(t, UserEntry{Username: "alice"}, users[0])
	assert.Equal(t, UserEntry{Username: "bob", ReadOnly: true}, users[1])
}

func TestAllowableActionsFolder(t *testing.T) {
	root := ObjectState{Kind: cmis.BaseFolder, IsRoot: true, OSWritable: true}
	aa := AllowableActions(root, false)

	assert.False(t, aa.Has(cmis.ActionGetObjectParents))
	assert.False(t, aa.Has(cmis.ActionGetFolderParent))
	assert.False(t, aa.Has(cmis.ActionMoveObject))
	assert.False(t, aa.Has(cmis.ActionDeleteObject))
	assert.True(t, aa.Has(cmis.ActionUpdateProperties))
	assert.True(t, aa.Has(cmis.ActionCreateDocument))
	assert.True(t, aa.Has(cmis.ActionDeleteTree))
	assert.True(t, aa.Has(cmis.ActionGetChildren))
	assert.False(t, aa.Has(cmis.ActionGetContentStream))

	sub := ObjectState{Kind: cmis.BaseFolder, OSWritable: false}
	aa = AllowableActions(sub, false)
	assert.True(t, aa.Has(cmis.ActionGetFolderParent))
	assert.True(t, aa.Has(cmis.ActionMoveObject))
	assert.True(t, aa.Has(cmis.ActionCreateFolder))
	assert.False(t, aa.Has(cmis.ActionDeleteTree), "OS read-only folder")
	assert.False(t, aa.Has(cmis.ActionUpdateProperties))

	aa = AllowableActions(ObjectState{Kind: cmis.BaseFolder, OSWritable: true}, true)
	assert.False(t, aa.Has(cmis.ActionCreateDocument))
	assert.False(t, aa.Has(cmis.ActionMoveObject))
	assert.True(t, aa.Has(cmis.ActionGetProperties))
	assert.True(t, aa.Has(cmis.ActionGetACL))
}

func TestAllowableActionsDocument(t *testing.T) {
	empty := ObjectState{Kind: cmis.BaseDocument, OSWritable: true}
	aa := AllowableActions(empty, false)
	assert.False(t, aa.Has(cmis.ActionGetContentStream))
	assert.True(t, aa.Has(cmis.ActionSetContentStream))
	assert.True(t, aa.Has(cmis.ActionDeleteContentStream))
	assert.True(t, aa.Has(cmis.ActionGetAllVersions))
	assert.True(t, aa.Has(cmis.ActionDeleteObject))
	assert.False(t, aa.Has(cmis.ActionGetChildren))

	full := ObjectState{Kind: cmis.BaseDocument, OSWritable: true, ContentLength: 10}
	aa = AllowableActions(full, true)
	assert.True(t, aa.Has(cmis.ActionGetContentStream))
	assert.False(t, aa.Has(cmis.ActionSetContentStream))
	assert.False(t, aa.Has(cmis.ActionDeleteObject))
}

func TestGlobalACL(t *testing.T) {
	p := NewGlobalACLProvider(newAccess())

	acl := p.ACL(ObjectState{OSWritable: true})
	require.Len(t, acl.ACEs, 2)
	assert.True(t, acl.Exact)
	assert.Equal(t, []string{cmis.PermissionRead, cmis.PermissionWrite, cmis.PermissionAll}, acl.Entry("alice").Permissions)
	assert.Equal(t, []string{cmis.PermissionRead}, acl.Entry("bob").Permissions)
	assert.True(t, acl.Entry("alice").Direct)

	acl = p.ACL(ObjectState{OSWritable: false})
	assert.Equal(t, []string{cmis.PermissionRead}, acl.Entry("alice").Permissions)
	assert.Nil(t, acl.Entry("eve"))
}
