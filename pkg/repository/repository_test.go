package repository

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/marmos91/filebridge/pkg/cmis"
	"github.com/marmos91/filebridge/pkg/cmis/identity"
	"github.com/marmos91/filebridge/pkg/cmis/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture is a repository over a temporary directory with a read-write user
// alice and a read-only user bob.
type fixture struct {
	t    *testing.T
	root string
	repo *Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	root := t.TempDir()
	repo, err := New("test", root, types.NewCatalog())
	require.NoError(t, err)

	repo.SetUserReadWrite("alice")
	repo.SetUserReadOnly("bob")

	return &fixture{t: t, root: root, repo: repo}
}

func (f *fixture) alice() *cmis.CallContext {
	return cmis.NewCallContext(context.Background(), "alice", "")
}

func (f *fixture) bob() *cmis.CallContext {
	return cmis.NewCallContext(context.Background(), "bob", "")
}

// eve is not configured at all.
func (f *fixture) eve() *cmis.CallContext {
	return cmis.NewCallContext(context.Background(), "eve", "")
}

func (f *fixture) mkdir(rel string) string {
	f.t.Helper()
	require.NoError(f.t, os.MkdirAll(filepath.Join(f.root, rel), 0o755))
	return identity.Encode("/" + rel)
}

func (f *fixture) write(rel, content string) string {
	f.t.Helper()
	p := filepath.Join(f.root, rel)
	require.NoError(f.t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(f.t, os.WriteFile(p, []byte(content), 0o644))
	return identity.Encode("/" + rel)
}

func (f *fixture) read(rel string) string {
	f.t.Helper()
	data, err := os.ReadFile(filepath.Join(f.root, rel))
	require.NoError(f.t, err)
	return string(data)
}

func (f *fixture) exists(rel string) bool {
	_, err := os.Lstat(filepath.Join(f.root, rel))
	return err == nil
}

// snapshot lists every path below the root with its size.
func (f *fixture) snapshot() map[string]int64 {
	f.t.Helper()
	out := map[string]int64{}
	err := filepath.Walk(f.root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		out[p] = info.Size()
		return nil
	})
	require.NoError(f.t, err)
	return out
}

func nameProps(typeID, name string) *cmis.Properties {
	return cmis.NewProperties(
		cmis.NewIDProperty(cmis.PropObjectTypeID, typeID),
		cmis.NewStringProperty(cmis.PropName, name),
	)
}

func stream(s string) *cmis.ContentStream {
	return &cmis.ContentStream{Length: int64(len(s)), Stream: io.NopCloser(strings.NewReader(s))}
}

func intp(i int) *int { return &i }

func int64p(i int64) *int64 { return &i }

func requireCode(t *testing.T, err error, code cmis.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	got, ok := cmis.CodeOf(err)
	require.True(t, ok, "not a domain error: %v", err)
	assert.Equal(t, code, got, "error: %v", err)
}

func TestNew(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	tests := []struct {
		name    string
		id      string
		root    string
		catalog *types.Catalog
	}{
		{name: "blank id", id: " ", root: root, catalog: types.NewCatalog()},
		{name: "blank root", id: "x", root: "", catalog: types.NewCatalog()},
		{name: "missing root", id: "x", root: filepath.Join(root, "nope"), catalog: types.NewCatalog()},
		{name: "root is a file", id: "x", root: file, catalog: types.NewCatalog()},
		{name: "no catalog", id: "x", root: root},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.id, tt.root, tt.catalog)
			requireCode(t, err, cmis.ErrInvalidArgument)
		})
	}

	repo, err := New("docs", root, types.NewCatalog())
	require.NoError(t, err)
	assert.Equal(t, "docs", repo.ID())
	assert.Equal(t, "[docs -> "+repo.Root()+"]", repo.String())
}

func TestUsers(t *testing.T) {
	f := newFixture(t)
	f.repo.SetUserReadWrite("")

	users := f.repo.Users()
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.False(t, users[0].ReadOnly)
	assert.Equal(t, "bob", users[1].Username)
	assert.True(t, users[1].ReadOnly)
}

func TestRepositoryInfo(t *testing.T) {
	f := newFixture(t)

	cc := f.alice()
	info, err := f.repo.GetRepositoryInfo(cc)
	require.NoError(t, err)
	assert.Equal(t, "test", info.ID)
	assert.Equal(t, cmis.RootID, info.RootFolderID)
	assert.Equal(t, cmis.Version11, info.VersionSupported)
	assert.Equal(t, "none", info.Capabilities.OrderBy)
	assert.NotNil(t, info.Capabilities.NewTypeSettableAttributes)
	assert.True(t, info.Capabilities.GetDescendants)
	assert.Equal(t, "metadataonly", info.Capabilities.Query)
	assert.Len(t, info.ACLCapabilities.Permissions, 3)
	assert.Equal(t, []string{cmis.PermissionAll}, info.ACLCapabilities.Mapping("canDeleteTree.Folder"))
	assert.Nil(t, info.ACLCapabilities.Mapping("canCheckout.Document"))

	cc.Version = cmis.Version10
	info, err = f.repo.GetRepositoryInfo(cc)
	require.NoError(t, err)
	assert.Equal(t, cmis.Version10, info.VersionSupported)
	assert.Empty(t, info.Capabilities.OrderBy)
	assert.Nil(t, info.Capabilities.NewTypeSettableAttributes)

	_, err = f.repo.GetRepositoryInfo(f.eve())
	requireCode(t, err, cmis.ErrPermissionDenied)
}

func TestTypeService(t *testing.T) {
	f := newFixture(t)
	_, err := f.repo.Catalog().Register(context.Background(), &cmis.TypeDefinition{
		ID:       "invoice",
		ParentID: cmis.TypeDocument,
	})
	require.NoError(t, err)

	list, err := f.repo.GetTypeChildren(f.bob(), "", false, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, list.NumItems)
	for _, td := range list.Types {
		assert.Nil(t, td.PropertyDefinitions)
	}

	list, err = f.repo.GetTypeChildren(f.bob(), cmis.TypeDocument, true, nil, 0)
	require.NoError(t, err)
	require.Len(t, list.Types, 1)
	assert.Equal(t, "invoice", list.Types[0].ID)
	assert.Contains(t, list.Types[0].PropertyDefinitions, cmis.PropName)

	tree, err := f.repo.GetTypeDescendants(f.bob(), "", intp(-1), false)
	require.NoError(t, err)
	assert.Len(t, tree, 2)

	_, err = f.repo.GetTypeDescendants(f.bob(), "", intp(0), false)
	requireCode(t, err, cmis.ErrInvalidArgument)

	def, err := f.repo.GetTypeDefinition(f.bob(), "invoice")
	require.NoError(t, err)
	assert.Equal(t, cmis.BaseDocument, def.BaseKind)

	_, err = f.repo.GetTypeDefinition(f.bob(), "nope")
	requireCode(t, err, cmis.ErrNotFound)

	_, err = f.repo.GetTypeDefinition(nil, "invoice")
	requireCode(t, err, cmis.ErrPermissionDenied)
}
