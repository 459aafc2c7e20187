package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/marmos91/filebridge/pkg/cmis"
	"github.com/marmos91/filebridge/pkg/cmis/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDocument(t *testing.T) {
	f := newFixture(t)
	docs := f.mkdir("docs")

	id, err := f.repo.CreateDocument(f.alice(), nameProps(cmis.TypeDocument, "a.txt"), docs, stream("0123456789"), cmis.VersioningNone)
	require.NoError(t, err)
	assert.Equal(t, identity.Encode("/docs/a.txt"), id)
	assert.Equal(t, "0123456789", f.read("docs/a.txt"))

	id, err = f.repo.CreateDocument(f.alice(), nameProps(cmis.TypeDocument, "empty"), docs, nil, cmis.VersioningNone)
	require.NoError(t, err)
	assert.Equal(t, identity.Encode("/docs/empty"), id)
	assert.Empty(t, f.read("docs/empty"))
}

func TestCreateDocumentErrors(t *testing.T) {
	f := newFixture(t)
	docs := f.mkdir("docs")
	file := f.write("docs/taken", "x")

	tests := []struct {
		name       string
		props      *cmis.Properties
		folder     string
		versioning cmis.VersioningState
		code       cmis.ErrorCode
	}{
		{name: "slash in name", props: nameProps(cmis.TypeDocument, "a/b"), folder: docs, code: cmis.ErrNameConstraintViolation},
		{name: "colon in name", props: nameProps(cmis.TypeDocument, "a:b"), folder: docs, code: cmis.ErrNameConstraintViolation},
		{name: "dot dot", props: nameProps(cmis.TypeDocument, ".."), folder: docs, code: cmis.ErrNameConstraintViolation},
		{name: "empty name", props: nameProps(cmis.TypeDocument, ""), folder: docs, code: cmis.ErrNameConstraintViolation},
		{name: "existing name", props: nameProps(cmis.TypeDocument, "taken"), folder: docs, code: cmis.ErrNameConstraintViolation},
		{name: "no type", props: cmis.NewProperties(cmis.NewStringProperty(cmis.PropName, "x")), folder: docs, code: cmis.ErrNameConstraintViolation},
		{name: "unknown type", props: nameProps("nope", "x"), folder: docs, code: cmis.ErrNotFound},
		{name: "folder type", props: nameProps(cmis.TypeFolder, "x"), folder: docs, code: cmis.ErrConstraint},
		{name: "nil properties", props: nil, folder: docs, code: cmis.ErrInvalidArgument},
		{name: "versioning", props: nameProps(cmis.TypeDocument, "x"), folder: docs, versioning: cmis.VersioningMajor, code: cmis.ErrConstraint},
		{name: "parent is a document", props: nameProps(cmis.TypeDocument, "x"), folder: file, code: cmis.ErrNotFound},
		{name: "missing parent", props: nameProps(cmis.TypeDocument, "x"), folder: identity.Encode("/nope"), code: cmis.ErrNotFound},
		{
			name: "readonly property",
			props: cmis.NewProperties(
				cmis.NewIDProperty(cmis.PropObjectTypeID, cmis.TypeDocument),
				cmis.NewStringProperty(cmis.PropName, "x"),
				cmis.NewStringProperty(cmis.PropCreatedBy, "mallory"),
			),
			folder: docs,
			code:   cmis.ErrConstraint,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := f.snapshot()
			_, err := f.repo.CreateDocument(f.alice(), tt.props, tt.folder, stream("data"), tt.versioning)
			requireCode(t, err, tt.code)
			assert.Equal(t, before, f.snapshot())
		})
	}
}

func TestCreateRequiredCustomProperty(t *testing.T) {
	f := newFixture(t)
	_, err := f.repo.Catalog().Register(context.Background(), &cmis.TypeDefinition{
		ID:       "invoice",
		ParentID: cmis.TypeDocument,
		PropertyDefinitions: map[string]*cmis.PropertyDefinition{
			"inv:number": {Type: cmis.PropertyTypeString, Updatability: cmis.ReadWrite, Required: true},
		},
	})
	require.NoError(t, err)

	_, err = f.repo.CreateDocument(f.alice(), nameProps("invoice", "i1"), cmis.RootID, nil, cmis.VersioningNone)
	requireCode(t, err, cmis.ErrConstraint)

	props := nameProps("invoice", "i1")
	props.Add(cmis.NewStringProperty("inv:number", "42"))
	_, err = f.repo.CreateDocument(f.alice(), props, cmis.RootID, nil, cmis.VersioningNone)
	require.NoError(t, err)
	assert.True(t, f.exists("i1"))
}

func TestCreateDispatch(t *testing.T) {
	f := newFixture(t)

	obj, err := f.repo.Create(f.alice(), nameProps(cmis.TypeFolder, "docs"), cmis.RootID, nil, cmis.VersioningNone)
	require.NoError(t, err)
	assert.Equal(t, identity.Encode("/docs"), obj.ID())
	assert.Equal(t, cmis.TypeFolder, obj.Properties.Get(cmis.PropBaseTypeID).Value())

	obj, err = f.repo.Create(f.alice(), nameProps(cmis.TypeDocument, "a.txt"), obj.ID(), stream("abc"), cmis.VersioningNone)
	require.NoError(t, err)
	assert.Equal(t, identity.Encode("/docs/a.txt"), obj.ID())
	assert.Equal(t, "abc", f.read("docs/a.txt"))

	_, err = f.repo.Create(f.alice(), nameProps("nope", "x"), cmis.RootID, nil, cmis.VersioningNone)
	requireCode(t, err, cmis.ErrNotFound)

	_, err = f.repo.Create(f.alice(), nil, cmis.RootID, nil, cmis.VersioningNone)
	requireCode(t, err, cmis.ErrInvalidArgument)
}

func TestCreateFolder(t *testing.T) {
	f := newFixture(t)

	id, err := f.repo.CreateFolder(f.alice(), nameProps(cmis.TypeFolder, "docs"), cmis.RootID)
	require.NoError(t, err)
	assert.Equal(t, identity.Encode("/docs"), id)
	info, err := os.Stat(filepath.Join(f.root, "docs"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = f.repo.CreateFolder(f.alice(), nameProps(cmis.TypeFolder, "docs"), cmis.RootID)
	requireCode(t, err, cmis.ErrNameConstraintViolation)

	_, err = f.repo.CreateFolder(f.alice(), nameProps(cmis.TypeDocument, "x"), cmis.RootID)
	requireCode(t, err, cmis.ErrConstraint)
}

func TestCreateDocumentFromSource(t *testing.T) {
	f := newFixture(t)
	src := f.write("a.txt", "payload")
	docs := f.mkdir("docs")

	id, err := f.repo.CreateDocumentFromSource(f.alice(), src, nil, docs, cmis.VersioningNone)
	require.NoError(t, err)
	assert.Equal(t, identity.Encode("/docs/a.txt"), id)
	assert.Equal(t, "payload", f.read("docs/a.txt"))

	id, err = f.repo.CreateDocumentFromSource(f.alice(), src, nameProps(cmis.TypeDocument, "b.txt"), docs, cmis.VersioningNone)
	require.NoError(t, err)
	assert.Equal(t, identity.Encode("/docs/b.txt"), id)
	assert.Equal(t, "payload", f.read("docs/b.txt"))
	assert.Equal(t, "payload", f.read("a.txt"))

	_, err = f.repo.CreateDocumentFromSource(f.alice(), src, nil, docs, cmis.VersioningNone)
	requireCode(t, err, cmis.ErrNameConstraintViolation)

	_, err = f.repo.CreateDocumentFromSource(f.alice(), src, cmis.NewProperties(cmis.NewStringProperty(cmis.PropName, "c.txt")), docs, cmis.VersioningNone)
	requireCode(t, err, cmis.ErrConstraint)

	_, err = f.repo.CreateDocumentFromSource(f.alice(), docs, nil, cmis.RootID, cmis.VersioningNone)
	requireCode(t, err, cmis.ErrNotFound)

	_, err = f.repo.CreateDocumentFromSource(f.alice(), src, nameProps(cmis.TypeFolder, "c"), docs, cmis.VersioningNone)
	requireCode(t, err, cmis.ErrInvalidArgument)
}

func TestMoveObject(t *testing.T) {
	f := newFixture(t)
	id := f.write("a.txt", "x")
	docs := f.mkdir("docs")
	f.write("other/a.txt", "y")

	moved := id
	obj, err := f.repo.MoveObject(f.alice(), &moved, docs)
	require.NoError(t, err)
	assert.Equal(t, identity.Encode("/docs/a.txt"), moved)
	assert.Equal(t, moved, obj.ID())
	assert.False(t, f.exists("a.txt"))
	assert.Equal(t, "x", f.read("docs/a.txt"))

	_, err = f.repo.MoveObject(f.alice(), &moved, identity.Encode("/other"))
	requireCode(t, err, cmis.ErrNameConstraintViolation)

	root := cmis.RootID
	_, err = f.repo.MoveObject(f.alice(), &root, docs)
	requireCode(t, err, cmis.ErrConstraint)

	_, err = f.repo.MoveObject(f.alice(), &moved, identity.Encode("/other/a.txt"))
	requireCode(t, err, cmis.ErrNotFound)

	_, err = f.repo.MoveObject(f.alice(), nil, docs)
	requireCode(t, err, cmis.ErrInvalidArgument)
}

func TestUpdatePropertiesRename(t *testing.T) {
	f := newFixture(t)
	id := f.write("docs/a.txt", "x")
	f.write("docs/taken.txt", "y")

	current := id
	obj, err := f.repo.UpdateProperties(f.alice(), &current, cmis.NewProperties(cmis.NewStringProperty(cmis.PropName, "b.txt")))
	require.NoError(t, err)
	assert.Equal(t, identity.Encode("/docs/b.txt"), current)
	assert.Equal(t, "b.txt", obj.Name())
	assert.False(t, f.exists("docs/a.txt"))
	assert.Equal(t, "x", f.read("docs/b.txt"))

	same := current
	_, err = f.repo.UpdateProperties(f.alice(), &same, cmis.NewProperties(cmis.NewStringProperty(cmis.PropName, "b.txt")))
	require.NoError(t, err)
	assert.Equal(t, current, same)

	_, err = f.repo.UpdateProperties(f.alice(), &current, cmis.NewProperties(cmis.NewStringProperty(cmis.PropName, "taken.txt")))
	requireCode(t, err, cmis.ErrNameConstraintViolation)

	_, err = f.repo.UpdateProperties(f.alice(), &current, cmis.NewProperties(cmis.NewStringProperty(cmis.PropName, "x/y")))
	requireCode(t, err, cmis.ErrNameConstraintViolation)

	_, err = f.repo.UpdateProperties(f.alice(), &current, cmis.NewProperties(cmis.NewIDProperty(cmis.PropObjectTypeID, cmis.TypeDocument)))
	requireCode(t, err, cmis.ErrConstraint)

	root := cmis.RootID
	_, err = f.repo.UpdateProperties(f.alice(), &root, cmis.NewProperties(cmis.NewStringProperty(cmis.PropName, "new")))
	requireCode(t, err, cmis.ErrConstraint)
}

func TestBulkUpdatePartialFailure(t *testing.T) {
	f := newFixture(t)
	a := f.write("a.txt", "a")
	f.write("b.txt", "b")
	f.write("docs/c.txt", "c")

	props := cmis.NewProperties(cmis.NewStringProperty(cmis.PropName, "renamed"))
	objects := []*cmis.BulkUpdateResult{
		{ID: a},
		{ID: identity.Encode("/missing")},
		{ID: identity.Encode("/docs/c.txt")},
		nil,
	}

	result, err := f.repo.BulkUpdateProperties(f.alice(), objects, props)
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, a, result[0].ID)
	assert.Equal(t, identity.Encode("/renamed"), result[0].NewID)
	assert.Equal(t, identity.Encode("/docs/renamed"), result[1].NewID)
	assert.Equal(t, "a", f.read("renamed"))
	assert.Equal(t, "c", f.read("docs/renamed"))
	assert.True(t, f.exists("b.txt"))

	_, err = f.repo.BulkUpdateProperties(f.alice(), nil, props)
	requireCode(t, err, cmis.ErrInvalidArgument)
}

func TestDeleteObjectDocsScenario(t *testing.T) {
	f := newFixture(t)
	docs := f.mkdir("docs")
	file := f.write("docs/a.txt", "0123456789")

	err := f.repo.DeleteObject(f.alice(), docs)
	requireCode(t, err, cmis.ErrConstraint)
	assert.True(t, f.exists("docs/a.txt"))

	require.NoError(t, f.repo.DeleteObject(f.alice(), file))
	require.NoError(t, f.repo.DeleteObject(f.alice(), docs))
	assert.False(t, f.exists("docs"))

	err = f.repo.DeleteObject(f.alice(), file)
	requireCode(t, err, cmis.ErrNotFound)

	err = f.repo.DeleteObject(f.alice(), cmis.RootID)
	requireCode(t, err, cmis.ErrConstraint)
}

func TestDeleteObjectCountsHiddenEntries(t *testing.T) {
	f := newFixture(t)
	docs := f.mkdir("docs")
	f.write("docs/.keep", "")

	err := f.repo.DeleteObject(f.alice(), docs)
	requireCode(t, err, cmis.ErrConstraint)
}

func TestDeleteTree(t *testing.T) {
	f := newFixture(t)
	docs := f.mkdir("docs")
	f.write("docs/a.txt", "x")
	f.write("docs/sub/b.txt", "x")
	f.write("docs/sub/.hidden", "x")
	file := f.write("keep.txt", "x")

	failed, err := f.repo.DeleteTree(f.alice(), docs, true)
	require.NoError(t, err)
	assert.Empty(t, failed.IDs)
	assert.False(t, f.exists("docs"))
	assert.True(t, f.exists("keep.txt"))

	_, err = f.repo.DeleteTree(f.alice(), file, false)
	requireCode(t, err, cmis.ErrConstraint)

	_, err = f.repo.DeleteTree(f.alice(), docs, false)
	requireCode(t, err, cmis.ErrNotFound)
}

func TestDeleteTreeOfRootKeepsRoot(t *testing.T) {
	f := newFixture(t)
	f.write("a/b.txt", "x")
	f.write("c.txt", "x")

	failed, err := f.repo.DeleteTree(f.alice(), cmis.RootID, false)
	require.NoError(t, err)
	assert.Empty(t, failed.IDs)

	entries, err := os.ReadDir(f.root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeleteTreeReportsFailures(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}

	f := newFixture(t)
	docs := f.mkdir("docs")
	f.write("docs/locked/x.txt", "x")
	f.write("docs/free.txt", "x")
	locked := filepath.Join(f.root, "docs", "locked")
	require.NoError(t, os.Chmod(locked, 0o555))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	failed, err := f.repo.DeleteTree(f.alice(), docs, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		identity.Encode("/docs/locked/x.txt"),
		identity.Encode("/docs/locked"),
		identity.Encode("/docs"),
	}, failed.IDs)
	assert.False(t, f.exists("docs/free.txt"))
	assert.True(t, f.exists("docs/locked/x.txt"))
}

func TestReadOnlyUserCannotMutate(t *testing.T) {
	f := newFixture(t)
	docs := f.mkdir("docs")
	file := f.write("docs/a.txt", "0123456789")

	before := f.snapshot()
	id := file
	overwrite := true

	calls := map[string]func(cc *cmis.CallContext) error{
		"create": func(cc *cmis.CallContext) error {
			_, err := f.repo.Create(cc, nameProps(cmis.TypeDocument, "n"), docs, nil, cmis.VersioningNone)
			return err
		},
		"createDocument": func(cc *cmis.CallContext) error {
			_, err := f.repo.CreateDocument(cc, nameProps(cmis.TypeDocument, "n"), docs, stream("x"), cmis.VersioningNone)
			return err
		},
		"createDocumentFromSource": func(cc *cmis.CallContext) error {
			_, err := f.repo.CreateDocumentFromSource(cc, file, nameProps(cmis.TypeDocument, "n"), docs, cmis.VersioningNone)
			return err
		},
		"createFolder": func(cc *cmis.CallContext) error {
			_, err := f.repo.CreateFolder(cc, nameProps(cmis.TypeFolder, "n"), docs)
			return err
		},
		"moveObject": func(cc *cmis.CallContext) error {
			_, err := f.repo.MoveObject(cc, &id, cmis.RootID)
			return err
		},
		"updateProperties": func(cc *cmis.CallContext) error {
			_, err := f.repo.UpdateProperties(cc, &id, cmis.NewProperties(cmis.NewStringProperty(cmis.PropName, "n")))
			return err
		},
		"bulkUpdateProperties": func(cc *cmis.CallContext) error {
			_, err := f.repo.BulkUpdateProperties(cc, []*cmis.BulkUpdateResult{{ID: file}}, cmis.NewProperties(cmis.NewStringProperty(cmis.PropName, "n")))
			return err
		},
		"setContentStream": func(cc *cmis.CallContext) error {
			return f.repo.SetContentStream(cc, &id, &overwrite, stream("new"))
		},
		"appendContentStream": func(cc *cmis.CallContext) error {
			return f.repo.AppendContentStream(cc, &id, stream("more"))
		},
		"deleteContentStream": func(cc *cmis.CallContext) error {
			return f.repo.DeleteContentStream(cc, &id)
		},
		"deleteObject": func(cc *cmis.CallContext) error {
			return f.repo.DeleteObject(cc, file)
		},
		"deleteTree": func(cc *cmis.CallContext) error {
			_, err := f.repo.DeleteTree(cc, docs, true)
			return err
		},
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			requireCode(t, call(f.bob()), cmis.ErrPermissionDenied)
			requireCode(t, call(f.eve()), cmis.ErrPermissionDenied)
			requireCode(t, call(nil), cmis.ErrPermissionDenied)
			assert.Equal(t, before, f.snapshot())
			assert.Equal(t, file, id)
		})
	}
}
