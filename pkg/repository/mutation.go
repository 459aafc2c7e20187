package repository

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/marmos91/filebridge/pkg/cmis"
)

// Create dispatches to CreateDocument or CreateFolder according to the base
// kind of the requested type and returns the compiled new object.
func (r *Repository) Create(cc *cmis.CallContext, props *cmis.Properties, folderID string, content *cmis.ContentStream, versioning cmis.VersioningState) (result *cmis.ObjectData, err error) {
	defer r.observe(cc, "create")(&err)
	defer closeContent(content)

	userReadOnly, err := r.checkUser(cc, true)
	if err != nil {
		return nil, err
	}

	if props == nil {
		return nil, cmis.NewError(cmis.ErrInvalidArgument, "properties must be set")
	}

	typeID, _ := props.String(cmis.PropObjectTypeID)
	def, err := r.catalog.Definition(typeID)
	if err != nil {
		return nil, err
	}

	var id string
	switch def.BaseKind {
	case cmis.BaseDocument:
		id, err = r.createDocument(cc, props, folderID, content, versioning)
	case cmis.BaseFolder:
		id, err = r.createFolder(cc, props, folderID)
	default:
		return nil, cmis.NewError(cmis.ErrNotFound, "cannot create object of type '%s'", typeID)
	}
	if err != nil {
		return nil, err
	}

	e, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	return r.compile(cc, e, compileOptions{userReadOnly: userReadOnly})
}

// CreateDocument creates a file in folderID and optionally fills it from
// content. The content stream is consumed and closed. Only
// cmis.VersioningNone is supported.
func (r *Repository) CreateDocument(cc *cmis.CallContext, props *cmis.Properties, folderID string, content *cmis.ContentStream, versioning cmis.VersioningState) (id string, err error) {
	defer r.observe(cc, "createDocument")(&err)
	defer closeContent(content)

	if _, err := r.checkUser(cc, true); err != nil {
		return "", err
	}
	return r.createDocument(cc, props, folderID, content, versioning)
}

func (r *Repository) createDocument(cc *cmis.CallContext, props *cmis.Properties, folderID string, content *cmis.ContentStream, versioning cmis.VersioningState) (string, error) {
	if versioning != cmis.VersioningNone {
		return "", cmis.NewError(cmis.ErrConstraint, "versioning not supported")
	}

	parent, err := r.parentFolder(folderID)
	if err != nil {
		return "", err
	}

	def, err := r.checkNewProperties(props)
	if err != nil {
		return "", err
	}
	if def.BaseKind != cmis.BaseDocument {
		return "", cmis.NewError(cmis.ErrConstraint, "type '%s' is not a document type", def.ID)
	}

	name, _ := props.String(cmis.PropName)
	newPath := filepath.Join(parent.path, name)
	if r.exists(newPath) {
		return "", cmis.NewError(cmis.ErrNameConstraintViolation, "document already exists: '%s'", name)
	}

	var src io.Reader
	if content != nil && content.Stream != nil {
		src = content.Stream
	}
	if err := r.createFile(cc, newPath, src); err != nil {
		return "", err
	}
	return r.objectID(newPath)
}

// CreateDocumentFromSource copies the document sourceID into folderID. The
// name defaults to the source name; props may be nil.
func (r *Repository) CreateDocumentFromSource(cc *cmis.CallContext, sourceID string, props *cmis.Properties, folderID string, versioning cmis.VersioningState) (id string, err error) {
	defer r.observe(cc, "createDocumentFromSource")(&err)

	if _, err := r.checkUser(cc, true); err != nil {
		return "", err
	}

	if versioning != cmis.VersioningNone {
		return "", cmis.NewError(cmis.ErrConstraint, "versioning not supported")
	}

	parent, err := r.parentFolder(folderID)
	if err != nil {
		return "", err
	}

	source, err := r.lookup(sourceID)
	if err != nil {
		return "", err
	}
	if !source.isFile() {
		return "", cmis.NewError(cmis.ErrNotFound, "source is not a document")
	}

	if err := r.checkCopyProperties(props, cmis.TypeDocument); err != nil {
		return "", err
	}

	name, ok := props.String(cmis.PropName)
	if !ok || name == "" {
		name = source.name()
	}

	newPath := filepath.Join(parent.path, name)
	if r.exists(newPath) {
		return "", cmis.NewError(cmis.ErrNameConstraintViolation, "document already exists: '%s'", name)
	}

	in, err := os.Open(source.path)
	if err != nil {
		return "", r.storageError(source.path, err, "could not read content")
	}
	defer in.Close()

	if err := r.createFile(cc, newPath, in); err != nil {
		return "", err
	}
	return r.objectID(newPath)
}

// CreateFolder creates a directory in folderID.
func (r *Repository) CreateFolder(cc *cmis.CallContext, props *cmis.Properties, folderID string) (id string, err error) {
	defer r.observe(cc, "createFolder")(&err)

	if _, err := r.checkUser(cc, true); err != nil {
		return "", err
	}
	return r.createFolder(cc, props, folderID)
}

func (r *Repository) createFolder(_ *cmis.CallContext, props *cmis.Properties, folderID string) (string, error) {
	def, err := r.checkNewProperties(props)
	if err != nil {
		return "", err
	}
	if def.BaseKind != cmis.BaseFolder {
		return "", cmis.NewError(cmis.ErrConstraint, "type '%s' is not a folder type", def.ID)
	}

	parent, err := r.parentFolder(folderID)
	if err != nil {
		return "", err
	}

	name, _ := props.String(cmis.PropName)
	newPath := filepath.Join(parent.path, name)
	if err := os.Mkdir(newPath, 0o777); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", cmis.NewError(cmis.ErrNameConstraintViolation, "folder already exists: '%s'", name)
		}
		return "", r.storageError(newPath, err, "could not create folder")
	}
	return r.objectID(newPath)
}

// parentFolder resolves the folder a new object is created in. Anything that
// is not an existing directory is ErrNotFound.
func (r *Repository) parentFolder(folderID string) (*entry, error) {
	parent, err := r.lookup(folderID)
	if err != nil {
		return nil, err
	}
	if !parent.isDir() {
		return nil, cmis.NewError(cmis.ErrNotFound, "parent is not a folder")
	}
	return parent, nil
}

// MoveObject moves an object into targetFolderID. On success *objectID is
// replaced by the object's new id.
func (r *Repository) MoveObject(cc *cmis.CallContext, objectID *string, targetFolderID string) (result *cmis.ObjectData, err error) {
	defer r.observe(cc, "moveObject")(&err)

	userReadOnly, err := r.checkUser(cc, true)
	if err != nil {
		return nil, err
	}

	if objectID == nil || *objectID == "" {
		return nil, cmis.NewError(cmis.ErrInvalidArgument, "id is not valid")
	}

	obj, err := r.lookup(*objectID)
	if err != nil {
		return nil, err
	}
	if r.isRoot(obj) {
		return nil, cmis.NewError(cmis.ErrConstraint, "the root folder cannot be moved")
	}

	target, err := r.lookup(targetFolderID)
	if err != nil {
		return nil, err
	}
	if !target.isDir() {
		return nil, cmis.NewError(cmis.ErrNotFound, "target is not a folder")
	}

	newPath := filepath.Join(target.path, obj.name())
	if r.exists(newPath) {
		return nil, cmis.NewError(cmis.ErrNameConstraintViolation, "object already exists: '%s'", obj.name())
	}

	if err := os.Rename(obj.path, newPath); err != nil {
		return nil, r.storageError(obj.path, err, "move failed")
	}

	newID, err := r.objectID(newPath)
	if err != nil {
		return nil, err
	}
	*objectID = newID

	moved, err := r.stat(newPath)
	if err != nil {
		return nil, err
	}
	return r.compile(cc, moved, compileOptions{userReadOnly: userReadOnly})
}

// UpdateProperties applies props to an object. The only property with an
// effect on disk is the name; a changed name renames the entry and *objectID
// is replaced by the new id.
func (r *Repository) UpdateProperties(cc *cmis.CallContext, objectID *string, props *cmis.Properties) (result *cmis.ObjectData, err error) {
	defer r.observe(cc, "updateProperties")(&err)

	userReadOnly, err := r.checkUser(cc, true)
	if err != nil {
		return nil, err
	}
	return r.updateProperties(cc, objectID, props, userReadOnly)
}

func (r *Repository) updateProperties(cc *cmis.CallContext, objectID *string, props *cmis.Properties, userReadOnly bool) (*cmis.ObjectData, error) {
	if objectID == nil || *objectID == "" {
		return nil, cmis.NewError(cmis.ErrInvalidArgument, "id is not valid")
	}

	e, err := r.lookup(*objectID)
	if err != nil {
		return nil, err
	}

	if err := r.checkUpdateProperties(props, e.kind().TypeID()); err != nil {
		return nil, err
	}

	newName, ok := props.String(cmis.PropName)
	if ok && newName != e.name() {
		if r.isRoot(e) {
			return nil, cmis.NewError(cmis.ErrConstraint, "the root folder cannot be renamed")
		}

		newPath := filepath.Join(filepath.Dir(e.path), newName)
		if r.exists(newPath) {
			return nil, cmis.NewError(cmis.ErrNameConstraintViolation, "object already exists: '%s'", newName)
		}
		if err := os.Rename(e.path, newPath); err != nil {
			return nil, cmis.WrapError(cmis.ErrUpdateConflict, err, "could not rename object")
		}

		newID, err := r.objectID(newPath)
		if err != nil {
			return nil, err
		}
		*objectID = newID

		if e, err = r.stat(newPath); err != nil {
			return nil, err
		}
	}

	return r.compile(cc, e, compileOptions{userReadOnly: userReadOnly})
}

// BulkUpdateProperties applies props to every entry independently. Entries
// that fail, including nil entries and unknown ids, are left out of the
// result; the batch itself only fails on a permission or argument error.
func (r *Repository) BulkUpdateProperties(cc *cmis.CallContext, objects []*cmis.BulkUpdateResult, props *cmis.Properties) (result []*cmis.BulkUpdateResult, err error) {
	defer r.observe(cc, "bulkUpdateProperties")(&err)

	userReadOnly, err := r.checkUser(cc, true)
	if err != nil {
		return nil, err
	}

	if objects == nil {
		return nil, cmis.NewError(cmis.ErrInvalidArgument, "no object ids provided")
	}

	result = []*cmis.BulkUpdateResult{}
	failed := 0
	for _, o := range objects {
		if o == nil {
			continue
		}

		id := o.ID
		if _, err := r.updateProperties(cc, &id, props, userReadOnly); err != nil {
			failed++
			continue
		}
		result = append(result, &cmis.BulkUpdateResult{ID: o.ID, NewID: id})
	}

	r.metrics.RecordItemFailures("bulkUpdateProperties", r.id, failed)
	return result, nil
}

// DeleteObject removes a document or an empty folder.
func (r *Repository) DeleteObject(cc *cmis.CallContext, objectID string) (err error) {
	defer r.observe(cc, "deleteObject")(&err)

	if _, err := r.checkUser(cc, true); err != nil {
		return err
	}

	e, err := r.lookup(objectID)
	if err != nil {
		return err
	}
	if r.isRoot(e) {
		return cmis.NewError(cmis.ErrConstraint, "the root folder cannot be deleted")
	}

	if e.isDir() && !e.link {
		empty, err := isEmptyDir(e.path)
		if err != nil {
			return r.storageError(e.path, err, "could not list folder")
		}
		if !empty {
			return cmis.NewError(cmis.ErrConstraint, "folder is not empty")
		}
	}

	if err := os.Remove(e.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return r.notFound(e.path, err)
		}
		return r.storageError(e.path, err, "deletion failed")
	}
	return nil
}

// isEmptyDir reports whether dir has no entries at all, hidden ones included.
func isEmptyDir(dir string) (bool, error) {
	f, err := os.Open(dir)
	if err != nil {
		return false, err
	}
	defer f.Close()

	names, err := f.Readdirnames(1)
	if len(names) > 0 {
		return false, nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	return true, nil
}

// DeleteTree removes a folder and everything below it.
//
// Without continueOnFailure the walk stops at the first entry that cannot be
// removed. With it, every entry that could not be removed is reported, and
// so is every folder left non-empty as a consequence. The root folder itself
// is never removed; deleting its tree empties it.
func (r *Repository) DeleteTree(cc *cmis.CallContext, folderID string, continueOnFailure bool) (result *cmis.FailedToDelete, err error) {
	defer r.observe(cc, "deleteTree")(&err)

	if _, err := r.checkUser(cc, true); err != nil {
		return nil, err
	}

	folder, err := r.lookup(folderID)
	if err != nil {
		return nil, err
	}
	if !folder.isDir() {
		return nil, cmis.NewError(cmis.ErrConstraint, "object is not a folder")
	}

	d := &treeDeleter{repo: r, continueOnFailure: continueOnFailure}
	result = &cmis.FailedToDelete{IDs: []string{}}
	d.result = result
	if folder.link && !r.isRoot(folder) {
		// only the link goes; its target is never walked
		if err := os.Remove(folder.path); err != nil {
			d.fail(folder.path)
		}
	} else {
		d.deleteFolder(folder.path, !r.isRoot(folder))
	}

	r.metrics.RecordItemFailures("deleteTree", r.id, len(result.IDs))
	return result, nil
}

type treeDeleter struct {
	repo              *Repository
	continueOnFailure bool
	result            *cmis.FailedToDelete
}

func (d *treeDeleter) fail(p string) {
	if id, err := d.repo.objectID(p); err == nil {
		d.result.IDs = append(d.result.IDs, id)
	}
}

// deleteFolder empties dir and, if removeSelf is set, removes it. It reports
// whether everything was removed.
func (d *treeDeleter) deleteFolder(dir string, removeSelf bool) bool {
	des, err := os.ReadDir(dir)
	if err != nil {
		d.fail(dir)
		return false
	}

	success := true
	for _, de := range des {
		p := filepath.Join(dir, de.Name())

		if de.IsDir() {
			if !d.deleteFolder(p, true) {
				if !d.continueOnFailure {
					return false
				}
				success = false
			}
			continue
		}

		if err := os.Remove(p); err != nil {
			d.fail(p)
			if !d.continueOnFailure {
				return false
			}
			success = false
		}
	}

	if removeSelf {
		if err := os.Remove(dir); err != nil {
			d.fail(dir)
			return false
		}
	}
	return success
}
