package repository

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/marmos91/filebridge/pkg/cmis"
	"github.com/marmos91/filebridge/pkg/cmis/permission"
)

var errOutsideRoot = errors.New("path resolves outside the repository root")

// entry is a filesystem path together with the stat taken when it was
// resolved. The stat may be stale by the time it is used. info describes the
// link target when link is set.
type entry struct {
	path string
	info fs.FileInfo
	link bool
}

func (e *entry) name() string {
	return e.info.Name()
}

func (e *entry) kind() cmis.BaseKind {
	if e.info.IsDir() {
		return cmis.BaseFolder
	}
	return cmis.BaseDocument
}

func (e *entry) isDir() bool {
	return e.info.IsDir()
}

func (e *entry) isFile() bool {
	return e.info.Mode().IsRegular()
}

// osWritable reports whether the owner write bit is set.
func (e *entry) osWritable() bool {
	return e.info.Mode().Perm()&0o200 != 0
}

// path resolves id to a filesystem path without checking existence.
func (r *Repository) path(id string) (string, error) {
	return r.codec.Path(id)
}

// lookup resolves id and stats the result. A missing path is ErrNotFound.
func (r *Repository) lookup(id string) (*entry, error) {
	p, err := r.path(id)
	if err != nil {
		return nil, err
	}
	return r.stat(p)
}

// stat resolves p through any symbolic links and fails with ErrNotFound
// when the resolved target is missing or lies outside the root.
func (r *Repository) stat(p string) (*entry, error) {
	linfo, err := os.Lstat(p)
	if err != nil {
		return nil, r.notFound(p, err)
	}
	if err := r.contain(p); err != nil {
		return nil, err
	}

	e := &entry{path: p, info: linfo}
	if linfo.Mode()&fs.ModeSymlink != 0 {
		info, err := os.Stat(p)
		if err != nil {
			return nil, r.notFound(p, err)
		}
		e.info = info
		e.link = true
	}
	return e, nil
}

// contain checks that p, with every symbolic link on the way resolved, is
// the root or below it.
func (r *Repository) contain(p string) error {
	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		return r.notFound(p, err)
	}
	rel, err := filepath.Rel(r.realRoot, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return r.notFound(p, errOutsideRoot)
	}
	return nil
}

func (r *Repository) exists(p string) bool {
	_, err := os.Lstat(p)
	return err == nil
}

func (r *Repository) objectID(p string) (string, error) {
	return r.codec.ID(p)
}

func (r *Repository) notFound(p string, err error) *cmis.Error {
	rp, rerr := r.codec.RepositoryPath(p)
	if rerr != nil {
		rp = ""
	}
	return &cmis.Error{Code: cmis.ErrNotFound, Message: "object not found", Path: rp, Err: err}
}

func (r *Repository) storageError(p string, err error, format string, args ...any) *cmis.Error {
	e := cmis.WrapError(cmis.ErrStorage, err, format, args...)
	if rp, rerr := r.codec.RepositoryPath(p); rerr == nil {
		e.Path = rp
	}
	return e
}

func (r *Repository) isRoot(e *entry) bool {
	return r.codec.IsRoot(e.path)
}

func (r *Repository) objectState(e *entry) permission.ObjectState {
	s := permission.ObjectState{
		Kind:       e.kind(),
		IsRoot:     r.isRoot(e),
		OSWritable: e.osWritable(),
	}
	if id, err := r.objectID(e.path); err == nil {
		s.ID = id
	}
	if s.Kind == cmis.BaseDocument {
		s.ContentLength = e.info.Size()
	}
	return s
}

// isHidden reports whether a directory entry is excluded from listings.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// listVisible returns the non-hidden entries of dir in name order. Entries
// that vanish between listing and stat are skipped, and so are links leading
// out of the root.
func (r *Repository) listVisible(dir string) ([]*entry, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, r.notFound(dir, err)
		}
		return nil, r.storageError(dir, err, "could not list folder")
	}

	out := make([]*entry, 0, len(des))
	for _, de := range des {
		if isHidden(de.Name()) {
			continue
		}
		p := filepath.Join(dir, de.Name())
		e, err := r.stat(p)
		if err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// isValidName reports whether name can be used as a single path component.
func isValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsRune(name, '/') || strings.ContainsRune(name, os.PathSeparator) {
		return false
	}
	if strings.ContainsRune(name, os.PathListSeparator) {
		return false
	}
	return !strings.ContainsRune(name, 0)
}
