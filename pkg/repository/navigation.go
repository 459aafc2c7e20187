package repository

import (
	"path/filepath"
	"strings"

	"github.com/marmos91/filebridge/pkg/cmis"
	"github.com/marmos91/filebridge/pkg/cmis/identity"
)

// GetChildren lists the visible entries of a folder, one page at a time.
//
// NumItems counts every visible entry regardless of paging. Fails with
// ErrNotFound if folderID is not a folder.
func (r *Repository) GetChildren(cc *cmis.CallContext, folderID string, opts ChildrenOptions) (result *cmis.ObjectInFolderList, err error) {
	defer r.observe(cc, "getChildren")(&err)

	userReadOnly, err := r.checkUser(cc, false)
	if err != nil {
		return nil, err
	}

	filter := cmis.ParseFilter(opts.Filter)
	pg := &pager{page: newPage(opts.MaxItems, opts.SkipCount)}

	folder, err := r.lookup(folderID)
	if err != nil {
		return nil, err
	}
	if !folder.isDir() {
		return nil, cmis.NewError(cmis.ErrNotFound, "not a folder")
	}

	if err := r.compileInfoOnly(cc, folder, userReadOnly); err != nil {
		return nil, err
	}

	children, err := r.listVisible(folder.path)
	if err != nil {
		return nil, err
	}

	result = &cmis.ObjectInFolderList{Objects: []*cmis.ObjectInFolder{}}
	for _, child := range children {
		if !pg.next() {
			continue
		}

		obj, err := r.compile(cc, child, compileOptions{
			filter:       filter,
			actions:      opts.IncludeAllowableActions,
			userReadOnly: userReadOnly,
		})
		if err != nil {
			return nil, err
		}

		oif := &cmis.ObjectInFolder{Object: obj}
		if opts.IncludePathSegment {
			oif.PathSegment = child.name()
		}
		result.Objects = append(result.Objects, oif)
	}

	result.HasMoreItems = pg.hasMore
	result.NumItems = pg.count
	return result, nil
}

// GetDescendants returns the subtree below a folder down to opts.Depth.
func (r *Repository) GetDescendants(cc *cmis.CallContext, folderID string, opts DescendantsOptions) (result []*cmis.ObjectInFolderContainer, err error) {
	defer r.observe(cc, "getDescendants")(&err)
	return r.descendants(cc, folderID, opts, false)
}

// GetFolderTree is GetDescendants restricted to folders.
func (r *Repository) GetFolderTree(cc *cmis.CallContext, folderID string, opts DescendantsOptions) (result []*cmis.ObjectInFolderContainer, err error) {
	defer r.observe(cc, "getFolderTree")(&err)
	return r.descendants(cc, folderID, opts, true)
}

func (r *Repository) descendants(cc *cmis.CallContext, folderID string, opts DescendantsOptions, foldersOnly bool) ([]*cmis.ObjectInFolderContainer, error) {
	userReadOnly, err := r.checkUser(cc, false)
	if err != nil {
		return nil, err
	}

	depth := defaultDepth
	if opts.Depth != nil {
		depth = *opts.Depth
	}
	if depth == 0 {
		return nil, cmis.NewError(cmis.ErrInvalidArgument, "depth must not be 0")
	}
	if depth < -1 {
		depth = -1
	}

	folder, err := r.lookup(folderID)
	if err != nil {
		return nil, err
	}
	if !folder.isDir() {
		return nil, cmis.NewError(cmis.ErrNotFound, "not a folder")
	}

	if err := r.compileInfoOnly(cc, folder, userReadOnly); err != nil {
		return nil, err
	}

	g := &gatherer{
		repo:        r,
		cc:          cc,
		foldersOnly: foldersOnly,
		pathSegment: opts.IncludePathSegment,
		compile: compileOptions{
			filter:       cmis.ParseFilter(opts.Filter),
			actions:      opts.IncludeAllowableActions,
			userReadOnly: userReadOnly,
		},
	}
	return g.gather(folder.path, depth)
}

// gatherer collects a descendants tree depth first.
type gatherer struct {
	repo        *Repository
	cc          *cmis.CallContext
	foldersOnly bool
	pathSegment bool
	compile     compileOptions
}

// gather lists dir and recurses into subfolders while depth allows. depth -1
// is unbounded. Symbolic links to directories are listed but not followed,
// which keeps the walk finite.
func (g *gatherer) gather(dir string, depth int) ([]*cmis.ObjectInFolderContainer, error) {
	if err := g.cc.Ctx().Err(); err != nil {
		return nil, err
	}

	children, err := g.repo.listVisible(dir)
	if err != nil {
		return nil, err
	}

	out := []*cmis.ObjectInFolderContainer{}
	for _, child := range children {
		if g.foldersOnly && !child.isDir() {
			continue
		}

		obj, err := g.repo.compile(g.cc, child, g.compile)
		if err != nil {
			return nil, err
		}

		oif := &cmis.ObjectInFolder{Object: obj}
		if g.pathSegment {
			oif.PathSegment = child.name()
		}

		node := &cmis.ObjectInFolderContainer{Object: oif, Children: []*cmis.ObjectInFolderContainer{}}
		if depth != 1 && child.isDir() && !child.link {
			node.Children, err = g.gather(child.path, depth-1)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, node)
	}
	return out, nil
}

// GetObjectParents returns the parent folder of an object. The root has no
// parents and yields an empty list.
func (r *Repository) GetObjectParents(cc *cmis.CallContext, objectID string, opts ParentsOptions) (result []*cmis.ObjectParent, err error) {
	defer r.observe(cc, "getObjectParents")(&err)
	return r.parents(cc, objectID, opts)
}

func (r *Repository) parents(cc *cmis.CallContext, objectID string, opts ParentsOptions) ([]*cmis.ObjectParent, error) {
	userReadOnly, err := r.checkUser(cc, false)
	if err != nil {
		return nil, err
	}

	filter := cmis.ParseFilter(opts.Filter)

	p, err := r.path(objectID)
	if err != nil {
		return nil, err
	}

	if r.codec.IsRoot(p) {
		return []*cmis.ObjectParent{}, nil
	}

	obj, err := r.stat(p)
	if err != nil {
		return nil, err
	}
	if err := r.compileInfoOnly(cc, obj, userReadOnly); err != nil {
		return nil, err
	}

	parent, err := r.stat(filepath.Dir(obj.path))
	if err != nil {
		return nil, err
	}

	data, err := r.compile(cc, parent, compileOptions{
		filter:       filter,
		actions:      opts.IncludeAllowableActions,
		userReadOnly: userReadOnly,
	})
	if err != nil {
		return nil, err
	}

	op := &cmis.ObjectParent{Object: data}
	if opts.IncludeRelativePathSegment {
		op.RelativePathSegment = obj.name()
	}
	return []*cmis.ObjectParent{op}, nil
}

// GetFolderParent returns the parent of a folder. Asking for the parent of
// the root fails with ErrInvalidArgument.
func (r *Repository) GetFolderParent(cc *cmis.CallContext, folderID, filter string) (result *cmis.ObjectData, err error) {
	defer r.observe(cc, "getFolderParent")(&err)

	parents, err := r.parents(cc, folderID, ParentsOptions{Filter: filter})
	if err != nil {
		return nil, err
	}
	if len(parents) == 0 {
		return nil, cmis.NewError(cmis.ErrInvalidArgument, "the root folder has no parent")
	}
	return parents[0].Object, nil
}

// GetObjectByPath resolves a repository path such as "/docs/a.txt".
func (r *Repository) GetObjectByPath(cc *cmis.CallContext, repoPath string, opts ObjectOptions) (result *cmis.ObjectData, err error) {
	defer r.observe(cc, "getObjectByPath")(&err)

	userReadOnly, err := r.checkUser(cc, false)
	if err != nil {
		return nil, err
	}

	filter := cmis.ParseFilter(opts.Filter)

	if !strings.HasPrefix(repoPath, "/") {
		return nil, cmis.NewError(cmis.ErrInvalidArgument, "invalid folder path: '%s'", repoPath)
	}

	// Encoding then decoding canonicalizes the path and rejects escapes.
	p, err := r.path(identity.Encode(repoPath))
	if err != nil {
		return nil, err
	}

	e, err := r.stat(p)
	if err != nil {
		return nil, cmis.WrapError(cmis.ErrNotFound, err, "path doesn't exist: '%s'", repoPath)
	}

	return r.compile(cc, e, compileOptions{
		filter:       filter,
		actions:      opts.IncludeAllowableActions,
		acl:          opts.IncludeACL,
		userReadOnly: userReadOnly,
	})
}
