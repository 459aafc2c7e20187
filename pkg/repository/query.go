package repository

import (
	"regexp"
	"strings"

	"github.com/marmos91/filebridge/pkg/cmis"
)

// inFolderQuery is the only statement shape Query understands:
//
//	SELECT <columns> FROM <type> WHERE IN_FOLDER('<folder id>')
var inFolderQuery = regexp.MustCompile(`(?is)^select\s+.+\s+from\s+(\S*).*\s+where\s+in_folder\('(.*)'\)$`)

// ParseQuery extracts the type id and folder id of an IN_FOLDER statement.
func ParseQuery(statement string) (typeID, folderID string, err error) {
	m := inFolderQuery.FindStringSubmatch(strings.TrimSpace(statement))
	if m == nil {
		return "", "", cmis.NewError(cmis.ErrInvalidArgument, "invalid or unsupported query")
	}
	return m[1], m[2], nil
}

// Query lists the documents or folders (by the base kind of the queried
// type) directly inside one folder. Results are paged like GetChildren and
// every property carries the query name the queried type defines for it.
func (r *Repository) Query(cc *cmis.CallContext, statement string, opts QueryOptions) (result *cmis.ObjectList, err error) {
	defer r.observe(cc, "query")(&err)

	userReadOnly, err := r.checkUser(cc, false)
	if err != nil {
		return nil, err
	}

	typeID, folderID, err := ParseQuery(statement)
	if err != nil {
		return nil, err
	}

	def := r.catalog.Get(typeID)
	if def == nil {
		return nil, cmis.NewError(cmis.ErrInvalidArgument, "unknown type '%s'", typeID)
	}
	queryFiles := def.BaseKind == cmis.BaseDocument

	if folderID == "" {
		return nil, cmis.NewError(cmis.ErrInvalidArgument, "invalid folder id")
	}

	pg := &pager{page: newPage(opts.MaxItems, opts.SkipCount)}

	folder, err := r.lookup(folderID)
	if err != nil {
		return nil, err
	}
	if !folder.isDir() {
		return nil, cmis.NewError(cmis.ErrInvalidArgument, "not a folder")
	}

	hits, err := r.listVisible(folder.path)
	if err != nil {
		return nil, err
	}

	result = &cmis.ObjectList{Objects: []*cmis.ObjectData{}}
	for _, hit := range hits {
		if hit.isDir() == queryFiles {
			continue
		}
		if !pg.next() {
			continue
		}

		obj, err := r.compile(cc, hit, compileOptions{
			actions:      opts.IncludeAllowableActions,
			userReadOnly: userReadOnly,
		})
		if err != nil {
			return nil, err
		}

		for _, p := range obj.Properties.List() {
			pd, ok := def.PropertyDefinitions[p.ID]
			if !ok {
				return nil, cmis.NewError(cmis.ErrRuntime, "property %s is not defined by type %s", p.ID, def.ID)
			}
			p.QueryName = pd.QueryName
		}

		result.Objects = append(result.Objects, obj)
	}

	result.HasMoreItems = pg.hasMore
	result.NumItems = pg.count
	return result, nil
}
