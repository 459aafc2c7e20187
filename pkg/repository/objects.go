package repository

import (
	"github.com/marmos91/filebridge/pkg/cmis"
	"github.com/marmos91/filebridge/pkg/cmis/permission"
)

// GetObject compiles the object named by objectID. Without versioning the
// version series id of a document is its object id, so versionSeriesID is
// accepted in its place.
func (r *Repository) GetObject(cc *cmis.CallContext, objectID, versionSeriesID string, opts ObjectOptions) (result *cmis.ObjectData, err error) {
	defer r.observe(cc, "getObject")(&err)
	return r.getObject(cc, objectID, versionSeriesID, opts)
}

func (r *Repository) getObject(cc *cmis.CallContext, objectID, versionSeriesID string, opts ObjectOptions) (*cmis.ObjectData, error) {
	userReadOnly, err := r.checkUser(cc, false)
	if err != nil {
		return nil, err
	}

	if objectID == "" && versionSeriesID == "" {
		return nil, cmis.NewError(cmis.ErrInvalidArgument, "object id must be set")
	}
	if objectID == "" {
		objectID = versionSeriesID
	}

	e, err := r.lookup(objectID)
	if err != nil {
		return nil, err
	}

	return r.compile(cc, e, compileOptions{
		filter:       cmis.ParseFilter(opts.Filter),
		actions:      opts.IncludeAllowableActions,
		acl:          opts.IncludeACL,
		userReadOnly: userReadOnly,
	})
}

// GetProperties returns only the properties of an object.
func (r *Repository) GetProperties(cc *cmis.CallContext, objectID, filter string) (result *cmis.Properties, err error) {
	defer r.observe(cc, "getProperties")(&err)

	obj, err := r.getObject(cc, objectID, "", ObjectOptions{Filter: filter})
	if err != nil {
		return nil, err
	}
	return obj.Properties, nil
}

// GetAllVersions returns the single version every object has.
func (r *Repository) GetAllVersions(cc *cmis.CallContext, objectID, versionSeriesID, filter string, includeAllowableActions bool) (result []*cmis.ObjectData, err error) {
	defer r.observe(cc, "getAllVersions")(&err)

	obj, err := r.getObject(cc, objectID, versionSeriesID, ObjectOptions{
		Filter:                  filter,
		IncludeAllowableActions: includeAllowableActions,
	})
	if err != nil {
		return nil, err
	}
	return []*cmis.ObjectData{obj}, nil
}

// GetObjectOfLatestVersion is GetObject; every object is its own latest version.
func (r *Repository) GetObjectOfLatestVersion(cc *cmis.CallContext, objectID, versionSeriesID string, opts ObjectOptions) (result *cmis.ObjectData, err error) {
	defer r.observe(cc, "getObjectOfLatestVersion")(&err)
	return r.getObject(cc, objectID, versionSeriesID, opts)
}

// GetPropertiesOfLatestVersion is GetProperties addressed by version series.
func (r *Repository) GetPropertiesOfLatestVersion(cc *cmis.CallContext, objectID, versionSeriesID, filter string) (result *cmis.Properties, err error) {
	defer r.observe(cc, "getPropertiesOfLatestVersion")(&err)

	obj, err := r.getObject(cc, objectID, versionSeriesID, ObjectOptions{Filter: filter})
	if err != nil {
		return nil, err
	}
	return obj.Properties, nil
}

// GetAllowableActions computes the actions the caller may perform on an object.
func (r *Repository) GetAllowableActions(cc *cmis.CallContext, objectID string) (result cmis.AllowableActions, err error) {
	defer r.observe(cc, "getAllowableActions")(&err)

	userReadOnly, err := r.checkUser(cc, false)
	if err != nil {
		return nil, err
	}

	e, err := r.lookup(objectID)
	if err != nil {
		return nil, err
	}

	return permission.AllowableActions(r.objectState(e), userReadOnly), nil
}

// GetACL returns the access control list of an object.
func (r *Repository) GetACL(cc *cmis.CallContext, objectID string) (result *cmis.ACL, err error) {
	defer r.observe(cc, "getACL")(&err)

	if _, err := r.checkUser(cc, false); err != nil {
		return nil, err
	}

	e, err := r.lookup(objectID)
	if err != nil {
		return nil, err
	}
	return r.acl.ACL(r.objectState(e)), nil
}
