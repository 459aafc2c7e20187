package repository

import (
	"github.com/marmos91/filebridge/pkg/cmis"
)

const (
	productName    = "FileBridge Server"
	productVersion = "1.0"
	vendorName     = "FileBridge"
)

// Info describes a repository and what it supports.
type Info struct {
	ID                string
	Name              string
	Description       string
	ProductName       string
	ProductVersion    string
	VendorName        string
	RootFolderID      string
	VersionSupported  cmis.Version
	ThinClientURI     string
	ChangesIncomplete bool

	Capabilities    Capabilities
	ACLCapabilities ACLCapabilities
}

// Capabilities lists the optional features of a repository. Enumerated
// capabilities use their protocol value names.
type Capabilities struct {
	ACL                   string
	AllVersionsSearchable bool
	Changes               string
	ContentStreamUpdates  string
	GetDescendants        bool
	GetFolderTree         bool
	Join                  string
	Multifiling           bool
	PWCSearchable         bool
	PWCUpdatable          bool
	Query                 string
	Renditions            string
	Unfiling              bool
	VersionSpecificFiling bool

	// OrderBy and NewTypeSettableAttributes are only reported to 1.1 callers.
	OrderBy                   string
	NewTypeSettableAttributes *NewTypeSettableAttributes
}

// NewTypeSettableAttributes says which attributes a client could set when
// creating a type. Type creation through the protocol is not offered, so
// every flag is false.
type NewTypeSettableAttributes struct {
	ID                       bool
	LocalName                bool
	LocalNamespace           bool
	DisplayName              bool
	QueryName                bool
	Description              bool
	Creatable                bool
	Fileable                 bool
	Queryable                bool
	FulltextIndexed          bool
	IncludedInSupertypeQuery bool
	ControllablePolicy       bool
	ControllableACL          bool
}

// PermissionDefinition is one permission a repository understands.
type PermissionDefinition struct {
	ID          string
	Description string
}

// PermissionMapping maps an allowable-action key to the permissions it needs.
type PermissionMapping struct {
	Key         string
	Permissions []string
}

// ACLCapabilities describes the access control model of a repository.
type ACLCapabilities struct {
	SupportedPermissions string
	Propagation          string
	Permissions          []PermissionDefinition
	Mappings             []PermissionMapping
}

// Mapping returns the permissions mapped to key, or nil.
func (a ACLCapabilities) Mapping(key string) []string {
	for _, m := range a.Mappings {
		if m.Key == key {
			return m.Permissions
		}
	}
	return nil
}

func newInfo(id string, version cmis.Version) *Info {
	info := &Info{
		ID:                id,
		Name:              id,
		Description:       id,
		ProductName:       productName,
		ProductVersion:    productVersion,
		VendorName:        vendorName,
		RootFolderID:      cmis.RootID,
		VersionSupported:  version,
		ChangesIncomplete: true,
		Capabilities: Capabilities{
			ACL:                  "discover",
			Changes:              "none",
			ContentStreamUpdates: "anytime",
			GetDescendants:       true,
			GetFolderTree:        true,
			Join:                 "none",
			Query:                "metadataonly",
			Renditions:           "none",
		},
		ACLCapabilities: ACLCapabilities{
			SupportedPermissions: "basic",
			Propagation:          "objectonly",
			Permissions: []PermissionDefinition{
				{ID: cmis.PermissionRead, Description: "Read"},
				{ID: cmis.PermissionWrite, Description: "Write"},
				{ID: cmis.PermissionAll, Description: "All"},
			},
			Mappings: permissionMappings(),
		},
	}

	if version != cmis.Version10 {
		info.Capabilities.OrderBy = "none"
		info.Capabilities.NewTypeSettableAttributes = &NewTypeSettableAttributes{}
	}
	return info
}

func permissionMappings() []PermissionMapping {
	table := []struct{ key, perm string }{
		{"canCreateDocument.Folder", cmis.PermissionRead},
		{"canCreateFolder.Folder", cmis.PermissionRead},
		{"canDeleteContent.Document", cmis.PermissionWrite},
		{"canDelete.Object", cmis.PermissionAll},
		{"canDeleteTree.Folder", cmis.PermissionAll},
		{"canGetACL.Object", cmis.PermissionRead},
		{"canGetAllVersions.VersionSeries", cmis.PermissionRead},
		{"canGetChildren.Folder", cmis.PermissionRead},
		{"canGetDescendents.Folder", cmis.PermissionRead},
		{"canGetFolderParent.Object", cmis.PermissionRead},
		{"canGetParents.Folder", cmis.PermissionRead},
		{"canGetProperties.Object", cmis.PermissionRead},
		{"canMove.Object", cmis.PermissionWrite},
		{"canMove.Source", cmis.PermissionRead},
		{"canMove.Target", cmis.PermissionWrite},
		{"canSetContent.Document", cmis.PermissionWrite},
		{"canUpdateProperties.Object", cmis.PermissionWrite},
		{"canViewContent.Object", cmis.PermissionRead},
	}

	out := make([]PermissionMapping, 0, len(table))
	for _, m := range table {
		out = append(out, PermissionMapping{Key: m.key, Permissions: []string{m.perm}})
	}
	return out
}

// GetRepositoryInfo returns the repository description matching the
// caller's protocol version. The result is shared and must not be modified.
func (r *Repository) GetRepositoryInfo(cc *cmis.CallContext) (result *Info, err error) {
	defer r.observe(cc, "getRepositoryInfo")(&err)

	if _, err := r.checkUser(cc, false); err != nil {
		return nil, err
	}

	if cc.Version == cmis.Version10 {
		return r.info10, nil
	}
	return r.info11, nil
}

// GetTypeChildren pages through the direct subtypes of typeID. An empty
// typeID lists the base types.
func (r *Repository) GetTypeChildren(cc *cmis.CallContext, typeID string, includePropertyDefinitions bool, maxItems *int, skipCount int) (result *cmis.TypeDefinitionList, err error) {
	defer r.observe(cc, "getTypeChildren")(&err)

	if _, err := r.checkUser(cc, false); err != nil {
		return nil, err
	}
	return r.catalog.Children(typeID, includePropertyDefinitions, maxItems, skipCount)
}

// GetTypeDescendants returns the subtype tree of typeID.
func (r *Repository) GetTypeDescendants(cc *cmis.CallContext, typeID string, depth *int, includePropertyDefinitions bool) (result []*cmis.TypeDefinitionContainer, err error) {
	defer r.observe(cc, "getTypeDescendants")(&err)

	if _, err := r.checkUser(cc, false); err != nil {
		return nil, err
	}
	return r.catalog.Descendants(typeID, depth, includePropertyDefinitions)
}

// GetTypeDefinition returns a single type definition.
func (r *Repository) GetTypeDefinition(cc *cmis.CallContext, typeID string) (result *cmis.TypeDefinition, err error) {
	defer r.observe(cc, "getTypeDefinition")(&err)

	if _, err := r.checkUser(cc, false); err != nil {
		return nil, err
	}
	return r.catalog.Definition(typeID)
}
