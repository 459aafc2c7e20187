package types

import "github.com/marmos91/filebridge/pkg/cmis"

// Namespace is the local namespace of the built-in types.
const Namespace = "http://filebridge.io/cmis"

type propSpec struct {
	id       string
	typ      cmis.PropertyType
	card     cmis.Cardinality
	upd      cmis.Updatability
	required bool
}

var commonProps = []propSpec{
	{cmis.PropName, cmis.PropertyTypeString, cmis.Single, cmis.ReadWrite, true},
	{cmis.PropDescription, cmis.PropertyTypeString, cmis.Single, cmis.ReadWrite, false},
	{cmis.PropObjectID, cmis.PropertyTypeID, cmis.Single, cmis.ReadOnly, false},
	{cmis.PropBaseTypeID, cmis.PropertyTypeID, cmis.Single, cmis.ReadOnly, false},
	{cmis.PropObjectTypeID, cmis.PropertyTypeID, cmis.Single, cmis.OnCreate, true},
	{cmis.PropSecondaryObjectTypeIDs, cmis.PropertyTypeID, cmis.Multi, cmis.ReadWrite, false},
	{cmis.PropCreatedBy, cmis.PropertyTypeString, cmis.Single, cmis.ReadOnly, false},
	{cmis.PropCreationDate, cmis.PropertyTypeDateTime, cmis.Single, cmis.ReadOnly, false},
	{cmis.PropLastModifiedBy, cmis.PropertyTypeString, cmis.Single, cmis.ReadOnly, false},
	{cmis.PropLastModificationDate, cmis.PropertyTypeDateTime, cmis.Single, cmis.ReadOnly, false},
	{cmis.PropChangeToken, cmis.PropertyTypeString, cmis.Single, cmis.ReadOnly, false},
}

var folderProps = []propSpec{
	{cmis.PropParentID, cmis.PropertyTypeID, cmis.Single, cmis.ReadOnly, false},
	{cmis.PropPath, cmis.PropertyTypeString, cmis.Single, cmis.ReadOnly, false},
	{cmis.PropAllowedChildObjectTypeID, cmis.PropertyTypeID, cmis.Multi, cmis.ReadOnly, false},
}

var documentProps = []propSpec{
	{cmis.PropIsImmutable, cmis.PropertyTypeBoolean, cmis.Single, cmis.ReadOnly, false},
	{cmis.PropIsLatestVersion, cmis.PropertyTypeBoolean, cmis.Single, cmis.ReadOnly, false},
	{cmis.PropIsMajorVersion, cmis.PropertyTypeBoolean, cmis.Single, cmis.ReadOnly, false},
	{cmis.PropIsLatestMajorVersion, cmis.PropertyTypeBoolean, cmis.Single, cmis.ReadOnly, false},
	{cmis.PropIsPrivateWorkingCopy, cmis.PropertyTypeBoolean, cmis.Single, cmis.ReadOnly, false},
	{cmis.PropVersionLabel, cmis.PropertyTypeString, cmis.Single, cmis.ReadOnly, false},
	{cmis.PropVersionSeriesID, cmis.PropertyTypeID, cmis.Single, cmis.ReadOnly, false},
	{cmis.PropIsVersionSeriesCheckedOut, cmis.PropertyTypeBoolean, cmis.Single, cmis.ReadOnly, false},
	{cmis.PropVersionSeriesCheckedOutBy, cmis.PropertyTypeString, cmis.Single, cmis.ReadOnly, false},
	{cmis.PropVersionSeriesCheckedOutID, cmis.PropertyTypeID, cmis.Single, cmis.ReadOnly, false},
	{cmis.PropCheckinComment, cmis.PropertyTypeString, cmis.Single, cmis.ReadOnly, false},
	{cmis.PropContentStreamLength, cmis.PropertyTypeInteger, cmis.Single, cmis.ReadOnly, false},
	{cmis.PropContentStreamMimeType, cmis.PropertyTypeString, cmis.Single, cmis.ReadOnly, false},
	{cmis.PropContentStreamFileName, cmis.PropertyTypeString, cmis.Single, cmis.ReadOnly, false},
	{cmis.PropContentStreamID, cmis.PropertyTypeID, cmis.Single, cmis.ReadOnly, false},
}

// Built-in properties are neither queryable nor orderable: the repository
// supports no ordering and no free-text query.
func addProps(t *cmis.TypeDefinition, specs []propSpec) {
	for _, s := range specs {
		t.PropertyDefinitions[s.id] = &cmis.PropertyDefinition{
			ID:           s.id,
			LocalName:    s.id,
			QueryName:    s.id,
			DisplayName:  s.id,
			Type:         s.typ,
			Cardinality:  s.card,
			Updatability: s.upd,
			Required:     s.required,
		}
	}
}

// FolderType returns a fresh copy of the built-in folder type.
func FolderType() *cmis.TypeDefinition {
	t := &cmis.TypeDefinition{
		ID:                       cmis.TypeFolder,
		LocalName:                "folder",
		LocalNamespace:           Namespace,
		QueryName:                cmis.TypeFolder,
		DisplayName:              "Folder",
		Description:              "Folder",
		BaseKind:                 cmis.BaseFolder,
		Creatable:                true,
		Fileable:                 true,
		IncludedInSupertypeQuery: true,
		PropertyDefinitions:      make(map[string]*cmis.PropertyDefinition),
	}
	addProps(t, commonProps)
	addProps(t, folderProps)
	return t
}

// DocumentType returns a fresh copy of the built-in document type.
func DocumentType() *cmis.TypeDefinition {
	t := &cmis.TypeDefinition{
		ID:                       cmis.TypeDocument,
		LocalName:                "document",
		LocalNamespace:           Namespace,
		QueryName:                cmis.TypeDocument,
		DisplayName:              "Document",
		Description:              "Document",
		BaseKind:                 cmis.BaseDocument,
		Creatable:                true,
		Fileable:                 true,
		IncludedInSupertypeQuery: true,
		ContentStreamAllowed:     true,
		PropertyDefinitions:      make(map[string]*cmis.PropertyDefinition),
	}
	addProps(t, commonProps)
	addProps(t, documentProps)
	return t
}
