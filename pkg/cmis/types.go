// Package cmis holds the data model shared by the repository engine: object
// data, type definitions, allowable actions, access control lists and the
// error taxonomy.
package cmis

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// RootID is the identifier of every repository's root folder.
const RootID = "@root@"

// Version selects the protocol revision whose semantics a call expects.
type Version int

const (
	Version11 Version = iota
	Version10
)

func (v Version) String() string {
	if v == Version10 {
		return "1.0"
	}
	return "1.1"
}

// BaseKind is the closed set of base types an object can have.
type BaseKind int

const (
	BaseFolder BaseKind = iota + 1
	BaseDocument
)

const (
	TypeFolder   = "cmis:folder"
	TypeDocument = "cmis:document"
)

// TypeID returns the id of the built-in type for k.
func (k BaseKind) TypeID() string {
	switch k {
	case BaseFolder:
		return TypeFolder
	case BaseDocument:
		return TypeDocument
	default:
		return ""
	}
}

func (k BaseKind) String() string {
	return k.TypeID()
}

// ParseBaseKind maps a built-in type id to its kind.
func ParseBaseKind(typeID string) (BaseKind, error) {
	switch typeID {
	case TypeFolder:
		return BaseFolder, nil
	case TypeDocument:
		return BaseDocument, nil
	}
	return 0, fmt.Errorf("unknown base type %q", typeID)
}

// PropertyType is the value type of a property.
type PropertyType int

const (
	PropertyTypeString PropertyType = iota
	PropertyTypeID
	PropertyTypeBoolean
	PropertyTypeInteger
	PropertyTypeDateTime
	PropertyTypeDecimal
	PropertyTypeURI
	PropertyTypeHTML
)

var propertyTypeNames = map[PropertyType]string{
	PropertyTypeString:   "string",
	PropertyTypeID:       "id",
	PropertyTypeBoolean:  "boolean",
	PropertyTypeInteger:  "integer",
	PropertyTypeDateTime: "datetime",
	PropertyTypeDecimal:  "decimal",
	PropertyTypeURI:      "uri",
	PropertyTypeHTML:     "html",
}

func (t PropertyType) String() string {
	if s, ok := propertyTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

// ParsePropertyType maps a lower-case name to a PropertyType.
func ParsePropertyType(s string) (PropertyType, error) {
	for t, name := range propertyTypeNames {
		if strings.EqualFold(name, s) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown property type %q", s)
}

// Cardinality of a property.
type Cardinality int

const (
	Single Cardinality = iota
	Multi
)

// Updatability says when a property may be written by a client.
type Updatability int

const (
	ReadOnly Updatability = iota
	OnCreate
	ReadWrite
)

func (u Updatability) String() string {
	switch u {
	case ReadOnly:
		return "readonly"
	case OnCreate:
		return "oncreate"
	case ReadWrite:
		return "readwrite"
	default:
		return "unknown"
	}
}

// ParseUpdatability maps a name to an Updatability.
func ParseUpdatability(s string) (Updatability, error) {
	switch strings.ToLower(s) {
	case "readonly":
		return ReadOnly, nil
	case "oncreate":
		return OnCreate, nil
	case "readwrite", "":
		return ReadWrite, nil
	}
	return 0, fmt.Errorf("unknown updatability %q", s)
}

// PropertyDefinition describes one property of a type.
type PropertyDefinition struct {
	ID           string       `json:"id"`
	LocalName    string       `json:"local_name,omitempty"`
	QueryName    string       `json:"query_name"`
	DisplayName  string       `json:"display_name,omitempty"`
	Description  string       `json:"description,omitempty"`
	Type         PropertyType `json:"type"`
	Cardinality  Cardinality  `json:"cardinality"`
	Updatability Updatability `json:"updatability"`
	Required     bool         `json:"required"`
	Inherited    bool         `json:"inherited"`
	Queryable    bool         `json:"queryable"`
	Orderable    bool         `json:"orderable"`
}

// TypeDefinition describes an object type.
type TypeDefinition struct {
	ID                       string                         `json:"id"`
	LocalName                string                         `json:"local_name,omitempty"`
	LocalNamespace           string                         `json:"local_namespace,omitempty"`
	QueryName                string                         `json:"query_name,omitempty"`
	DisplayName              string                         `json:"display_name,omitempty"`
	Description              string                         `json:"description,omitempty"`
	BaseKind                 BaseKind                       `json:"base_kind"`
	ParentID                 string                         `json:"parent_id,omitempty"`
	Creatable                bool                           `json:"creatable"`
	Fileable                 bool                           `json:"fileable"`
	Queryable                bool                           `json:"queryable"`
	FulltextIndexed          bool                           `json:"fulltext_indexed"`
	IncludedInSupertypeQuery bool                           `json:"included_in_supertype_query"`
	ControllableACL          bool                           `json:"controllable_acl"`
	ControllablePolicy       bool                           `json:"controllable_policy"`
	Versionable              bool                           `json:"versionable"`
	ContentStreamAllowed     bool                           `json:"content_stream_allowed"`
	PropertyDefinitions      map[string]*PropertyDefinition `json:"property_definitions"`
}

// Clone returns a deep copy of t.
func (t *TypeDefinition) Clone() *TypeDefinition {
	if t == nil {
		return nil
	}
	c := *t
	c.PropertyDefinitions = make(map[string]*PropertyDefinition, len(t.PropertyDefinitions))
	for id, pd := range t.PropertyDefinitions {
		if pd == nil {
			continue
		}
		cp := *pd
		c.PropertyDefinitions[id] = &cp
	}
	return &c
}

// WithoutPropertyDefinitions returns a shallow copy with no property definitions.
func (t *TypeDefinition) WithoutPropertyDefinitions() *TypeDefinition {
	c := *t
	c.PropertyDefinitions = nil
	return &c
}

// TypeDefinitionList is a page of type definitions.
type TypeDefinitionList struct {
	Types        []*TypeDefinition
	HasMoreItems bool
	NumItems     int
}

// TypeDefinitionContainer is a node of a type hierarchy.
type TypeDefinitionContainer struct {
	Type     *TypeDefinition
	Children []*TypeDefinitionContainer
}

// ObjectData is the compiled view of a single object.
type ObjectData struct {
	Properties       *Properties
	AllowableActions AllowableActions
	ACL              *ACL
}

// ID returns the object id property, if present.
func (o *ObjectData) ID() string {
	if o == nil {
		return ""
	}
	id, _ := o.Properties.String(PropObjectID)
	return id
}

// Name returns the name property, if present.
func (o *ObjectData) Name() string {
	if o == nil {
		return ""
	}
	name, _ := o.Properties.String(PropName)
	return name
}

// ObjectInfo is a summary of an object collected alongside ObjectData for
// bindings that need to build links without re-reading properties.
type ObjectInfo struct {
	ID                   string
	Name                 string
	TypeID               string
	BaseKind             BaseKind
	CreatedBy            string
	CreationDate         time.Time
	LastModificationDate time.Time
	ContentType          string
	FileName             string
	HasACL               bool
	HasContent           bool
	HasParent            bool
	IsCurrentVersion     bool
	SupportsDescendants  bool
	SupportsFolderTree   bool
	Object               *ObjectData
}

// ObjectInFolder is an object together with its path segment.
type ObjectInFolder struct {
	Object      *ObjectData
	PathSegment string
}

// ObjectInFolderList is a page of children.
type ObjectInFolderList struct {
	Objects      []*ObjectInFolder
	HasMoreItems bool
	NumItems     int
}

// ObjectInFolderContainer is a node of a descendants tree. Children is never
// nil: documents and nodes past the requested depth carry an empty list.
type ObjectInFolderContainer struct {
	Object   *ObjectInFolder
	Children []*ObjectInFolderContainer
}

// ObjectParent is a parent folder and the child's name within it.
type ObjectParent struct {
	Object              *ObjectData
	RelativePathSegment string
}

// ObjectList is a page of query results.
type ObjectList struct {
	Objects      []*ObjectData
	HasMoreItems bool
	NumItems     int
}

// ContentStream is a document's content. The caller must close Stream.
type ContentStream struct {
	FileName string
	Length   int64
	MimeType string
	Stream   io.ReadCloser

	// Partial is set when only a byte range was requested.
	Partial bool
}

// VersioningState requested on document creation.
type VersioningState int

const (
	VersioningNone VersioningState = iota
	VersioningMajor
	VersioningMinor
	VersioningCheckedOut
)

func (v VersioningState) String() string {
	switch v {
	case VersioningNone:
		return "none"
	case VersioningMajor:
		return "major"
	case VersioningMinor:
		return "minor"
	case VersioningCheckedOut:
		return "checkedout"
	default:
		return "unknown"
	}
}

// BulkUpdateResult reports one successful entry of a bulk update.
type BulkUpdateResult struct {
	ID          string
	NewID       string
	ChangeToken string
}

// FailedToDelete lists the objects a tree deletion could not remove.
type FailedToDelete struct {
	IDs []string
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// SplitList splits a comma separated list and drops empty entries.
func SplitList(s string) []string {
	return splitList(s)
}
