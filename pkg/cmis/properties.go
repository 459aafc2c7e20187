package cmis

import (
	"time"
)

// Property ids of the base folder and document types.
const (
	PropName                     = "cmis:name"
	PropDescription              = "cmis:description"
	PropObjectID                 = "cmis:objectId"
	PropBaseTypeID               = "cmis:baseTypeId"
	PropObjectTypeID             = "cmis:objectTypeId"
	PropSecondaryObjectTypeIDs   = "cmis:secondaryObjectTypeIds"
	PropCreatedBy                = "cmis:createdBy"
	PropCreationDate             = "cmis:creationDate"
	PropLastModifiedBy           = "cmis:lastModifiedBy"
	PropLastModificationDate     = "cmis:lastModificationDate"
	PropChangeToken              = "cmis:changeToken"
	PropParentID                 = "cmis:parentId"
	PropPath                     = "cmis:path"
	PropAllowedChildObjectTypeID = "cmis:allowedChildObjectTypeIds"

	PropIsImmutable               = "cmis:isImmutable"
	PropIsLatestVersion           = "cmis:isLatestVersion"
	PropIsMajorVersion            = "cmis:isMajorVersion"
	PropIsLatestMajorVersion      = "cmis:isLatestMajorVersion"
	PropIsPrivateWorkingCopy      = "cmis:isPrivateWorkingCopy"
	PropVersionLabel              = "cmis:versionLabel"
	PropVersionSeriesID           = "cmis:versionSeriesId"
	PropIsVersionSeriesCheckedOut = "cmis:isVersionSeriesCheckedOut"
	PropVersionSeriesCheckedOutBy = "cmis:versionSeriesCheckedOutBy"
	PropVersionSeriesCheckedOutID = "cmis:versionSeriesCheckedOutId"
	PropCheckinComment            = "cmis:checkinComment"
	PropContentStreamLength       = "cmis:contentStreamLength"
	PropContentStreamMimeType     = "cmis:contentStreamMimeType"
	PropContentStreamFileName     = "cmis:contentStreamFileName"
	PropContentStreamID           = "cmis:contentStreamId"
)

// Property is a single named value list. A nil Values slice is the "not set"
// value.
type Property struct {
	ID        string
	QueryName string
	Type      PropertyType
	Values    []any
}

// Value returns the first value or nil.
func (p *Property) Value() any {
	if p == nil || len(p.Values) == 0 {
		return nil
	}
	return p.Values[0]
}

// NewProperty builds a property holding value. A nil value yields an unset
// property.
func NewProperty(id string, typ PropertyType, value any) *Property {
	p := &Property{ID: id, Type: typ}
	if value != nil {
		p.Values = []any{value}
	}
	return p
}

func NewStringProperty(id, value string) *Property {
	return NewProperty(id, PropertyTypeString, value)
}

func NewIDProperty(id, value string) *Property {
	return NewProperty(id, PropertyTypeID, value)
}

func NewBooleanProperty(id string, value bool) *Property {
	return NewProperty(id, PropertyTypeBoolean, value)
}

func NewIntegerProperty(id string, value int64) *Property {
	return NewProperty(id, PropertyTypeInteger, value)
}

func NewDateTimeProperty(id string, value time.Time) *Property {
	return NewProperty(id, PropertyTypeDateTime, value)
}

// Properties is an ordered set of properties keyed by id.
type Properties struct {
	list []*Property
	byID map[string]*Property
}

// NewProperties builds a property set. Later entries replace earlier ones
// with the same id.
func NewProperties(props ...*Property) *Properties {
	p := &Properties{}
	for _, prop := range props {
		p.Add(prop)
	}
	return p
}

// Add inserts or replaces prop.
func (p *Properties) Add(prop *Property) {
	if prop == nil {
		return
	}
	if p.byID == nil {
		p.byID = make(map[string]*Property)
	}
	if old, ok := p.byID[prop.ID]; ok {
		for i := range p.list {
			if p.list[i] == old {
				p.list[i] = prop
				break
			}
		}
	} else {
		p.list = append(p.list, prop)
	}
	p.byID[prop.ID] = prop
}

// Get returns the property with the given id or nil.
func (p *Properties) Get(id string) *Property {
	if p == nil {
		return nil
	}
	return p.byID[id]
}

// Has reports whether a property with the given id is present.
func (p *Properties) Has(id string) bool {
	return p.Get(id) != nil
}

// List returns the properties in insertion order.
func (p *Properties) List() []*Property {
	if p == nil {
		return nil
	}
	return p.list
}

func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.list)
}

// String returns the first value of a string or id property.
func (p *Properties) String(id string) (string, bool) {
	s, ok := p.Get(id).Value().(string)
	return s, ok
}

// Filter is a set of query names restricting compiled properties. A nil
// Filter selects every property.
type Filter map[string]struct{}

// ParseFilter splits a comma separated filter. An empty filter or one
// containing "*" selects everything. A non-empty filter always includes the
// object id, object type id and base type id.
func ParseFilter(filter string) Filter {
	f := Filter{}
	for _, part := range splitList(filter) {
		if part == "*" {
			return nil
		}
		f[part] = struct{}{}
	}
	if len(f) == 0 {
		return nil
	}

	f[PropObjectID] = struct{}{}
	f[PropObjectTypeID] = struct{}{}
	f[PropBaseTypeID] = struct{}{}
	return f
}

// Clone returns an independent copy of f.
func (f Filter) Clone() Filter {
	if f == nil {
		return nil
	}
	c := make(Filter, len(f))
	for k := range f {
		c[k] = struct{}{}
	}
	return c
}
