package repository

import (
	"path/filepath"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/marmos91/filebridge/pkg/cmis"
	"github.com/marmos91/filebridge/pkg/cmis/permission"
)

// unknownUser fills the creator and modifier properties; the filesystem
// does not track identities.
const unknownUser = "<unknown>"

// defaultMimeType is reported when content sniffing fails.
const defaultMimeType = "application/octet-stream"

// compileOptions selects what compile produces beyond the properties.
type compileOptions struct {
	filter       cmis.Filter
	actions      bool
	acl          bool
	userReadOnly bool
}

// compile builds the object view of e. The filter is copied, never mutated.
//
// When the call context requests object infos, the summary is handed to it.
func (r *Repository) compile(cc *cmis.CallContext, e *entry, opts compileOptions) (*cmis.ObjectData, error) {
	info := &cmis.ObjectInfo{}

	props, err := r.compileProperties(cc, e, opts.filter, info)
	if err != nil {
		return nil, err
	}

	obj := &cmis.ObjectData{Properties: props}

	if opts.actions {
		obj.AllowableActions = permission.AllowableActions(r.objectState(e), opts.userReadOnly)
	}
	if opts.acl {
		obj.ACL = r.acl.ACL(r.objectState(e))
	}

	if cc != nil && cc.ObjectInfoRequired {
		info.Object = obj
		cc.AddObjectInfo(info)
	}

	return obj, nil
}

// compileInfoOnly feeds the object info side channel for e without
// building a result. It is a no-op unless the caller asked for infos.
func (r *Repository) compileInfoOnly(cc *cmis.CallContext, e *entry, userReadOnly bool) error {
	if cc == nil || !cc.ObjectInfoRequired {
		return nil
	}
	_, err := r.compile(cc, e, compileOptions{userReadOnly: userReadOnly})
	return err
}

// propertyBuilder adds properties of one base type, honoring a filter.
type propertyBuilder struct {
	def    *cmis.TypeDefinition
	filter cmis.Filter
	props  *cmis.Properties
	err    error
}

func (b *propertyBuilder) add(id string, typ cmis.PropertyType, value any) {
	b.addFunc(id, typ, func() any { return value })
}

// addFunc evaluates value only if the property survives the filter.
func (b *propertyBuilder) addFunc(id string, typ cmis.PropertyType, value func() any) {
	if b.err != nil {
		return
	}

	pd, ok := b.def.PropertyDefinitions[id]
	if !ok {
		b.err = cmis.NewError(cmis.ErrRuntime, "unknown property %s for type %s", id, b.def.ID)
		return
	}

	if b.filter != nil && pd.QueryName != "" {
		if _, ok := b.filter[pd.QueryName]; !ok {
			return
		}
		delete(b.filter, pd.QueryName)
	}

	b.props.Add(cmis.NewProperty(id, typ, value()))
}

func (r *Repository) compileProperties(cc *cmis.CallContext, e *entry, filter cmis.Filter, info *cmis.ObjectInfo) (*cmis.Properties, error) {
	kind := e.kind()
	def := r.catalog.Get(kind.TypeID())
	if def == nil {
		return nil, cmis.NewError(cmis.ErrRuntime, "base type %s is not registered", kind.TypeID())
	}

	id, err := r.objectID(e.path)
	if err != nil {
		return nil, err
	}

	b := &propertyBuilder{def: def, filter: filter.Clone(), props: cmis.NewProperties()}

	name := e.name()
	modified := e.info.ModTime()
	version := cmis.Version11
	if cc != nil {
		version = cc.Version
	}

	info.ID = id
	info.Name = name
	info.TypeID = kind.TypeID()
	info.BaseKind = kind
	info.CreatedBy = unknownUser
	info.CreationDate = modified
	info.LastModificationDate = modified
	info.HasACL = true
	info.IsCurrentVersion = true

	b.add(cmis.PropObjectID, cmis.PropertyTypeID, id)
	b.add(cmis.PropName, cmis.PropertyTypeString, name)
	b.add(cmis.PropCreatedBy, cmis.PropertyTypeString, unknownUser)
	b.add(cmis.PropLastModifiedBy, cmis.PropertyTypeString, unknownUser)
	b.add(cmis.PropCreationDate, cmis.PropertyTypeDateTime, modified)
	b.add(cmis.PropLastModificationDate, cmis.PropertyTypeDateTime, modified)
	b.add(cmis.PropChangeToken, cmis.PropertyTypeString, nil)

	if version != cmis.Version10 {
		b.add(cmis.PropDescription, cmis.PropertyTypeString, nil)
		b.add(cmis.PropSecondaryObjectTypeIDs, cmis.PropertyTypeID, nil)
	}

	b.add(cmis.PropBaseTypeID, cmis.PropertyTypeID, kind.TypeID())
	b.add(cmis.PropObjectTypeID, cmis.PropertyTypeID, kind.TypeID())

	switch kind {
	case cmis.BaseFolder:
		info.SupportsDescendants = true
		info.SupportsFolderTree = true

		repoPath, err := r.codec.RepositoryPath(e.path)
		if err != nil {
			return nil, err
		}
		b.add(cmis.PropPath, cmis.PropertyTypeString, repoPath)

		if r.isRoot(e) {
			b.add(cmis.PropParentID, cmis.PropertyTypeID, nil)
		} else {
			parentID, err := r.objectID(filepath.Dir(e.path))
			if err != nil {
				return nil, err
			}
			b.add(cmis.PropParentID, cmis.PropertyTypeID, parentID)
			info.HasParent = true
		}

		b.add(cmis.PropAllowedChildObjectTypeID, cmis.PropertyTypeID, nil)

	case cmis.BaseDocument:
		info.HasParent = true

		b.add(cmis.PropIsImmutable, cmis.PropertyTypeBoolean, false)
		b.add(cmis.PropIsLatestVersion, cmis.PropertyTypeBoolean, true)
		b.add(cmis.PropIsMajorVersion, cmis.PropertyTypeBoolean, true)
		b.add(cmis.PropIsLatestMajorVersion, cmis.PropertyTypeBoolean, true)
		b.add(cmis.PropVersionLabel, cmis.PropertyTypeString, name)
		b.add(cmis.PropVersionSeriesID, cmis.PropertyTypeID, id)
		b.add(cmis.PropIsVersionSeriesCheckedOut, cmis.PropertyTypeBoolean, false)
		b.add(cmis.PropVersionSeriesCheckedOutBy, cmis.PropertyTypeString, nil)
		b.add(cmis.PropVersionSeriesCheckedOutID, cmis.PropertyTypeID, nil)
		b.add(cmis.PropCheckinComment, cmis.PropertyTypeString, "")
		if version != cmis.Version10 {
			b.add(cmis.PropIsPrivateWorkingCopy, cmis.PropertyTypeBoolean, false)
		}

		if size := e.info.Size(); size == 0 {
			b.add(cmis.PropContentStreamLength, cmis.PropertyTypeInteger, nil)
			b.add(cmis.PropContentStreamMimeType, cmis.PropertyTypeString, nil)
			b.add(cmis.PropContentStreamFileName, cmis.PropertyTypeString, nil)
		} else {
			mime := sync.OnceValue(func() string { return detectMimeType(e.path) })

			b.add(cmis.PropContentStreamLength, cmis.PropertyTypeInteger, size)
			b.addFunc(cmis.PropContentStreamMimeType, cmis.PropertyTypeString, func() any { return mime() })
			b.add(cmis.PropContentStreamFileName, cmis.PropertyTypeString, name)

			info.HasContent = true
			info.FileName = name
			if cc != nil && cc.ObjectInfoRequired {
				info.ContentType = mime()
			}
		}

		b.add(cmis.PropContentStreamID, cmis.PropertyTypeID, nil)
	}

	if b.err != nil {
		return nil, b.err
	}
	return b.props, nil
}

// detectMimeType sniffs the content of the file at p.
func detectMimeType(p string) string {
	m, err := mimetype.DetectFile(p)
	if err != nil {
		return defaultMimeType
	}
	return m.String()
}
