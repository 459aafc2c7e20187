package repository

import (
	"sort"

	"github.com/marmos91/filebridge/pkg/cmis"
)

// checkNewProperties validates the property set of a create call and returns
// the type the new object will have.
func (r *Repository) checkNewProperties(props *cmis.Properties) (*cmis.TypeDefinition, error) {
	if props == nil {
		return nil, cmis.NewError(cmis.ErrInvalidArgument, "properties must be set")
	}

	name, _ := props.String(cmis.PropName)
	if !isValidName(name) {
		return nil, cmis.NewError(cmis.ErrNameConstraintViolation, "name is not valid: '%s'", name)
	}

	typeID, _ := props.String(cmis.PropObjectTypeID)
	if typeID == "" {
		return nil, cmis.NewError(cmis.ErrNameConstraintViolation, "type id is not set")
	}

	def, err := r.catalog.Definition(typeID)
	if err != nil {
		return nil, err
	}

	if err := checkTypeProperties(props, def, true); err != nil {
		return nil, err
	}
	if err := checkRequired(props, def); err != nil {
		return nil, err
	}
	return def, nil
}

// checkCopyProperties validates the optional property set of a copy. A nil
// set is accepted as is. The target type defaults to sourceTypeID and must
// be a document type.
func (r *Repository) checkCopyProperties(props *cmis.Properties, sourceTypeID string) error {
	if props == nil {
		return nil
	}

	if props.Has(cmis.PropName) {
		name, _ := props.String(cmis.PropName)
		if !isValidName(name) {
			return cmis.NewError(cmis.ErrNameConstraintViolation, "name is not valid: '%s'", name)
		}
	}

	typeID, _ := props.String(cmis.PropObjectTypeID)
	if typeID == "" {
		typeID = sourceTypeID
	}

	def, err := r.catalog.Definition(typeID)
	if err != nil {
		return err
	}
	if def.BaseKind != cmis.BaseDocument {
		return cmis.NewError(cmis.ErrInvalidArgument, "target type must be a document type")
	}

	if err := checkTypeProperties(props, def, true); err != nil {
		return err
	}
	return checkRequired(props, def)
}

// checkUpdateProperties validates the property set of an update against the
// object's current type.
func (r *Repository) checkUpdateProperties(props *cmis.Properties, typeID string) error {
	if props == nil {
		return cmis.NewError(cmis.ErrInvalidArgument, "properties must be set")
	}

	if props.Has(cmis.PropName) {
		name, _ := props.String(cmis.PropName)
		if !isValidName(name) {
			return cmis.NewError(cmis.ErrNameConstraintViolation, "name is not valid: '%s'", name)
		}
	}

	def, err := r.catalog.Definition(typeID)
	if err != nil {
		return err
	}
	return checkTypeProperties(props, def, false)
}

// checkTypeProperties rejects properties the type does not define or that
// may not be written in this phase.
func checkTypeProperties(props *cmis.Properties, def *cmis.TypeDefinition, isCreate bool) error {
	for _, p := range props.List() {
		pd, ok := def.PropertyDefinitions[p.ID]
		if !ok {
			return cmis.NewError(cmis.ErrConstraint, "property '%s' is unknown", p.ID)
		}
		if pd.Updatability == cmis.ReadOnly {
			return cmis.NewError(cmis.ErrConstraint, "property '%s' is readonly", p.ID)
		}
		if !isCreate && pd.Updatability == cmis.OnCreate {
			return cmis.NewError(cmis.ErrConstraint, "property '%s' cannot be updated", p.ID)
		}
	}
	return nil
}

// checkRequired fails if a required, client-settable property is absent.
func checkRequired(props *cmis.Properties, def *cmis.TypeDefinition) error {
	ids := make([]string, 0, len(def.PropertyDefinitions))
	for id := range def.PropertyDefinitions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		pd := def.PropertyDefinitions[id]
		if pd.Required && pd.Updatability != cmis.ReadOnly && !props.Has(id) {
			return cmis.NewError(cmis.ErrConstraint, "property '%s' is required", id)
		}
	}
	return nil
}
