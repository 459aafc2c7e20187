package cmis

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClassification(t *testing.T) {
	cause := errors.New("disk on fire")
	err := fmt.Errorf("create: %w", WrapError(ErrStorage, cause, "could not create file"))

	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, ErrStorage, code)
	assert.True(t, IsCode(err, ErrStorage))
	assert.False(t, IsCode(err, ErrNotFound))
	assert.ErrorIs(t, err, cause)

	_, ok = CodeOf(cause)
	assert.False(t, ok)
}

func TestErrorMessage(t *testing.T) {
	e := &Error{Code: ErrNotFound, Message: "object not found", Path: "/docs/a.txt"}
	assert.Equal(t, "object not found: /docs/a.txt", e.Error())
	assert.Equal(t, "objectNotFound", e.Code.String())
}

func TestParseFilter(t *testing.T) {
	assert.Nil(t, ParseFilter(""))
	assert.Nil(t, ParseFilter("  "))
	assert.Nil(t, ParseFilter("cmis:name,*"))

	f := ParseFilter("cmis:name, cmis:path ,")
	assert.Len(t, f, 5)
	for _, q := range []string{PropName, PropPath, PropObjectID, PropObjectTypeID, PropBaseTypeID} {
		assert.Contains(t, f, q)
	}

	c := f.Clone()
	delete(c, PropName)
	assert.Contains(t, f, PropName, "clone must be independent")
}

func TestPropertiesReplaceKeepsOrder(t *testing.T) {
	p := NewProperties(
		NewStringProperty(PropName, "a"),
		NewIDProperty(PropObjectTypeID, TypeDocument),
	)
	p.Add(NewStringProperty(PropName, "b"))

	require.Equal(t, 2, p.Len())
	assert.Equal(t, PropName, p.List()[0].ID)
	name, ok := p.String(PropName)
	assert.True(t, ok)
	assert.Equal(t, "b", name)

	var nilProps *Properties
	assert.Nil(t, nilProps.Get(PropName))
	assert.Equal(t, 0, nilProps.Len())
}

func TestUnsetPropertyHasNoValue(t *testing.T) {
	p := NewProperty(PropChangeToken, PropertyTypeString, nil)
	assert.Nil(t, p.Values)
	assert.Nil(t, p.Value())
}

func TestAllowableActionsList(t *testing.T) {
	aa := AllowableActions{ActionGetProperties: {}, ActionGetACL: {}}
	assert.True(t, aa.Has(ActionGetACL))
	assert.False(t, aa.Has(ActionDeleteObject))
	assert.Equal(t, []Action{ActionGetACL, ActionGetProperties}, aa.List())
}

func TestObjectInfoOnlyCollectedWhenRequired(t *testing.T) {
	infos := NewObjectInfoMap()
	cc := NewCallContext(nil, "alice", "secret")
	cc.ObjectInfos = infos

	cc.AddObjectInfo(&ObjectInfo{ID: "x"})
	assert.Equal(t, 0, infos.Len())

	cc.ObjectInfoRequired = true
	cc.AddObjectInfo(&ObjectInfo{ID: "x"})
	assert.Equal(t, 1, infos.Len())
	assert.NotNil(t, infos.GetObjectInfo("x"))
	assert.NotEmpty(t, cc.RequestID)
}

func TestBaseKind(t *testing.T) {
	k, err := ParseBaseKind(TypeFolder)
	require.NoError(t, err)
	assert.Equal(t, BaseFolder, k)
	assert.Equal(t, TypeDocument, BaseDocument.TypeID())

	_, err = ParseBaseKind("cmis:policy")
	assert.Error(t, err)
}
