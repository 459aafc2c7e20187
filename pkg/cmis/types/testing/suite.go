// Package testing provides a conformance suite for types.Store implementations.
package testing

import (
	"context"
	"testing"

	"github.com/marmos91/filebridge/pkg/cmis"
	"github.com/marmos91/filebridge/pkg/cmis/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// StoreTestSuite runs the same checks against any types.Store.
type StoreTestSuite struct {
	// NewStore returns an empty store. Reopen, when set, returns a store over
	// the same backing data as the previous NewStore call after it was closed.
	NewStore func(t *testing.T) types.Store
	Reopen   func(t *testing.T) types.Store
}

// Run executes the suite.
func (suite *StoreTestSuite) Run(t *testing.T) {
	t.Run("EmptyStore", suite.testEmptyStore)
	t.Run("LoadPreservesOrder", suite.testLoadPreservesOrder)
	t.Run("CatalogReplay", suite.testCatalogReplay)
	t.Run("CancelledContext", suite.testCancelledContext)
	if suite.Reopen != nil {
		t.Run("Persistence", suite.testPersistence)
	}
}

func invoiceType() *cmis.TypeDefinition {
	return &cmis.TypeDefinition{
		ID:          "invoice",
		ParentID:    cmis.TypeDocument,
		DisplayName: "Invoice",
		PropertyDefinitions: map[string]*cmis.PropertyDefinition{
			"inv:number": {
				ID:           "inv:number",
				QueryName:    "inv:number",
				Type:         cmis.PropertyTypeString,
				Updatability: cmis.ReadWrite,
			},
		},
	}
}

func creditNoteType() *cmis.TypeDefinition {
	return &cmis.TypeDefinition{ID: "creditnote", ParentID: "invoice"}
}

func (suite *StoreTestSuite) testEmptyStore(t *testing.T) {
	store := suite.NewStore(t)
	defer store.Close()

	defs, err := store.LoadTypes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, defs)
}

func (suite *StoreTestSuite) testLoadPreservesOrder(t *testing.T) {
	ctx := context.Background()
	store := suite.NewStore(t)
	defer store.Close()

	require.NoError(t, store.SaveType(ctx, &cmis.TypeDefinition{ID: "z-first", ParentID: cmis.TypeFolder}))
	require.NoError(t, store.SaveType(ctx, &cmis.TypeDefinition{ID: "a-second", ParentID: "z-first"}))

	defs, err := store.LoadTypes(ctx)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "z-first", defs[0].ID)
	assert.Equal(t, "a-second", defs[1].ID)
}

func (suite *StoreTestSuite) testCatalogReplay(t *testing.T) {
	ctx := context.Background()
	store := suite.NewStore(t)

	catalog, err := types.NewCatalogWithStore(ctx, store)
	require.NoError(t, err)
	_, err = catalog.Register(ctx, invoiceType())
	require.NoError(t, err)
	_, err = catalog.Register(ctx, creditNoteType())
	require.NoError(t, err)

	replayed, err := types.NewCatalogWithStore(ctx, store)
	require.NoError(t, err)
	defer replayed.Close()

	credit := replayed.Get("creditnote")
	require.NotNil(t, credit)
	assert.Equal(t, cmis.BaseDocument, credit.BaseKind)
	assert.Contains(t, credit.PropertyDefinitions, "inv:number")
	assert.True(t, credit.PropertyDefinitions["inv:number"].Inherited)
}

func (suite *StoreTestSuite) testCancelledContext(t *testing.T) {
	store := suite.NewStore(t)
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.LoadTypes(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.SaveType(ctx, invoiceType()), context.Canceled)
}

func (suite *StoreTestSuite) testPersistence(t *testing.T) {
	ctx := context.Background()
	store := suite.NewStore(t)
	require.NoError(t, store.SaveType(ctx, invoiceType()))
	require.NoError(t, store.Close())

	reopened := suite.Reopen(t)
	defer reopened.Close()

	defs, err := reopened.LoadTypes(ctx)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "invoice", defs[0].ID)
	assert.Equal(t, cmis.TypeDocument, defs[0].ParentID)
	assert.Equal(t, cmis.ReadWrite, defs[0].PropertyDefinitions["inv:number"].Updatability)
}
