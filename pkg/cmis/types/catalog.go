// Package types implements the type catalog: the registry of object type
// definitions shared by all repositories.
//
// The catalog starts with the built-in folder and document types. Custom
// types are registered once per id and inherit every property definition of
// their parent. A registered type is fully built before it becomes visible,
// so concurrent readers never observe a partially populated definition.
//
// Definitions returned by the catalog are shared and must be treated as
// read-only.
package types

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/marmos91/filebridge/internal/logger"
	"github.com/marmos91/filebridge/pkg/cmis"
)

// Store persists custom type registrations.
type Store interface {
	// LoadTypes returns the stored definitions in registration order.
	LoadTypes(ctx context.Context) ([]*cmis.TypeDefinition, error)

	// SaveType persists a definition as it was passed to Register.
	SaveType(ctx context.Context, def *cmis.TypeDefinition) error

	Close() error
}

// Catalog is a concurrency-safe registry of type definitions.
type Catalog struct {
	mu    sync.RWMutex
	types map[string]*cmis.TypeDefinition
	order []string
	store Store
}

// NewCatalog creates a catalog holding only the built-in types.
func NewCatalog() *Catalog {
	c := &Catalog{types: make(map[string]*cmis.TypeDefinition)}
	for _, t := range []*cmis.TypeDefinition{FolderType(), DocumentType()} {
		c.types[t.ID] = t
		c.order = append(c.order, t.ID)
	}
	return c
}

// NewCatalogWithStore creates a catalog and replays every definition held by
// store. Subsequent registrations are persisted to store.
func NewCatalogWithStore(ctx context.Context, store Store) (*Catalog, error) {
	c := NewCatalog()
	if store == nil {
		return c, nil
	}

	defs, err := store.LoadTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load type definitions: %w", err)
	}
	for _, def := range defs {
		if _, err := c.register(def); err != nil {
			return nil, fmt.Errorf("failed to restore type %q: %w", def.ID, err)
		}
	}

	c.store = store
	logger.Debug("Restored %d custom type(s)", len(defs))
	return c, nil
}

// Register adds a custom type.
//
// The stored definition is an independent copy of def extended with copies
// of all parent property definitions marked inherited. When the catalog has
// a Store, def is persisted before the type becomes visible.
//
// Parameters:
//   - ctx: checked before the catalog is locked and passed to the Store
//   - def: the new type; BaseKind is taken from the parent
//
// Returns:
//   - *cmis.TypeDefinition: the registered definition
//   - error: ErrInvalidArgument when the id or parent id is empty, the parent
//     is unknown, the id is already registered, or a property definition is
//     nil; ErrStorage when persisting fails
//
// Thread safety: the definition is built under the catalog write lock, so
// readers never observe a partially registered type.
func (c *Catalog) Register(ctx context.Context, def *cmis.TypeDefinition) (*cmis.TypeDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	built, err := c.build(def)
	if err != nil {
		return nil, err
	}

	if c.store != nil {
		if err := c.store.SaveType(ctx, def); err != nil {
			return nil, cmis.WrapError(cmis.ErrStorage, err, "could not persist type %q", def.ID)
		}
	}

	c.insert(built)
	logger.Debug("Added type '%s'", built.ID)
	return built, nil
}

func (c *Catalog) register(def *cmis.TypeDefinition) (*cmis.TypeDefinition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	built, err := c.build(def)
	if err != nil {
		return nil, err
	}
	c.insert(built)
	return built, nil
}

// build must be called with mu held.
func (c *Catalog) build(def *cmis.TypeDefinition) (*cmis.TypeDefinition, error) {
	if def == nil {
		return nil, cmis.NewError(cmis.ErrInvalidArgument, "type must be set")
	}
	if strings.TrimSpace(def.ID) == "" {
		return nil, cmis.NewError(cmis.ErrInvalidArgument, "type must have a valid id")
	}
	if strings.TrimSpace(def.ParentID) == "" {
		return nil, cmis.NewError(cmis.ErrInvalidArgument, "type must have a valid parent id")
	}
	if _, exists := c.types[def.ID]; exists {
		return nil, cmis.NewError(cmis.ErrInvalidArgument, "type %q already exists", def.ID)
	}

	parent, ok := c.types[def.ParentID]
	if !ok {
		return nil, cmis.NewError(cmis.ErrInvalidArgument, "parent type %q doesn't exist", def.ParentID)
	}
	for id, pd := range def.PropertyDefinitions {
		if pd == nil {
			return nil, cmis.NewError(cmis.ErrInvalidArgument, "property definition %q must be set", id)
		}
	}

	built := def.Clone()
	built.BaseKind = parent.BaseKind
	if built.QueryName == "" {
		built.QueryName = built.ID
	}
	if built.PropertyDefinitions == nil {
		built.PropertyDefinitions = make(map[string]*cmis.PropertyDefinition)
	}
	for id, pd := range built.PropertyDefinitions {
		if pd.ID == "" {
			pd.ID = id
		}
		if pd.QueryName == "" {
			pd.QueryName = pd.ID
		}
	}

	for id, pd := range parent.PropertyDefinitions {
		inherited := *pd
		inherited.Inherited = true
		built.PropertyDefinitions[id] = &inherited
	}

	return built, nil
}

func (c *Catalog) insert(t *cmis.TypeDefinition) {
	c.types[t.ID] = t
	c.order = append(c.order, t.ID)
}

// Get returns the definition of typeID, or nil.
func (c *Catalog) Get(typeID string) *cmis.TypeDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.types[typeID]
}

// List returns every definition in registration order.
func (c *Catalog) List() []*cmis.TypeDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*cmis.TypeDefinition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.types[id])
	}
	return out
}

// Definition returns typeID or fails with ErrNotFound.
func (c *Catalog) Definition(typeID string) (*cmis.TypeDefinition, error) {
	t := c.Get(typeID)
	if t == nil {
		return nil, cmis.NewError(cmis.ErrNotFound, "type '%s' is unknown", typeID)
	}
	return t, nil
}

// children must be called with mu held.
func (c *Catalog) children(typeID string) []*cmis.TypeDefinition {
	var out []*cmis.TypeDefinition
	for _, id := range c.order {
		if t := c.types[id]; t.ParentID == typeID {
			out = append(out, t)
		}
	}
	return out
}

// Children returns a page of the direct subtypes of typeID. An empty typeID
// lists the base types. maxItems nil or negative means unbounded.
func (c *Catalog) Children(typeID string, includePropertyDefinitions bool, maxItems *int, skipCount int) (*cmis.TypeDefinitionList, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if typeID != "" {
		if _, ok := c.types[typeID]; !ok {
			return nil, cmis.NewError(cmis.ErrNotFound, "type '%s' is unknown", typeID)
		}
	}

	all := c.children(typeID)
	skip := max(skipCount, 0)
	limit := len(all)
	if maxItems != nil && *maxItems >= 0 {
		limit = *maxItems
	}

	result := &cmis.TypeDefinitionList{NumItems: len(all)}
	for i, t := range all {
		if i < skip {
			continue
		}
		if len(result.Types) >= limit {
			result.HasMoreItems = true
			break
		}
		result.Types = append(result.Types, view(t, includePropertyDefinitions))
	}
	return result, nil
}

// Descendants returns the subtype tree of typeID. An empty typeID starts from
// the base types. depth nil means unbounded; 0 and values below -1 are invalid.
func (c *Catalog) Descendants(typeID string, depth *int, includePropertyDefinitions bool) ([]*cmis.TypeDefinitionContainer, error) {
	d := -1
	if depth != nil {
		d = *depth
	}
	if d == 0 || d < -1 {
		return nil, cmis.NewError(cmis.ErrInvalidArgument, "invalid depth %d", d)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if typeID != "" {
		if _, ok := c.types[typeID]; !ok {
			return nil, cmis.NewError(cmis.ErrNotFound, "type '%s' is unknown", typeID)
		}
	}

	return c.descend(typeID, d, includePropertyDefinitions), nil
}

func (c *Catalog) descend(typeID string, depth int, withProps bool) []*cmis.TypeDefinitionContainer {
	var out []*cmis.TypeDefinitionContainer
	for _, t := range c.children(typeID) {
		node := &cmis.TypeDefinitionContainer{Type: view(t, withProps)}
		if depth != 1 {
			node.Children = c.descend(t.ID, depth-1, withProps)
		}
		out = append(out, node)
	}
	return out
}

func view(t *cmis.TypeDefinition, withProps bool) *cmis.TypeDefinition {
	if withProps {
		return t
	}
	return t.WithoutPropertyDefinitions()
}

// Close releases the backing store, if any.
func (c *Catalog) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}

// String lists the registered types as "[id (base)]".
func (c *Catalog) String() string {
	var sb strings.Builder
	for _, t := range c.List() {
		fmt.Fprintf(&sb, "[%s (%s)]", t.ID, t.BaseKind.TypeID())
	}
	return sb.String()
}
