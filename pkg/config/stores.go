package config

import (
	"context"
	"fmt"

	"github.com/marmos91/filebridge/internal/logger"
	"github.com/marmos91/filebridge/pkg/cmis"
	"github.com/marmos91/filebridge/pkg/cmis/types"
	"github.com/marmos91/filebridge/pkg/cmis/types/badger"
	"github.com/marmos91/filebridge/pkg/cmis/types/memory"
	"github.com/mitchellh/mapstructure"
)

// createTypeStore opens the type store selected by cfg.Store.
func createTypeStore(ctx context.Context, cfg *TypesConfig) (types.Store, error) {
	switch cfg.Store {
	case "memory":
		return memory.New(), nil
	case "badger":
		return createBadgerTypeStore(ctx, cfg.Badger)
	default:
		return nil, fmt.Errorf("unknown type store: %q", cfg.Store)
	}
}

// createBadgerTypeStore decodes the badger section and opens the database.
func createBadgerTypeStore(ctx context.Context, options map[string]any) (types.Store, error) {
	var badgerCfg badger.Config
	if err := mapstructure.Decode(options, &badgerCfg); err != nil {
		return nil, fmt.Errorf("invalid badger config: %w", err)
	}

	store, err := badger.New(ctx, badgerCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger type store: %w", err)
	}

	logger.Info("Badger type store opened: path=%s in_memory=%v", badgerCfg.DBPath, badgerCfg.InMemory)
	return store, nil
}

// CreateCatalog opens the configured type store, replays the types it holds
// and registers every configured definition not already present.
//
// The returned catalog owns the store; close it with Catalog.Close.
func CreateCatalog(ctx context.Context, cfg *TypesConfig) (*types.Catalog, error) {
	store, err := createTypeStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	catalog, err := types.NewCatalogWithStore(ctx, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	for _, defCfg := range cfg.Definitions {
		if catalog.Get(defCfg.ID) != nil {
			logger.Debug("Type '%s' already registered", defCfg.ID)
			continue
		}

		def, err := typeDefinition(defCfg)
		if err != nil {
			_ = catalog.Close()
			return nil, err
		}
		if _, err := catalog.Register(ctx, def); err != nil {
			_ = catalog.Close()
			return nil, fmt.Errorf("failed to register type %q: %w", defCfg.ID, err)
		}
	}

	return catalog, nil
}

// typeDefinition converts a configured type into a catalog definition.
func typeDefinition(cfg TypeDefinitionConfig) (*cmis.TypeDefinition, error) {
	def := &cmis.TypeDefinition{
		ID:                       cfg.ID,
		LocalName:                cfg.ID,
		QueryName:                cfg.ID,
		DisplayName:              cfg.DisplayName,
		Description:              cfg.Description,
		ParentID:                 cfg.Parent,
		Creatable:                true,
		Fileable:                 true,
		Queryable:                true,
		IncludedInSupertypeQuery: true,
		ControllableACL:          false,
		PropertyDefinitions:      make(map[string]*cmis.PropertyDefinition, len(cfg.Properties)),
	}
	if def.DisplayName == "" {
		def.DisplayName = cfg.ID
	}

	for _, p := range cfg.Properties {
		propType, err := cmis.ParsePropertyType(p.Type)
		if err != nil {
			return nil, fmt.Errorf("type %q property %q: %w", cfg.ID, p.ID, err)
		}
		updatability, err := cmis.ParseUpdatability(p.Updatability)
		if err != nil {
			return nil, fmt.Errorf("type %q property %q: %w", cfg.ID, p.ID, err)
		}

		pd := &cmis.PropertyDefinition{
			ID:           p.ID,
			LocalName:    p.ID,
			QueryName:    p.QueryName,
			DisplayName:  p.DisplayName,
			Type:         propType,
			Cardinality:  cmis.Single,
			Updatability: updatability,
			Required:     p.Required,
			Queryable:    true,
		}
		if p.Multi {
			pd.Cardinality = cmis.Multi
		}
		if pd.DisplayName == "" {
			pd.DisplayName = p.ID
		}
		def.PropertyDefinitions[p.ID] = pd
	}

	return def, nil
}
