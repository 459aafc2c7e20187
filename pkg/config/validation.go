package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/marmos91/filebridge/pkg/cmis"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// Log level normalization is handled in ApplyDefaults; validation accepts
// both upper- and lowercase levels.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	return validateCustomRules(cfg)
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	ids := make(map[string]bool)
	for i, repo := range cfg.Repositories {
		if strings.TrimSpace(repo.ID) == "" {
			return fmt.Errorf("repositories[%d]: id must not be blank", i)
		}
		if ids[repo.ID] {
			return fmt.Errorf("repositories[%d]: duplicate repository id %q", i, repo.ID)
		}
		ids[repo.ID] = true
	}

	users := make(map[string]bool)
	for i, login := range cfg.Logins {
		name := strings.TrimSpace(login.Username)
		if name == "" {
			return fmt.Errorf("logins[%d]: username must not be blank", i)
		}
		if users[name] {
			return fmt.Errorf("logins[%d]: duplicate username %q", i, name)
		}
		users[name] = true
	}

	if cfg.Types.Store == "badger" {
		path, _ := cfg.Types.Badger["db_path"].(string)
		inMemory, _ := cfg.Types.Badger["in_memory"].(bool)
		if path == "" && !inMemory {
			return fmt.Errorf("types.badger: db_path is required when store is badger")
		}
	}

	return validateTypeDefinitions(cfg.Types.Definitions)
}

// validateTypeDefinitions checks that every parent is a built-in type or a
// type defined earlier in the list.
func validateTypeDefinitions(defs []TypeDefinitionConfig) error {
	known := map[string]bool{cmis.TypeFolder: true, cmis.TypeDocument: true}
	for i, def := range defs {
		if known[def.ID] {
			return fmt.Errorf("types.definitions[%d]: duplicate type id %q", i, def.ID)
		}
		if !known[def.Parent] {
			return fmt.Errorf("types.definitions[%d]: parent %q must be a built-in type or defined earlier", i, def.Parent)
		}
		known[def.ID] = true

		props := make(map[string]bool)
		for j, prop := range def.Properties {
			if props[prop.ID] {
				return fmt.Errorf("types.definitions[%d].properties[%d]: duplicate property id %q", i, j, prop.ID)
			}
			props[prop.ID] = true
		}
	}
	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
