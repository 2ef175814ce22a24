package plugins

import (
	"fmt"

	"github.com/yourusername/refinery/internal/catalog"
	"github.com/yourusername/refinery/internal/config"
)

// RegisterCollaboratorPlugins discovers YAML and Go collaborator
// definitions under the project's collaborator directory and registers them
// with the catalog. YAML definitions become parameterized variants of the
// base collaborator they name; Go definitions are bound directly.
func RegisterCollaboratorPlugins(cat *catalog.Catalog, cfg *config.Config) error {
	if cat == nil || cfg == nil {
		return nil
	}
	dir := cfg.CollaboratorDir()
	yamlDefs, err := LoadDefinitionDir(dir)
	if err != nil {
		return err
	}
	seen := make(map[string]string)
	for _, file := range yamlDefs {
		def := file.Definition
		key := def.Role + "/" + def.ID
		if existing, ok := seen[key]; ok {
			return fmt.Errorf("plugin: duplicate collaborator %s (%s and %s)", key, existing, file.Path)
		}
		seen[key] = file.Path
		defCopy := def
		role := catalog.Role(def.Role)
		factory := func(params catalog.Params) (any, error) {
			return cat.Resolve(role, defCopy.Base, mergeParams(defCopy.Params, params))
		}
		if err := cat.Register(role, def.ID, factory); err != nil {
			return fmt.Errorf("plugin: register %s from %s: %w", key, file.Path, err)
		}
	}
	goCollabs, err := LoadGoCollaboratorDir(dir)
	if err != nil {
		return err
	}
	for _, collab := range goCollabs {
		key := string(collab.Role) + "/" + collab.ID
		if existing, ok := seen[key]; ok {
			return fmt.Errorf("plugin: duplicate collaborator %s (%s and %s)", key, existing, collab.Path)
		}
		seen[key] = collab.Path
		impl := collab.Impl
		factory := func(catalog.Params) (any, error) {
			return impl, nil
		}
		if err := cat.Register(collab.Role, collab.ID, factory); err != nil {
			return fmt.Errorf("plugin: register %s from %s: %w", key, collab.Path, err)
		}
	}
	return nil
}

// mergeParams overlays call-site params on the definition's defaults.
func mergeParams(base map[string]any, overrides catalog.Params) catalog.Params {
	if len(base) == 0 && len(overrides) == 0 {
		return nil
	}
	merged := make(catalog.Params, len(base)+len(overrides))
	for key, value := range base {
		merged[key] = value
	}
	for key, value := range overrides {
		merged[key] = value
	}
	return merged
}
