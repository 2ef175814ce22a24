// Package plugins loads user-supplied collaborators from a project's
// .refinery/collaborators directory. YAML files declare parameterized
// variants of built-in collaborators; Go files are interpreted with yaegi
// and supply collaborator behavior directly.
package plugins

import (
	"fmt"
	"strings"

	"github.com/yourusername/refinery/internal/catalog"
)

// Definition describes one collaborator variant loaded from YAML.
//
// The struct mirrors the on-disk schema under
// .refinery/collaborators/*.yaml and is intentionally narrow so definitions
// can be validated before they reach the catalog.
type Definition struct {
	ID          string         `yaml:"id"`
	Role        string         `yaml:"role"`
	Base        string         `yaml:"base"`
	Description string         `yaml:"description,omitempty"`
	Params      map[string]any `yaml:"params,omitempty"`
}

// Normalized returns a trimmed copy of the definition.
func (def Definition) Normalized() Definition {
	clone := Definition{
		ID:          strings.TrimSpace(def.ID),
		Role:        strings.TrimSpace(strings.ToLower(def.Role)),
		Base:        strings.TrimSpace(def.Base),
		Description: strings.TrimSpace(def.Description),
	}
	if len(def.Params) > 0 {
		clone.Params = make(map[string]any, len(def.Params))
		for key, value := range def.Params {
			trimmed := strings.TrimSpace(key)
			if trimmed == "" {
				continue
			}
			clone.Params[trimmed] = value
		}
	}
	return clone
}

// Validate ensures the definition is well-formed and names a known role.
func (def Definition) Validate() error {
	normalized := def.Normalized()
	if normalized.ID == "" {
		return fmt.Errorf("plugin: id is required")
	}
	if !catalog.Role(normalized.Role).Valid() {
		return fmt.Errorf("plugin %s: unknown role %q", normalized.ID, def.Role)
	}
	if normalized.Base == "" {
		return fmt.Errorf("plugin %s: base collaborator is required", normalized.ID)
	}
	return nil
}

// DefinitionFile pairs a parsed definition with its on-disk source.
type DefinitionFile struct {
	Definition Definition
	Path       string
}
