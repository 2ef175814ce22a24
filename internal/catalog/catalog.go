// Package catalog maintains named collaborator factories and assembles
// complete collaborator sets for the solver loop.
package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/yourusername/refinery/internal/solver"
)

// Role identifies which loop slot a collaborator fills.
type Role string

const (
	RoleSeeds      Role = "seeds"
	RoleTension    Role = "tension"
	RoleTransition Role = "transition"
	RolePatterns   Role = "patterns"
	RoleOperators  Role = "operators"
)

// Roles lists every role in assembly order.
var Roles = []Role{RoleSeeds, RoleTension, RoleTransition, RolePatterns, RoleOperators}

// Valid reports whether the role is one of the five loop slots.
func (r Role) Valid() bool {
	switch r {
	case RoleSeeds, RoleTension, RoleTransition, RolePatterns, RoleOperators:
		return true
	}
	return false
}

// Params carries factory configuration (opaque to the catalog).
type Params map[string]any

// Factory constructs a collaborator with the provided parameters. The
// product must implement the interface its role demands; Assemble checks.
type Factory func(Params) (any, error)

// Catalog maintains known collaborator factories keyed by role and name.
type Catalog struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{factories: map[string]Factory{}}
}

func key(role Role, name string) string {
	return string(role) + "/" + name
}

// Register installs a factory. Returns an error if the role is unknown or
// the role/name pair already exists.
func (c *Catalog) Register(role Role, name string, factory Factory) error {
	if !role.Valid() {
		return fmt.Errorf("catalog: unknown role %q", role)
	}
	if name == "" {
		return fmt.Errorf("catalog: name is required for role %s", role)
	}
	if factory == nil {
		return fmt.Errorf("catalog: factory is required for %s", key(role, name))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	id := key(role, name)
	if _, exists := c.factories[id]; exists {
		return fmt.Errorf("catalog: %s already registered", id)
	}
	c.factories[id] = factory
	return nil
}

// MustRegister panics if registration fails.
func (c *Catalog) MustRegister(role Role, name string, factory Factory) {
	if err := c.Register(role, name, factory); err != nil {
		panic(err)
	}
}

// Resolve constructs a collaborator by role and name.
func (c *Catalog) Resolve(role Role, name string, params Params) (any, error) {
	c.mu.RLock()
	factory, ok := c.factories[key(role, name)]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("catalog: unknown %s collaborator %q", role, name)
	}
	product, err := factory(params)
	if err != nil {
		return nil, fmt.Errorf("catalog: build %s: %w", key(role, name), err)
	}
	if product == nil {
		return nil, fmt.Errorf("catalog: factory %s returned nil", key(role, name))
	}
	return product, nil
}

// IDs returns a sorted list of registered role/name identifiers.
func (c *Catalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.factories))
	for id := range c.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Selection names one collaborator plus its factory parameters.
type Selection struct {
	Name   string
	Params Params
}

// Spec names a full collaborator set, one selection per role.
type Spec struct {
	Seeds      Selection
	Tension    Selection
	Transition Selection
	Patterns   Selection
	Operators  Selection
}

func (s Spec) selection(role Role) Selection {
	switch role {
	case RoleSeeds:
		return s.Seeds
	case RoleTension:
		return s.Tension
	case RoleTransition:
		return s.Transition
	case RolePatterns:
		return s.Patterns
	default:
		return s.Operators
	}
}

// Assemble resolves every role named by the spec and type-checks the
// products against the solver interfaces.
func (c *Catalog) Assemble(spec Spec) (solver.Collaborators, error) {
	var collab solver.Collaborators
	for _, role := range Roles {
		sel := spec.selection(role)
		if sel.Name == "" {
			return solver.Collaborators{}, fmt.Errorf("catalog: %s selection is required", role)
		}
		product, err := c.Resolve(role, sel.Name, sel.Params)
		if err != nil {
			return solver.Collaborators{}, err
		}
		if err := bind(&collab, role, sel.Name, product); err != nil {
			return solver.Collaborators{}, err
		}
	}
	if err := collab.Validate(); err != nil {
		return solver.Collaborators{}, err
	}
	return collab, nil
}

func bind(collab *solver.Collaborators, role Role, name string, product any) error {
	switch role {
	case RoleSeeds:
		impl, ok := product.(solver.SeedGenerator)
		if !ok {
			return bindErr(role, name, product)
		}
		collab.Seeds = impl
	case RoleTension:
		impl, ok := product.(solver.TensionEvaluator)
		if !ok {
			return bindErr(role, name, product)
		}
		collab.Tension = impl
	case RoleTransition:
		impl, ok := product.(solver.StateTransition)
		if !ok {
			return bindErr(role, name, product)
		}
		collab.Transition = impl
	case RolePatterns:
		impl, ok := product.(solver.PatternExtractor)
		if !ok {
			return bindErr(role, name, product)
		}
		collab.Patterns = impl
	case RoleOperators:
		impl, ok := product.(solver.OperatorGenerator)
		if !ok {
			return bindErr(role, name, product)
		}
		collab.Operators = impl
	}
	return nil
}

func bindErr(role Role, name string, product any) error {
	return fmt.Errorf("catalog: %s %q (%T) does not implement the %s contract", role, name, product, role)
}
