// internal/config/config.go
//
// This package handles configuration and the .refinery directory structure.
// Every project that uses refinery gets a .refinery/ folder created in its
// working directory.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// RefineryDir is the name of the directory we create in each project.
	RefineryDir = ".refinery"

	defaultCollaboratorDir = "collaborators"
)

const defaultProjectConfigYAML = `# refinery project configuration
version: 1

# Run defaults used when flags do not override them.
run:
  initial_state: 0.0
  input: 1.0

# One collaborator per role. Built-in names:
#   seeds:      counter | random (params: seed)
#   tension:    scalar
#   transition: additive | scaled (params: factor)
#   patterns:   fingerprint
#   operators:  uuid | counter
collaborators:
  seeds:
    name: counter
  tension:
    name: scalar
  transition:
    name: additive
  patterns:
    name: fingerprint
  operators:
    name: uuid

# Extra collaborators are loaded from .refinery/collaborators.
# plugins:
#   dir: collaborators
`

// RoleSelection names one collaborator and its parameters.
type RoleSelection struct {
	Name   string         `yaml:"name"`
	Params map[string]any `yaml:"params,omitempty"`
}

// CollaboratorsConfig binds a collaborator to each loop role.
type CollaboratorsConfig struct {
	Seeds      RoleSelection `yaml:"seeds"`
	Tension    RoleSelection `yaml:"tension"`
	Transition RoleSelection `yaml:"transition"`
	Patterns   RoleSelection `yaml:"patterns"`
	Operators  RoleSelection `yaml:"operators"`
}

// RunConfig captures run defaults.
type RunConfig struct {
	InitialState float64 `yaml:"initial_state"`
	Input        float64 `yaml:"input"`
}

// PluginConfig locates the collaborator plugin directory, relative to
// .refinery/ unless absolute.
type PluginConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// ProjectConfig models .refinery/config.yaml.
type ProjectConfig struct {
	Version       int                 `yaml:"version"`
	Run           RunConfig           `yaml:"run"`
	Collaborators CollaboratorsConfig `yaml:"collaborators"`
	Plugins       PluginConfig        `yaml:"plugins,omitempty"`
}

// Config holds the runtime configuration for refinery.
type Config struct {
	// ProjectDir is the directory where the user ran `refinery` from.
	ProjectDir string

	// RefineryProjectDir is ProjectDir/.refinery.
	RefineryProjectDir string

	Project ProjectConfig
}

// InitRefineryDir creates the .refinery directory structure in the given
// project directory.
//
// Structure created:
// .refinery/
// ├── state/          <- Persisted run snapshots
// ├── logs/           <- Process log
// ├── journal/        <- Cycle journal
// └── collaborators/  <- Plugin collaborator definitions
func InitRefineryDir(projectDir string) error {
	refineryDir := filepath.Join(projectDir, RefineryDir)
	dirs := []string{
		filepath.Join(refineryDir, "state"),
		filepath.Join(refineryDir, "logs"),
		filepath.Join(refineryDir, "journal"),
		filepath.Join(refineryDir, defaultCollaboratorDir),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return ensureProjectConfig(filepath.Join(refineryDir, "config.yaml"))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644); err != nil {
		return fmt.Errorf("config: write default config: %w", err)
	}
	return nil
}

// NewConfig loads .refinery/config.yaml for the project directory. The
// directory must have been initialized first.
func NewConfig(projectDir string) (*Config, error) {
	refineryDir := filepath.Join(projectDir, RefineryDir)
	cfg := &Config{
		ProjectDir:         projectDir,
		RefineryProjectDir: refineryDir,
	}
	path := filepath.Join(refineryDir, "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var project ProjectConfig
	if err := yaml.Unmarshal(data, &project); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	applyDefaults(&project)
	if err := validateProject(project); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.Project = project
	return cfg, nil
}

func applyDefaults(p *ProjectConfig) {
	if p.Version == 0 {
		p.Version = 1
	}
	fill := func(sel *RoleSelection, name string) {
		sel.Name = strings.TrimSpace(sel.Name)
		if sel.Name == "" {
			sel.Name = name
		}
	}
	fill(&p.Collaborators.Seeds, "counter")
	fill(&p.Collaborators.Tension, "scalar")
	fill(&p.Collaborators.Transition, "additive")
	fill(&p.Collaborators.Patterns, "fingerprint")
	fill(&p.Collaborators.Operators, "uuid")
	if strings.TrimSpace(p.Plugins.Dir) == "" {
		p.Plugins.Dir = defaultCollaboratorDir
	}
}

func validateProject(p ProjectConfig) error {
	if p.Version != 1 {
		return fmt.Errorf("unsupported version %d", p.Version)
	}
	return nil
}

// StateDir returns the run snapshot directory.
func (c *Config) StateDir() string {
	return filepath.Join(c.RefineryProjectDir, "state")
}

// LogPath returns the process log file path.
func (c *Config) LogPath() string {
	return filepath.Join(c.RefineryProjectDir, "logs", "refinery.log")
}

// JournalPath returns the cycle journal file path.
func (c *Config) JournalPath() string {
	return filepath.Join(c.RefineryProjectDir, "journal", "cycles.log")
}

// CollaboratorDir returns the plugin directory, resolved against
// .refinery/ when relative.
func (c *Config) CollaboratorDir() string {
	dir := c.Project.Plugins.Dir
	if dir == "" {
		dir = defaultCollaboratorDir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.RefineryProjectDir, dir)
}
