package plugins

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/yourusername/refinery/internal/catalog"
	"github.com/yourusername/refinery/internal/config"
)

func newPluginProject(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	if err := config.InitRefineryDir(dir); err != nil {
		t.Fatalf("init project: %v", err)
	}
	cfg, err := config.NewConfig(dir)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func TestRegisterCollaboratorPluginsFromYAML(t *testing.T) {
	cfg := newPluginProject(t)
	def := "id: fast\nrole: transition\nbase: scaled\nparams:\n  factor: 2\n"
	if err := os.WriteFile(filepath.Join(cfg.CollaboratorDir(), "fast.yaml"), []byte(def), 0o644); err != nil {
		t.Fatalf("write def: %v", err)
	}
	cat := catalog.New()
	if err := catalog.RegisterBuiltins(cat); err != nil {
		t.Fatalf("builtins: %v", err)
	}
	if err := RegisterCollaboratorPlugins(cat, cfg); err != nil {
		t.Fatalf("register plugins: %v", err)
	}
	spec := catalog.Spec{
		Seeds:      catalog.Selection{Name: "counter"},
		Tension:    catalog.Selection{Name: "scalar"},
		Transition: catalog.Selection{Name: "fast"},
		Patterns:   catalog.Selection{Name: "fingerprint"},
		Operators:  catalog.Selection{Name: "counter"},
	}
	collab, err := cat.Assemble(spec)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	next, err := collab.Transition.ComputeNext(1.0, 3.0)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if next != 7.0 {
		t.Fatalf("next = %v, want 7", next)
	}
}

func TestRegisterCollaboratorPluginsFromGo(t *testing.T) {
	cfg := newPluginProject(t)
	if err := os.WriteFile(filepath.Join(cfg.CollaboratorDir(), "double.go"), []byte(doubleTransitionPlugin), 0o644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}
	cat := catalog.New()
	if err := catalog.RegisterBuiltins(cat); err != nil {
		t.Fatalf("builtins: %v", err)
	}
	if err := RegisterCollaboratorPlugins(cat, cfg); err != nil {
		t.Fatalf("register plugins: %v", err)
	}
	product, err := cat.Resolve(catalog.RoleTransition, "double", nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if product == nil {
		t.Fatalf("expected interpreted collaborator")
	}
}

func TestRegisterCollaboratorPluginsRejectsDuplicates(t *testing.T) {
	cfg := newPluginProject(t)
	def := "id: additive\nrole: transition\nbase: scaled\n"
	if err := os.WriteFile(filepath.Join(cfg.CollaboratorDir(), "clash.yaml"), []byte(def), 0o644); err != nil {
		t.Fatalf("write def: %v", err)
	}
	cat := catalog.New()
	if err := catalog.RegisterBuiltins(cat); err != nil {
		t.Fatalf("builtins: %v", err)
	}
	if err := RegisterCollaboratorPlugins(cat, cfg); err == nil {
		t.Fatalf("expected clash with builtin transition/additive to fail")
	}
}

func TestRegisterCollaboratorPluginsNilArgs(t *testing.T) {
	if err := RegisterCollaboratorPlugins(nil, nil); err != nil {
		t.Fatalf("expected nil args to be a no-op, got %v", err)
	}
}
