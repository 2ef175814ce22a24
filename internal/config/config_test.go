package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitRefineryDirCreatesStructure(t *testing.T) {
	dir := t.TempDir()
	if err := InitRefineryDir(dir); err != nil {
		t.Fatalf("init: %v", err)
	}
	for _, sub := range []string{"state", "logs", "journal", "collaborators"} {
		path := filepath.Join(dir, RefineryDir, sub)
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", path, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, RefineryDir, "config.yaml")); err != nil {
		t.Fatalf("expected default config: %v", err)
	}
}

func TestInitRefineryDirKeepsExistingConfig(t *testing.T) {
	dir := t.TempDir()
	if err := InitRefineryDir(dir); err != nil {
		t.Fatalf("init: %v", err)
	}
	path := filepath.Join(dir, RefineryDir, "config.yaml")
	custom := "version: 1\nrun:\n  initial_state: 5\n"
	if err := os.WriteFile(path, []byte(custom), 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}
	if err := InitRefineryDir(dir); err != nil {
		t.Fatalf("re-init: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if string(data) != custom {
		t.Fatalf("config was overwritten")
	}
}

func TestNewConfigLoadsDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := InitRefineryDir(dir); err != nil {
		t.Fatalf("init: %v", err)
	}
	cfg, err := NewConfig(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Project.Collaborators.Seeds.Name != "counter" {
		t.Fatalf("seeds = %q, want counter", cfg.Project.Collaborators.Seeds.Name)
	}
	if cfg.Project.Collaborators.Operators.Name != "uuid" {
		t.Fatalf("operators = %q, want uuid", cfg.Project.Collaborators.Operators.Name)
	}
	if cfg.Project.Run.Input != 1.0 {
		t.Fatalf("input = %v, want 1", cfg.Project.Run.Input)
	}
	if got := cfg.CollaboratorDir(); got != filepath.Join(dir, RefineryDir, "collaborators") {
		t.Fatalf("collaborator dir = %s", got)
	}
}

func TestNewConfigFillsMissingRoles(t *testing.T) {
	dir := t.TempDir()
	if err := InitRefineryDir(dir); err != nil {
		t.Fatalf("init: %v", err)
	}
	path := filepath.Join(dir, RefineryDir, "config.yaml")
	partial := "version: 1\ncollaborators:\n  transition:\n    name: scaled\n    params:\n      factor: 2\n"
	if err := os.WriteFile(path, []byte(partial), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := NewConfig(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Project.Collaborators.Transition.Name != "scaled" {
		t.Fatalf("transition = %q, want scaled", cfg.Project.Collaborators.Transition.Name)
	}
	if cfg.Project.Collaborators.Patterns.Name != "fingerprint" {
		t.Fatalf("patterns default missing: %q", cfg.Project.Collaborators.Patterns.Name)
	}
}

func TestNewConfigRejectsUnknownVersion(t *testing.T) {
	dir := t.TempDir()
	if err := InitRefineryDir(dir); err != nil {
		t.Fatalf("init: %v", err)
	}
	path := filepath.Join(dir, RefineryDir, "config.yaml")
	if err := os.WriteFile(path, []byte("version: 9\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := NewConfig(dir); err == nil {
		t.Fatalf("expected unsupported version to fail")
	}
}
