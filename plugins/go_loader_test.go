package plugins

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/yourusername/refinery/internal/catalog"
	"github.com/yourusername/refinery/internal/solver"
)

const doubleTransitionPlugin = `package main

func CollaboratorID() string { return "double" }

func CollaboratorRole() string { return "transition" }

func ComputeNext(current, input float64) float64 {
	return current + 2*input
}
`

const prefixOperatorPlugin = `package main

func CollaboratorID() string { return "prefixed" }

func CollaboratorRole() string { return "operators" }

var count int

func DeriveOperator(pattern string) string {
	count++
	return "px-" + pattern[:0] + itoa(count)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := ""
	for n > 0 {
		digits = string(rune('0'+n%10)) + digits
		n /= 10
	}
	return digits
}
`

func writePlugin(t *testing.T, dir, name, code string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}
	return path
}

func TestLoadGoCollaboratorDirTransition(t *testing.T) {
	dir := t.TempDir()
	writePlugin(t, dir, "double.go", doubleTransitionPlugin)
	collabs, err := LoadGoCollaboratorDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(collabs) != 1 {
		t.Fatalf("len = %d, want 1", len(collabs))
	}
	if collabs[0].ID != "double" || collabs[0].Role != catalog.RoleTransition {
		t.Fatalf("unexpected collaborator: %+v", collabs[0])
	}
	transition, ok := collabs[0].Impl.(solver.StateTransition)
	if !ok {
		t.Fatalf("impl %T does not implement StateTransition", collabs[0].Impl)
	}
	next, err := transition.ComputeNext(1.0, 3.0)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if next != 7.0 {
		t.Fatalf("next = %v, want 7", next)
	}
}

func TestLoadGoCollaboratorDirOperators(t *testing.T) {
	dir := t.TempDir()
	writePlugin(t, dir, "prefixed.go", prefixOperatorPlugin)
	collabs, err := LoadGoCollaboratorDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	gen, ok := collabs[0].Impl.(solver.OperatorGenerator)
	if !ok {
		t.Fatalf("impl %T does not implement OperatorGenerator", collabs[0].Impl)
	}
	first, err := gen.DeriveOperator("anything")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	second, err := gen.DeriveOperator("anything")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct identifiers, got %q twice", first)
	}
}

func TestLoadGoCollaboratorDirRejectsMissingFunctions(t *testing.T) {
	dir := t.TempDir()
	writePlugin(t, dir, "broken.go", `package main

func CollaboratorID() string { return "broken" }

func CollaboratorRole() string { return "transition" }
`)
	if _, err := LoadGoCollaboratorDir(dir); err == nil {
		t.Fatalf("expected missing ComputeNext to fail")
	}
}

func TestLoadGoCollaboratorDirRejectsUnknownRole(t *testing.T) {
	dir := t.TempDir()
	writePlugin(t, dir, "odd.go", `package main

func CollaboratorID() string { return "odd" }

func CollaboratorRole() string { return "mystery" }
`)
	if _, err := LoadGoCollaboratorDir(dir); err == nil {
		t.Fatalf("expected unknown role to fail")
	}
}

func TestLoadGoCollaboratorDirMissingDir(t *testing.T) {
	collabs, err := LoadGoCollaboratorDir(filepath.Join(t.TempDir(), "nope"))
	if err != nil || collabs != nil {
		t.Fatalf("expected missing dir to be empty, got %v / %v", collabs, err)
	}
}
