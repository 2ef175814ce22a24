package journal

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestTailReturnsRecentLinesAndTotal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cycles.log")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new journal: %v", err)
	}
	for i := 0; i < 5; i++ {
		book.Info("entry-%d", i)
	}
	lines, total := book.Tail(3)
	if total != 5 {
		t.Fatalf("total lines = %d, want 5", total)
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestTailOnMissingFile(t *testing.T) {
	dir := t.TempDir()
	book, err := New(filepath.Join(dir, "cycles.log"))
	if err != nil {
		t.Fatalf("new journal: %v", err)
	}
	lines, total := book.Tail(3)
	if lines != nil || total != 0 {
		t.Fatalf("expected empty tail, got %v (%d)", lines, total)
	}
}

func TestLevelsRecorded(t *testing.T) {
	dir := t.TempDir()
	book, err := New(filepath.Join(dir, "cycles.log"))
	if err != nil {
		t.Fatalf("new journal: %v", err)
	}
	book.Warn("watch out")
	book.Error("went wrong")
	lines, _ := book.Tail(2)
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "WARN") || !strings.Contains(lines[1], "ERROR") {
		t.Fatalf("levels missing: %v", lines)
	}
}

func TestNilJournalIsSafe(t *testing.T) {
	var book *Journal
	book.Info("ignored")
	if lines, total := book.Tail(1); lines != nil || total != 0 {
		t.Fatalf("expected nil journal to be inert")
	}
	if book.Path() != "" {
		t.Fatalf("expected empty path")
	}
}
