package engine

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrStateNotFound is returned when no persisted run snapshot exists yet.
var ErrStateNotFound = errors.New("engine: run state not found")

// StateStore persists run snapshots.
type StateStore interface {
	Load() (Snapshot, error)
	Save(Snapshot) error
}

// Repository stores run snapshots within the project state directory.
type Repository struct {
	path string
}

// NewRepository creates a repository rooted at the given state directory.
func NewRepository(stateDir string) *Repository {
	return &Repository{path: filepath.Join(stateDir, "run.json")}
}

// Path returns the snapshot file location.
func (r *Repository) Path() string { return r.path }

// Load reads the persisted snapshot if present.
func (r *Repository) Load() (Snapshot, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Snapshot{}, ErrStateNotFound
		}
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Save writes the snapshot to disk with best-effort atomicity.
func (r *Repository) Save(snap Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, append(encoded, '\n'), 0o644)
}
