package league

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store loads and saves league state
type Store interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, state *State) error
}

// JSONStore keeps the league in a single indented JSON file
type JSONStore struct {
	path     string
	defaults Settings
}

// NewJSONStore creates a store at path. defaults apply when the file does not exist yet.
func NewJSONStore(path string, defaults Settings) *JSONStore {
	return &JSONStore{path: path, defaults: defaults}
}

// Path returns the state file location
func (s *JSONStore) Path() string {
	return s.path
}

// Load reads the state file. A missing file yields an empty league.
func (s *JSONStore) Load(ctx context.Context) (*State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewState(s.defaults), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read league state: %w", err)
	}

	state := NewState(s.defaults)
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to decode league state %s: %w", s.path, err)
	}
	return state, nil
}

// Save writes the state atomically: a temp file in the same directory is renamed over the old one
func (s *JSONStore) Save(ctx context.Context, state *State) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode league state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write league state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp state file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace league state: %w", err)
	}
	return nil
}
