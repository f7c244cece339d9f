package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"FundDesk/internal/model"
)

// FileStore keeps the state in a JSON file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the file at path. The parent
// directory is created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the state file. Returns a zero state if the file doesn't exist.
func (f *FileStore) Load(_ context.Context) (*model.SystemState, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.SystemState{}, nil
		}
		return nil, err
	}
	return decodeState(data)
}

// Save writes the state to a temp file and renames it over the old one.
func (f *FileStore) Save(_ context.Context, state *model.SystemState) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) Close() error { return nil }
