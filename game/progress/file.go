package progress

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

// FileStore keeps one player's solved state in a single JSON document.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the solved state from disk. A missing or corrupt file
// yields an empty state.
func (f *FileStore) Load() State {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: failed to read progress file %s: %v", f.path, err)
		}
		return State{}
	}

	var raw map[string]bool
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Printf("Warning: corrupt progress file %s, starting fresh: %v", f.path, err)
		return State{}
	}

	state := make(State, len(raw))
	for key, solved := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		state[id] = solved
	}
	return state
}

// Save writes the whole solved mapping, replacing the previous file.
func (f *FileStore) Save(state State) error {
	raw := make(map[string]bool, len(state))
	for id, solved := range state {
		raw[strconv.Itoa(id)] = solved
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create progress directory: %w", err)
		}
	}
	if err := os.WriteFile(f.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write progress file: %w", err)
	}
	return nil
}

// Reset removes the progress file. A file that never existed counts as
// reset.
func (f *FileStore) Reset() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove progress file: %w", err)
	}
	return nil
}

// FileFactory hands out FileStores under a shared directory, one JSON
// file per player key.
type FileFactory struct {
	dir string
}

// NewFileFactory creates a factory writing under the given directory.
func NewFileFactory(dir string) *FileFactory {
	return &FileFactory{dir: dir}
}

// StoreFor returns the store for one player key.
func (f *FileFactory) StoreFor(key string) (Store, error) {
	if key == "" {
		return nil, fmt.Errorf("player key is required")
	}
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create progress directory: %w", err)
	}
	return NewFileStore(filepath.Join(f.dir, key+".json")), nil
}
