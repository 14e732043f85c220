package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// File is a KV persisted as one JSON object on disk. Loaded once on open,
// written through on every Set.
type File struct {
	mu   sync.Mutex
	path string
	data map[string]string
}

// OpenFile loads the store at path, creating an empty one when the file does
// not exist yet.
func OpenFile(path string) (*File, error) {
	f := &File{path: path, data: make(map[string]string)}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("failed to read state file %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &f.data); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", path, err)
	}
	return f, nil
}

func (f *File) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok
}

func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return f.flushLocked()
}

func (f *File) Contains(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok
}

func (f *File) flushLocked() error {
	raw, err := json.Marshal(f.data)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, raw, 0600)
}
