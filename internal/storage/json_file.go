package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// JSONFile persists a single value of type T as an indented JSON document.
// Writes go to a temp file that is renamed over the target.
type JSONFile[T any] struct {
	mu   sync.Mutex
	path string
}

func NewJSONFile[T any](dir, name string) (*JSONFile[T], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &JSONFile[T]{path: filepath.Join(dir, name)}, nil
}

func (f *JSONFile[T]) Path() string { return f.path }

// Load returns the stored value, or the zero value if nothing was saved yet.
func (f *JSONFile[T]) Load() (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var v T
	file, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return v, nil
		}
		return v, err
	}
	defer file.Close()

	err = json.NewDecoder(file).Decode(&v)
	return v, err
}

func (f *JSONFile[T]) Save(v T) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp := f.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, f.path)
}
