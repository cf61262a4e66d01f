// Package fsmock provides an in-memory RunesFS for tests.
package fsmock

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kadabra-ai/kadabra-runes/src/runes/internal/fs"
)

// FS is an in-memory implementation of fs.RunesFS.
type FS struct {
	mu    sync.Mutex
	files map[string][]byte
	temps int
}

var _ fs.RunesFS = (*FS)(nil)

// New creates an empty in-memory filesystem.
func New() *FS {
	return &FS{files: make(map[string][]byte)}
}

// Add seeds a file.
func (f *FS) Add(path string, data string) *FS {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[filepath.Clean(path)] = []byte(data)
	return f
}

func (f *FS) Getwd() (string, error) { return "/", nil }

// Canonicalize cleans the path without touching the host filesystem.
func (f *FS) Canonicalize(path string) (string, error) {
	return filepath.Clean(path), nil
}

func (f *FS) FileExists(path string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[filepath.Clean(path)]
	return ok, nil
}

func (f *FS) ReadFile(name string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[filepath.Clean(name)]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func (f *FS) WriteFile(name string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[filepath.Clean(name)] = data
	return nil
}

func (f *FS) TempFile(dir, pattern string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.temps++
	name := filepath.Clean(filepath.Join(dir, fmt.Sprintf("%s%d", pattern, f.temps)))
	f.files[name] = nil
	return name, nil
}

func (f *FS) Rename(oldpath, newpath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[filepath.Clean(oldpath)]
	if !ok {
		return os.ErrNotExist
	}
	delete(f.files, filepath.Clean(oldpath))
	f.files[filepath.Clean(newpath)] = data
	return nil
}

func (f *FS) Remove(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, filepath.Clean(name))
	return nil
}
