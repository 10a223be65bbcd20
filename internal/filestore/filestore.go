// Package filestore implements a single-directory, one-file-per-key
// Datastore backend for cmd/chronicle: developer-ergonomics tooling around
// the core, not a production datastore backend.
package filestore

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
)

// FileStore implements core/store.Datastore by mapping each key to a file
// named by the hex SHA-1 of the key string, inside a single flat directory.
// Hashing the key into the filename sidesteps path-traversal and
// invalid-filename-character concerns entirely — chronicle Keys are
// arbitrary slash-separated strings, not safe to use as path components
// directly.
type FileStore struct {
	dir string
}

// New returns a FileStore rooted at dir, creating it if it does not exist.
func New(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(key string) string {
	sum := sha1.Sum([]byte(key))
	return filepath.Join(f.dir, hex.EncodeToString(sum[:])+".chr")
}

func (f *FileStore) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (f *FileStore) Put(key string, value []byte) error {
	if value == nil {
		return f.Delete(key)
	}
	return os.WriteFile(f.path(key), value, 0o644)
}

func (f *FileStore) Delete(key string) error {
	err := os.Remove(f.path(key))
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (f *FileStore) Contains(key string) (bool, error) {
	_, err := os.Stat(f.path(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (f *FileStore) Len() (int, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() {
			n++
		}
	}
	return n, nil
}
