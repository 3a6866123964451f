// Package storage implements the media store: a flat directory of uploaded
// binaries addressed by server-generated storage keys. The directory is the
// single source of truth for whether a file still exists.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type MediaStore struct {
	baseDir string
}

// NewMediaStore creates the backing directory if needed.
func NewMediaStore(baseDir string) (*MediaStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &MediaStore{baseDir: baseDir}, nil
}

// Dir returns the backing directory, for static file serving.
func (s *MediaStore) Dir() string {
	return s.baseDir
}

// Save writes the file under the given key. A partially written file is
// removed before the error is returned.
func (s *MediaStore) Save(key string, r io.Reader) error {
	path := s.path(key)
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Exists reports whether the file behind the key is still on disk.
func (s *MediaStore) Exists(key string) bool {
	info, err := os.Stat(s.path(key))
	return err == nil && !info.IsDir()
}

// Remove deletes the file behind the key.
func (s *MediaStore) Remove(key string) error {
	return os.Remove(s.path(key))
}

// path confines every key to the base directory; keys are server-generated
// but base-ing them keeps a stray separator from escaping it.
func (s *MediaStore) path(key string) string {
	return filepath.Join(s.baseDir, filepath.Base(key))
}
