// Package upload owns the lifecycle of uploaded files: naming, storing,
// validating and eventually deleting them.
package upload

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// StoredFile is an upload persisted in the upload directory.
type StoredFile struct {
	Name      string
	Path      string
	Size      int64
	CreatedAt time.Time
}

// Store persists uploads under a single directory.
type Store struct {
	dir   string
	names *NameGenerator
}

// NewStore creates dir if needed and returns a Store rooted there.
func NewStore(dir string, names *NameGenerator) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload folder: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("create upload folder: %w", err)
	}
	return &Store{dir: abs, names: names}, nil
}

// Dir returns the absolute upload directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save copies r into a freshly named file derived from originalName.
func (s *Store) Save(r io.Reader, originalName string) (StoredFile, error) {
	name := s.names.Generate(originalName)
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return StoredFile{}, fmt.Errorf("create upload %s: %w", name, err)
	}

	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return StoredFile{}, fmt.Errorf("write upload %s: %w", name, err)
	}

	return StoredFile{
		Name:      name,
		Path:      path,
		Size:      size,
		CreatedAt: time.Now(),
	}, nil
}

// Remove deletes a stored file. A file that is already gone, for example
// because the sweeper got to it first, is not an error.
func (s *Store) Remove(f StoredFile) error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove upload %s: %w", f.Name, err)
	}
	return nil
}
