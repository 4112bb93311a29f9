package store

import (
	"context"
	"os"
	"path/filepath"

	"emperror.dev/errors"

	"github.com/stahnma/gh-trending/internal/trending"
)

// FileStore keeps documents as files in a directory.
type FileStore struct {
	dir string
}

// NewFileStore returns a FileStore rooted at dir. The directory is created
// on first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the file path of a document.
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *FileStore) Read(_ context.Context, name string) ([]byte, error) {
	path := s.Path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, trending.NewError(trending.ErrNotFound, "read "+path, nil)
		}
		return nil, trending.NewError(trending.ErrPersistence, "read "+path, err)
	}
	return data, nil
}

// Write writes data to a temporary file next to the target and renames it
// into place.
func (s *FileStore) Write(_ context.Context, name string, data []byte) error {
	path := s.Path(name)
	if err := writeFileAtomic(path, data); err != nil {
		return trending.NewError(trending.ErrPersistence, "write "+path, err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create directory")
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return errors.Wrap(err, "write temp file")
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrap(err, "sync temp file")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.Wrap(err, "chmod temp file")
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, "rename temp file")
	}
	return nil
}
