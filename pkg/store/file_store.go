package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileStore keeps the document in a single file. Saves write a temporary file
// next to the target and rename it over the target, so readers never observe
// a partially written document.
type FileStore struct {
	fs       afero.Fs
	path     string
	perm     os.FileMode
	dirPerm  os.FileMode
	syncData bool
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithFs swaps the filesystem, e.g. afero.NewMemMapFs() in tests.
func WithFs(fsys afero.Fs) FileOption {
	return func(s *FileStore) {
		if fsys != nil {
			s.fs = fsys
		}
	}
}

// WithFileMode sets the permissions of the document file.
func WithFileMode(perm os.FileMode) FileOption {
	return func(s *FileStore) {
		s.perm = perm
	}
}

// WithSync toggles fsync of the temporary file before the rename.
func WithSync(enabled bool) FileOption {
	return func(s *FileStore) {
		s.syncData = enabled
	}
}

func NewFileStore(path string, opts ...FileOption) *FileStore {
	s := &FileStore{
		fs:       afero.NewOsFs(),
		path:     path,
		perm:     0o644,
		dirPerm:  0o755,
		syncData: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *FileStore) Load(_ context.Context) ([]byte, bool, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("store: read %s: %w", s.path, err)
	}
	return data, true, nil
}

func (s *FileStore) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, s.dirPerm); err != nil {
		return fmt.Errorf("store: create %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(s.fs, dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("store: temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = s.fs.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("store: write %s: %w", tmpName, err)
	}
	if s.syncData {
		if err := tmp.Sync(); err != nil {
			_ = tmp.Close()
			cleanup()
			return fmt.Errorf("store: sync %s: %w", tmpName, err)
		}
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("store: close %s: %w", tmpName, err)
	}
	if err := s.fs.Chmod(tmpName, s.perm); err != nil {
		cleanup()
		return fmt.Errorf("store: chmod %s: %w", tmpName, err)
	}
	if err := s.fs.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("store: replace %s: %w", s.path, err)
	}
	return nil
}

// Path returns the document location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Describe() string {
	return "file:" + s.path
}
