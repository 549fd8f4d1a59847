package filestorage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/cddtech/lessonhub/core"
)

// DiskStorage keeps files in a local directory, served by the API under PublicBaseURL.
type DiskStorage struct {
	dir     string
	baseURL string
}

var _ core.FileStorage = (*DiskStorage)(nil) // interface compliance check

func NewDiskStorage(dir, baseURL string) (*DiskStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating storage dir")
	}
	return &DiskStorage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *DiskStorage) Dir() string {
	return s.dir
}

// path resolves name inside the storage dir; names cannot escape it.
func (s *DiskStorage) path(name string) (string, error) {
	name = filepath.Base(filepath.Clean("/" + name))
	if name == "/" || name == "." {
		return "", errors.New("invalid file name")
	}
	return filepath.Join(s.dir, name), nil
}

func (s *DiskStorage) Upload(ctx context.Context, name, _ string, r io.Reader) (string, error) {
	path, err := s.path(name)
	if err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "creating file")
	}
	if _, err = io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", errors.Wrap(err, "writing file")
	}
	if err = f.Close(); err != nil {
		return "", errors.Wrap(err, "closing file")
	}
	return s.baseURL + "/" + filepath.Base(path), nil
}

func (s *DiskStorage) Delete(_ context.Context, name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err = os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing file")
	}
	return nil
}
