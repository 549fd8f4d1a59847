// Package filestorage implements core.FileStorage on Google Cloud Storage and on the local disk.
package filestorage

import (
	"context"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/cddtech/lessonhub/core"
)

const (
	uploadTimeout = 10 * time.Minute
	deleteTimeout = 30 * time.Second
)

type GCSStorage struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

var _ core.FileStorage = (*GCSStorage)(nil) // interface compliance check

// NewGCSStorage connects to the bucket of conf.Storage.
// Files are served from conf.Storage.PublicBaseURL, or from storage.googleapis.com when empty.
func NewGCSStorage(ctx context.Context, conf *core.Config) (*GCSStorage, error) {
	if conf.Storage.Bucket == "" {
		return nil, errors.New("missing storage bucket")
	}
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	if conf.Storage.Credentials != "" {
		opts = append(opts, option.WithCredentialsFile(conf.Storage.Credentials))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating storage client")
	}

	baseURL := conf.Storage.PublicBaseURL
	if baseURL == "" {
		baseURL = "https://storage.googleapis.com/" + conf.Storage.Bucket
	}
	return &GCSStorage{
		client:  client,
		bucket:  conf.Storage.Bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *GCSStorage) Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", errors.Wrap(err, "writing object")
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "closing object writer")
	}
	return s.baseURL + "/" + name, nil
}

func (s *GCSStorage) Delete(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, deleteTimeout)
	defer cancel()

	err := s.client.Bucket(s.bucket).Object(name).Delete(ctx)
	if err != nil && err != storage.ErrObjectNotExist {
		return errors.Wrapf(err, "deleting object %q", name)
	}
	return nil
}

func (s *GCSStorage) Close() error {
	return s.client.Close()
}
