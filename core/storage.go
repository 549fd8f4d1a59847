package core

import (
	"context"
	"io"
)

// FileStorage is any object store that can hold uploaded files and serve them publicly.
type FileStorage interface {
	// Upload stores the content of r under name and returns its public URL.
	Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	// Delete removes the object stored under name.
	Delete(ctx context.Context, name string) error
}
