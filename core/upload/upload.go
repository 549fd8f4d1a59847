// Package upload turns user files into public URLs on the configured file storage.
package upload

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/cddtech/lessonhub/core"
	"github.com/cddtech/lessonhub/core/content"
)

var (
	ErrNoFile = errors.New("no file uploaded")

	unsafeNameRe = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

	nowFunc = time.Now
)

// TooLargeError is returned for files bigger than the allowed size.
type TooLargeError struct {
	MaxSize int64
}

func (err TooLargeError) Error() string {
	return fmt.Sprintf("File too large. Maximum size is %dMB.", err.MaxSize/(1024*1024))
}

func IsTooLarge(err error) bool {
	_, ok := errors.Cause(err).(TooLargeError)
	return ok
}

type (
	File struct {
		Name        string
		ContentType string
		Size        int64
		Body        io.Reader
	}

	Result struct {
		URL       string            `json:"url"`
		MediaType content.MediaType `json:"media_type"`
	}

	Service struct {
		storage core.FileStorage
		maxSize int64
	}
)

func NewService(storage core.FileStorage, maxSize int64) *Service {
	return &Service{storage: storage, maxSize: maxSize}
}

// ObjectName returns a unique, URL safe storage name for a file called `name`.
func ObjectName(name string) string {
	return fmt.Sprintf("%d-%s", nowFunc().UnixNano()/int64(time.Millisecond), unsafeNameRe.ReplaceAllString(name, "_"))
}

// MediaTypeOf classifies a file as video or image media from its content type.
func MediaTypeOf(contentType string) content.MediaType {
	if strings.HasPrefix(strings.ToLower(contentType), "video") {
		return content.MediaVideo
	}
	return content.MediaImage
}

// Upload stores the file and returns its public URL.
func (svc *Service) Upload(ctx context.Context, f File) (Result, error) {
	if f.Body == nil || f.Name == "" {
		return Result{}, ErrNoFile
	}
	if f.Size > svc.maxSize {
		return Result{}, TooLargeError{MaxSize: svc.maxSize}
	}

	// the declared size may lie: never read past the limit
	body := io.LimitReader(f.Body, svc.maxSize+1)
	counter := &countingReader{r: body}

	name := ObjectName(f.Name)
	url, err := svc.storage.Upload(ctx, name, f.ContentType, counter)
	if err != nil {
		return Result{}, errors.Wrap(err, "uploading file")
	}
	if counter.n > svc.maxSize {
		_ = svc.storage.Delete(ctx, name)
		return Result{}, TooLargeError{MaxSize: svc.maxSize}
	}
	return Result{URL: url, MediaType: MediaTypeOf(f.ContentType)}, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}
