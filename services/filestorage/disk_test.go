package filestorage

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStorage(t *testing.T) {
	dir, err := ioutil.TempDir("", "lessonhub-files")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(dir) }()

	storage, err := NewDiskStorage(filepath.Join(dir, "uploads"), "http://localhost:8000/files/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := storage.Upload(ctx, "1700000000000-clip.mp4", "video/mp4", strings.NewReader("video"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/files/1700000000000-clip.mp4", url)

	data, err := ioutil.ReadFile(filepath.Join(dir, "uploads", "1700000000000-clip.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "video", string(data))

	t.Run("names cannot escape the dir", func(t *testing.T) {
		url, err := storage.Upload(ctx, "../../escape.png", "image/png", strings.NewReader("png"))
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8000/files/escape.png", url)
		_, err = os.Stat(filepath.Join(dir, "uploads", "escape.png"))
		assert.NoError(t, err)

		_, err = storage.Upload(ctx, "/", "image/png", strings.NewReader("png"))
		assert.Error(t, err)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, storage.Delete(ctx, "1700000000000-clip.mp4"))
		_, err := os.Stat(filepath.Join(dir, "uploads", "1700000000000-clip.mp4"))
		assert.True(t, os.IsNotExist(err))
		assert.NoError(t, storage.Delete(ctx, "1700000000000-clip.mp4"))
	})
}
