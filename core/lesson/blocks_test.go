package lesson_test

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cddtech/lessonhub/core"
	"github.com/cddtech/lessonhub/core/content"
	"github.com/cddtech/lessonhub/core/lesson"
	"github.com/cddtech/lessonhub/core/upload"
	"github.com/cddtech/lessonhub/testutil"
)

const storedBody = `[{"id":"t1","type":"text","content":"<p>Hi</p>"},` +
	`{"id":"m1","type":"media","url":"https://www.youtube.com/embed/abc","mediaType":"video"}]`

func TestService_AppendBlock(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	l := testutil.CreateLesson(t, f.Repos.Lesson, f.course, "Halves", storedBody)

	t.Run("not owner", func(t *testing.T) {
		_, err := f.Svcs.Lesson.AppendBlock(ctx, f.other, l.ID, lesson.NewBlock{Type: content.KindText})
		assert.Equal(t, core.ErrForbidden, err)
	})

	t.Run("media without media type", func(t *testing.T) {
		_, err := f.Svcs.Lesson.AppendBlock(ctx, f.owner, l.ID, lesson.NewBlock{Type: content.KindMedia, URL: "https://img.test/a.png"})
		var vErr *core.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "media_type", vErr.Fields[0].Field)
	})

	t.Run("text", func(t *testing.T) {
		updated, err := f.Svcs.Lesson.AppendBlock(ctx, f.owner, l.ID, lesson.NewBlock{Type: content.KindText})
		require.NoError(t, err)
		blocks := updated.Blocks()
		require.Len(t, blocks, 3)
		assert.True(t, blocks[2].IsText())
		assert.Empty(t, blocks[2].Content)
		assert.NotContains(t, []string{"t1", "m1"}, blocks[2].ID)
	})

	t.Run("embed snippet", func(t *testing.T) {
		updated, err := f.Svcs.Lesson.AppendBlock(ctx, f.owner, l.ID, lesson.NewBlock{
			Type:      content.KindMedia,
			URL:       `<iframe width="560" height="315" src="https://www.youtube.com/embed/xyz" allowfullscreen></iframe>`,
			MediaType: content.MediaVideo,
		})
		require.NoError(t, err)
		blocks := updated.Blocks()
		require.Len(t, blocks, 4)
		assert.Equal(t, "https://www.youtube.com/embed/xyz", blocks[3].URL)
		assert.Equal(t, content.MediaVideo, blocks[3].MediaType)
		require.Len(t, updated.Media, 2)
		assert.Equal(t, blocks[3].ID, updated.Media[1].ID)
		assert.Equal(t, 1, updated.Media[1].Position)
	})

	t.Run("empty url is a no-op", func(t *testing.T) {
		before, err := f.Repos.Lesson.GetLessonByID(ctx, l.ID)
		require.NoError(t, err)
		for _, url := range []string{"", "   ", `<iframe width="560"></iframe>`} {
			updated, err := f.Svcs.Lesson.AppendBlock(ctx, f.owner, l.ID, lesson.NewBlock{
				Type: content.KindMedia, URL: url, MediaType: content.MediaImage,
			})
			require.NoError(t, err)
			assert.Equal(t, before, updated)
		}
	})
}

func TestService_UploadBlock(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	l := testutil.CreateLesson(t, f.Repos.Lesson, f.course, "Halves", storedBody)

	t.Run("not owner uploads nothing", func(t *testing.T) {
		_, err := f.Svcs.Lesson.UploadBlock(ctx, f.other, l.ID, upload.File{
			Name: "clip.mp4", ContentType: "video/mp4", Body: strings.NewReader("data"),
		})
		assert.Equal(t, core.ErrForbidden, err)
		assert.Empty(t, f.Storage.Files)
	})

	t.Run("storage failure leaves the lesson untouched", func(t *testing.T) {
		f.Storage.Err = errors.New("bucket gone")
		defer func() { f.Storage.Err = nil }()

		_, err := f.Svcs.Lesson.UploadBlock(ctx, f.owner, l.ID, upload.File{
			Name: "clip.mp4", ContentType: "video/mp4", Body: strings.NewReader("data"),
		})
		require.Error(t, err)
		stored, err := f.Repos.Lesson.GetLessonByID(ctx, l.ID)
		require.NoError(t, err)
		assert.Equal(t, storedBody, stored.Content)
	})

	t.Run("too large", func(t *testing.T) {
		_, err := f.Svcs.Lesson.UploadBlock(ctx, f.owner, l.ID, upload.File{
			Name: "huge.mp4", ContentType: "video/mp4", Size: f.Conf.Storage.MaxUploadSize + 1, Body: strings.NewReader("data"),
		})
		assert.True(t, upload.IsTooLarge(err))
	})

	t.Run("uploaded", func(t *testing.T) {
		updated, err := f.Svcs.Lesson.UploadBlock(ctx, f.owner, l.ID, upload.File{
			Name: "diagram.png", ContentType: "image/png", Size: 4, Body: strings.NewReader("data"),
		})
		require.NoError(t, err)
		blocks := updated.Blocks()
		require.Len(t, blocks, 3)
		assert.True(t, blocks[2].IsMedia())
		assert.Equal(t, content.MediaImage, blocks[2].MediaType)
		assert.True(t, strings.HasPrefix(blocks[2].URL, f.Conf.Storage.PublicBaseURL+"/"))
		assert.True(t, strings.HasSuffix(blocks[2].URL, "-diagram.png"))
		assert.Len(t, f.Storage.Files, 1)
	})
}

func TestService_ReorderBlocks(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	l := testutil.CreateLesson(t, f.Repos.Lesson, f.course, "Halves", storedBody)

	tests := []struct {
		name string
		ids  []string
	}{
		{name: "missing id", ids: []string{"m1"}},
		{name: "unknown id", ids: []string{"m1", "x"}},
		{name: "duplicated id", ids: []string{"m1", "m1"}},
		{name: "extra id", ids: []string{"m1", "t1", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Svcs.Lesson.ReorderBlocks(ctx, f.owner, l.ID, lesson.ReorderBlocks{IDs: tt.ids})
			var vErr *core.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, "ids", vErr.Fields[0].Field)
			assert.Equal(t, content.ErrInvalidOrder, vErr.Err)
		})
	}

	_, err := f.Svcs.Lesson.ReorderBlocks(ctx, f.owner, l.ID, lesson.ReorderBlocks{})
	assert.Error(t, err)

	updated, err := f.Svcs.Lesson.ReorderBlocks(ctx, f.owner, l.ID, lesson.ReorderBlocks{IDs: []string{"m1", "t1"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "t1"}, updated.Blocks().IDs())
	assert.Equal(t, "<p>Hi</p>", updated.Blocks()[1].Content)
}

func TestService_UpdateBlock(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	l := testutil.CreateLesson(t, f.Repos.Lesson, f.course, "Halves", storedBody)

	updated, err := f.Svcs.Lesson.UpdateBlock(ctx, f.owner, l.ID, "t1", lesson.UpdateBlock{Content: "<p>Bye</p>"})
	require.NoError(t, err)
	assert.Equal(t, "<p>Bye</p>", updated.Blocks()[0].Content)

	for _, id := range []string{"m1", "unknown"} {
		same, err := f.Svcs.Lesson.UpdateBlock(ctx, f.owner, l.ID, id, lesson.UpdateBlock{Content: "x"})
		require.NoError(t, err)
		assert.Equal(t, updated, same)
	}

	_, err = f.Svcs.Lesson.UpdateBlock(ctx, f.other, l.ID, "t1", lesson.UpdateBlock{Content: "x"})
	assert.Equal(t, core.ErrForbidden, err)
}

func TestService_RemoveBlock(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	l := testutil.CreateLesson(t, f.Repos.Lesson, f.course, "Halves", storedBody)

	updated, err := f.Svcs.Lesson.RemoveBlock(ctx, f.owner, l.ID, "m1")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, updated.Blocks().IDs())
	assert.Empty(t, updated.Media)

	same, err := f.Svcs.Lesson.RemoveBlock(ctx, f.owner, l.ID, "m1")
	require.NoError(t, err)
	assert.Equal(t, updated, same)

	// removing the last block leaves an empty body, not a legacy one
	empty, err := f.Svcs.Lesson.RemoveBlock(ctx, f.owner, l.ID, "t1")
	require.NoError(t, err)
	assert.Equal(t, "[]", empty.Content)
	assert.Empty(t, empty.Blocks())
}

func TestService_editLegacy(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	legacy := "<h1>Old lesson</h1><p>kept as is</p>"
	l := testutil.CreateLesson(t, f.Repos.Lesson, f.course, "Halves", legacy)

	blocks, err := f.Svcs.Lesson.Blocks(ctx, f.other, l.ID)
	require.NoError(t, err)
	assert.Equal(t, content.Blocks{content.NewTextBlock(content.LegacyBlockID, legacy)}, blocks)

	updated, err := f.Svcs.Lesson.AppendBlock(ctx, f.owner, l.ID, lesson.NewBlock{
		Type: content.KindMedia, URL: "https://img.test/a.png", MediaType: content.MediaImage,
	})
	require.NoError(t, err)
	blocks = updated.Blocks()
	require.Len(t, blocks, 2)
	assert.Equal(t, content.NewTextBlock(content.LegacyBlockID, legacy), blocks[0])
	assert.True(t, strings.HasPrefix(updated.Content, "["))
}
