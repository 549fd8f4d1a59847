package lesson

import (
	"context"

	"github.com/pkg/errors"

	"github.com/cddtech/lessonhub/core"
	"github.com/cddtech/lessonhub/core/content"
	"github.com/cddtech/lessonhub/core/upload"
	"github.com/cddtech/lessonhub/core/user"
)

// Block editing loads the body, applies one operation and saves the whole body back.
// Concurrent editors of a lesson race: the last save wins.

type editFunc func(blocks content.Blocks) (content.Blocks, error)

// errUnchanged aborts an edit without saving.
var errUnchanged = errors.New("unchanged")

func (svc *Service) edit(ctx context.Context, usr user.User, id string, fn editFunc) (Lesson, error) {
	l, c, err := svc.getOwned(ctx, usr, id)
	if err != nil {
		return Lesson{}, err
	}

	blocks, err := fn(l.Blocks())
	if err != nil {
		if err == errUnchanged {
			return l, nil
		}
		return Lesson{}, err
	}
	raw, err := blocks.Marshal()
	if err != nil {
		return Lesson{}, err
	}

	l, err = svc.repo.UpdateContent(ctx, l.ID, raw, MediaFromBlocks(blocks), nowFunc())
	if err != nil {
		return Lesson{}, errors.Wrap(err, "updating lesson content")
	}
	svc.afterSave(ctx, c)
	return l, nil
}

// Blocks returns the parsed body of a lesson `usr` may read.
func (svc *Service) Blocks(ctx context.Context, usr user.User, id string) (content.Blocks, error) {
	l, err := svc.Get(ctx, usr, id)
	if err != nil {
		return nil, err
	}
	return l.Blocks(), nil
}

// Render returns the HTML of a lesson body `usr` may read.
func (svc *Service) Render(ctx context.Context, usr user.User, id string) (string, error) {
	blocks, err := svc.Blocks(ctx, usr, id)
	if err != nil {
		return "", err
	}
	return content.RenderHTML(blocks)
}

// AppendBlock adds a block at the end of the body.
// A media URL that normalizes to nothing leaves the lesson untouched.
func (svc *Service) AppendBlock(ctx context.Context, usr user.User, id string, nb NewBlock) (Lesson, error) {
	if err := nb.Validate(svc.validate); err != nil {
		return Lesson{}, err
	}
	return svc.edit(ctx, usr, id, func(blocks content.Blocks) (content.Blocks, error) {
		if nb.Type == content.KindText {
			return blocks.AppendText(newID()), nil
		}
		blocks, ok := blocks.AppendMedia(newID(), nb.URL, nb.MediaType)
		if !ok {
			return nil, errUnchanged
		}
		return blocks, nil
	})
}

// UploadBlock uploads the file then appends it as a media block.
// A failed upload leaves the lesson untouched.
func (svc *Service) UploadBlock(ctx context.Context, usr user.User, id string, f upload.File) (Lesson, error) {
	// check ownership before uploading anything
	if _, _, err := svc.getOwned(ctx, usr, id); err != nil {
		return Lesson{}, err
	}
	res, err := svc.uploader.Upload(ctx, f)
	if err != nil {
		return Lesson{}, err
	}
	return svc.AppendBlock(ctx, usr, id, NewBlock{Type: content.KindMedia, URL: res.URL, MediaType: res.MediaType})
}

// ReorderBlocks arranges the body in the order of rb.IDs, which must list every block once.
func (svc *Service) ReorderBlocks(ctx context.Context, usr user.User, id string, rb ReorderBlocks) (Lesson, error) {
	if err := rb.Validate(svc.validate); err != nil {
		return Lesson{}, err
	}
	return svc.edit(ctx, usr, id, func(blocks content.Blocks) (content.Blocks, error) {
		blocks, err := blocks.Reorder(rb.IDs)
		if err != nil {
			return nil, core.NewValidationError(err, core.FieldError{Field: "ids", Error: err.Error()})
		}
		return blocks, nil
	})
}

// UpdateBlock replaces the content of a text block. Unknown ids and media blocks are a no-op.
func (svc *Service) UpdateBlock(ctx context.Context, usr user.User, id, blockID string, ub UpdateBlock) (Lesson, error) {
	return svc.edit(ctx, usr, id, func(blocks content.Blocks) (content.Blocks, error) {
		if i := blocks.Index(blockID); i < 0 || !blocks[i].IsText() {
			return nil, errUnchanged
		}
		return blocks.UpdateText(blockID, ub.Content), nil
	})
}

// RemoveBlock drops a block from the body. Unknown ids are a no-op.
func (svc *Service) RemoveBlock(ctx context.Context, usr user.User, id, blockID string) (Lesson, error) {
	return svc.edit(ctx, usr, id, func(blocks content.Blocks) (content.Blocks, error) {
		if blocks.Index(blockID) < 0 {
			return nil, errUnchanged
		}
		return blocks.Remove(blockID), nil
	})
}
