package content

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Editing operations never mutate the receiver: each returns a fresh sequence
// so that callers can keep the previous state around (undo, optimistic UI, retries).

const embedMarker = "<iframe"

var embedSrcRe = regexp.MustCompile(`src="([^"]+)"`)

// NewID returns a fresh block id.
func NewID() string {
	return uuid.New().String()
}

// NewDocument returns the default body of a freshly authored lesson: one empty text block.
func NewDocument(id string) Blocks {
	return Blocks{NewTextBlock(id, "")}
}

// NormalizeMediaURL reduces user input to a bare media URL.
// Embed snippets are replaced by their src attribute; a snippet without one gives "".
func NormalizeMediaURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, embedMarker) {
		return raw
	}
	m := embedSrcRe.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func (bs Blocks) clone(extra int) Blocks {
	out := make(Blocks, len(bs), len(bs)+extra)
	copy(out, bs)
	return out
}

// AppendText adds an empty text block at the end.
func (bs Blocks) AppendText(id string) Blocks {
	return append(bs.clone(1), NewTextBlock(id, ""))
}

// AppendMedia adds a media block at the end, once rawURL is normalized.
// The bool is false, and the sequence unchanged, when the URL normalizes to "".
func (bs Blocks) AppendMedia(id, rawURL string, mt MediaType) (Blocks, bool) {
	url := NormalizeMediaURL(rawURL)
	if url == "" {
		return bs.clone(0), false
	}
	return append(bs.clone(1), NewMediaBlock(id, url, mt)), true
}

// Remove drops the block with the given id. Unknown ids are a no-op.
func (bs Blocks) Remove(id string) Blocks {
	out := make(Blocks, 0, len(bs))
	for _, blk := range bs {
		if blk.ID != id {
			out = append(out, blk)
		}
	}
	return out
}

// Reorder arranges the blocks in the order of ids, which must name every block exactly once.
func (bs Blocks) Reorder(ids []string) (Blocks, error) {
	if len(ids) != len(bs) {
		return nil, ErrInvalidOrder
	}
	byID := make(map[string]Block, len(bs))
	for _, blk := range bs {
		byID[blk.ID] = blk
	}
	out := make(Blocks, 0, len(ids))
	for _, id := range ids {
		blk, ok := byID[id]
		if !ok {
			return nil, ErrInvalidOrder
		}
		delete(byID, id)
		out = append(out, blk)
	}
	return out, nil
}

// UpdateText replaces the content of a text block.
// Unknown ids and media blocks are a no-op.
func (bs Blocks) UpdateText(id, html string) Blocks {
	out := bs.clone(0)
	if i := out.Index(id); i >= 0 && out[i].IsText() {
		out[i].Content = html
	}
	return out
}
