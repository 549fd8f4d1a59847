package content

import (
	"encoding/json"

	"github.com/pkg/errors"
)

var (
	ErrDuplicateID  = errors.New("duplicate block id")
	ErrInvalidOrder = errors.New("order must list every block id exactly once")
)

// Blocks is an ordered block sequence. Order is display order.
type Blocks []Block

// Parse turns a stored lesson body into blocks. It never fails:
//   - "" gives no blocks
//   - a JSON array of well-formed blocks gives those blocks, in order
//   - anything else (malformed JSON, a non-array value, an array holding a malformed block)
//     is a legacy HTML body and gives a single text block holding raw, byte for byte.
func Parse(raw string) Blocks {
	if raw == "" {
		return Blocks{}
	}
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elems); err != nil || elems == nil {
		return legacy(raw)
	}
	blocks := make(Blocks, 0, len(elems))
	for _, elem := range elems {
		var blk Block
		if err := json.Unmarshal(elem, &blk); err != nil {
			return legacy(raw)
		}
		blocks = append(blocks, blk)
	}
	return blocks
}

func legacy(raw string) Blocks {
	return Blocks{NewTextBlock(LegacyBlockID, raw)}
}

// IsLegacy reports whether blocks is the single text block synthesized from a legacy body.
func (bs Blocks) IsLegacy() bool {
	return len(bs) == 1 && bs[0].ID == LegacyBlockID && bs[0].IsText()
}

// Marshal serializes the blocks to their stored form, always a JSON array.
func (bs Blocks) Marshal() (string, error) {
	if bs == nil {
		bs = Blocks{}
	}
	data, err := json.Marshal([]Block(bs))
	if err != nil {
		return "", errors.Wrap(err, "marshaling blocks")
	}
	return string(data), nil
}

// Validate checks every block shape and that ids are unique.
func (bs Blocks) Validate() error {
	seen := make(map[string]struct{}, len(bs))
	for _, blk := range bs {
		if err := blk.Check(); err != nil {
			return errors.Wrapf(err, "block %q", blk.ID)
		}
		if _, ok := seen[blk.ID]; ok {
			return errors.Wrapf(ErrDuplicateID, "block %q", blk.ID)
		}
		seen[blk.ID] = struct{}{}
	}
	return nil
}

// Media returns the media blocks, in order.
func (bs Blocks) Media() Blocks {
	media := make(Blocks, 0)
	for _, blk := range bs {
		if blk.IsMedia() {
			media = append(media, blk)
		}
	}
	return media
}

// Index returns the position of the block with the given id, or -1.
func (bs Blocks) Index(id string) int {
	for i, blk := range bs {
		if blk.ID == id {
			return i
		}
	}
	return -1
}

// IDs returns the block ids, in order.
func (bs Blocks) IDs() []string {
	ids := make([]string, 0, len(bs))
	for _, blk := range bs {
		ids = append(ids, blk.ID)
	}
	return ids
}
