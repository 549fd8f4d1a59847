// Package content holds the lesson body model: an ordered sequence of typed blocks
// stored as a JSON array in a single text column, with a fallback for lessons whose
// body predates blocks and is stored as one raw HTML string.
package content

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

type (
	Kind      string
	MediaType string
)

const (
	KindText  Kind = "text"
	KindMedia Kind = "media"

	MediaVideo MediaType = "video"
	MediaImage MediaType = "image"

	// LegacyBlockID is the id of the single text block synthesized from a legacy HTML body.
	LegacyBlockID = "legacy-1"

	// PendingUploadScheme prefixes URLs that reference a local file whose upload has not completed.
	PendingUploadScheme = "blob:"
)

var (
	errMissingID        = errors.New("block id is required")
	errUnknownKind      = errors.New("unknown block type")
	errMissingURL       = errors.New("media url is required")
	errUnknownMediaType = errors.New("unknown media type")
)

func (mt MediaType) Valid() bool {
	return mt == MediaVideo || mt == MediaImage
}

// Block is a single renderable unit of lesson content.
// Type tells which variant it is: text blocks only use Content, media blocks only use URL and MediaType.
type Block struct {
	ID        string
	Type      Kind
	Content   string    // text: sanitizable HTML fragment
	URL       string    // media: bare URL or pending upload reference
	MediaType MediaType // media
}

func NewTextBlock(id, html string) Block {
	return Block{ID: id, Type: KindText, Content: html}
}

func NewMediaBlock(id, url string, mt MediaType) Block {
	return Block{ID: id, Type: KindMedia, URL: url, MediaType: mt}
}

func (b Block) IsText() bool  { return b.Type == KindText }
func (b Block) IsMedia() bool { return b.Type == KindMedia }

// IsPendingUpload reports whether the media block points to a local file not uploaded yet.
func (b Block) IsPendingUpload() bool {
	return b.IsMedia() && strings.HasPrefix(b.URL, PendingUploadScheme)
}

// Check validates the block shape.
func (b Block) Check() error {
	if b.ID == "" {
		return errMissingID
	}
	switch b.Type {
	case KindText:
		return nil
	case KindMedia:
		if b.URL == "" {
			return errMissingURL
		}
		if !b.MediaType.Valid() {
			return errUnknownMediaType
		}
		return nil
	default:
		return errUnknownKind
	}
}

type (
	textWire struct {
		ID      string `json:"id"`
		Type    Kind   `json:"type"`
		Content string `json:"content"`
	}

	mediaWire struct {
		ID        string    `json:"id"`
		Type      Kind      `json:"type"`
		URL       string    `json:"url"`
		MediaType MediaType `json:"mediaType"`
	}

	anyWire struct {
		ID        string    `json:"id"`
		Type      Kind      `json:"type"`
		Content   *string   `json:"content"`
		URL       string    `json:"url"`
		MediaType MediaType `json:"mediaType"`
	}
)

// MarshalJSON writes only the fields of the block's variant.
func (b Block) MarshalJSON() ([]byte, error) {
	switch b.Type {
	case KindText:
		return json.Marshal(textWire{ID: b.ID, Type: b.Type, Content: b.Content})
	case KindMedia:
		return json.Marshal(mediaWire{ID: b.ID, Type: b.Type, URL: b.URL, MediaType: b.MediaType})
	default:
		return nil, fmt.Errorf("marshaling block %q: %w", b.ID, errUnknownKind)
	}
}

// UnmarshalJSON reads a block and validates its shape.
func (b *Block) UnmarshalJSON(data []byte) error {
	var w anyWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	blk := Block{ID: w.ID, Type: w.Type}
	switch w.Type {
	case KindText:
		if w.Content != nil {
			blk.Content = *w.Content
		}
	case KindMedia:
		blk.URL = w.URL
		blk.MediaType = w.MediaType
	}
	if err := blk.Check(); err != nil {
		return errors.Wrapf(err, "block %q", w.ID)
	}
	*b = blk
	return nil
}
