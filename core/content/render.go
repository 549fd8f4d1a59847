package content

import (
	"bytes"
	"html/template"
	"io"

	"github.com/pkg/errors"
)

const embedAllow = "accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture"

var blocksTmpl = template.Must(template.New("blocks").Parse(
	`{{range .}}<div class="lesson-block" data-block-id="{{.ID}}">` +
		`{{if .Text}}<div class="lesson-text">{{.HTML}}</div>` +
		`{{else if .Pending}}<video class="lesson-video" src="{{.PendingURL}}" controls></video>` +
		`{{else if .Video}}<iframe class="lesson-video" src="{{.URL}}" allow="` + embedAllow + `" allowfullscreen></iframe>` +
		`{{else}}<img class="lesson-image" src="{{.URL}}" alt="Lesson Media">` +
		`{{end}}</div>{{end}}`,
))

type blockView struct {
	ID         string
	Text       bool
	HTML       template.HTML
	Pending    bool
	PendingURL template.URL
	Video      bool
	URL        string
}

func newBlockView(blk Block) blockView {
	v := blockView{ID: blk.ID}
	switch {
	case blk.IsText():
		// Text is trusted markup, sanitized at write time if at all.
		v.Text = true
		v.HTML = template.HTML(blk.Content)
	case blk.MediaType == MediaVideo && blk.IsPendingUpload():
		v.Pending = true
		v.PendingURL = template.URL(blk.URL)
	case blk.MediaType == MediaVideo:
		v.Video = true
		v.URL = blk.URL
	default:
		v.URL = blk.URL
	}
	return v
}

// Render writes the markup of the blocks to w, in order.
func Render(w io.Writer, blocks Blocks) error {
	views := make([]blockView, 0, len(blocks))
	for _, blk := range blocks {
		views = append(views, newBlockView(blk))
	}
	if err := blocksTmpl.Execute(w, views); err != nil {
		return errors.Wrap(err, "rendering blocks")
	}
	return nil
}

// RenderHTML returns the markup of the blocks.
func RenderHTML(blocks Blocks) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, blocks); err != nil {
		return "", err
	}
	return buf.String(), nil
}
