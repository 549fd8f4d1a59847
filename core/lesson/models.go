package lesson

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/cddtech/lessonhub/core"
	"github.com/cddtech/lessonhub/core/content"
)

const DefaultFlashcardColor = "bg-blue-100"

type (
	Lesson struct {
		ID         string      `json:"id"`
		CourseID   string      `json:"course_id"`
		Title      string      `json:"title"`
		Slug       string      `json:"slug"`
		Summary    string      `json:"summary"`
		LessonPlan string      `json:"lesson_plan"`
		GameURL    string      `json:"game_url"`
		PDFURL     string      `json:"pdf_url"`
		Order      int         `json:"order"`
		Content    string      `json:"content"` // stored body, see content.Parse
		Quizzes    []Quiz      `json:"quizzes"`
		Flashcards []Flashcard `json:"flashcards"`
		Media      []Media     `json:"media"`
		CreatedAt  time.Time   `json:"created_at"` // UTC
		UpdatedAt  time.Time   `json:"updated_at"` // UTC
	}

	Quiz struct {
		ID            string   `json:"id"`
		Question      string   `json:"question" validate:"required,notblank"`
		Options       []string `json:"options" validate:"required,min=2,dive,required"`
		CorrectOption int      `json:"correct_option" validate:"min=0"`
	}

	Flashcard struct {
		ID    string `json:"id"`
		Front string `json:"front" validate:"required,notblank"`
		Back  string `json:"back" validate:"required,notblank"`
		Color string `json:"color" validate:"omitempty,max=100"`
		Image string `json:"image" validate:"omitempty,url"`
	}

	// Media is a media block of the lesson body, listed on its own for galleries and search.
	Media struct {
		ID       string            `json:"id"`
		URL      string            `json:"url"`
		Type     content.MediaType `json:"type"`
		Position int               `json:"position"`
	}

	// Detail is a lesson with its parsed body.
	Detail struct {
		Lesson
		Blocks content.Blocks `json:"blocks"`
	}
)

// Blocks returns the parsed lesson body.
func (l Lesson) Blocks() content.Blocks {
	return content.Parse(l.Content)
}

func (l Lesson) Detail() Detail {
	return Detail{Lesson: l, Blocks: l.Blocks()}
}

// MediaFromBlocks lists the media blocks of a body, pending uploads excluded.
func MediaFromBlocks(blocks content.Blocks) []Media {
	media := make([]Media, 0)
	for _, blk := range blocks.Media() {
		if blk.IsPendingUpload() {
			continue
		}
		media = append(media, Media{ID: blk.ID, URL: blk.URL, Type: blk.MediaType, Position: len(media)})
	}
	return media
}

// NewLesson contains information needed to create a new Lesson, or replace an existing one.
type NewLesson struct {
	Title      string         `json:"title" validate:"required,min=3,max=200"`
	Summary    string         `json:"summary" validate:"omitempty,max=2000"`
	LessonPlan string         `json:"lesson_plan"`
	GameURL    string         `json:"game_url" validate:"omitempty,url"`
	PDFURL     string         `json:"pdf_url" validate:"omitempty,url"`
	Order      *int           `json:"order" validate:"omitempty,min=0"`
	Blocks     content.Blocks `json:"blocks"`
	Quizzes    []Quiz         `json:"quizzes" validate:"dive"`
	Flashcards []Flashcard    `json:"flashcards" validate:"dive"`
}

func (nl *NewLesson) Validate(validate *validator.Validate) error {
	nl.Title = core.CleanString(nl.Title)
	nl.Summary = core.CleanString(nl.Summary)
	nl.GameURL = content.NormalizeMediaURL(nl.GameURL)
	nl.PDFURL = core.CleanString(nl.PDFURL)
	for i := range nl.Quizzes {
		nl.Quizzes[i].Question = core.CleanString(nl.Quizzes[i].Question)
		for j := range nl.Quizzes[i].Options {
			nl.Quizzes[i].Options[j] = core.CleanString(nl.Quizzes[i].Options[j])
		}
	}
	for i := range nl.Flashcards {
		nl.Flashcards[i].Front = core.CleanString(nl.Flashcards[i].Front)
		nl.Flashcards[i].Back = core.CleanString(nl.Flashcards[i].Back)
		nl.Flashcards[i].Image = core.CleanString(nl.Flashcards[i].Image)
	}

	if err := validate.Struct(nl); err != nil {
		return err
	}
	if err := nl.Blocks.Validate(); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "blocks", Error: err.Error()})
	}
	return nil
}

// NewBlock describes a block appended to a lesson body.
// An empty media URL is not an error: nothing gets appended.
type NewBlock struct {
	Type      content.Kind      `json:"type" validate:"required,oneof=text media"`
	URL       string            `json:"url"`
	MediaType content.MediaType `json:"media_type" validate:"omitempty,oneof=video image"`
}

func (nb *NewBlock) Validate(validate *validator.Validate) error {
	if err := validate.Struct(nb); err != nil {
		return err
	}
	if nb.Type == content.KindMedia && nb.MediaType == "" {
		return core.NewValidationError(errMediaTypeRequired, core.FieldError{Field: "media_type", Error: errMediaTypeRequired.Error()})
	}
	return nil
}

type UpdateBlock struct {
	Content string `json:"content"`
}

type ReorderBlocks struct {
	IDs []string `json:"ids" validate:"required"`
}

func (rb *ReorderBlocks) Validate(validate *validator.Validate) error {
	return validate.Struct(rb)
}
