package lesson

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/cddtech/lessonhub/core"
	"github.com/cddtech/lessonhub/core/content"
	"github.com/cddtech/lessonhub/core/course"
	"github.com/cddtech/lessonhub/core/upload"
	"github.com/cddtech/lessonhub/core/user"
)

const postedTitle = "Lesson Posted"

var (
	// errors
	ErrNotFound = core.NewNotFoundError("lesson")

	nowFunc = func() time.Time { return time.Now().UTC() }
	newID   = content.NewID
)

type (
	Repository interface {
		// CreateLesson saves the lesson with its quizzes, flashcards and media.
		CreateLesson(ctx context.Context, l Lesson) (Lesson, error)
		GetLessonByID(ctx context.Context, id string) (Lesson, error)
		// QueryLessons lists the course lessons by Order, then CreatedAt.
		QueryLessons(ctx context.Context, courseID string) ([]Lesson, error)
		// UpdateLesson replaces every field and relation of the lesson.
		UpdateLesson(ctx context.Context, l Lesson) (Lesson, error)
		// UpdateContent replaces the lesson body and its media, in one go.
		UpdateContent(ctx context.Context, id, raw string, media []Media, updatedAt time.Time) (Lesson, error)
		DeleteLesson(ctx context.Context, id string) error
	}

	// Courses resolves the courses lessons belong to.
	Courses interface {
		Get(ctx context.Context, usr user.User, id string) (course.Course, error)
		GetOwned(ctx context.Context, usr user.User, id string) (course.Course, error)
		Touch(ctx context.Context, c course.Course) error
	}

	Notifier interface {
		Notify(ctx context.Context, userID, title, message string) error
	}

	Uploader interface {
		Upload(ctx context.Context, f upload.File) (upload.Result, error)
	}

	Service struct {
		repo     Repository
		courses  Courses
		notifier Notifier
		uploader Uploader
		validate *validator.Validate
		logger   core.Logger
	}
)

func NewService(
	repo Repository,
	courses Courses,
	notifier Notifier,
	uploader Uploader,
	validate *validator.Validate,
	logger core.Logger,
) *Service {
	return &Service{
		repo:     repo,
		courses:  courses,
		notifier: notifier,
		uploader: uploader,
		validate: validate,
		logger:   logger,
	}
}

func (svc *Service) Create(ctx context.Context, usr user.User, courseID string, nl NewLesson) (Lesson, error) {
	c, err := svc.courses.GetOwned(ctx, usr, courseID)
	if err != nil {
		return Lesson{}, err
	}
	if err = nl.Validate(svc.validate); err != nil {
		return Lesson{}, err
	}

	now := nowFunc()
	l := Lesson{CourseID: c.ID, CreatedAt: now}
	if nl.Order == nil {
		lessons, err := svc.repo.QueryLessons(ctx, c.ID)
		if err != nil {
			return Lesson{}, errors.Wrap(err, "querying lessons")
		}
		l.Order = len(lessons)
	}
	if nl.Blocks == nil {
		nl.Blocks = content.NewDocument(newID())
	}
	if err = fill(&l, nl, now); err != nil {
		return Lesson{}, err
	}

	l, err = svc.repo.CreateLesson(ctx, l)
	if err != nil {
		return Lesson{}, errors.Wrap(err, "creating lesson")
	}
	svc.afterSave(ctx, c)

	msg := fmt.Sprintf(`You successfully posted the lesson: "%s"`, l.Title)
	if err = svc.notifier.Notify(ctx, usr.ID, postedTitle, msg); err != nil {
		// the lesson is saved: do not fail the request
		svc.logger.Error("notifying lesson posted", errors.Wrap(err, "notifying"), usr)
	}
	return l, nil
}

// fill copies the validated NewLesson onto the lesson. A nil body keeps the current one.
func fill(l *Lesson, nl NewLesson, now time.Time) error {
	if nl.Blocks != nil {
		raw, err := nl.Blocks.Marshal()
		if err != nil {
			return errors.Wrap(err, "marshaling blocks")
		}
		l.Content = raw
		l.Media = MediaFromBlocks(nl.Blocks)
	}

	l.Title = nl.Title
	l.Slug = core.Slugify(nl.Title)
	l.Summary = nl.Summary
	l.LessonPlan = nl.LessonPlan
	l.GameURL = nl.GameURL
	l.PDFURL = nl.PDFURL
	if nl.Order != nil {
		l.Order = *nl.Order
	}
	l.UpdatedAt = now

	l.Quizzes = make([]Quiz, 0, len(nl.Quizzes))
	for _, q := range nl.Quizzes {
		q.ID = newID()
		l.Quizzes = append(l.Quizzes, q)
	}
	l.Flashcards = make([]Flashcard, 0, len(nl.Flashcards))
	for _, f := range nl.Flashcards {
		f.ID = newID()
		if f.Color == "" {
			f.Color = DefaultFlashcardColor
		}
		l.Flashcards = append(l.Flashcards, f)
	}
	return nil
}

func (svc *Service) afterSave(ctx context.Context, c course.Course) {
	if err := svc.courses.Touch(ctx, c); err != nil {
		svc.logger.Warn("touching course", err)
	}
}

// Get returns the lesson if `usr` may read its course.
func (svc *Service) Get(ctx context.Context, usr user.User, id string) (Lesson, error) {
	l, err := svc.repo.GetLessonByID(ctx, id)
	if err != nil {
		return Lesson{}, err
	}
	if _, err = svc.courses.Get(ctx, usr, l.CourseID); err != nil {
		if core.IsNotFound(err) {
			return Lesson{}, ErrNotFound
		}
		return Lesson{}, err
	}
	return l, nil
}

// getOwned returns the lesson and its course if `usr` authored the course.
func (svc *Service) getOwned(ctx context.Context, usr user.User, id string) (Lesson, course.Course, error) {
	l, err := svc.repo.GetLessonByID(ctx, id)
	if err != nil {
		return Lesson{}, course.Course{}, err
	}
	c, err := svc.courses.GetOwned(ctx, usr, l.CourseID)
	if err != nil {
		if core.IsNotFound(err) {
			return Lesson{}, course.Course{}, ErrNotFound
		}
		return Lesson{}, course.Course{}, err
	}
	return l, c, nil
}

func (svc *Service) List(ctx context.Context, usr user.User, courseID string) ([]Lesson, error) {
	if _, err := svc.courses.Get(ctx, usr, courseID); err != nil {
		return nil, err
	}
	lessons, err := svc.repo.QueryLessons(ctx, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying lessons")
	}
	if lessons == nil {
		lessons = []Lesson{}
	}
	return lessons, nil
}

// Update replaces the lesson fields and relations. A nil body keeps the current one.
func (svc *Service) Update(ctx context.Context, usr user.User, id string, nl NewLesson) (Lesson, error) {
	l, c, err := svc.getOwned(ctx, usr, id)
	if err != nil {
		return Lesson{}, err
	}
	if err = nl.Validate(svc.validate); err != nil {
		return Lesson{}, err
	}
	if err = fill(&l, nl, nowFunc()); err != nil {
		return Lesson{}, err
	}

	l, err = svc.repo.UpdateLesson(ctx, l)
	if err != nil {
		return Lesson{}, errors.Wrap(err, "updating lesson")
	}
	svc.afterSave(ctx, c)
	return l, nil
}

func (svc *Service) Delete(ctx context.Context, usr user.User, id string) error {
	if _, _, err := svc.getOwned(ctx, usr, id); err != nil {
		return err
	}
	if err := svc.repo.DeleteLesson(ctx, id); err != nil {
		return errors.Wrap(err, "deleting lesson")
	}
	return nil
}
