package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/cddtech/lessonhub/core/course"
	"github.com/cddtech/lessonhub/core/lesson"
)

type lessonRepository struct {
	db *DB
}

var _ lesson.Repository = (*lessonRepository)(nil) // interface compliance check

func NewLessonRepository(db *DB) lesson.Repository {
	return &lessonRepository{db: db}
}

func copyLesson(l lesson.Lesson) lesson.Lesson {
	quizzes := make([]lesson.Quiz, 0, len(l.Quizzes))
	for _, q := range l.Quizzes {
		q.Options = append([]string(nil), q.Options...)
		quizzes = append(quizzes, q)
	}
	l.Quizzes = quizzes
	l.Flashcards = append(make([]lesson.Flashcard, 0, len(l.Flashcards)), l.Flashcards...)
	l.Media = append(make([]lesson.Media, 0, len(l.Media)), l.Media...)
	return l
}

func (repo *lessonRepository) CreateLesson(_ context.Context, l lesson.Lesson) (lesson.Lesson, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.courses[l.CourseID]; !ok {
		return lesson.Lesson{}, course.ErrNotFound
	}
	l.ID = newID()
	stored := copyLesson(l)
	repo.db.lessons[l.ID] = &stored
	return copyLesson(l), nil
}

func (repo *lessonRepository) GetLessonByID(_ context.Context, id string) (lesson.Lesson, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if l, ok := repo.db.lessons[id]; ok {
		return copyLesson(*l), nil
	}
	return lesson.Lesson{}, lesson.ErrNotFound
}

func (repo *lessonRepository) QueryLessons(_ context.Context, courseID string) ([]lesson.Lesson, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	lessons := make([]lesson.Lesson, 0)
	for _, l := range repo.db.lessons {
		if l.CourseID == courseID {
			lessons = append(lessons, copyLesson(*l))
		}
	}
	sort.Slice(lessons, func(i, j int) bool {
		a, b := lessons[i], lessons[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return lessons, nil
}

func (repo *lessonRepository) UpdateLesson(_ context.Context, l lesson.Lesson) (lesson.Lesson, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.lessons[l.ID]
	if !ok {
		return lesson.Lesson{}, lesson.ErrNotFound
	}
	l.CourseID = orig.CourseID
	l.CreatedAt = orig.CreatedAt
	stored := copyLesson(l)
	repo.db.lessons[l.ID] = &stored
	return copyLesson(l), nil
}

func (repo *lessonRepository) UpdateContent(
	_ context.Context,
	id, raw string,
	media []lesson.Media,
	updatedAt time.Time,
) (lesson.Lesson, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	l, ok := repo.db.lessons[id]
	if !ok {
		return lesson.Lesson{}, lesson.ErrNotFound
	}
	l.Content = raw
	l.Media = append(make([]lesson.Media, 0, len(media)), media...)
	l.UpdatedAt = updatedAt
	return copyLesson(*l), nil
}

func (repo *lessonRepository) DeleteLesson(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.lessons, id)
	return nil
}
