package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/cddtech/lessonhub/core/content"
	"github.com/cddtech/lessonhub/core/course"
	"github.com/cddtech/lessonhub/core/lesson"
)

const lessonColumns = `id, course_id, title, slug, summary, lesson_plan, game_url, pdf_url, "order", content, created_at, updated_at`

type lessonRepository struct {
	db *sqlx.DB
}

var _ lesson.Repository = (*lessonRepository)(nil) // interface compliance check

func NewLessonRepository(db *sqlx.DB) lesson.Repository {
	return &lessonRepository{db: db}
}

type (
	lessonRow struct {
		ID         string    `db:"id"`
		CourseID   string    `db:"course_id"`
		Title      string    `db:"title"`
		Slug       string    `db:"slug"`
		Summary    string    `db:"summary"`
		LessonPlan string    `db:"lesson_plan"`
		GameURL    string    `db:"game_url"`
		PDFURL     string    `db:"pdf_url"`
		Order      int       `db:"order"`
		Content    string    `db:"content"`
		CreatedAt  time.Time `db:"created_at"`
		UpdatedAt  time.Time `db:"updated_at"`
	}

	quizRow struct {
		ID            string         `db:"id"`
		LessonID      string         `db:"lesson_id"`
		Question      string         `db:"question"`
		Options       pq.StringArray `db:"options"`
		CorrectOption int            `db:"correct_option"`
		Position      int            `db:"position"`
	}

	flashcardRow struct {
		ID       string      `db:"id"`
		LessonID string      `db:"lesson_id"`
		Front    string      `db:"front"`
		Back     string      `db:"back"`
		Color    string      `db:"color"`
		Image    null.String `db:"image"`
		Position int         `db:"position"`
	}

	mediaRow struct {
		ID       string `db:"id"`
		LessonID string `db:"lesson_id"`
		URL      string `db:"url"`
		Type     string `db:"type"`
		Position int    `db:"position"`
	}
)

func toLessonRow(l lesson.Lesson) lessonRow {
	return lessonRow{
		ID:         l.ID,
		CourseID:   l.CourseID,
		Title:      l.Title,
		Slug:       l.Slug,
		Summary:    l.Summary,
		LessonPlan: l.LessonPlan,
		GameURL:    l.GameURL,
		PDFURL:     l.PDFURL,
		Order:      l.Order,
		Content:    l.Content,
		CreatedAt:  l.CreatedAt.UTC(),
		UpdatedAt:  l.UpdatedAt.UTC(),
	}
}

func (row lessonRow) lesson() lesson.Lesson {
	return lesson.Lesson{
		ID:         row.ID,
		CourseID:   row.CourseID,
		Title:      row.Title,
		Slug:       row.Slug,
		Summary:    row.Summary,
		LessonPlan: row.LessonPlan,
		GameURL:    row.GameURL,
		PDFURL:     row.PDFURL,
		Order:      row.Order,
		Content:    row.Content,
		Quizzes:    []lesson.Quiz{},
		Flashcards: []lesson.Flashcard{},
		Media:      []lesson.Media{},
		CreatedAt:  row.CreatedAt.UTC(),
		UpdatedAt:  row.UpdatedAt.UTC(),
	}
}

func (repo *lessonRepository) CreateLesson(ctx context.Context, l lesson.Lesson) (lesson.Lesson, error) {
	if !isUUID(l.CourseID) {
		return lesson.Lesson{}, course.ErrNotFound
	}
	l.ID = newID()
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx,
			`INSERT INTO lesson (`+lessonColumns+`) VALUES (
				:id, :course_id, :title, :slug, :summary, :lesson_plan, :game_url, :pdf_url, :order,
				:content, :created_at, :updated_at)`,
			toLessonRow(l))
		if err != nil {
			if isForeignKeyViolation(err) {
				return course.ErrNotFound
			}
			return errors.Wrap(err, "inserting lesson")
		}
		return insertRelations(ctx, tx, l)
	})
	if err != nil {
		return lesson.Lesson{}, err
	}
	return repo.GetLessonByID(ctx, l.ID)
}

// insertRelations saves the lesson quizzes, flashcards and media, in order.
func insertRelations(ctx context.Context, tx *sqlx.Tx, l lesson.Lesson) error {
	for i, q := range l.Quizzes {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO quiz (id, lesson_id, question, options, correct_option, position) VALUES ($1, $2, $3, $4, $5, $6)`,
			q.ID, l.ID, q.Question, pq.StringArray(q.Options), q.CorrectOption, i)
		if err != nil {
			return errors.Wrap(err, "inserting quiz")
		}
	}
	for i, f := range l.Flashcards {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO flashcard (id, lesson_id, front, back, color, image, position) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			f.ID, l.ID, f.Front, f.Back, f.Color, null.NewString(f.Image, f.Image != ""), i)
		if err != nil {
			return errors.Wrap(err, "inserting flashcard")
		}
	}
	return insertMedia(ctx, tx, l.ID, l.Media)
}

func insertMedia(ctx context.Context, tx *sqlx.Tx, lessonID string, media []lesson.Media) error {
	for _, m := range media {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO lesson_media (id, lesson_id, url, type, position) VALUES ($1, $2, $3, $4, $5)`,
			m.ID, lessonID, m.URL, string(m.Type), m.Position)
		if err != nil {
			return errors.Wrap(err, "inserting lesson media")
		}
	}
	return nil
}

func deleteRelations(ctx context.Context, tx *sqlx.Tx, lessonID string, tables ...string) error {
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE lesson_id = $1`, lessonID); err != nil {
			return errors.Wrapf(err, "deleting %s", table)
		}
	}
	return nil
}

func (repo *lessonRepository) GetLessonByID(ctx context.Context, id string) (lesson.Lesson, error) {
	if !isUUID(id) {
		return lesson.Lesson{}, lesson.ErrNotFound
	}
	var row lessonRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+lessonColumns+` FROM lesson WHERE id = $1`, id); err != nil {
		return lesson.Lesson{}, trapNoRowsErr(err, lesson.ErrNotFound, "finding lesson by ID")
	}
	lessons, err := repo.withRelations(ctx, []lessonRow{row})
	if err != nil {
		return lesson.Lesson{}, err
	}
	return lessons[0], nil
}

func (repo *lessonRepository) QueryLessons(ctx context.Context, courseID string) ([]lesson.Lesson, error) {
	if !isUUID(courseID) {
		return []lesson.Lesson{}, nil
	}
	var rows []lessonRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT `+lessonColumns+` FROM lesson WHERE course_id = $1 ORDER BY "order", created_at, id`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying lessons")
	}
	return repo.withRelations(ctx, rows)
}

// withRelations loads the quizzes, flashcards and media of the lessons, three queries in all.
func (repo *lessonRepository) withRelations(ctx context.Context, rows []lessonRow) ([]lesson.Lesson, error) {
	lessons := make([]lesson.Lesson, 0, len(rows))
	if len(rows) == 0 {
		return lessons, nil
	}
	ids := make([]string, 0, len(rows))
	byID := make(map[string]int, len(rows))
	for i, row := range rows {
		ids = append(ids, row.ID)
		byID[row.ID] = i
		lessons = append(lessons, row.lesson())
	}

	var quizzes []quizRow
	err := repo.db.SelectContext(ctx, &quizzes,
		`SELECT id, lesson_id, question, options, correct_option, position FROM quiz
		WHERE lesson_id::text = ANY($1) ORDER BY position`, pq.Array(ids))
	if err != nil {
		return nil, errors.Wrap(err, "querying quizzes")
	}
	for _, q := range quizzes {
		l := &lessons[byID[q.LessonID]]
		l.Quizzes = append(l.Quizzes, lesson.Quiz{
			ID: q.ID, Question: q.Question, Options: []string(q.Options), CorrectOption: q.CorrectOption,
		})
	}

	var cards []flashcardRow
	err = repo.db.SelectContext(ctx, &cards,
		`SELECT id, lesson_id, front, back, color, image, position FROM flashcard
		WHERE lesson_id::text = ANY($1) ORDER BY position`, pq.Array(ids))
	if err != nil {
		return nil, errors.Wrap(err, "querying flashcards")
	}
	for _, f := range cards {
		l := &lessons[byID[f.LessonID]]
		l.Flashcards = append(l.Flashcards, lesson.Flashcard{
			ID: f.ID, Front: f.Front, Back: f.Back, Color: f.Color, Image: f.Image.String,
		})
	}

	var media []mediaRow
	err = repo.db.SelectContext(ctx, &media,
		`SELECT id, lesson_id, url, type, position FROM lesson_media
		WHERE lesson_id::text = ANY($1) ORDER BY position`, pq.Array(ids))
	if err != nil {
		return nil, errors.Wrap(err, "querying lesson media")
	}
	for _, m := range media {
		l := &lessons[byID[m.LessonID]]
		l.Media = append(l.Media, lesson.Media{
			ID: m.ID, URL: m.URL, Type: content.MediaType(m.Type), Position: m.Position,
		})
	}
	return lessons, nil
}

func (repo *lessonRepository) UpdateLesson(ctx context.Context, l lesson.Lesson) (lesson.Lesson, error) {
	if !isUUID(l.ID) {
		return lesson.Lesson{}, lesson.ErrNotFound
	}
	row := toLessonRow(l)
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE lesson SET
				title = $2, slug = $3, summary = $4, lesson_plan = $5, game_url = $6, pdf_url = $7,
				"order" = $8, content = $9, updated_at = $10
			WHERE id = $1`,
			row.ID, row.Title, row.Slug, row.Summary, row.LessonPlan, row.GameURL, row.PDFURL,
			row.Order, row.Content, row.UpdatedAt)
		if err != nil {
			return errors.Wrap(err, "updating lesson")
		}
		if n, err := res.RowsAffected(); err != nil {
			return errors.Wrap(err, "updating lesson")
		} else if n == 0 {
			return lesson.ErrNotFound
		}
		if err = deleteRelations(ctx, tx, l.ID, "quiz", "flashcard", "lesson_media"); err != nil {
			return err
		}
		return insertRelations(ctx, tx, l)
	})
	if err != nil {
		return lesson.Lesson{}, err
	}
	return repo.GetLessonByID(ctx, l.ID)
}

func (repo *lessonRepository) UpdateContent(
	ctx context.Context,
	id, raw string,
	media []lesson.Media,
	updatedAt time.Time,
) (lesson.Lesson, error) {
	if !isUUID(id) {
		return lesson.Lesson{}, lesson.ErrNotFound
	}
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE lesson SET content = $2, updated_at = $3 WHERE id = $1`, id, raw, updatedAt.UTC())
		if err != nil {
			return errors.Wrap(err, "updating lesson content")
		}
		if n, err := res.RowsAffected(); err != nil {
			return errors.Wrap(err, "updating lesson content")
		} else if n == 0 {
			return lesson.ErrNotFound
		}
		if err = deleteRelations(ctx, tx, id, "lesson_media"); err != nil {
			return err
		}
		return insertMedia(ctx, tx, id, media)
	})
	if err != nil {
		return lesson.Lesson{}, err
	}
	return repo.GetLessonByID(ctx, id)
}

// DeleteLesson relies on ON DELETE CASCADE for the lesson relations.
func (repo *lessonRepository) DeleteLesson(ctx context.Context, id string) error {
	if !isUUID(id) {
		return nil
	}
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM lesson WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting lesson")
	}
	return nil
}
