package sqlxrepos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/cddtech/lessonhub/core/course"
)

const courseColumns = `id, teacher_id, title, description, subject, grade, color, thumbnail, is_public, published, created_at, updated_at`

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

type courseRow struct {
	ID          string    `db:"id"`
	TeacherID   string    `db:"teacher_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Subject     string    `db:"subject"`
	Grade       string    `db:"grade"`
	Color       string    `db:"color"`
	Thumbnail   string    `db:"thumbnail"`
	IsPublic    bool      `db:"is_public"`
	Published   bool      `db:"published"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func toCourseRow(c course.Course) courseRow {
	return courseRow{
		ID:          c.ID,
		TeacherID:   c.TeacherID,
		Title:       c.Title,
		Description: c.Description,
		Subject:     c.Subject,
		Grade:       c.Grade,
		Color:       c.Color,
		Thumbnail:   c.Thumbnail,
		IsPublic:    c.IsPublic,
		Published:   c.Published,
		CreatedAt:   c.CreatedAt.UTC(),
		UpdatedAt:   c.UpdatedAt.UTC(),
	}
}

func (row courseRow) course() course.Course {
	return course.Course{
		ID:          row.ID,
		TeacherID:   row.TeacherID,
		Title:       row.Title,
		Description: row.Description,
		Subject:     row.Subject,
		Grade:       row.Grade,
		Color:       row.Color,
		Thumbnail:   row.Thumbnail,
		IsPublic:    row.IsPublic,
		Published:   row.Published,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	c.ID = newID()
	row := toCourseRow(c)
	_, err := repo.db.NamedExecContext(ctx,
		`INSERT INTO course (`+courseColumns+`) VALUES (
			:id, :teacher_id, :title, :description, :subject, :grade, :color, :thumbnail,
			:is_public, :published, :created_at, :updated_at)`,
		row)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return row.course(), nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	if !isUUID(id) {
		return course.Course{}, course.ErrNotFound
	}
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+courseColumns+` FROM course WHERE id = $1`, id); err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrNotFound, "finding course by ID")
	}
	return row.course(), nil
}

func (repo *courseRepository) QueryCourses(ctx context.Context, filter course.QueryFilter) ([]course.Course, error) {
	var (
		conds []string
		args  []interface{}
	)
	where := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.TeacherID != "" {
		if !isUUID(filter.TeacherID) {
			return []course.Course{}, nil
		}
		where("teacher_id = $%d", filter.TeacherID)
	}
	if filter.SharedOnly {
		conds = append(conds, "is_public AND published")
	}
	if filter.Search != "" {
		where("title ILIKE '%%' || $%d || '%%'", filter.Search)
	}
	if filter.Subject != "" {
		where("LOWER(subject) = LOWER($%d)", filter.Subject)
	}
	if filter.Grade != "" {
		where("LOWER(grade) = LOWER($%d)", filter.Grade)
	}

	q := `SELECT ` + courseColumns + ` FROM course`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += orderBy(filter.Ordering, course.OrderingFields, "id ASC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.course())
	}
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	if !isUUID(c.ID) {
		return course.Course{}, course.ErrNotFound
	}
	row := toCourseRow(c)
	var updated courseRow
	err := repo.db.GetContext(ctx, &updated,
		`UPDATE course SET
			title = $2, description = $3, subject = $4, grade = $5, color = $6, thumbnail = $7,
			is_public = $8, published = $9, updated_at = $10
		WHERE id = $1 RETURNING `+courseColumns,
		row.ID, row.Title, row.Description, row.Subject, row.Grade, row.Color, row.Thumbnail,
		row.IsPublic, row.Published, row.UpdatedAt)
	if err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrNotFound, "updating course")
	}
	return updated.course(), nil
}

// DeleteCourse relies on ON DELETE CASCADE for lessons and library items.
func (repo *courseRepository) DeleteCourse(ctx context.Context, id string) error {
	if !isUUID(id) {
		return nil
	}
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM course WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return nil
}

type countRow struct {
	ID    string `db:"id"`
	Count int    `db:"count"`
}

func countsByID(rows []countRow) map[string]int {
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.ID] = row.Count
	}
	return counts
}

func (repo *courseRepository) CountLessons(ctx context.Context, ids ...string) (map[string]int, error) {
	if ids = uuids(ids); len(ids) == 0 {
		return map[string]int{}, nil
	}
	var rows []countRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT course_id AS id, COUNT(*) AS count FROM lesson WHERE course_id::text = ANY($1) GROUP BY course_id`,
		pq.Array(ids))
	if err != nil {
		return nil, errors.Wrap(err, "counting lessons")
	}
	return countsByID(rows), nil
}
