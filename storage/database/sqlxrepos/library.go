package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/cddtech/lessonhub/core/course"
	"github.com/cddtech/lessonhub/core/library"
)

type libraryRepository struct {
	db *sqlx.DB
}

var _ library.Repository = (*libraryRepository)(nil) // interface compliance check

func NewLibraryRepository(db *sqlx.DB) library.Repository {
	return &libraryRepository{db: db}
}

type libraryItemRow struct {
	UserID   string    `db:"user_id"`
	CourseID string    `db:"course_id"`
	SavedAt  time.Time `db:"saved_at"`
}

func (repo *libraryRepository) AddItem(ctx context.Context, userID, courseID string, savedAt time.Time) error {
	if !isUUID(courseID) {
		return course.ErrNotFound
	}
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO library_item (user_id, course_id, saved_at) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, course_id) DO NOTHING`,
		userID, courseID, savedAt.UTC())
	if err != nil {
		if isForeignKeyViolation(err) {
			return course.ErrNotFound
		}
		return errors.Wrap(err, "inserting library item")
	}
	return nil
}

func (repo *libraryRepository) RemoveItem(ctx context.Context, userID, courseID string) (bool, error) {
	if !isUUID(userID) || !isUUID(courseID) {
		return false, nil
	}
	res, err := repo.db.ExecContext(ctx,
		`DELETE FROM library_item WHERE user_id = $1 AND course_id = $2`, userID, courseID)
	if err != nil {
		return false, errors.Wrap(err, "deleting library item")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "deleting library item")
	}
	return n > 0, nil
}

func (repo *libraryRepository) QueryItems(ctx context.Context, userID string) ([]library.Item, error) {
	items := make([]library.Item, 0)
	if !isUUID(userID) {
		return items, nil
	}
	var rows []libraryItemRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT user_id, course_id, saved_at FROM library_item WHERE user_id = $1 ORDER BY saved_at DESC, course_id`,
		userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying library items")
	}
	for _, row := range rows {
		items = append(items, library.Item{UserID: row.UserID, CourseID: row.CourseID, SavedAt: row.SavedAt.UTC()})
	}
	return items, nil
}

func (repo *libraryRepository) SavedCourseIDs(ctx context.Context, userID string) ([]string, error) {
	items, err := repo.QueryItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.CourseID)
	}
	return ids, nil
}

func (repo *libraryRepository) CountSaves(ctx context.Context, courseIDs ...string) (map[string]int, error) {
	if courseIDs = uuids(courseIDs); len(courseIDs) == 0 {
		return map[string]int{}, nil
	}
	var rows []countRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT course_id AS id, COUNT(*) AS count FROM library_item WHERE course_id::text = ANY($1) GROUP BY course_id`,
		pq.Array(courseIDs))
	if err != nil {
		return nil, errors.Wrap(err, "counting saves")
	}
	return countsByID(rows), nil
}
