package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/cddtech/lessonhub/core/notification"
)

const notificationColumns = `id, user_id, title, message, read, created_at`

type notificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *sqlx.DB) notification.Repository {
	return &notificationRepository{db: db}
}

type notificationRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Title     string    `db:"title"`
	Message   string    `db:"message"`
	Read      bool      `db:"read"`
	CreatedAt time.Time `db:"created_at"`
}

func (row notificationRow) notification() notification.Notification {
	return notification.Notification{
		ID:        row.ID,
		UserID:    row.UserID,
		Title:     row.Title,
		Message:   row.Message,
		Read:      row.Read,
		CreatedAt: row.CreatedAt.UTC(),
	}
}

func (repo *notificationRepository) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	n.ID = newID()
	n.CreatedAt = n.CreatedAt.UTC()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO notification (`+notificationColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.UserID, n.Title, n.Message, n.Read, n.CreatedAt)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return n, nil
}

func (repo *notificationRepository) GetNotificationByID(ctx context.Context, id string) (notification.Notification, error) {
	if !isUUID(id) {
		return notification.Notification{}, notification.ErrNotFound
	}
	var row notificationRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+notificationColumns+` FROM notification WHERE id = $1`, id)
	if err != nil {
		return notification.Notification{}, trapNoRowsErr(err, notification.ErrNotFound, "finding notification by ID")
	}
	return row.notification(), nil
}

func (repo *notificationRepository) QueryNotifications(ctx context.Context, userID string) ([]notification.Notification, error) {
	notifs := make([]notification.Notification, 0)
	if !isUUID(userID) {
		return notifs, nil
	}
	var rows []notificationRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT `+notificationColumns+` FROM notification WHERE user_id = $1 ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	for _, row := range rows {
		notifs = append(notifs, row.notification())
	}
	return notifs, nil
}

func (repo *notificationRepository) MarkRead(ctx context.Context, id string) (notification.Notification, error) {
	if !isUUID(id) {
		return notification.Notification{}, notification.ErrNotFound
	}
	var row notificationRow
	err := repo.db.GetContext(ctx, &row,
		`UPDATE notification SET read = TRUE WHERE id = $1 RETURNING `+notificationColumns, id)
	if err != nil {
		return notification.Notification{}, trapNoRowsErr(err, notification.ErrNotFound, "marking notification read")
	}
	return row.notification(), nil
}
