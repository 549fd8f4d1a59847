package inmemdb

import (
	"context"
	"sort"

	"github.com/cddtech/lessonhub/core/notification"
)

type notificationRepository struct {
	db *DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) CreateNotification(_ context.Context, n notification.Notification) (notification.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	n.ID = newID()
	stored := n
	repo.db.notifications[n.ID] = &stored
	return n, nil
}

func (repo *notificationRepository) GetNotificationByID(_ context.Context, id string) (notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if n, ok := repo.db.notifications[id]; ok {
		return *n, nil
	}
	return notification.Notification{}, notification.ErrNotFound
}

func (repo *notificationRepository) QueryNotifications(_ context.Context, userID string) ([]notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	notifs := make([]notification.Notification, 0)
	for _, n := range repo.db.notifications {
		if n.UserID == userID {
			notifs = append(notifs, *n)
		}
	}
	sort.Slice(notifs, func(i, j int) bool {
		if !notifs[i].CreatedAt.Equal(notifs[j].CreatedAt) {
			return notifs[i].CreatedAt.After(notifs[j].CreatedAt)
		}
		return notifs[i].ID < notifs[j].ID
	})
	return notifs, nil
}

func (repo *notificationRepository) MarkRead(_ context.Context, id string) (notification.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	n, ok := repo.db.notifications[id]
	if !ok {
		return notification.Notification{}, notification.ErrNotFound
	}
	n.Read = true
	return *n, nil
}
