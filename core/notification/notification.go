// Package notification stores the in-app notifications shown to teachers.
package notification

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/cddtech/lessonhub/core"
	"github.com/cddtech/lessonhub/core/user"
)

var (
	ErrNotFound = core.NewNotFoundError("notification")

	nowFunc = func() time.Time { return time.Now().UTC() }
)

type (
	Notification struct {
		ID        string    `json:"id"`
		UserID    string    `json:"user_id"`
		Title     string    `json:"title"`
		Message   string    `json:"message"`
		Read      bool      `json:"read"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	Repository interface {
		CreateNotification(ctx context.Context, n Notification) (Notification, error)
		GetNotificationByID(ctx context.Context, id string) (Notification, error)
		// QueryNotifications lists the user notifications, newest first.
		QueryNotifications(ctx context.Context, userID string) ([]Notification, error)
		MarkRead(ctx context.Context, id string) (Notification, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Notify records a notification for the user.
func (svc *Service) Notify(ctx context.Context, userID, title, message string) error {
	n := Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		CreatedAt: nowFunc(),
	}
	if _, err := svc.repo.CreateNotification(ctx, n); err != nil {
		return errors.Wrap(err, "creating notification")
	}
	return nil
}

func (svc *Service) List(ctx context.Context, usr user.User) ([]Notification, error) {
	return svc.repo.QueryNotifications(ctx, usr.ID)
}

// MarkRead marks one of the user notifications as read.
// Notifications of other users are reported as not found.
func (svc *Service) MarkRead(ctx context.Context, usr user.User, id string) (Notification, error) {
	n, err := svc.repo.GetNotificationByID(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	if n.UserID != usr.ID {
		return Notification{}, ErrNotFound
	}
	if n.Read {
		return n, nil
	}
	return svc.repo.MarkRead(ctx, id)
}
