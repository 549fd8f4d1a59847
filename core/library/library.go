// Package library keeps the courses each teacher saved for later, their own included.
package library

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/cddtech/lessonhub/core"
	"github.com/cddtech/lessonhub/core/course"
	"github.com/cddtech/lessonhub/core/user"
)

var nowFunc = func() time.Time { return time.Now().UTC() }

type (
	Item struct {
		UserID   string    `json:"user_id"`
		CourseID string    `json:"course_id"`
		SavedAt  time.Time `json:"saved_at"` // UTC
	}

	// SavedCourse is a library entry as listed to its owner.
	SavedCourse struct {
		course.Course
		SavedAt time.Time `json:"saved_at"`
	}

	Repository interface {
		course.Library
		// RemoveItem reports whether the item existed.
		RemoveItem(ctx context.Context, userID, courseID string) (bool, error)
		// QueryItems lists the user items, most recently saved first.
		QueryItems(ctx context.Context, userID string) ([]Item, error)
	}

	// Courses resolves the courses a user may read.
	Courses interface {
		Get(ctx context.Context, usr user.User, id string) (course.Course, error)
	}

	Service struct {
		repo    Repository
		courses Courses
	}
)

func NewService(repo Repository, courses Courses) *Service {
	return &Service{repo: repo, courses: courses}
}

// Toggle saves the course in the user library, or removes it if already there.
// It returns whether the course ends up saved.
func (svc *Service) Toggle(ctx context.Context, usr user.User, courseID string) (bool, error) {
	if _, err := svc.courses.Get(ctx, usr, courseID); err != nil {
		return false, err
	}

	removed, err := svc.repo.RemoveItem(ctx, usr.ID, courseID)
	if err != nil {
		return false, errors.Wrap(err, "removing library item")
	}
	if removed {
		return false, nil
	}
	if err = svc.repo.AddItem(ctx, usr.ID, courseID, nowFunc()); err != nil {
		return false, errors.Wrap(err, "adding library item")
	}
	return true, nil
}

// List returns the saved courses the user can still read, most recently saved first.
func (svc *Service) List(ctx context.Context, usr user.User) ([]SavedCourse, error) {
	items, err := svc.repo.QueryItems(ctx, usr.ID)
	if err != nil {
		return nil, errors.Wrap(err, "querying library items")
	}

	saved := make([]SavedCourse, 0, len(items))
	for _, item := range items {
		c, err := svc.courses.Get(ctx, usr, item.CourseID)
		if err != nil {
			if core.IsNotFound(err) { // unshared since saved
				continue
			}
			return nil, errors.Wrap(err, "getting course")
		}
		saved = append(saved, SavedCourse{Course: c, SavedAt: item.SavedAt})
	}
	return saved, nil
}
