// Package inmemdb implements the repositories in memory, for tests and database-less dev runs.
package inmemdb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/cddtech/lessonhub/core/course"
	"github.com/cddtech/lessonhub/core/lesson"
	"github.com/cddtech/lessonhub/core/library"
	"github.com/cddtech/lessonhub/core/notification"
	"github.com/cddtech/lessonhub/core/user"
)

// DB holds every table behind one lock, so that cascades and joins stay consistent.
type DB struct {
	sync.RWMutex
	users         map[string]*user.User
	courses       map[string]*course.Course
	lessons       map[string]*lesson.Lesson
	libraryItems  map[libraryKey]*library.Item
	notifications map[string]*notification.Notification
}

type libraryKey struct {
	userID, courseID string
}

func Open() *DB {
	return &DB{
		users:         make(map[string]*user.User),
		courses:       make(map[string]*course.Course),
		lessons:       make(map[string]*lesson.Lesson),
		libraryItems:  make(map[libraryKey]*library.Item),
		notifications: make(map[string]*notification.Notification),
	}
}

// Reset empties every table.
func (db *DB) Reset() {
	db.Lock()
	defer db.Unlock()
	db.users = make(map[string]*user.User)
	db.courses = make(map[string]*course.Course)
	db.lessons = make(map[string]*lesson.Lesson)
	db.libraryItems = make(map[libraryKey]*library.Item)
	db.notifications = make(map[string]*notification.Notification)
}

func newID() string {
	return uuid.New().String()
}
