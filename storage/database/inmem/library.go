package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/cddtech/lessonhub/core/course"
	"github.com/cddtech/lessonhub/core/library"
)

type libraryRepository struct {
	db *DB
}

var _ library.Repository = (*libraryRepository)(nil) // interface compliance check

func NewLibraryRepository(db *DB) library.Repository {
	return &libraryRepository{db: db}
}

func (repo *libraryRepository) AddItem(_ context.Context, userID, courseID string, savedAt time.Time) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.courses[courseID]; !ok {
		return course.ErrNotFound
	}
	key := libraryKey{userID: userID, courseID: courseID}
	if _, ok := repo.db.libraryItems[key]; ok {
		return nil
	}
	repo.db.libraryItems[key] = &library.Item{UserID: userID, CourseID: courseID, SavedAt: savedAt}
	return nil
}

func (repo *libraryRepository) RemoveItem(_ context.Context, userID, courseID string) (bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := libraryKey{userID: userID, courseID: courseID}
	if _, ok := repo.db.libraryItems[key]; !ok {
		return false, nil
	}
	delete(repo.db.libraryItems, key)
	return true, nil
}

func (repo *libraryRepository) QueryItems(_ context.Context, userID string) ([]library.Item, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.items(userID), nil
}

// items lists the user items, most recently saved first. The caller holds the lock.
func (repo *libraryRepository) items(userID string) []library.Item {
	items := make([]library.Item, 0)
	for key, item := range repo.db.libraryItems {
		if key.userID == userID {
			items = append(items, *item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].SavedAt.Equal(items[j].SavedAt) {
			return items[i].SavedAt.After(items[j].SavedAt)
		}
		return items[i].CourseID < items[j].CourseID
	})
	return items
}

func (repo *libraryRepository) SavedCourseIDs(_ context.Context, userID string) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	items := repo.items(userID)
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.CourseID)
	}
	return ids, nil
}

func (repo *libraryRepository) CountSaves(_ context.Context, courseIDs ...string) (map[string]int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	wanted := make(map[string]bool, len(courseIDs))
	for _, id := range courseIDs {
		wanted[id] = true
	}
	counts := make(map[string]int, len(courseIDs))
	for key := range repo.db.libraryItems {
		if wanted[key.courseID] {
			counts[key.courseID]++
		}
	}
	return counts, nil
}
