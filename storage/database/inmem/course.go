package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/cddtech/lessonhub/core"
	"github.com/cddtech/lessonhub/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(_ context.Context, c course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c.ID = newID()
	stored := c
	repo.db.courses[c.ID] = &stored
	return c, nil
}

func (repo *courseRepository) GetCourseByID(_ context.Context, id string) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.courses[id]; ok {
		return *c, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) QueryCourses(_ context.Context, filter course.QueryFilter) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	search := strings.ToLower(filter.Search)
	courses := make([]course.Course, 0)
	for _, c := range repo.db.courses {
		if filter.TeacherID != "" && c.TeacherID != filter.TeacherID {
			continue
		}
		if filter.SharedOnly && !c.IsShared() {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Title), search) {
			continue
		}
		if filter.Subject != "" && !strings.EqualFold(c.Subject, filter.Subject) {
			continue
		}
		if filter.Grade != "" && !strings.EqualFold(c.Grade, filter.Grade) {
			continue
		}
		courses = append(courses, *c)
	}

	sortCourses(courses, filter.Ordering)
	if filter.Limit > 0 && len(courses) > filter.Limit {
		courses = courses[:filter.Limit]
	}
	return courses, nil
}

// sortCourses orders by `ordering`, then by ID for a stable result.
func sortCourses(courses []course.Course, ordering []core.DBOrdering) {
	sort.SliceStable(courses, func(i, j int) bool {
		a, b := courses[i], courses[j]
		for _, ord := range ordering {
			cmp := compareCourses(a, b, ord.Field)
			if cmp == 0 {
				continue
			}
			if ord.Ascending {
				return cmp < 0
			}
			return cmp > 0
		}
		return a.ID < b.ID
	})
}

func compareCourses(a, b course.Course, field string) int {
	switch field {
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "subject":
		return strings.Compare(a.Subject, b.Subject)
	case "grade":
		return strings.Compare(a.Grade, b.Grade)
	case "created_at":
		return compareTimes(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano())
	case "updated_at":
		return compareTimes(a.UpdatedAt.UnixNano(), b.UpdatedAt.UnixNano())
	}
	return 0
}

func compareTimes(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (repo *courseRepository) UpdateCourse(_ context.Context, c course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.courses[c.ID]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	c.TeacherID = orig.TeacherID
	c.CreatedAt = orig.CreatedAt
	stored := c
	repo.db.courses[c.ID] = &stored
	return c, nil
}

func (repo *courseRepository) DeleteCourse(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.courses, id)
	for lid, l := range repo.db.lessons {
		if l.CourseID == id {
			delete(repo.db.lessons, lid)
		}
	}
	for key := range repo.db.libraryItems {
		if key.courseID == id {
			delete(repo.db.libraryItems, key)
		}
	}
	return nil
}

func (repo *courseRepository) CountLessons(_ context.Context, ids ...string) (map[string]int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	counts := make(map[string]int, len(ids))
	for _, l := range repo.db.lessons {
		if wanted[l.CourseID] {
			counts[l.CourseID]++
		}
	}
	return counts, nil
}
