package course

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/cddtech/lessonhub/core"
	"github.com/cddtech/lessonhub/core/user"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("course")

	nowFunc = func() time.Time { return time.Now().UTC() }
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, c Course) (Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		// QueryCourses applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Course.Title.
		QueryCourses(ctx context.Context, filter QueryFilter) ([]Course, error)
		UpdateCourse(ctx context.Context, c Course) (Course, error)
		// DeleteCourse also deletes the course lessons and library items.
		DeleteCourse(ctx context.Context, id string) error
		// CountLessons returns the number of lessons per course id.
		CountLessons(ctx context.Context, ids ...string) (map[string]int, error)
	}

	// Library is the saved-courses store, as courses see it.
	Library interface {
		// AddItem saves the course in the user's library. Saving twice is a no-op.
		AddItem(ctx context.Context, userID, courseID string, savedAt time.Time) error
		SavedCourseIDs(ctx context.Context, userID string) ([]string, error)
		// CountSaves returns the number of libraries holding each course.
		CountSaves(ctx context.Context, courseIDs ...string) (map[string]int, error)
	}

	// Teachers resolves the public view of course authors.
	Teachers interface {
		Summaries(ctx context.Context, ids ...string) (map[string]user.Summary, error)
	}

	Service struct {
		repo     Repository
		library  Library
		teachers Teachers
		validate *validator.Validate
	}
)

func NewService(repo Repository, library Library, teachers Teachers, validate *validator.Validate) *Service {
	return &Service{
		repo:     repo,
		library:  library,
		teachers: teachers,
		validate: validate,
	}
}

// Create adds a course authored by `usr` and saves it in their library.
func (svc *Service) Create(ctx context.Context, usr user.User, nc NewCourse) (Course, error) {
	if err := nc.Validate(svc.validate); err != nil {
		return Course{}, err
	}

	now := nowFunc()
	c := Course{
		TeacherID:   usr.ID,
		Title:       nc.Title,
		Description: nc.Description,
		Subject:     nc.Subject,
		Grade:       nc.Grade,
		Color:       nc.Color,
		Thumbnail:   nc.Thumbnail,
		IsPublic:    nc.IsPublic,
		Published:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if c.Color == "" {
		c.Color = DefaultColor
	}
	if c.Thumbnail == "" {
		c.Thumbnail = DefaultThumbnail
	}

	c, err := svc.repo.CreateCourse(ctx, c)
	if err != nil {
		return Course{}, errors.Wrap(err, "creating course")
	}
	if err = svc.library.AddItem(ctx, usr.ID, c.ID, now); err != nil {
		return Course{}, errors.Wrap(err, "adding course to library")
	}
	return c, nil
}

// Get returns the course if `usr` may read it, ErrNotFound otherwise.
func (svc *Service) Get(ctx context.Context, usr user.User, id string) (Course, error) {
	c, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if !c.VisibleTo(usr) {
		return Course{}, ErrNotFound
	}
	return c, nil
}

// GetOwned returns the course if `usr` authored it.
// Readable courses owned by others give core.ErrForbidden.
func (svc *Service) GetOwned(ctx context.Context, usr user.User, id string) (Course, error) {
	c, err := svc.Get(ctx, usr, id)
	if err != nil {
		return Course{}, err
	}
	if !c.IsOwner(usr) {
		return Course{}, core.ErrForbidden
	}
	return c, nil
}

func (svc *Service) Update(ctx context.Context, usr user.User, id string, uc UpdateCourse) (Course, error) {
	c, err := svc.GetOwned(ctx, usr, id)
	if err != nil {
		return Course{}, err
	}
	if err = uc.Validate(svc.validate); err != nil {
		return Course{}, err
	}

	c.Title = uc.Title
	c.Description = uc.Description
	c.Subject = uc.Subject
	c.Grade = uc.Grade
	c.IsPublic = uc.IsPublic
	if uc.Color != "" {
		c.Color = uc.Color
	}
	if uc.Thumbnail != "" {
		c.Thumbnail = uc.Thumbnail
	}
	if uc.Published != nil {
		c.Published = *uc.Published
	}
	c.UpdatedAt = nowFunc()

	c, err = svc.repo.UpdateCourse(ctx, c)
	if err != nil {
		return Course{}, errors.Wrap(err, "updating course")
	}
	return c, nil
}

func (svc *Service) SetVisibility(ctx context.Context, usr user.User, id string, isPublic bool) (Course, error) {
	c, err := svc.GetOwned(ctx, usr, id)
	if err != nil {
		return Course{}, err
	}
	c.IsPublic = isPublic
	c.UpdatedAt = nowFunc()

	c, err = svc.repo.UpdateCourse(ctx, c)
	if err != nil {
		return Course{}, errors.Wrap(err, "updating course visibility")
	}
	return c, nil
}

// Touch bumps the course UpdatedAt, so that recently edited courses come first in the community.
func (svc *Service) Touch(ctx context.Context, c Course) error {
	c.UpdatedAt = nowFunc()
	if _, err := svc.repo.UpdateCourse(ctx, c); err != nil {
		return errors.Wrap(err, "touching course")
	}
	return nil
}

func (svc *Service) Delete(ctx context.Context, usr user.User, id string) error {
	if _, err := svc.GetOwned(ctx, usr, id); err != nil {
		return err
	}
	if err := svc.repo.DeleteCourse(ctx, id); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return nil
}

// Dashboard lists the courses authored by `usr`, most recently updated first.
func (svc *Service) Dashboard(ctx context.Context, usr user.User, search string) ([]Listing, error) {
	filter := QueryFilter{
		TeacherID: usr.ID,
		Search:    search,
		Ordering:  []core.DBOrdering{{Field: "updated_at"}},
	}
	filter.Clean()
	courses, err := svc.repo.QueryCourses(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return svc.listings(ctx, usr, courses, false)
}

// Community lists the courses teachers share, most recently updated first unless filter.Ordering says otherwise.
func (svc *Service) Community(ctx context.Context, usr user.User, filter QueryFilter) ([]Listing, error) {
	filter.Clean()
	filter.TeacherID = ""
	filter.SharedOnly = true
	filter.Limit = CommunityLimit
	if len(filter.Ordering) == 0 {
		filter.Ordering = []core.DBOrdering{{Field: "updated_at"}}
	}

	courses, err := svc.repo.QueryCourses(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying community courses")
	}
	return svc.listings(ctx, usr, courses, true)
}

func (svc *Service) listings(ctx context.Context, usr user.User, courses []Course, withTeacher bool) ([]Listing, error) {
	listings := make([]Listing, 0, len(courses))
	if len(courses) == 0 {
		return listings, nil
	}

	ids := make([]string, 0, len(courses))
	teacherIDs := make([]string, 0, len(courses))
	seenTeachers := make(map[string]bool, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
		if !seenTeachers[c.TeacherID] {
			seenTeachers[c.TeacherID] = true
			teacherIDs = append(teacherIDs, c.TeacherID)
		}
	}

	lessonCounts, err := svc.repo.CountLessons(ctx, ids...)
	if err != nil {
		return nil, errors.Wrap(err, "counting lessons")
	}
	saveCounts, err := svc.library.CountSaves(ctx, ids...)
	if err != nil {
		return nil, errors.Wrap(err, "counting saves")
	}
	savedIDs, err := svc.library.SavedCourseIDs(ctx, usr.ID)
	if err != nil {
		return nil, errors.Wrap(err, "getting saved courses")
	}
	saved := make(map[string]bool, len(savedIDs))
	for _, id := range savedIDs {
		saved[id] = true
	}

	var teachers map[string]user.Summary
	if withTeacher {
		if teachers, err = svc.teachers.Summaries(ctx, teacherIDs...); err != nil {
			return nil, errors.Wrap(err, "getting teachers")
		}
	}

	for _, c := range courses {
		l := Listing{
			Course:      c,
			LessonCount: lessonCounts[c.ID],
			SaveCount:   saveCounts[c.ID],
			Saved:       saved[c.ID],
		}
		if t, ok := teachers[c.TeacherID]; ok {
			l.Teacher = &t
		}
		listings = append(listings, l)
	}
	return listings, nil
}
