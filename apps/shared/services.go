package shared

import (
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/cddtech/lessonhub/core"
	"github.com/cddtech/lessonhub/core/course"
	"github.com/cddtech/lessonhub/core/lesson"
	"github.com/cddtech/lessonhub/core/library"
	"github.com/cddtech/lessonhub/core/notification"
	"github.com/cddtech/lessonhub/core/upload"
	"github.com/cddtech/lessonhub/core/user"
	"github.com/cddtech/lessonhub/storage/database/inmem"
	"github.com/cddtech/lessonhub/storage/database/sqlxrepos"
)

type (
	Repositories struct {
		User         user.Repository
		Course       course.Repository
		Lesson       lesson.Repository
		Library      library.Repository
		Notification notification.Repository
	}

	Services struct {
		User         *user.Service
		Course       *course.Service
		Lesson       *lesson.Service
		Library      *library.Service
		Notification *notification.Service
		Upload       *upload.Service
	}
)

func NewSQLRepositories(db *sqlx.DB) Repositories {
	return Repositories{
		User:         sqlxrepos.NewUserRepository(db),
		Course:       sqlxrepos.NewCourseRepository(db),
		Lesson:       sqlxrepos.NewLessonRepository(db),
		Library:      sqlxrepos.NewLibraryRepository(db),
		Notification: sqlxrepos.NewNotificationRepository(db),
	}
}

func NewInmemRepositories(db *inmemdb.DB) Repositories {
	return Repositories{
		User:         inmemdb.NewUserRepository(db),
		Course:       inmemdb.NewCourseRepository(db),
		Lesson:       inmemdb.NewLessonRepository(db),
		Library:      inmemdb.NewLibraryRepository(db),
		Notification: inmemdb.NewNotificationRepository(db),
	}
}

// NewServices builds the domain services on top of the repositories.
func NewServices(
	repos Repositories,
	storage core.FileStorage,
	conf *core.Config,
	validate *validator.Validate,
	logger core.Logger,
) Services {
	usrSvc := user.NewService(repos.User, validate)
	courseSvc := course.NewService(repos.Course, repos.Library, usrSvc, validate)
	notifSvc := notification.NewService(repos.Notification)
	uploadSvc := upload.NewService(storage, conf.Storage.MaxUploadSize)

	return Services{
		User:         usrSvc,
		Course:       courseSvc,
		Lesson:       lesson.NewService(repos.Lesson, courseSvc, notifSvc, uploadSvc, validate, logger),
		Library:      library.NewService(repos.Library, courseSvc),
		Notification: notifSvc,
		Upload:       uploadSvc,
	}
}
