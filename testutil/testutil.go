// Package testutil provides fixtures shared by the package tests.
package testutil

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/cddtech/lessonhub/apps/shared"
	"github.com/cddtech/lessonhub/core"
	"github.com/cddtech/lessonhub/core/course"
	"github.com/cddtech/lessonhub/core/lesson"
	"github.com/cddtech/lessonhub/core/user"
	"github.com/cddtech/lessonhub/storage/database/inmem"
)

// Env is an in-memory app: repositories, services and their collaborators.
type Env struct {
	Conf       *core.Config
	DB         *inmemdb.DB
	Repos      shared.Repositories
	Svcs       shared.Services
	Storage    *MemStorage
	Logger     *Logger
	Validate   *validator.Validate
	Translator ut.Translator
}

// Setup returns a fresh in-memory app. opts may tweak the test configuration before services are built.
func Setup(t *testing.T, opts ...func(*core.Config)) *Env {
	t.Helper()
	conf := core.NewTestConfig()
	for _, opt := range opts {
		opt(conf)
	}
	db := inmemdb.Open()
	repos := shared.NewInmemRepositories(db)
	storage := NewMemStorage(conf.Storage.PublicBaseURL)
	logger := &Logger{}
	validate, translator := shared.NewValidator()

	return &Env{
		Conf:       conf,
		DB:         db,
		Repos:      repos,
		Svcs:       shared.NewServices(repos, storage, conf, validate, logger),
		Storage:    storage,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,
	}
}

// CreateUser saves a user straight to the repository, bypassing validation.
func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		School:    "Test School",
		Avatar:    user.DefaultAvatar(name),
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateTeacher(t *testing.T, repo user.Repository, name, email string) user.User {
	t.Helper()
	return CreateUser(t, repo, name, email, "", user.TeacherRoles, true)
}

// CreateCourse saves a course straight to the repository.
func CreateCourse(
	t *testing.T,
	repo course.Repository,
	teacher user.User,
	title string,
	isPublic bool,
	updatedAt ...time.Time,
) course.Course {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(updatedAt) > 0 {
		tstamp = updatedAt[0].UTC()
	}
	c, err := repo.CreateCourse(context.Background(), course.Course{
		TeacherID: teacher.ID,
		Title:     title,
		Subject:   "Math",
		Grade:     "5",
		Color:     course.DefaultColor,
		Thumbnail: course.DefaultThumbnail,
		IsPublic:  isPublic,
		Published: true,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return c
}

// CreateLesson saves a lesson with a raw body straight to the repository.
func CreateLesson(t *testing.T, repo lesson.Repository, c course.Course, title, raw string) lesson.Lesson {
	t.Helper()
	now := time.Now().UTC()
	l, err := repo.CreateLesson(context.Background(), lesson.Lesson{
		CourseID:  c.ID,
		Title:     title,
		Slug:      core.Slugify(title),
		Content:   raw,
		Media:     lesson.MediaFromBlocks(lesson.Lesson{Content: raw}.Blocks()),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateLesson() failed: %v", err)
	}
	return l
}

// MemStorage is a core.FileStorage keeping files in memory.
type MemStorage struct {
	mu      sync.Mutex
	baseURL string
	Files   map[string][]byte
	Err     error // returned by Upload when set
}

var _ core.FileStorage = (*MemStorage)(nil)

func NewMemStorage(baseURL string) *MemStorage {
	return &MemStorage{baseURL: baseURL, Files: make(map[string][]byte)}
}

func (s *MemStorage) Upload(_ context.Context, name, _ string, r io.Reader) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", errors.Wrap(err, "reading file")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Files[name] = buf.Bytes()
	return s.baseURL + "/" + name, nil
}

func (s *MemStorage) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Files, name)
	return nil
}

// Logger is a core.Logger recording messages.
type Logger struct {
	mu       sync.Mutex
	Messages []string
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) log(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = append(l.Messages, msg)
}

func (l *Logger) Debug(msg string, _ ...interface{}) { l.log(msg) }
func (l *Logger) Info(msg string, _ ...interface{})  { l.log(msg) }
func (l *Logger) Warn(msg string, _ ...interface{})  { l.log(msg) }
func (l *Logger) Error(msg string, _ ...interface{}) { l.log(msg) }
func (l *Logger) Fatal(msg string, _ ...interface{}) { l.log(msg) }
