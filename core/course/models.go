package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/cddtech/lessonhub/core"
	"github.com/cddtech/lessonhub/core/user"
)

const (
	DefaultColor     = "bg-blue-100 text-blue-600"
	DefaultThumbnail = "📚"

	// CommunityLimit caps the community listing.
	CommunityLimit = 50
)

type Course struct {
	ID          string    `json:"id"`
	TeacherID   string    `json:"teacher_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Subject     string    `json:"subject"`
	Grade       string    `json:"grade"`
	Color       string    `json:"color"`
	Thumbnail   string    `json:"thumbnail"`
	IsPublic    bool      `json:"is_public"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// IsOwner reports whether `usr` authored the course.
func (c Course) IsOwner(usr user.User) bool {
	return c.TeacherID == usr.ID
}

// VisibleTo reports whether `usr` may read the course: owners always, others only when shared.
func (c Course) VisibleTo(usr user.User) bool {
	return c.IsOwner(usr) || c.IsShared()
}

// IsShared reports whether the course shows up in the community.
func (c Course) IsShared() bool {
	return c.IsPublic && c.Published
}

// Listing is a course as shown on the dashboard and in the community.
type Listing struct {
	Course
	LessonCount int           `json:"lesson_count"`
	SaveCount   int           `json:"save_count"`
	Saved       bool          `json:"saved"`
	Teacher     *user.Summary `json:"teacher,omitempty"`
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Subject     string `json:"subject" validate:"required,min=2,max=100"`
	Grade       string `json:"grade" validate:"required,min=1,max=50"`
	Color       string `json:"color" validate:"omitempty,max=100"`
	Thumbnail   string `json:"thumbnail" validate:"omitempty,max=255"`
	IsPublic    bool   `json:"is_public"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.Subject = core.CleanString(nc.Subject)
	nc.Grade = core.CleanString(nc.Grade)
	nc.Color = core.CleanString(nc.Color)
	nc.Thumbnail = core.CleanString(nc.Thumbnail)
	return validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
// Empty Color and Thumbnail keep the current ones.
type UpdateCourse struct {
	NewCourse
	Published *bool `json:"published"`
}

type QueryFilter struct {
	TeacherID  string
	Search     string
	Subject    string
	Grade      string
	SharedOnly bool
	Limit      int
	Ordering   []core.DBOrdering
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Subject = core.CleanString(qf.Subject)
	qf.Grade = core.CleanString(qf.Grade)
}

// OrderingFields lists the columns courses may be ordered by.
var OrderingFields = []string{"title", "subject", "grade", "created_at", "updated_at"}
