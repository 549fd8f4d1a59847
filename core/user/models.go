package user

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/cddtech/lessonhub/core"
)

// Roles
const (
	// Admin
	RoleAdmin      = "admin:"
	RoleAdminOwner = "admin:owner"

	// Teacher
	RoleTeacher = "teacher:"
)

var (
	AdminRoles   = []string{RoleAdmin, RoleAdminOwner}
	TeacherRoles = []string{RoleTeacher}
	AllRoles     = getAllRoles()

	rolePriorities = map[string]int{
		// Admins: 30 - 21
		RoleAdminOwner: 30,
		RoleAdmin:      21,

		// Teachers: 20 - 11
		RoleTeacher: 11,
	}

	avatarBaseURL = "https://ui-avatars.com/api/"
)

func getAllRoles() []string {
	all := make([]string, 0, 3)
	all = append(all, AdminRoles...)
	all = append(all, TeacherRoles...)
	return all
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

// DefaultAvatar returns a generated initials avatar for `name`.
func DefaultAvatar(name string) string {
	// encodeURIComponent style: spaces as %20, not "+"
	q := strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
	return avatarBaseURL + "?name=" + q + "&background=random"
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	School       string    `json:"school"`
	Address      string    `json:"address"`
	Avatar       string    `json:"avatar"`
	IsActive     bool      `json:"is_active"`
	Roles        []string  `json:"roles"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) RoleStartsWith(prefix string) bool {
	for _, role := range u.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.RoleStartsWith(RoleAdmin)
}

func (u *User) IsTeacher() bool {
	return u.RoleStartsWith(RoleTeacher)
}

// Summary is the public view of a teacher, shown next to the content they share.
type Summary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

func (u User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
}

// NewUser contains information needed to register a new teacher.
type NewUser struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	School   string `json:"school" validate:"required,min=2"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.School = core.CleanString(nu.School)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.checkUniqueness(ctx, nu.Email)
}

// UpdateProfile defines what information a teacher may change on their own account.
// An empty Avatar clears it.
type UpdateProfile struct {
	Name    string `json:"name" validate:"required,min=2"`
	Address string `json:"address" validate:"omitempty,max=255"`
	Avatar  string `json:"avatar" validate:"omitempty,url"`
}

func (up *UpdateProfile) Validate(validate *validator.Validate) error {
	up.Name = core.CleanString(up.Name)
	up.Address = core.CleanString(up.Address)
	up.Avatar = core.CleanString(up.Avatar)
	return validate.Struct(up)
}

type ChangePassword struct {
	OldPassword     string `json:"old_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"omitempty,eqfield=NewPassword"`

	// attributes the new password must not look like
	name, email string
}

func (cp *ChangePassword) Validate(usr User, validate *validator.Validate) error {
	cp.name = usr.Name
	cp.email = usr.Email
	return validate.Struct(cp)
}

// SetPassword is used by admins to set a password without knowing the old one.
type SetPassword struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`

	name string
}

func (sp *SetPassword) Validate(usr User, validate *validator.Validate) error {
	sp.Email = core.CleanString(sp.Email, true /* lower */)
	sp.name = usr.Name
	return validate.Struct(sp)
}
