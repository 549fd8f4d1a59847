package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/cddtech/lessonhub/core"
)

var (
	// errors
	ErrNotFound             = core.NewNotFoundError("user")
	ErrEmailExists          = errors.New("a user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrAccountDeactivated   = errors.New("account deactivated")
	ErrWrongPassword        = errors.New("incorrect password")

	nowFunc = func() time.Time { return time.Now().UTC() }
)

type (
	Repository interface {
		// CheckEmailUniqueness returns ErrEmailExists if another user, not listed in excludedIDs, owns `email`.
		CheckEmailUniqueness(ctx context.Context, email string, excludedIDs ...string) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// GetUsersByID skips unknown ids.
		GetUsersByID(ctx context.Context, ids ...string) ([]User, error)
		// UpdateUser saves every field but ID and CreatedAt.
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) checkUniqueness(ctx context.Context, email string, excludedIDs ...string) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, excludedIDs...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return errors.Wrap(err, "checking email uniqueness")
	}
	return nil
}

// Register creates a teacher account.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	if err := nu.Validate(ctx, svc.validate, svc); err != nil {
		return User{}, err
	}
	return svc.create(ctx, nu, TeacherRoles)
}

func (svc *Service) create(ctx context.Context, nu NewUser, roles []string) (User, error) {
	now := nowFunc()
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		School:    nu.School,
		Avatar:    DefaultAvatar(nu.Name),
		IsActive:  true,
		Roles:     roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

// Authenticate checks the credentials of an active user and records the login.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if core.IsNotFound(err) {
			return User{}, ErrAuthenticationFailed
		}
		return User{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrAuthenticationFailed
	}
	if !usr.IsActive {
		return User{}, ErrAccountDeactivated
	}

	usr.LastLogin = nowFunc()
	usr, err = svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "setting lastLogin")
	}
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

// Summaries returns the public view of the given users, by id.
func (svc *Service) Summaries(ctx context.Context, ids ...string) (map[string]Summary, error) {
	summaries := make(map[string]Summary, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}
	users, err := svc.repo.GetUsersByID(ctx, ids...)
	if err != nil {
		return nil, errors.Wrap(err, "getting users by ID")
	}
	for _, usr := range users {
		summaries[usr.ID] = usr.Summary()
	}
	return summaries, nil
}

func (svc *Service) UpdateProfile(ctx context.Context, usr User, up UpdateProfile) (User, error) {
	if err := up.Validate(svc.validate); err != nil {
		return User{}, err
	}
	usr.Name = up.Name
	usr.Address = up.Address
	usr.Avatar = up.Avatar
	usr.UpdatedAt = nowFunc()

	usr, err := svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "updating user")
	}
	return usr, nil
}

func (svc *Service) ChangePassword(ctx context.Context, usr User, cp ChangePassword) error {
	if err := cp.Validate(usr, svc.validate); err != nil {
		return err
	}
	if err := usr.CheckPassword(cp.OldPassword); err != nil {
		return core.NewValidationError(ErrWrongPassword, core.FieldError{Field: "old_password", Error: ErrWrongPassword.Error()})
	}
	return svc.setPassword(ctx, usr, cp.NewPassword)
}

// ResetPassword sets the password of the user owning sp.Email.
func (svc *Service) ResetPassword(ctx context.Context, sp SetPassword) error {
	usr, err := svc.GetByEmail(ctx, sp.Email)
	if err != nil {
		return err
	}
	if err = sp.Validate(usr, svc.validate); err != nil {
		return err
	}
	return svc.setPassword(ctx, usr, sp.Password)
}

func (svc *Service) setPassword(ctx context.Context, usr User, pwd string) error {
	if err := usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = nowFunc()
	if _, err := svc.repo.UpdateUser(ctx, usr); err != nil {
		return errors.Wrap(err, "updating user")
	}
	return nil
}

// AddOrUpdate creates the user, or refreshes it when the email is taken.
// Admins get every role.
func (svc *Service) AddOrUpdate(ctx context.Context, nu NewUser, admin bool) (User, error) {
	roles := TeacherRoles
	if admin {
		roles = AllRoles
	}

	usr, err := svc.GetByEmail(ctx, nu.Email)
	if err != nil {
		if !core.IsNotFound(err) {
			return User{}, errors.Wrap(err, "finding user by email")
		}
		if err = nu.Validate(ctx, svc.validate, svc); err != nil {
			return User{}, err
		}
		return svc.create(ctx, nu, roles)
	}

	nu.Email = usr.Email
	if nu.School == "" {
		nu.School = usr.School
	}
	if err = svc.validate.Struct(nu); err != nil {
		return User{}, err
	}
	usr.Name = nu.Name
	usr.School = nu.School
	usr.Roles = roles
	usr.IsActive = true
	usr.UpdatedAt = nowFunc()
	if err = usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr, err = svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "updating user")
	}
	return usr, nil
}
