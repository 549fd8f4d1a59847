package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/cddtech/lessonhub/core/user"
)

const userColumns = `id, name, email, school, address, avatar, is_active, roles, password_hash, created_at, updated_at, last_login`

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

type userRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Email        string         `db:"email"`
	School       string         `db:"school"`
	Address      string         `db:"address"`
	Avatar       string         `db:"avatar"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash null.Bytes     `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

func toUserRow(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Name:         usr.Name,
		Email:        usr.Email,
		School:       usr.School,
		Address:      usr.Address,
		Avatar:       usr.Avatar,
		IsActive:     usr.IsActive,
		Roles:        pq.StringArray(usr.Roles),
		PasswordHash: null.NewBytes(usr.PasswordHash, len(usr.PasswordHash) > 0),
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (row userRow) user() user.User {
	usr := user.User{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		School:    row.School,
		Address:   row.Address,
		Avatar:    row.Avatar,
		IsActive:  row.IsActive,
		Roles:     []string(row.Roles),
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
	if row.PasswordHash.Valid {
		usr.PasswordHash = row.PasswordHash.Bytes
	}
	if row.LastLogin.Valid {
		usr.LastLogin = row.LastLogin.Time.UTC()
	}
	return usr
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedIDs ...string) error {
	var exists bool
	err := repo.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM "user" WHERE email = $1 AND NOT (id::text = ANY($2)))`,
		email, pq.Array(excludedIDs))
	if err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = newID()
	row := toUserRow(usr)
	_, err := repo.db.NamedExecContext(ctx,
		`INSERT INTO "user" (`+userColumns+`) VALUES (
			:id, :name, :email, :school, :address, :avatar, :is_active, :roles, :password_hash,
			:created_at, :updated_at, :last_login)`,
		row)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return row.user(), nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	if !isUUID(id) {
		return user.User{}, user.ErrNotFound
	}
	var row userRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM "user" WHERE id = $1`, id); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding user by ID")
	}
	return row.user(), nil
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var row userRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM "user" WHERE email = $1`, email); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding user by email")
	}
	return row.user(), nil
}

func (repo *userRepository) GetUsersByID(ctx context.Context, ids ...string) ([]user.User, error) {
	users := make([]user.User, 0, len(ids))
	if ids = uuids(ids); len(ids) == 0 {
		return users, nil
	}
	var rows []userRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT `+userColumns+` FROM "user" WHERE id::text = ANY($1) ORDER BY name, id`, pq.Array(ids))
	if err != nil {
		return nil, errors.Wrap(err, "querying users by ID")
	}
	for _, row := range rows {
		users = append(users, row.user())
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	if !isUUID(usr.ID) {
		return user.User{}, user.ErrNotFound
	}
	row := toUserRow(usr)
	var updated userRow
	err := repo.db.GetContext(ctx, &updated,
		`UPDATE "user" SET
			name = $2, email = $3, school = $4, address = $5, avatar = $6, is_active = $7,
			roles = $8, password_hash = $9, updated_at = $10, last_login = $11
		WHERE id = $1 RETURNING `+userColumns,
		row.ID, row.Name, row.Email, row.School, row.Address, row.Avatar, row.IsActive,
		row.Roles, row.PasswordHash, row.UpdatedAt, row.LastLogin)
	if err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "updating user")
	}
	return updated.user(), nil
}
