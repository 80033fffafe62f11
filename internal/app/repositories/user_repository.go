package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/selvaalegre/portal/internal/app/models"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
	"github.com/selvaalegre/portal/internal/pkg/dberrors"
)

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64) error

	UpdateLastLogin(ctx context.Context, id int64) error
	SetActive(ctx context.Context, id int64, active bool) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	UpdateProfile(ctx context.Context, id int64, email string, phone *string) error
	UpdateProfilePhoto(ctx context.Context, id int64, ref *string) error

	List(ctx context.Context, filter UserListFilter) ([]*models.User, int64, error)
	ListNeighbors(ctx context.Context, excludeID int64) ([]*models.User, error)
	CountActiveResidents(ctx context.Context) (int, error)
	SuperuserExists(ctx context.Context) (bool, error)
}

// UserListFilter narrows the administrator listing. Zero values mean "any".
type UserListFilter struct {
	Role     models.Role
	IsActive *bool
	Search   string
	Offset   uint64
	Limit    uint64
}

var userColumns = []string{
	"id", "username", "email", "password", "first_name", "last_name", "unit", "role",
	"phone", "profile_photo", "is_active", "is_superuser", "last_login_at", "created_at", "updated_at",
}

// UserRepository handles user database operations
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db, sb: newBuilder()}
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Unit, &u.Role,
		&u.Phone, &u.ProfilePhotoURL, &u.IsActive, &u.IsSuperuser, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// nullableUser receives a LEFT JOINed users row whose columns may all be NULL.
type nullableUser struct {
	id                                                 *int64
	username, email, password, first, last, unit, role *string
	phone, photo                                       *string
	active, super                                      *bool
	lastLogin, created, updated                        *time.Time
}

func (n *nullableUser) dest() []any {
	return []any{&n.id, &n.username, &n.email, &n.password, &n.first, &n.last, &n.unit, &n.role,
		&n.phone, &n.photo, &n.active, &n.super, &n.lastLogin, &n.created, &n.updated}
}

func (n *nullableUser) user() *models.User {
	if n.id == nil {
		return nil
	}
	u := &models.User{
		ID:              *n.id,
		Username:        deref(n.username),
		Email:           deref(n.email),
		Password:        deref(n.password),
		FirstName:       deref(n.first),
		LastName:        deref(n.last),
		Unit:            deref(n.unit),
		Role:            models.Role(deref(n.role)),
		Phone:           n.phone,
		ProfilePhotoURL: n.photo,
		IsActive:        n.active != nil && *n.active,
		IsSuperuser:     n.super != nil && *n.super,
		LastLoginAt:     n.lastLogin,
	}
	if n.created != nil {
		u.CreatedAt = *n.created
	}
	if n.updated != nil {
		u.UpdatedAt = *n.updated
	}
	return u
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func mapUserConstraint(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "users_username_key"):
		return apperrors.ErrUsernameAlreadyExists
	case dberrors.IsDuplicateConstraintError(err, "users_email_key"):
		return apperrors.ErrEmailAlreadyExists
	case dberrors.IsDuplicateKeyError(err):
		return apperrors.ErrDuplicateKey
	}
	return nil
}

// Create inserts a user and fills ID and timestamps.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	sql, args, err := r.sb.Insert("users").
		Columns("username", "email", "password", "first_name", "last_name", "unit", "role",
			"phone", "profile_photo", "is_active", "is_superuser").
		Values(user.Username, user.Email, user.Password, user.FirstName, user.LastName, user.Unit, user.Role,
			user.Phone, user.ProfilePhotoURL, user.IsActive, user.IsSuperuser).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return buildErr("create user", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if mapped := mapUserConstraint(err); mapped != nil {
			return mapped
		}
		return queryErr("create user", err, nil)
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, op string, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, buildErr(op, err)
	}
	u, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, queryErr(op, err, apperrors.ErrUserNotFound)
	}
	return u, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, "get user by id", squirrel.Eq{"id": id})
}

// GetByUsername retrieves a user by exact username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, "get user by username", squirrel.Eq{"username": username})
}

// Update replaces every editable column of the user.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	sql, args, err := r.sb.Update("users").
		SetMap(map[string]interface{}{
			"username":      user.Username,
			"email":         user.Email,
			"password":      user.Password,
			"first_name":    user.FirstName,
			"last_name":     user.LastName,
			"unit":          user.Unit,
			"role":          user.Role,
			"phone":         user.Phone,
			"profile_photo": user.ProfilePhotoURL,
			"is_active":     user.IsActive,
			"is_superuser":  user.IsSuperuser,
			"updated_at":    squirrel.Expr("now()"),
		}).
		Where(squirrel.Eq{"id": user.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return buildErr("update user", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&user.UpdatedAt); err != nil {
		if mapped := mapUserConstraint(err); mapped != nil {
			return mapped
		}
		return queryErr("update user", err, apperrors.ErrUserNotFound)
	}
	return nil
}

func (r *UserRepository) exec(ctx context.Context, op string, q squirrel.Sqlizer) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return buildErr(op, err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if mapped := mapUserConstraint(err); mapped != nil {
			return mapped
		}
		return queryErr(op, err, nil)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// Delete removes a user; owned rows go with it through the foreign keys.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, "delete user", r.sb.Delete("users").Where(squirrel.Eq{"id": id}))
}

// UpdateLastLogin stamps the last successful login.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	return r.exec(ctx, "update last login", r.sb.Update("users").
		Set("last_login_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}))
}

// SetActive toggles the account.
func (r *UserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.exec(ctx, "set user active", r.sb.Update("users").
		Set("is_active", active).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}))
}

// UpdatePassword stores a new password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return r.exec(ctx, "update password", r.sb.Update("users").
		Set("password", hash).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}))
}

// UpdateProfile writes the self-service fields.
func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, email string, phone *string) error {
	return r.exec(ctx, "update profile", r.sb.Update("users").
		Set("email", email).
		Set("phone", phone).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}))
}

// UpdateProfilePhoto stores the photo reference (nil clears it).
func (r *UserRepository) UpdateProfilePhoto(ctx context.Context, id int64, ref *string) error {
	return r.exec(ctx, "update profile photo", r.sb.Update("users").
		Set("profile_photo", ref).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}))
}

// List returns one page of users ordered by unit and last name, plus the total count.
func (r *UserRepository) List(ctx context.Context, filter UserListFilter) ([]*models.User, int64, error) {
	where := squirrel.And{}
	if filter.Role != "" {
		where = append(where, squirrel.Eq{"role": filter.Role})
	}
	if filter.IsActive != nil {
		where = append(where, squirrel.Eq{"is_active": *filter.IsActive})
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + escapeLike(s) + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"username": like},
			squirrel.ILike{"email": like},
			squirrel.ILike{"first_name": like},
			squirrel.ILike{"last_name": like},
			squirrel.ILike{"unit": like},
		})
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("users").Where(where).ToSql()
	if err != nil {
		return nil, 0, buildErr("count users", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, queryErr("count users", err, nil)
	}

	q := r.sb.Select(userColumns...).From("users").Where(where).OrderBy("unit ASC", "last_name ASC", "id ASC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	users, err := r.queryUsers(ctx, "list users", q)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// ListNeighbors returns active users other than excludeID, ordered by unit and last name.
func (r *UserRepository) ListNeighbors(ctx context.Context, excludeID int64) ([]*models.User, error) {
	return r.queryUsers(ctx, "list neighbors", r.sb.Select(userColumns...).From("users").
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.NotEq{"id": excludeID}).
		OrderBy("unit ASC", "last_name ASC", "id ASC"))
}

// CountActiveResidents counts active accounts that are not administrators.
func (r *UserRepository) CountActiveResidents(ctx context.Context) (int, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From("users").
		Where(squirrel.Eq{"is_active": true, "role": models.RoleResident, "is_superuser": false}).
		ToSql()
	if err != nil {
		return 0, buildErr("count residents", err)
	}
	var n int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, queryErr("count residents", err, nil)
	}
	return n, nil
}

// SuperuserExists reports whether any superuser account exists.
func (r *UserRepository) SuperuserExists(ctx context.Context) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE is_superuser)`).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking superuser: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) queryUsers(ctx context.Context, op string, q squirrel.SelectBuilder) ([]*models.User, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, buildErr(op, err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, queryErr(op, err, nil)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, queryErr(op, err, nil)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr(op, err, nil)
	}
	return users, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
