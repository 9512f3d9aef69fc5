package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/projecthub/internal/app/models"
	"github.com/yigit/projecthub/internal/pkg/apperrors"
	"github.com/yigit/projecthub/internal/pkg/dberrors"
	"github.com/yigit/projecthub/internal/pkg/logger"
)

var userColumns = []string{
	"id", "name", "email", "password", "role", "roll_number", "department", "year",
	"is_temporary_admin", "temp_admin_tabs", "created_at", "updated_at",
}

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.RollNumber, &u.Department, &u.Year,
		&u.IsTemporaryAdmin, &u.TempAdminTabs, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) queryUsers(ctx context.Context, builder squirrel.SelectBuilder) ([]models.User, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building user query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := psql.Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building user query: %w", err)
	}

	u, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return u, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Expr("LOWER(email) = LOWER(?)", email))
}

// GetByIDs retrieves the users with the given ids, ordered by id
func (r *UserRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return r.queryUsers(ctx, psql.Select(userColumns...).From("users").
		Where(squirrel.Eq{"id": ids}).OrderBy("id"))
}

// ListByRole lists users of one role in creation order
func (r *UserRepository) ListByRole(ctx context.Context, role models.RoleType) ([]models.User, error) {
	return r.queryUsers(ctx, psql.Select(userColumns...).From("users").
		Where(squirrel.Eq{"role": role}).OrderBy("id"))
}

// ListAdmins lists permanent admins and every user holding temporary admin access
func (r *UserRepository) ListAdmins(ctx context.Context) ([]models.User, error) {
	return r.queryUsers(ctx, psql.Select(userColumns...).From("users").
		Where(squirrel.Or{squirrel.Eq{"role": models.RoleAdmin}, squirrel.Eq{"is_temporary_admin": true}}).
		OrderBy("id"))
}

// Create inserts a user and fills in its id and timestamps
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	sql, args, err := psql.Insert("users").
		Columns("name", "email", "password", "role", "roll_number", "department", "year").
		Values(user.Name, user.Email, user.Password, user.Role, user.RollNumber, user.Department, user.Year).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building create user query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return translateUserError(err)
	}
	return nil
}

// Update saves the profile fields of a user. Password, role and admin access are not touched.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	sql, args, err := psql.Update("users").
		Set("name", user.Name).
		Set("email", user.Email).
		Set("roll_number", user.RollNumber).
		Set("department", user.Department).
		Set("year", user.Year).
		Set("updated_at", user.UpdatedAt).
		Where(squirrel.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building update user query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return translateUserError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// Delete removes a user; team memberships and marks cascade
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("users").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("error building delete user query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// DeleteMany removes every listed user in one statement and returns how many existed
func (r *UserRepository) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	sql, args, err := psql.Delete("users").Where(squirrel.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building bulk delete query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error deleting users: %w", err)
	}
	logger.Info().Int64("deleted", tag.RowsAffected()).Int("requested", len(ids)).Msg("Bulk user delete")
	return tag.RowsAffected(), nil
}

// SetTemporaryAdmin grants (with the serialized tab list) or revokes temporary admin access
func (r *UserRepository) SetTemporaryAdmin(ctx context.Context, id int64, granted bool, tabs *string) error {
	if !granted {
		tabs = nil
	}
	sql, args, err := psql.Update("users").
		Set("is_temporary_admin", granted).
		Set("temp_admin_tabs", tabs).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building temp admin query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating temporary admin access: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// AdminExists reports whether at least one permanent admin account exists
func (r *UserRepository) AdminExists(ctx context.Context) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE role = $1)`, models.RoleAdmin).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking admin existence: %w", err)
	}
	return exists, nil
}

func translateUserError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "users_email_key"):
		return apperrors.ErrEmailAlreadyExists
	case dberrors.IsDuplicateConstraintError(err, "users_roll_number_key"):
		return apperrors.ErrRollNumberExists
	default:
		return fmt.Errorf("error saving user: %w", err)
	}
}
