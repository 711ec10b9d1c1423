package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-api/internal/models"
)

const userColumns = `id, username, email, password_hash, role, first_name, last_name, created_at`

// UserRepository provides database access for accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// FindByLogin returns the user whose username or email equals login.
func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR email = $1 ORDER BY id LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, login); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by login: %w", err)
	}
	return &user, nil
}

// ExistsByUsernameOrEmail reports whether either identifier is already taken.
func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, username, email); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

// ExistsByRole reports whether at least one user holds role.
func (r *UserRepository) ExistsByRole(ctx context.Context, role models.UserRole) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE role = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, role); err != nil {
		return false, fmt.Errorf("check role exists: %w", err)
	}
	return exists, nil
}

// Create inserts the user and fills its generated id and timestamp.
func (r *UserRepository) Create(ctx context.Context, exec sqlx.ExtContext, user *models.User) error {
	const query = `INSERT INTO users (username, email, password_hash, role, first_name, last_name)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	row := executor(r.db, exec).QueryRowxContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.Role, user.FirstName, user.LastName)
	if err := row.Scan(&user.ID, &user.CreatedAt); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateProfile changes the name and email of a user. Nil values keep the current data.
func (r *UserRepository) UpdateProfile(ctx context.Context, exec sqlx.ExtContext, id int64, firstName, lastName *string) error {
	const query = `UPDATE users SET first_name = COALESCE($2, first_name), last_name = COALESCE($3, last_name) WHERE id = $1`
	res, err := executor(r.db, exec).ExecContext(ctx, query, id, firstName, lastName)
	if err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}
	return affectedOrNotFound(res, "update user profile")
}

// UpdatePassword updates the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	const query = `UPDATE users SET password_hash = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return affectedOrNotFound(res, "update password")
}

// Delete removes a user row.
func (r *UserRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id int64) error {
	res, err := executor(r.db, exec).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return affectedOrNotFound(res, "delete user")
}
