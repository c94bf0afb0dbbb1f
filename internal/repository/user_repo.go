package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cookstove_tracker/internal/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Ensure implementation of UserRepo interface at compile time.
var _ UserRepo = (*UserRepository)(nil)

const (
	insertUserSQL     = `INSERT INTO users (name, email, password_hash, role) VALUES (?, ?, ?, ?)`
	selectUserColumns = `SELECT id, name, email, password_hash, role, created_at FROM users`
	selectUserByEmail = selectUserColumns + ` WHERE email = ?`
	selectUserByID    = selectUserColumns + ` WHERE id = ?`
	updateUserRoleSQL = `UPDATE users SET role = ? WHERE id = ?`
	countUsersSQL     = `SELECT COUNT(*) FROM users`
)

// Create inserts a new user and returns its ID. A taken email yields ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, u models.User) (int, error) {
	role := u.Role
	if role == "" {
		role = models.RoleUser
	}
	res, err := r.db.ExecContext(ctx, insertUserSQL, u.Name, u.Email, u.PasswordHash, role)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert user %q: %w", u.Email, ErrDuplicate)
		}
		return 0, fmt.Errorf("insert user %q: %w", u.Email, err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id for user %q: %w", u.Email, err)
	}
	return int(lastID), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, selectUserByEmail, email))
	if err != nil {
		return models.User{}, fmt.Errorf("select user %q: %w", email, err)
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, selectUserByID, id))
	if err != nil {
		return models.User{}, fmt.Errorf("select user %d: %w", id, err)
	}
	return u, nil
}

// UpdateRole sets the role of an existing user; ErrNotFound if the id is unknown.
func (r *UserRepository) UpdateRole(ctx context.Context, id int, role string) error {
	res, err := r.db.ExecContext(ctx, updateUserRoleSQL, role, id)
	if err != nil {
		return fmt.Errorf("update role of user %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for user %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("update role of user %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countUsersSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	return u, err
}
