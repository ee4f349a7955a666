package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"ctchen222/Task-Tracker/internal/api/models"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
)

//go:generate mockgen -destination=../mocks/mocks.go -package=mocks ctchen222/Task-Tracker/internal/api/repository UserRepository,TaskRepository,TokenCache

var userTracer = otel.Tracer("repository.user")

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByToken(ctx context.Context, token string) (*models.User, error)
	List(ctx context.Context, search string) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64) error
	SetToken(ctx context.Context, userID int64, token string, expiration time.Time) error
}

type sqliteUserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new SQLite-based UserRepository.
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &sqliteUserRepository{db: db}
}

// IsUniqueViolation reports whether err came from a violated UNIQUE
// constraint (duplicate email, or a token collision).
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Create inserts a new user and fills in its generated id.
func (r *sqliteUserRepository) Create(ctx context.Context, user *models.User) error {
	ctx, span := userTracer.Start(ctx, "UserRepository.Create")
	defer span.End()

	user.CreatedAt = time.Now().UTC()
	query := `INSERT INTO users (full_name, username, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, user.FullName, user.Username, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new user id: %w", err)
	}
	user.ID = id
	return nil
}

func (r *sqliteUserRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, query, arg)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // no user found is not an application error
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetByID retrieves a user by primary key.
func (r *sqliteUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	ctx, span := userTracer.Start(ctx, "UserRepository.GetByID")
	defer span.End()

	return r.getOne(ctx, `SELECT * FROM users WHERE id = ?`, id)
}

// GetByUsername retrieves a user by their login name. If several users
// share a username the earliest registration wins, matching lookup order.
func (r *sqliteUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, span := userTracer.Start(ctx, "UserRepository.GetByUsername")
	defer span.End()

	return r.getOne(ctx, `SELECT * FROM users WHERE username = ? ORDER BY id LIMIT 1`, username)
}

// GetByEmail retrieves a user by email.
func (r *sqliteUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, span := userTracer.Start(ctx, "UserRepository.GetByEmail")
	defer span.End()

	return r.getOne(ctx, `SELECT * FROM users WHERE email = ?`, email)
}

// GetByToken retrieves the user currently holding the given bearer token.
func (r *sqliteUserRepository) GetByToken(ctx context.Context, token string) (*models.User, error) {
	ctx, span := userTracer.Start(ctx, "UserRepository.GetByToken")
	defer span.End()

	return r.getOne(ctx, `SELECT * FROM users WHERE token = ?`, token)
}

// List returns all users, optionally filtered by a case-insensitive
// substring match on the full name.
func (r *sqliteUserRepository) List(ctx context.Context, search string) ([]models.User, error) {
	ctx, span := userTracer.Start(ctx, "UserRepository.List")
	defer span.End()

	users := []models.User{}
	var err error
	if search != "" {
		query := `SELECT * FROM users WHERE LOWER(full_name) LIKE '%' || LOWER(?) || '%' ORDER BY id`
		err = r.db.SelectContext(ctx, &users, query, search)
	} else {
		err = r.db.SelectContext(ctx, &users, `SELECT * FROM users ORDER BY id`)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Update persists the mutable profile fields of a user.
func (r *sqliteUserRepository) Update(ctx context.Context, user *models.User) error {
	ctx, span := userTracer.Start(ctx, "UserRepository.Update")
	defer span.End()

	query := `UPDATE users SET full_name = ?, username = ?, email = ?, password_hash = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, user.FullName, user.Username, user.Email, user.PasswordHash, user.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// Delete removes a user row.
func (r *sqliteUserRepository) Delete(ctx context.Context, id int64) error {
	ctx, span := userTracer.Start(ctx, "UserRepository.Delete")
	defer span.End()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// SetToken stores a freshly issued token and its expiration on the user
// row. The UNIQUE constraint on the token column surfaces collisions to
// the caller, which retries with a new token.
func (r *sqliteUserRepository) SetToken(ctx context.Context, userID int64, token string, expiration time.Time) error {
	ctx, span := userTracer.Start(ctx, "UserRepository.SetToken")
	defer span.End()

	query := `UPDATE users SET token = ?, token_expiration = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, token, expiration, userID)
	if err != nil {
		if IsUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("failed to set token: %w", err)
	}
	return nil
}
