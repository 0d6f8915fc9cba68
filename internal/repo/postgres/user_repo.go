package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scrollinondubs/DogTinder/internal/domain/enums"
	"github.com/scrollinondubs/DogTinder/internal/domain/model"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, user model.User) (model.User, error) {
	if strings.TrimSpace(user.ID) == "" || strings.TrimSpace(user.Email) == "" || user.PasswordHash == "" {
		return model.User{}, fmt.Errorf("invalid user payload")
	}
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}
	if user.Role == "" {
		user.Role = enums.RoleUser
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	var name *string
	if strings.TrimSpace(user.Name) != "" {
		name = &user.Name
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO users (
	id,
	email,
	password,
	name,
	role,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $6)
`, user.ID, user.Email, user.PasswordHash, name, string(user.Role), user.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return model.User{}, ErrEmailTaken
		}
		return model.User{}, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (model.User, error) {
	if strings.TrimSpace(email) == "" {
		return model.User{}, ErrUserNotFound
	}
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}

	var (
		user model.User
		role string
	)
	err := r.pool.QueryRow(ctx, `
SELECT
	id,
	email,
	COALESCE(password, ''),
	COALESCE(name, ''),
	role,
	created_at
FROM users
WHERE email = $1
`, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&role,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("find user by email: %w", err)
	}
	user.Role = enums.Role(role)

	return user, nil
}
