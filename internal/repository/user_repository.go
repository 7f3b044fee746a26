package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/survey-auth/internal/domain"
)

// UserRepository is the credential store for registered users. Lookups are
// exact matches on bound parameters; a missing row surfaces as pgx.ErrNoRows.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// ErrStoreNotConfigured is returned when no database pool is available.
var ErrStoreNotConfigured = errors.New("user store not configured")

// invalid_text_representation, raised when a value cannot be cast to uuid.
const sqlStateInvalidText = "22P02"

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

// GetByID looks a user up by primary key. An id that is not a UUID cannot
// match any row and reports pgx.ErrNoRows.
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT id::text, email, password_hash, role, created_at, updated_at
        FROM users WHERE id = CAST($1::text AS uuid)`

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, pgx.ErrNoRows
	}
	user, err := r.scanOne(ctx, query, parsed.String())
	if isInvalidText(err) {
		return nil, pgx.ErrNoRows
	}
	return user, err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT id::text, email, password_hash, role, created_at, updated_at
        FROM users WHERE email = $1`

	return r.scanOne(ctx, query, email)
}

func (r *userRepository) scanOne(ctx context.Context, query, arg string) (*domain.User, error) {
	if r.pool == nil {
		return nil, ErrStoreNotConfigured
	}

	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func isInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == sqlStateInvalidText
}
