package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestUserRepositoryWithoutPool(t *testing.T) {
	repo := NewUserRepository(nil)

	_, err := repo.GetByEmail(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, ErrStoreNotConfigured)

	_, err = repo.GetByID(context.Background(), "5b6c1c2e-3f4d-4e5f-8a9b-0c1d2e3f4a5b")
	assert.ErrorIs(t, err, ErrStoreNotConfigured)
}

func TestGetByIDRejectsNonUUID(t *testing.T) {
	repo := NewUserRepository(nil)

	for _, id := range []string{"", "user-1", "1 OR 1=1", "5b6c1c2e"} {
		_, err := repo.GetByID(context.Background(), id)
		assert.ErrorIs(t, err, pgx.ErrNoRows, id)
	}
}

func TestIsInvalidText(t *testing.T) {
	assert.True(t, isInvalidText(fmt.Errorf("query: %w", &pgconn.PgError{Code: "22P02"})))
	assert.False(t, isInvalidText(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isInvalidText(errors.New("connection refused")))
	assert.False(t, isInvalidText(nil))
}
