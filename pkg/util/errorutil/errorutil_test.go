package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	unauthorized := NewUnauthorized("unauthorized")
	wrapped := fmt.Errorf("login: %w", unauthorized)
	de := ToDomainError(wrapped)
	assert.Equal(t, http.StatusUnauthorized, de.HTTPStatus)
	assert.Equal(t, "UNAUTHORIZED", de.Code)

	cause := errors.New("connection refused")
	de = ToDomainError(cause)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	assert.Equal(t, "internal server error", de.Message)
	assert.ErrorIs(t, de, cause)
}

func TestFromStatus(t *testing.T) {
	cases := map[int]string{
		http.StatusBadRequest:          "VALIDATION_FAILED",
		http.StatusUnauthorized:        "UNAUTHORIZED",
		http.StatusForbidden:           "FORBIDDEN",
		http.StatusNotFound:            "NOT_FOUND",
		http.StatusTooManyRequests:     "RATE_LIMITED",
		http.StatusServiceUnavailable:  "INTERNAL_ERROR",
		http.StatusUnprocessableEntity: "HTTP_ERROR",
	}
	for status, code := range cases {
		assert.Equal(t, code, FromStatus(status, "x").Code, "status %d", status)
	}
}

func TestRateLimited(t *testing.T) {
	de := ToDomainError(NewRateLimited("slow down"))
	assert.Equal(t, http.StatusTooManyRequests, de.HTTPStatus)
	assert.Equal(t, "slow down", de.Error())
}
