package auth

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/survey-auth/internal/domain"
)

func TestSessionCookie(t *testing.T) {
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	session := &domain.Session{
		Kind:      domain.PrincipalJudge,
		Token:     "tok",
		IssuedAt:  issued,
		ExpiresAt: issued.Add(30 * time.Minute),
	}

	directive := SessionCookie(session, true)
	assert.Equal(t, CookieJudgeToken, directive.Name)
	assert.Equal(t, int64(30*60*1000), directive.MaxAgeMillis())
	assert.True(t, directive.HTTPOnly)

	cookie := directive.Fiber()
	assert.Equal(t, "tok", cookie.Value)
	assert.Equal(t, 1800, cookie.MaxAge)
	assert.Equal(t, session.ExpiresAt, cookie.Expires)
	assert.Equal(t, fiber.CookieSameSiteLaxMode, cookie.SameSite)
	assert.True(t, cookie.Secure)
	assert.Equal(t, "/", cookie.Path)
}

func TestClearCookie(t *testing.T) {
	directive := ClearCookie(domain.PrincipalUser, false)
	assert.Equal(t, CookieAccessToken, directive.Name)
	assert.Zero(t, directive.MaxAgeMillis())

	cookie := directive.Fiber()
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
	assert.True(t, cookie.Expires.Before(time.Now()))
	assert.True(t, cookie.HTTPOnly)
}
