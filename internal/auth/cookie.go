package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/survey-auth/internal/domain"
)

const (
	CookieAccessToken = "access-token"
	CookieJudgeToken  = "judge-token"
)

var cookieExpired = time.Unix(0, 0).UTC()

// CookieName returns the cookie carrying tokens of kind.
func CookieName(kind domain.PrincipalKind) string {
	if kind == domain.PrincipalJudge {
		return CookieJudgeToken
	}
	return CookieAccessToken
}

// CookieDirective describes a Set-Cookie instruction for a session token.
type CookieDirective struct {
	Name     string
	Value    string
	HTTPOnly bool
	Secure   bool
	SameSite string
	MaxAge   time.Duration
	Expires  time.Time
}

// SessionCookie builds the directive for a minted session. MaxAge is the
// distance between issuance and expiry of that specific token.
func SessionCookie(session *domain.Session, secure bool) CookieDirective {
	return CookieDirective{
		Name:     CookieName(session.Kind),
		Value:    session.Token,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
		MaxAge:   session.ExpiresAt.Sub(session.IssuedAt),
		Expires:  session.ExpiresAt,
	}
}

// ClearCookie builds a directive telling the client to drop the kind's cookie.
func ClearCookie(kind domain.PrincipalKind, secure bool) CookieDirective {
	return CookieDirective{
		Name:     CookieName(kind),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

// MaxAgeMillis returns the cookie lifetime in milliseconds.
func (d CookieDirective) MaxAgeMillis() int64 {
	return d.MaxAge.Milliseconds()
}

// Fiber renders the directive. A non-positive MaxAge yields an expired cookie.
func (d CookieDirective) Fiber() *fiber.Cookie {
	cookie := &fiber.Cookie{
		Name:     d.Name,
		Value:    d.Value,
		Path:     "/",
		HTTPOnly: d.HTTPOnly,
		Secure:   d.Secure,
		SameSite: d.SameSite,
	}
	if d.MaxAge <= 0 {
		cookie.Value = ""
		cookie.MaxAge = -1
		cookie.Expires = cookieExpired
		return cookie
	}
	cookie.MaxAge = int(d.MaxAge / time.Second)
	cookie.Expires = d.Expires
	return cookie
}
