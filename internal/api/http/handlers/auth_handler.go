package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/survey-auth/internal/api/dto"
	"github.com/spec-kit/survey-auth/internal/auth"
	"github.com/spec-kit/survey-auth/internal/domain"
	"github.com/spec-kit/survey-auth/internal/service"
	apperrors "github.com/spec-kit/survey-auth/pkg/util/errorutil"
)

const (
	msgLoginFailed  = "incorrect email or password"
	msgUnauthorized = "unauthorized"
)

// AuthHandler exposes login, refresh and logout endpoints for both
// principal kinds.
type AuthHandler struct {
	sessions *service.SessionService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(sessions *service.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		req = dto.UserLoginRequest{}
	}

	result, err := h.sessions.IssueUserSession(c.UserContext(), req.Email, req.Password, c.IP())
	if err != nil {
		return sessionError(err, msgLoginFailed)
	}
	return writeSession(c, result)
}

// LoginJudge handles POST /auth/login/judge.
func (h *AuthHandler) LoginJudge(c *fiber.Ctx) error {
	var req dto.JudgeLoginRequest
	if err := c.BodyParser(&req); err != nil {
		req = dto.JudgeLoginRequest{}
	}

	result, err := h.sessions.IssueJudgeSession(c.UserContext(), string(req.RequestedSurveyID))
	if err != nil {
		return sessionError(err, msgUnauthorized)
	}
	return writeSession(c, result)
}

// RefreshToken handles POST /auth/refresh-token.
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	result, err := h.sessions.RefreshUserToken(c.UserContext(), c.Cookies(auth.CookieAccessToken))
	if err != nil {
		return sessionError(err, msgUnauthorized)
	}
	return writeSession(c, result)
}

// RefreshJudgeToken handles POST /auth/refresh-judge-token.
func (h *AuthHandler) RefreshJudgeToken(c *fiber.Ctx) error {
	result, err := h.sessions.RefreshJudgeToken(c.UserContext(), c.Cookies(auth.CookieJudgeToken))
	if err != nil {
		return sessionError(err, msgUnauthorized)
	}
	return writeSession(c, result)
}

// Logout handles GET /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	return h.logout(c, domain.PrincipalUser)
}

// LogoutJudge handles GET /auth/logout/judge.
func (h *AuthHandler) LogoutJudge(c *fiber.Ctx) error {
	return h.logout(c, domain.PrincipalJudge)
}

// Session handles GET /auth/session and echoes the verified principals.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	authCtx, ok := auth.AuthContextFromCtx(c)
	if !ok {
		return apperrors.NewUnauthorized(msgUnauthorized)
	}
	return c.JSON(authCtx)
}

// UserSession handles GET /auth/session/user.
func (h *AuthHandler) UserSession(c *fiber.Ctx) error {
	return h.identity(c, domain.PrincipalUser)
}

// JudgeSession handles GET /auth/session/judge.
func (h *AuthHandler) JudgeSession(c *fiber.Ctx) error {
	return h.identity(c, domain.PrincipalJudge)
}

func (h *AuthHandler) identity(c *fiber.Ctx, kind domain.PrincipalKind) error {
	authCtx, ok := auth.AuthContextFromCtx(c)
	if !ok {
		return apperrors.NewUnauthorized(msgUnauthorized)
	}
	identity, ok := authCtx.Get(kind)
	if !ok {
		return apperrors.NewForbidden(string(kind) + " session required")
	}
	return c.JSON(identity)
}

func (h *AuthHandler) logout(c *fiber.Ctx, kind domain.PrincipalKind) error {
	directive := h.sessions.Logout(c.UserContext(), kind, c.Cookies(auth.CookieName(kind)))
	c.Cookie(directive.Fiber())
	return c.SendStatus(fiber.StatusOK)
}

func writeSession(c *fiber.Ctx, result *service.SessionResult) error {
	c.Cookie(result.Cookie.Fiber())
	return c.JSON(dto.SessionResponse{
		Email:  result.Session.Email,
		UserID: result.Session.SubjectID,
		Role:   result.Session.Role,
	})
}

func sessionError(err error, message string) error {
	switch {
	case service.IsAuthFailure(err):
		return apperrors.NewUnauthorized(message)
	case errors.Is(err, service.ErrLoginThrottled):
		return apperrors.NewRateLimited(err.Error())
	default:
		return apperrors.NewInternalError(err)
	}
}
