package auth

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/survey-auth/internal/domain"
	apperrors "github.com/spec-kit/survey-auth/pkg/util/errorutil"
)

const authContextKey = "auth_context"

// AuthMiddleware verifies session cookies of both families and stores the
// resulting AuthContext on the request.
type AuthMiddleware struct {
	keys   *Keyring
	logger *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(keys *Keyring, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{keys: keys, logger: logger}
}

// Handle admits the request when at least one token family verifies. A
// family that fails verification contributes nothing but does not reject
// the request on its own.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	if c.Get(fiber.HeaderCookie) == "" {
		return apperrors.NewUnauthorized("unauthorized")
	}

	accessToken := c.Cookies(CookieAccessToken)
	judgeToken := c.Cookies(CookieJudgeToken)
	if accessToken == "" && judgeToken == "" {
		return apperrors.NewUnauthorized("unauthorized")
	}

	authCtx := m.Evaluate(accessToken, judgeToken)
	if authCtx.Empty() {
		return apperrors.NewUnauthorized("unauthorized")
	}

	c.Locals(authContextKey, authCtx)
	return c.Next()
}

// Evaluate decodes each non-empty token with its own family's manager.
func (m *AuthMiddleware) Evaluate(accessToken, judgeToken string) *domain.AuthContext {
	authCtx := &domain.AuthContext{}
	if judgeToken != "" {
		authCtx.Judge = m.verify(m.keys.Judge(), judgeToken)
	}
	if accessToken != "" {
		authCtx.User = m.verify(m.keys.User(), accessToken)
	}
	return authCtx
}

func (m *AuthMiddleware) verify(tm *TokenManager, token string) *domain.Identity {
	claims, err := tm.Decode(token)
	if err != nil {
		m.logger.Debug("token rejected", zap.String("kind", string(tm.Kind())), zap.Error(err))
		return nil
	}
	return &domain.Identity{SubjectID: claims.UserID, Role: claims.Role}
}

// AuthContextFromCtx retrieves the verified principals of the request.
func AuthContextFromCtx(c *fiber.Ctx) (*domain.AuthContext, bool) {
	val := c.Locals(authContextKey)
	if val == nil {
		return nil, false
	}
	authCtx, ok := val.(*domain.AuthContext)
	return authCtx, ok
}
