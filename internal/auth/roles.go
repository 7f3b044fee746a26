package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/survey-auth/internal/domain"
	apperrors "github.com/spec-kit/survey-auth/pkg/util/errorutil"
)

// RequireUser ensures a registered user token verified.
func RequireUser() fiber.Handler {
	return RequireRole(domain.PrincipalUser)
}

// RequireJudge ensures a judge token verified.
func RequireJudge() fiber.Handler {
	return RequireRole(domain.PrincipalJudge)
}

// RequireRole ensures the principal of kind verified and, when roles are
// given, carries one of them.
func RequireRole(kind domain.PrincipalKind, roles ...string) fiber.Handler {
	allowedSet := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		authCtx, ok := AuthContextFromCtx(c)
		if !ok {
			return apperrors.NewUnauthorized("unauthorized")
		}
		identity, ok := authCtx.Get(kind)
		if !ok {
			return apperrors.NewForbidden(string(kind) + " session required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[identity.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
