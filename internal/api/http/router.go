package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/survey-auth/internal/api/http/handlers"
	"github.com/spec-kit/survey-auth/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
		app.Get("/health/metrics", cfg.Health.Metrics)
	}

	authGroup := app.Group("/auth", NoCache())
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/login/judge", cfg.Auth.LoginJudge)
	authGroup.Post("/refresh-token", cfg.Auth.RefreshToken)
	authGroup.Post("/refresh-judge-token", cfg.Auth.RefreshJudgeToken)
	authGroup.Get("/logout", cfg.Auth.Logout)
	authGroup.Get("/logout/judge", cfg.Auth.LogoutJudge)

	authGroup.Get("/session", cfg.AuthMiddleware.Handle, cfg.Auth.Session)
	authGroup.Get("/session/user", cfg.AuthMiddleware.Handle, auth.RequireUser(), cfg.Auth.UserSession)
	authGroup.Get("/session/judge", cfg.AuthMiddleware.Handle, auth.RequireJudge(), cfg.Auth.JudgeSession)
}
