package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/mente-aberta-api/internal/api/http/handlers"
	"github.com/spec-kit/mente-aberta-api/internal/auth"
	"github.com/spec-kit/mente-aberta-api/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Invites        *handlers.InvitesHandler
	Me             *handlers.MeHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	// InviteLimiter throttles the invite gate per client IP.
	InviteLimiter *RateLimiter
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	requireAuth := cfg.AuthMiddleware.Handle
	inviteLimit := cfg.InviteLimiter.Handler(IPKey)

	authGroup := app.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.SignUp)
	authGroup.Post("/signin", cfg.Auth.SignIn)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)
	authGroup.Post("/signout", requireAuth, cfg.Auth.SignOut)
	authGroup.Post("/password/change", requireAuth, cfg.Auth.ChangePassword)

	invites := app.Group("/invites", inviteLimit)
	invites.Post("/validate", cfg.Invites.Validate)
	invites.Post("/redeem", requireAuth, cfg.Invites.Redeem)

	app.Get("/me", requireAuth, cfg.Auth.Me)
	app.Put("/me/onboarding", requireAuth, cfg.Me.Onboarding)
	app.Get("/dashboard", requireAuth, cfg.Me.Dashboard)
	app.Post("/feedback", requireAuth, auth.RequireRole(domain.RoleTester, domain.RoleAdmin), cfg.Me.SubmitFeedback)

	admin := app.Group("/admin", requireAuth, auth.RequireAdmin())
	admin.Get("/testers", cfg.Admin.ListTesters)
	admin.Put("/testers/:id/status", cfg.Admin.SetTesterStatus)
	admin.Get("/invites", cfg.Admin.ListInvites)
	admin.Post("/invites", cfg.Admin.CreateInvite)
	admin.Put("/invites/:code/status", cfg.Admin.SetInviteStatus)
	admin.Get("/feedback", cfg.Admin.ListFeedback)
	admin.Put("/feedback/:id/status", cfg.Admin.SetFeedbackStatus)
}
