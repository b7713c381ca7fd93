package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/gas-utility-service/internal/api/http/handlers"
	"github.com/spec-kit/gas-utility-service/internal/auth"
	"github.com/spec-kit/gas-utility-service/internal/domain"
	"github.com/spec-kit/gas-utility-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Accounts       *handlers.AccountsHandler
	AdminAccounts  *handlers.AdminAccountsHandler
	Requests       *handlers.RequestsHandler
	AdminRequests  *handlers.AdminRequestsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes. Every route under /api/admin is gated as a
// group, so any method on an admin path is refused to non-administrators.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api")

	// anonymous
	api.Post("/register/", cfg.Accounts.Register)
	api.Post("/login/", cfg.Accounts.Login)

	// administrator
	admin := api.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdministrator))
	admin.Get("/users/", cfg.AdminAccounts.List)
	admin.Post("/users/create/", cfg.AdminAccounts.Create)
	admin.Get("/users/:id/", cfg.AdminAccounts.Get)
	admin.Put("/users/:id/", cfg.AdminAccounts.Update)
	admin.Delete("/users/:id/", cfg.AdminAccounts.Delete)

	admin.Get("/requests/", cfg.AdminRequests.List)
	admin.Get("/requests/:id/", cfg.AdminRequests.Get)
	admin.Put("/requests/:id/", cfg.AdminRequests.Update)
	admin.Delete("/requests/:id/", cfg.AdminRequests.Delete)

	// authenticated
	authenticated := gate(cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	api.Post("/logout/", authenticated(cfg.Accounts.Logout)...)
	api.Get("/account/", authenticated(cfg.Accounts.Account)...)
	api.Post("/submit/", authenticated(cfg.Requests.Submit)...)
	api.Get("/track/", authenticated(cfg.Requests.Track)...)
}

// gate prepends access checks to a single route so unmatched verbs on the
// same path still fall through to 405.
func gate(checks ...fiber.Handler) func(fiber.Handler) []fiber.Handler {
	return func(h fiber.Handler) []fiber.Handler {
		chain := make([]fiber.Handler, 0, len(checks)+1)
		chain = append(chain, checks...)
		return append(chain, h)
	}
}
