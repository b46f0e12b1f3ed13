package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/api/http/handlers"
	"github.com/spec-kit/account-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Auth          *handlers.AuthHandler
	Users         *handlers.UsersHandler
	Authenticator *auth.Authenticator
}

// RegisterRoutes wires HTTP routes. The authenticator runs on every route and
// lets anonymous requests through; the per-route guards decide what is
// required.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Use(cfg.Authenticator.Handle)

	app.Post("/register", cfg.Auth.Register)
	app.Post("/login", cfg.Auth.Login)
	app.Post("/token/refresh", cfg.Auth.Refresh)

	app.Post("/logout", auth.RequireAuthenticated(), cfg.Auth.Logout)
	app.Post("/token/blacklist", auth.RequireAuthenticated(), cfg.Auth.Blacklist)
	app.Get("/me", auth.RequireAuthenticated(), cfg.Auth.Me)
	app.Post("/password", auth.RequireAuthenticated(), cfg.Auth.ChangePassword)
	app.Patch("/profile", auth.RequireAuthenticated(), cfg.Auth.UpdateProfile)

	users := app.Group("/users")
	users.Get("", auth.RequireCapability(auth.CapabilityManagerOrAdmin), cfg.Users.List)
	users.Post("/role", auth.RequireCapability(auth.CapabilityAdminOnly), cfg.Users.UpdateRole)
	users.Get("/:id", auth.RequireCapability(auth.CapabilityAdminOnly), cfg.Users.Get)
	users.Patch("/:id", auth.RequireCapability(auth.CapabilityAdminOnly), cfg.Users.Update)
	users.Delete("/:id", auth.RequireCapability(auth.CapabilityAdminOnly), cfg.Users.Delete)
}
