package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/framehouse/agency-console/internal/api/http/handlers"
	"github.com/framehouse/agency-console/internal/auth"
	"github.com/framehouse/agency-console/internal/domain"
	"github.com/framehouse/agency-console/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Settings *handlers.SettingsHandler
	Pages    *handlers.PagesHandler
	Gateway  *auth.Gateway
	Metrics  *observability.Metrics
}

// RegisterRoutes wires HTTP routes. Health checks are registered ahead of the
// gateway; every other route is reached only after the gateway allowed it.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Use(cfg.Gateway.Handle)

	authGroup := app.Group("/api/auth")
	authGroup.Post("/login", cfg.Auth.StaffLogin)
	authGroup.Post("/logout", cfg.Auth.StaffLogout)
	authGroup.Post("/portal/login", cfg.Auth.PortalLogin)
	authGroup.Post("/portal/logout", cfg.Auth.PortalLogout)
	authGroup.Post("/portal/activate", cfg.Auth.ActivatePortal)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)

	app.Post("/api/account/password", auth.RequireStaffRole(), cfg.Auth.ChangePassword)
	app.Post("/portal/account/password", auth.RequireClient(), cfg.Auth.ChangePassword)

	settings := app.Group("/settings", auth.RequireStaffRole(domain.RoleAdmin, domain.RoleAgencyAdmin))
	settings.Get("", cfg.Pages.Page("settings"))
	settings.Get("/agencies", cfg.Settings.ListAgencies)
	settings.Post("/agencies", cfg.Settings.CreateAgency)
	settings.Get("/staff", cfg.Settings.ListStaff)
	settings.Post("/staff", cfg.Settings.CreateStaff)
	settings.Patch("/staff/:id/role", cfg.Settings.ChangeStaffRole)
	settings.Get("/clients", cfg.Settings.ListClients)
	settings.Post("/clients", cfg.Settings.InviteClient)
	settings.Patch("/clients/:id/portal", cfg.Settings.SetPortalAccess)
	settings.Get("/metrics", auth.RequireStaffRole(domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"data": cfg.Metrics.Snapshot()})
	})

	app.Get("/login", cfg.Pages.Page("login"))
	app.Get("/portal/login", cfg.Pages.Page("portal-login"))
	app.Get("/portal", cfg.Pages.Page("portal"))
	app.Get("/portal/*", cfg.Pages.Page("portal"))
	app.Get("/review/:token", cfg.Pages.Page("review"))
	app.Get("/finance", cfg.Pages.Page("finance"))
	app.Get("/finance/*", cfg.Pages.Page("finance"))
	app.Get("/", cfg.Pages.Page("home"))
}
