package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/job-board/internal/api/http/handlers"
	"github.com/spec-kit/job-board/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Jobs           *handlers.JobsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. Static auth paths are registered before
// the :id parameter route so /auth/credentials does not match as an id.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/register-admin", cfg.Users.RegisterAdmin)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/reset", cfg.Users.RequestReset)
	authGroup.Post("/reset-password", cfg.Users.ResetPassword)
	authGroup.Get("/credentials", cfg.AuthMiddleware.Handle, cfg.Users.GetCredentials)
	authGroup.Put("/update/:id", cfg.Users.UpdateUser)
	authGroup.Delete("/delete/:id", cfg.AuthMiddleware.Handle, cfg.Users.DeleteUser)
	authGroup.Get("/", cfg.AuthMiddleware.Handle, cfg.Users.ListUsers)
	authGroup.Get("/:id", cfg.AuthMiddleware.Handle, cfg.Users.GetUser)

	dataGroup := app.Group("/data")
	dataGroup.Get("/jobs", cfg.Jobs.ListJobs)
	dataGroup.Post("/jobs", cfg.AuthMiddleware.Handle, cfg.Jobs.CreateJob)
	dataGroup.Get("/jobs/category/:value", cfg.Jobs.ListJobsByCategory)
	dataGroup.Get("/jobs/:id", cfg.Jobs.GetJob)
	dataGroup.Put("/jobs/:id", cfg.AuthMiddleware.Handle, cfg.Jobs.UpdateJob)
	dataGroup.Delete("/jobs/:id", cfg.AuthMiddleware.Handle, cfg.Jobs.DeleteJob)
}
