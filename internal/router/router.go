package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/profileiq-api/internal/config"
	"github.com/noah-isme/profileiq-api/internal/handler"
	"github.com/noah-isme/profileiq-api/internal/middleware"
	"github.com/noah-isme/profileiq-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	EvaluationHandler *handler.EvaluationHandler
	ActivityHandler   *handler.ActivityHandler
	StudentHandler    *handler.StudentHandler
	CounselorHandler  *handler.CounselorHandler
	JWTMiddleware     fiber.Handler
	EvaluationLimiter fiber.Handler
	HealthProbes      map[string]handler.HealthProbe
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = middleware.JWTProtected(cfg.JWTSecret)
	}

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	}, jwtMiddleware)

	if deps.EvaluationHandler != nil {
		var guards []fiber.Handler
		if deps.EvaluationLimiter != nil {
			guards = append(guards, deps.EvaluationLimiter)
		}
		deps.EvaluationHandler.Register(api, guards...)
	}

	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(api.Group("/activities", middleware.RequireRole(middleware.AuthRoleStudent)))
	}
	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(api.Group("/students/me", middleware.RequireRole(middleware.AuthRoleStudent)))
	}

	if deps.CounselorHandler != nil {
		counselors := api.Group("/counselors", middleware.RequireRole(middleware.AuthRoleCounselor))
		deps.CounselorHandler.Register(counselors)
	}
}
