package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"

	"github.com/buildcare/defect-backend/internal/config"
	"github.com/buildcare/defect-backend/internal/handlers"
	"github.com/buildcare/defect-backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	userHandler *handlers.UserHandler,
	buildingHandler *handlers.BuildingHandler,
	defectHandler *handlers.DefectHandler,
	analyticsHandler *handlers.AnalyticsHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — public, with a stricter limiter
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	jwtGuard := middleware.JWTProtected(cfg)
	identity := middleware.ResolveIdentity(db)

	api.Post("/auth/logout", jwtGuard, identity, authHandler.Logout)
	api.Get("/auth/me", jwtGuard, identity, authHandler.Me)

	users := api.Group("/users", jwtGuard, identity)
	users.Get("/technicians", userHandler.ListTechnicians)
	users.Get("", userHandler.List)
	users.Post("", userHandler.Create)
	users.Get("/:id", userHandler.Get)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Delete)

	buildings := api.Group("/buildings", jwtGuard, identity)
	buildings.Get("", buildingHandler.List)
	buildings.Post("", buildingHandler.Create)
	buildings.Get("/:id", buildingHandler.Get)
	buildings.Put("/:id", buildingHandler.Update)
	buildings.Delete("/:id", buildingHandler.Delete)

	defects := api.Group("/defects", jwtGuard, identity)
	defects.Get("", defectHandler.List)
	defects.Post("", defectHandler.Create)
	defects.Get("/:id", defectHandler.Get)
	defects.Put("/:id", defectHandler.Update)
	defects.Delete("/:id", defectHandler.Delete)
	defects.Patch("/:id/review", defectHandler.Review)
	defects.Patch("/:id/assign", defectHandler.Assign)
	defects.Patch("/:id/ongoing", defectHandler.MarkOngoing)
	defects.Patch("/:id/done", defectHandler.MarkDone)
	defects.Patch("/:id/complete", defectHandler.Complete)
	defects.Patch("/:id/reopen", defectHandler.Reopen)
	defects.Post("/:id/comments", defectHandler.UpsertComments)
	defects.Get("/:id/comments", defectHandler.ListComments)

	analytics := api.Group("/analytics", jwtGuard, identity)
	analytics.Get("/defects-per-building", analyticsHandler.DefectsPerBuilding)
	analytics.Get("/defects-status", analyticsHandler.DefectsByStatus)
}
