package routes

import (
	"time"

	"github.com/gendata/gendata-api/internal/config"
	"github.com/gendata/gendata-api/internal/handlers"
	"github.com/gendata/gendata-api/internal/middleware"
	"github.com/gendata/gendata-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	users services.UserStore,
	tokens *services.TokenIssuer,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	healthHandler *handlers.HealthHandler,
) {
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.Check)

	// Token endpoint: 10 req/min per IP
	auth := app.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/token", authHandler.Token)

	admin := app.Group("/admin", middleware.JWTProtected(cfg.JWTSecret, tokens), middleware.AdminRequired(users))
	admin.Post("/users/import", userHandler.Import)
	admin.Post("/users", userHandler.Create)
	admin.Get("/users", userHandler.List)
	admin.Get("/users/:id", userHandler.Get)
	admin.Put("/users/:id", userHandler.Update)
	admin.Delete("/users/:id", userHandler.Delete)
}
