package routes

import (
	"fmt"
	"log/slog"

	"github.com/gendata/gendata-api/internal/config"
	"github.com/gendata/gendata-api/internal/handlers"
	"github.com/gendata/gendata-api/internal/middleware"
	"github.com/gendata/gendata-api/internal/services"
	"github.com/gendata/gendata-api/internal/store"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

// NewApp wires services, handlers and middleware into a Fiber app.
// extra middleware runs before everything else.
func NewApp(cfg *config.Config, db *gorm.DB, hasher services.PasswordHasher, extra ...fiber.Handler) (*fiber.App, error) {
	tokens, err := services.NewTokenIssuer(cfg.JWTSecret, cfg.JWTAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	users := store.NewUserRepository(db)
	authService := services.NewAuthService(users, hasher, tokens, cfg.JWTAccessExpiry)
	userService := services.NewUserService(users, hasher)
	importService := services.NewImportService(users, hasher)

	app := fiber.New(fiber.Config{
		AppName:      "GenData API",
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
		ErrorHandler: ErrorHandler,
	})

	for _, h := range extra {
		app.Use(h)
	}
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		return c.Next()
	})

	Setup(app, cfg, users, tokens,
		handlers.NewAuthHandler(authService),
		handlers.NewUserHandler(userService, importService),
		handlers.NewHealthHandler(db),
	)
	return app, nil
}

// ErrorHandler renders errors that escaped the handlers. 5xx details are logged, not returned.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	if code >= 500 {
		slog.Error("unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
			"error", err.Error(),
		)
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
