package main

import (
	"context"
	"time"

	"notes/internal/config"
	"notes/internal/database"
	"notes/internal/handlers"
	"notes/internal/middleware"
	"notes/internal/repositories"
	"notes/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// newApp wires repositories, services and handlers into a Fiber app. events
// may be nil when no broker is configured.
func newApp(cfg config.Config, db *gorm.DB, tokens *services.TokenService, events services.EventPublisher) *fiber.App {
	userRepo := repositories.NewGORMUserRepository(db)
	noteRepo := repositories.NewGORMNoteRepository(db)

	authService := services.NewAuthService(userRepo, tokens, events, cfg.BcryptCost)
	noteService := services.NewNoteService(noteRepo, events, cfg.EnforceNoteOwnership)
	userService := services.NewUserService(userRepo, events)

	authRequired := middleware.AuthRequired(tokens)
	adminRequired := middleware.AdminRequired(userService)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := database.Ping(ctx, db); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"time":   time.Now().Format(time.RFC3339),
				"store":  "unavailable",
			})
		}
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"store":  "connected",
		})
	})

	api := app.Group("/api")
	handlers.NewAuthHandler(authService).RegisterRoutes(api)
	handlers.NewNoteHandler(noteService).RegisterRoutes(api, authRequired)
	handlers.NewAdminHandler(userService).RegisterRoutes(api, authRequired, adminRequired)

	return app
}
