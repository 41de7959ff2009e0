package middleware

import (
	"context"
	"errors"
	"log"

	"notes/internal/models"
	"notes/internal/services"

	"github.com/gofiber/fiber/v2"
)

// RoleChecker confirms that a user currently holds a role.
type RoleChecker interface {
	RequireRole(ctx context.Context, userID string, role models.Role) error
}

// AdminRequired lets the request through only when the authenticated user is
// an ADMIN according to the store. It must run after AuthRequired.
func AdminRequired(users RoleChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := users.RequireRole(c.UserContext(), UserID(c), models.RoleAdmin)
		if err == nil {
			return c.Next()
		}

		var svcErr *services.Error
		if errors.As(err, &svcErr) {
			status := fiber.StatusForbidden
			if errors.Is(err, services.ErrNotFound) {
				status = fiber.StatusNotFound
			}
			return c.Status(status).JSON(fiber.Map{
				"success": false,
				"message": svcErr.Message,
			})
		}

		log.Printf("Error in admin check: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Internal Server Error",
		})
	}
}
