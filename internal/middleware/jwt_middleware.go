package middleware

import (
	"errors"
	"log"
	"strings"

	"notes/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserIDKey is the Fiber locals key holding the authenticated user id.
const UserIDKey = "user_id"

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token. It never
// touches the store.
func AuthRequired(tokens TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Expected format: "Bearer <token>"
		parts := strings.Fields(c.Get(fiber.HeaderAuthorization))
		if len(parts) < 2 {
			return unauthorized(c, "Unauthorized, No token provided")
		}
		if !strings.EqualFold(parts[0], "Bearer") || len(parts) > 2 {
			return unauthorized(c, "Invalid Token")
		}

		userID, err := tokens.Verify(parts[1])
		if err != nil {
			switch {
			case errors.Is(err, services.ErrTokenExpired):
				return unauthorized(c, "Token Expired")
			case errors.Is(err, services.ErrMissingSecret):
				log.Printf("JWT validation impossible: %v", err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"success": false,
					"message": "Server configuration error",
				})
			}
			log.Printf("JWT validation failed: %v", err)
			return unauthorized(c, "Invalid Token")
		}

		// Store the identity claim for subsequent handlers
		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// UserID returns the authenticated user id, or "" outside AuthRequired.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
