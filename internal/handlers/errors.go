package handlers

import (
	"errors"
	"log"

	"notes/internal/services"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps a service error kind onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err as {"success": false, "message": ...}. Messages of
// unexpected errors are logged and replaced by a generic one.
func respondError(c *fiber.Ctx, op string, err error) error {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		log.Printf("Error in %s: %v", op, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Internal Server Error",
		})
	}
	if errors.Is(err, services.ErrConfiguration) {
		log.Printf("Configuration error in %s: %v", op, err)
	}
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"success": false,
		"message": svcErr.Message,
	})
}

func invalidBody(c *fiber.Ctx, op string, err error) error {
	log.Printf("Error parsing %s request body: %v", op, err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Invalid request body",
	})
}

// ErrorHandler is the application-wide Fiber error handler. Anything a
// handler did not turn into a response ends up here.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"success": false,
			"message": fiberErr.Message,
		})
	}
	return respondError(c, c.Method()+" "+c.Path(), err)
}

// pagination reads page, limit and search from the query string. Missing or
// non-numeric values fall back to page 1 and limit 10.
func pagination(c *fiber.Ctx) services.Pagination {
	return services.Pagination{
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 10),
		Search: c.Query("search"),
	}
}
