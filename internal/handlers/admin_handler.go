package handlers

import (
	"notes/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles HTTP requests for account administration.
type AdminHandler struct {
	service *services.UserService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service *services.UserService) *AdminHandler {
	return &AdminHandler{
		service: service,
	}
}

// RegisterRoutes registers the admin routes. Every route runs the guards in
// the given order.
func (h *AdminHandler) RegisterRoutes(router fiber.Router, guards ...fiber.Handler) {
	adminRoutes := router.Group("/admin/users", guards...)
	adminRoutes.Get("/getAll", h.HandleGetUsers)
	adminRoutes.Get("/get/:id", h.HandleGetUser)
	adminRoutes.Put("/update/:id", h.HandleUpdateUser)
	adminRoutes.Delete("/delete/:id", h.HandleDeleteUser)
}

// HandleGetUsers lists all users.
func (h *AdminHandler) HandleGetUsers(c *fiber.Ctx) error {
	page, err := h.service.List(c.UserContext(), pagination(c))
	if err != nil {
		return respondError(c, "getAllUsers", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    page.Items,
		"pagination": fiber.Map{
			"page":         page.Page,
			"limit":        page.Limit,
			"totalPages":   page.TotalPages,
			"totalUsers":   page.Total,
			"totalMatched": page.Matched,
		},
	})
}

// HandleGetUser retrieves a single user by ID.
func (h *AdminHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, "getUser", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    user,
	})
}

// HandleUpdateUser merges username, email, status and role into an account.
func (h *AdminHandler) HandleUpdateUser(c *fiber.Ctx) error {
	var req services.UserUpdate
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, "updateUser", err)
	}

	user, err := h.service.Update(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return respondError(c, "updateUser", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "User updated successfully",
		"data":    user,
	})
}

// HandleDeleteUser deletes an account by ID.
func (h *AdminHandler) HandleDeleteUser(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, "deleteUser", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "User deleted successfully",
	})
}
