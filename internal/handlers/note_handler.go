package handlers

import (
	"notes/internal/middleware"
	"notes/internal/services"

	"github.com/gofiber/fiber/v2"
)

// NoteHandler handles HTTP requests for notes.
type NoteHandler struct {
	service *services.NoteService
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(service *services.NoteService) *NoteHandler {
	return &NoteHandler{
		service: service,
	}
}

// RegisterRoutes registers the note routes behind the given middleware.
func (h *NoteHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	noteRoutes := router.Group("/notes", authRequired)
	noteRoutes.Post("/add", h.HandleCreateNote)
	noteRoutes.Get("/getAll", h.HandleGetNotes)
	noteRoutes.Get("/get/:id", h.HandleGetNote)
	noteRoutes.Put("/update/:id", h.HandleUpdateNote)
	noteRoutes.Delete("/delete/:id", h.HandleDeleteNote)

	userRoutes := router.Group("/users", authRequired)
	userRoutes.Get("/user-stats", h.HandleUserStats)
}

// HandleCreateNote creates a note owned by the caller.
func (h *NoteHandler) HandleCreateNote(c *fiber.Ctx) error {
	var req services.NoteInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, "createNote", err)
	}

	note, err := h.service.Create(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return respondError(c, "createNote", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Note created successfully",
		"data":    note,
	})
}

// HandleGetNotes lists the caller's notes.
func (h *NoteHandler) HandleGetNotes(c *fiber.Ctx) error {
	page, err := h.service.List(c.UserContext(), middleware.UserID(c), pagination(c))
	if err != nil {
		return respondError(c, "getAllUserNotes", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    page.Items,
		"pagination": fiber.Map{
			"page":           page.Page,
			"limit":          page.Limit,
			"totalPages":     page.TotalPages,
			"totalUserNotes": page.Total,
		},
	})
}

// HandleGetNote retrieves a single note by its ID.
func (h *NoteHandler) HandleGetNote(c *fiber.Ctx) error {
	note, err := h.service.Get(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, "getSingleNote", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    note,
	})
}

// HandleUpdateNote merges the supplied title and content into a note.
func (h *NoteHandler) HandleUpdateNote(c *fiber.Ctx) error {
	var req services.NoteInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, "updateNote", err)
	}

	note, err := h.service.Update(c.UserContext(), middleware.UserID(c), c.Params("id"), req)
	if err != nil {
		return respondError(c, "updateNote", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Note updated successfully",
		"data":    note,
	})
}

// HandleDeleteNote deletes a note by its ID.
func (h *NoteHandler) HandleDeleteNote(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return respondError(c, "deleteNote", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Note deleted successfully",
	})
}

// HandleUserStats reports the caller's note count and latest activity.
func (h *NoteHandler) HandleUserStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, "getUserStats", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    stats,
	})
}
