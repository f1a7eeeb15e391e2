package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fathima-sithara/quote-chat/internal/apperr"
	"github.com/fathima-sithara/quote-chat/internal/service"
)

type ChatHandler struct {
	svc *service.ChatService
}

func NewChatHandler(svc *service.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type chatRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// CreateChat handles POST /api/chats
func (h *ChatHandler) CreateChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	chat, err := h.svc.CreateChat(c.Context(), req.FirstName, req.LastName)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(chat)
}

// GetChats handles GET /api/chats
func (h *ChatHandler) GetChats(c *fiber.Ctx) error {
	chats, err := h.svc.ListChats(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(chats)
}

// UpdateChat handles PUT /api/chats/:id
func (h *ChatHandler) UpdateChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	chat, err := h.svc.UpdateChat(c.Context(), c.Params("id"), req.FirstName, req.LastName)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(chat)
}

// DeleteChat handles DELETE /api/chats/:id
func (h *ChatHandler) DeleteChat(c *fiber.Ctx) error {
	if err := h.svc.DeleteChat(c.Context(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "chat removed"})
}

// writeError maps the error taxonomy to HTTP statuses.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case apperr.IsValidation(err):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case apperr.IsNotFound(err):
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "chat not found"})
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}
