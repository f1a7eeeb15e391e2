package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fathima-sithara/quote-chat/internal/models"
	"github.com/fathima-sithara/quote-chat/internal/service"
)

type MessageHandler struct {
	svc *service.ChatService
}

func NewMessageHandler(svc *service.ChatService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

// GetMessages handles GET /api/messages/:chatId
func (h *MessageHandler) GetMessages(c *fiber.Ctx) error {
	msgs, err := h.svc.ListMessages(c.Context(), c.Params("chatId"))
	if err != nil {
		return writeError(c, err)
	}
	if msgs == nil {
		msgs = make([]models.Message, 0)
	}
	return c.JSON(msgs)
}

// SendMessage handles POST /api/messages. The response carries the saved
// user message; the bot reply happens later over the websocket.
func (h *MessageHandler) SendMessage(c *fiber.Ctx) error {
	var req struct {
		ChatID string `json:"chatId"`
		Text   string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	msg, err := h.svc.SendMessage(c.Context(), req.ChatID, req.Text)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(msg)
}
