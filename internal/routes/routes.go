package routes

import (
	"github.com/gofiber/fiber/v2"

	handlers "github.com/fathima-sithara/quote-chat/internal/handler"
	"github.com/fathima-sithara/quote-chat/internal/service"
	"github.com/fathima-sithara/quote-chat/internal/ws"
)

func Register(app *fiber.App, svc *service.ChatService, hub *ws.Hub) {
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	chatHandler := handlers.NewChatHandler(svc)
	api.Post("/chats", chatHandler.CreateChat)
	api.Get("/chats", chatHandler.GetChats)
	api.Put("/chats/:id", chatHandler.UpdateChat)
	api.Delete("/chats/:id", chatHandler.DeleteChat)

	messageHandler := handlers.NewMessageHandler(svc)
	api.Get("/messages/:chatId", messageHandler.GetMessages)
	api.Post("/messages", messageHandler.SendMessage)

	app.Get("/ws", ws.NewWebsocketHandler(hub))
}
