package repository

import (
	"context"

	"github.com/fathima-sithara/quote-chat/internal/models"
)

// Store is the document store the service runs against. ListChats returns
// chats ordered by updated_at descending; ListMessages returns messages
// ordered by created_at ascending. Implementations must serialize
// conflicting writes to the same chat.
type Store interface {
	CreateChat(ctx context.Context, chat *models.Chat) error
	GetChat(ctx context.Context, id string) (*models.Chat, error)
	ListChats(ctx context.Context) ([]models.Chat, error)
	UpdateChat(ctx context.Context, chat *models.Chat) error
	DeleteChat(ctx context.Context, id string) error
	CountChats(ctx context.Context) (int64, error)

	InsertMessage(ctx context.Context, msg *models.Message) error
	GetMessage(ctx context.Context, id string) (*models.Message, error)
	ListMessages(ctx context.Context, chatID string) ([]models.Message, error)
	DeleteMessagesByChat(ctx context.Context, chatID string) error
}
