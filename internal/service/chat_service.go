package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fathima-sithara/quote-chat/internal/apperr"
	"github.com/fathima-sithara/quote-chat/internal/bot"
	"github.com/fathima-sithara/quote-chat/internal/cache"
	"github.com/fathima-sithara/quote-chat/internal/events"
	"github.com/fathima-sithara/quote-chat/internal/models"
	"github.com/fathima-sithara/quote-chat/internal/repository"
)

// ChatService is the command layer: it validates, mutates the store,
// broadcasts the resulting event, and for message sends kicks off the bot's
// delayed reply without waiting for it.
type ChatService struct {
	store       repository.Store
	broadcaster events.Broadcaster
	responder   *bot.Responder
	cache       *cache.Client
}

func NewChatService(store repository.Store, broadcaster events.Broadcaster, responder *bot.Responder, cache *cache.Client) *ChatService {
	return &ChatService{
		store:       store,
		broadcaster: broadcaster,
		responder:   responder,
		cache:       cache,
	}
}

func (s *ChatService) CreateChat(ctx context.Context, firstName, lastName string) (*models.Chat, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return nil, apperr.Validation("first name and last name are required")
	}

	now := time.Now().UTC()
	chat := &models.Chat{
		FirstName: firstName,
		LastName:  lastName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateChat(ctx, chat); err != nil {
		return nil, err
	}
	s.cache.InvalidateChatList(ctx)
	s.broadcaster.Broadcast(models.NewChatEvent(chat))
	return chat, nil
}

// ListChats returns every chat, newest activity first, with lastMessage
// resolved best-effort: a failed resolution degrades to the bare id instead
// of failing the whole list.
func (s *ChatService) ListChats(ctx context.Context) ([]models.Chat, error) {
	if chats, ok := s.cache.GetChatList(ctx); ok {
		return chats, nil
	}

	chats, err := s.store.ListChats(ctx)
	if err != nil {
		return nil, err
	}
	for i := range chats {
		s.resolveLastMessage(ctx, &chats[i])
	}
	s.cache.SetChatList(ctx, chats)
	return chats, nil
}

func (s *ChatService) UpdateChat(ctx context.Context, id, firstName, lastName string) (*models.Chat, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return nil, apperr.Validation("first name and last name are required")
	}

	chat, err := s.store.GetChat(ctx, id)
	if err != nil {
		return nil, err
	}
	chat.FirstName = firstName
	chat.LastName = lastName
	chat.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateChat(ctx, chat); err != nil {
		return nil, err
	}
	s.resolveLastMessage(ctx, chat)
	s.cache.InvalidateChatList(ctx)
	s.broadcaster.Broadcast(models.UpdatedChatEvent(chat))
	return chat, nil
}

// DeleteChat removes the chat and cascades to all its messages.
func (s *ChatService) DeleteChat(ctx context.Context, id string) error {
	if _, err := s.store.GetChat(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteChat(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteMessagesByChat(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidateChatList(ctx)
	s.broadcaster.Broadcast(models.DeletedChatEvent(id))
	return nil
}

func (s *ChatService) ListMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	return s.store.ListMessages(ctx, chatID)
}

// SendMessage persists the user message, advances the chat pointer,
// broadcasts NEW_MESSAGE then UPDATED_CHAT, and returns the saved message
// immediately. The bot's delayed reply runs detached; its outcome is never
// surfaced to the caller.
func (s *ChatService) SendMessage(ctx context.Context, chatID, text string) (*models.Message, error) {
	chatID = strings.TrimSpace(chatID)
	if chatID == "" || strings.TrimSpace(text) == "" {
		return nil, apperr.Validation("chatId and text are required")
	}

	now := time.Now().UTC()
	msg := &models.Message{
		ChatID:    chatID,
		Sender:    models.SenderUser,
		Text:      text,
		CreatedAt: now,
	}
	if err := s.store.InsertMessage(ctx, msg); err != nil {
		return nil, err
	}

	// The message outlives an unknown chat id, matching the historical
	// behavior: UPDATED_CHAT then carries a null payload.
	var chat *models.Chat
	if c, err := s.store.GetChat(ctx, chatID); err == nil {
		c.LastMessageID = &msg.ID
		c.UpdatedAt = now
		if err := s.store.UpdateChat(ctx, c); err == nil {
			c.LastMessage = msg
			chat = c
		} else {
			log.Warn().Err(err).Str("chat_id", chatID).Msg("chat pointer update failed")
		}
	} else {
		log.Warn().Err(err).Str("chat_id", chatID).Msg("message sent to unknown chat")
	}

	s.cache.InvalidateChatList(ctx)
	s.broadcaster.Broadcast(models.NewMessageEvent(msg))
	s.broadcaster.Broadcast(models.UpdatedChatEvent(chat))

	go s.responder.DelayedReply(context.Background(), chatID)

	return msg, nil
}

// Seed inserts demo chats once, when the store is empty.
func (s *ChatService) Seed(ctx context.Context) error {
	count, err := s.store.CountChats(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	demo := []models.Chat{
		{FirstName: "Mark", LastName: "Smith", UpdatedAt: now.Add(-1 * time.Hour)},
		{FirstName: "John", LastName: "Miller", UpdatedAt: now.Add(-2 * time.Hour)},
		{FirstName: "Vanessa", LastName: "Cruz", UpdatedAt: now.Add(-3 * time.Hour)},
	}
	for i := range demo {
		demo[i].CreatedAt = demo[i].UpdatedAt
		if err := s.store.CreateChat(ctx, &demo[i]); err != nil {
			return err
		}
	}
	log.Info().Int("chats", len(demo)).Msg("seeded empty store")
	return nil
}

func (s *ChatService) resolveLastMessage(ctx context.Context, chat *models.Chat) {
	if chat.LastMessageID == nil {
		return
	}
	msg, err := s.store.GetMessage(ctx, *chat.LastMessageID)
	if err != nil {
		log.Warn().Err(err).Str("chat_id", chat.ID).Msg("last message resolution failed")
		return
	}
	chat.LastMessage = msg
}
