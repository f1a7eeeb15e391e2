package bot

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fathima-sithara/quote-chat/internal/cache"
	"github.com/fathima-sithara/quote-chat/internal/events"
	"github.com/fathima-sithara/quote-chat/internal/models"
	"github.com/fathima-sithara/quote-chat/internal/quotes"
	"github.com/fathima-sithara/quote-chat/internal/repository"
)

// Responder produces bot replies. Both trigger paths share one
// persist/update/broadcast routine; only the trigger and the text
// composition differ. Every failure is logged and swallowed: replies are
// fire-and-forget and never retried.
type Responder struct {
	store       repository.Store
	quotes      quotes.Fetcher
	broadcaster events.Broadcaster
	cache       *cache.Client
	replyDelay  time.Duration
}

func NewResponder(store repository.Store, fetcher quotes.Fetcher, broadcaster events.Broadcaster, cache *cache.Client, replyDelay time.Duration) *Responder {
	return &Responder{
		store:       store,
		quotes:      fetcher,
		broadcaster: broadcaster,
		cache:       cache,
		replyDelay:  replyDelay,
	}
}

// DelayedReply waits the configured delay, then posts one quote reply into
// chatID. Intended to run in a goroutine detached from the request that
// triggered it.
func (r *Responder) DelayedReply(ctx context.Context, chatID string) {
	defer recoverTask("delayed reply")

	select {
	case <-time.After(r.replyDelay):
	case <-ctx.Done():
		return
	}

	q, err := r.quotes.Random(ctx)
	if err != nil {
		log.Warn().Err(err).Str("chat_id", chatID).Msg("bot reply skipped: quote fetch failed")
		return
	}
	text := fmt.Sprintf("%s - %s", q.Quote, q.Author)

	msg, chat, err := r.persistReply(ctx, chatID, text)
	if err != nil {
		log.Warn().Err(err).Str("chat_id", chatID).Msg("bot reply skipped")
		return
	}
	r.broadcaster.Broadcast(models.NewMessageEvent(msg))
	r.broadcaster.Broadcast(models.UpdatedChatEvent(chat))
	log.Info().Str("chat_id", chatID).Msg("bot replied")
}

// RandomReply picks one chat uniformly at random and posts a quote into it.
// A store with no chats is a no-op. Failures never stop future ticks.
func (r *Responder) RandomReply(ctx context.Context) {
	defer recoverTask("random reply")

	chats, err := r.store.ListChats(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("random reply skipped: chat list failed")
		return
	}
	if len(chats) == 0 {
		return
	}
	target := chats[rand.Intn(len(chats))]

	q, err := r.quotes.Random(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("random reply skipped: quote fetch failed")
		return
	}

	msg, chat, err := r.persistReply(ctx, target.ID, q.Quote)
	if err != nil {
		log.Warn().Err(err).Str("chat_id", target.ID).Msg("random reply skipped")
		return
	}
	r.broadcaster.Broadcast(models.RandomMessageEvent(msg, chat))
	r.broadcaster.Broadcast(models.UpdatedChatEvent(chat))
	log.Info().Str("chat_id", chat.ID).Str("first_name", chat.FirstName).Msg("sent random message")
}

// persistReply stores the bot message and advances the owning chat's
// last-message pointer. The returned chat carries the resolved message for
// the broadcast payload.
func (r *Responder) persistReply(ctx context.Context, chatID, text string) (*models.Message, *models.Chat, error) {
	now := time.Now().UTC()
	msg := &models.Message{
		ChatID:    chatID,
		Sender:    models.SenderBot,
		Text:      text,
		CreatedAt: now,
	}
	if err := r.store.InsertMessage(ctx, msg); err != nil {
		return nil, nil, fmt.Errorf("insert bot message: %w", err)
	}

	chat, err := r.store.GetChat(ctx, chatID)
	if err != nil {
		return nil, nil, fmt.Errorf("load chat: %w", err)
	}
	chat.LastMessageID = &msg.ID
	chat.UpdatedAt = now
	if err := r.store.UpdateChat(ctx, chat); err != nil {
		return nil, nil, fmt.Errorf("update chat: %w", err)
	}
	chat.LastMessage = msg
	r.cache.InvalidateChatList(ctx)
	return msg, chat, nil
}

func recoverTask(name string) {
	if rec := recover(); rec != nil {
		log.Error().Interface("panic", rec).Str("task", name).Msg("panic recovered in bot task")
	}
}
