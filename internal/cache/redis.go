package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/fathima-sithara/quote-chat/internal/models"
)

const (
	chatListKey = "chats:list"
	chatListTTL = 30 * time.Second
)

// Client caches the resolved chat list. A nil *Client is a valid no-op
// cache, so callers never have to branch on whether redis is configured.
type Client struct {
	rdb *redis.Client
}

// NewRedis initializes a Redis client and verifies the connection.
func NewRedis(ctx context.Context, addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	log.Info().Str("addr", addr).Msg("redis connected")
	return &Client{rdb: rdb}, nil
}

// GetChatList returns the cached list, or (nil, false) on miss or error.
func (c *Client) GetChatList(ctx context.Context) ([]models.Chat, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, chatListKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("chat list cache read failed")
		}
		return nil, false
	}
	var chats []models.Chat
	if err := json.Unmarshal(raw, &chats); err != nil {
		log.Warn().Err(err).Msg("chat list cache decode failed")
		return nil, false
	}
	return chats, true
}

func (c *Client) SetChatList(ctx context.Context, chats []models.Chat) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(chats)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, chatListKey, raw, chatListTTL).Err(); err != nil {
		log.Warn().Err(err).Msg("chat list cache write failed")
	}
}

// InvalidateChatList drops the cached list after any chat or message
// mutation.
func (c *Client) InvalidateChatList(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.rdb.Del(ctx, chatListKey).Err(); err != nil {
		log.Warn().Err(err).Msg("chat list cache invalidate failed")
	}
}

func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
