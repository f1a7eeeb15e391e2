package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/fathima-sithara/quote-chat/internal/apperr"
	"github.com/fathima-sithara/quote-chat/internal/models"
)

// MemoryStore keeps everything in process memory. It backs tests and the
// no-Mongo dev mode. The single mutex serializes conflicting writes to the
// same chat.
type MemoryStore struct {
	mu       sync.RWMutex
	chats    map[string]models.Chat
	messages map[string]models.Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		chats:    make(map[string]models.Chat),
		messages: make(map[string]models.Message),
	}
}

func (s *MemoryStore) CreateChat(_ context.Context, chat *models.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if chat.ID == "" {
		chat.ID = uuid.NewString()
	}
	s.chats[chat.ID] = *chat
	return nil
}

func (s *MemoryStore) GetChat(_ context.Context, id string) (*models.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chat, ok := s.chats[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &chat, nil
}

func (s *MemoryStore) ListChats(_ context.Context) ([]models.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Chat, 0, len(s.chats))
	for _, chat := range s.chats {
		out = append(out, chat)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (s *MemoryStore) UpdateChat(_ context.Context, chat *models.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[chat.ID]; !ok {
		return apperr.ErrNotFound
	}
	s.chats[chat.ID] = *chat
	return nil
}

func (s *MemoryStore) DeleteChat(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(s.chats, id)
	return nil
}

func (s *MemoryStore) CountChats(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.chats)), nil
}

func (s *MemoryStore) InsertMessage(_ context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	s.messages[msg.ID] = *msg
	return nil
}

func (s *MemoryStore) GetMessage(_ context.Context, id string) (*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.messages[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &msg, nil
}

func (s *MemoryStore) ListMessages(_ context.Context, chatID string) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Message, 0)
	for _, msg := range s.messages {
		if msg.ChatID == chatID {
			out = append(out, msg)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) DeleteMessagesByChat(_ context.Context, chatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, msg := range s.messages {
		if msg.ChatID == chatID {
			delete(s.messages, id)
		}
	}
	return nil
}
