package client

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/fathima-sithara/quote-chat/internal/models"
)

const tempIDPrefix = "temp_"

// Notification is a transient message surfaced to the user (toast-style).
type Notification struct {
	Text string
	Kind string // success, info, error
}

// Engine folds server-pushed events and local optimistic updates into a
// single consistent view: the ordered chat list, the active selection, the
// active chat's messages, and per-chat unread state. All methods are safe
// for concurrent use; the reducer itself never blocks.
type Engine struct {
	// OnActiveBotMessage, when set, observes bot messages merged into the
	// active chat (the terminal client prints them). Set before Run. It is
	// invoked with the engine lock held and must not call back in.
	OnActiveBotMessage func(models.Message)

	mu             sync.Mutex
	chats          []models.Chat
	selectedID     string
	messages       []models.Message
	unread         map[string]struct{}
	randomSenderOn bool
	botTyping      bool
}

func NewEngine() *Engine {
	return &Engine{unread: make(map[string]struct{})}
}

type envelope struct {
	Type    models.EventType `json:"type"`
	Payload json.RawMessage  `json:"payload"`
}

// Apply folds one raw websocket frame into the state. Delivering the same
// event twice is harmless: message merging is idempotent by id.
func (e *Engine) Apply(frame []byte) (*Notification, error) {
	var ev envelope
	if err := json.Unmarshal(frame, &ev); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	switch ev.Type {
	case models.EventStatusUpdate:
		var p models.StatusPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return nil, err
		}
		e.randomSenderOn = p.IsRandomSenderOn
		return nil, nil

	case models.EventNewChat:
		var chat models.Chat
		if err := json.Unmarshal(ev.Payload, &chat); err != nil {
			return nil, err
		}
		for i := range e.chats {
			if e.chats[i].ID == chat.ID {
				return nil, nil
			}
		}
		e.chats = append(e.chats, chat)
		sortChats(e.chats)
		return nil, nil

	case models.EventUpdatedChat:
		var chat *models.Chat
		if err := json.Unmarshal(ev.Payload, &chat); err != nil {
			return nil, err
		}
		if chat == nil || chat.ID == "" {
			return nil, nil
		}
		for i := range e.chats {
			if e.chats[i].ID == chat.ID {
				e.chats[i] = *chat
				break
			}
		}
		sortChats(e.chats)
		return nil, nil

	case models.EventDeletedChat:
		var p models.DeletedChatPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return nil, err
		}
		e.chats = removeChat(e.chats, p.ID)
		if e.selectedID == p.ID {
			e.selectedID = ""
			e.messages = nil
			e.botTyping = false
		}
		return nil, nil

	case models.EventNewMessage:
		var msg models.Message
		if err := json.Unmarshal(ev.Payload, &msg); err != nil {
			return nil, err
		}
		return e.applyMessage(&msg, nil), nil

	case models.EventRandomMessage:
		var p models.RandomMessagePayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return nil, err
		}
		if p.Message == nil {
			return nil, nil
		}
		e.applyMessage(p.Message, p.Chat)
		name := ""
		if p.Chat != nil {
			name = p.Chat.FirstName
		}
		return &Notification{Text: fmt.Sprintf("Bot sent a random message to %s!", name), Kind: "info"}, nil
	}

	return nil, fmt.Errorf("unknown event type %q", ev.Type)
}

// applyMessage merges a pushed message into the active list or marks the
// owning chat unread. Caller holds the lock.
func (e *Engine) applyMessage(msg *models.Message, _ *models.Chat) *Notification {
	if e.selectedID != "" && msg.ChatID == e.selectedID {
		if msg.Sender == models.SenderBot {
			e.botTyping = false
			if e.OnActiveBotMessage != nil {
				e.OnActiveBotMessage(*msg)
			}
		}
		e.messages = mergeMessage(e.messages, *msg)
		return nil
	}
	if msg.Sender == models.SenderBot {
		e.unread[msg.ChatID] = struct{}{}
		return &Notification{Text: "New bot message!", Kind: "info"}
	}
	return nil
}

// mergeMessage reconciles one incoming message against the current list.
// A user message first tries to replace an optimistic placeholder with
// identical text, preserving its position; otherwise the message is
// appended only if its id is not already present.
func mergeMessage(list []models.Message, msg models.Message) []models.Message {
	if msg.Sender == models.SenderUser {
		for i := range list {
			if strings.HasPrefix(list[i].ID, tempIDPrefix) &&
				list[i].Sender == models.SenderUser &&
				list[i].Text == msg.Text {
				out := make([]models.Message, len(list))
				copy(out, list)
				out[i] = msg
				return out
			}
		}
	}
	for i := range list {
		if list[i].ID == msg.ID {
			return list
		}
	}
	return append(list, msg)
}

// OptimisticSend appends a temporary local entry for text in the selected
// chat and raises the typing indicator. The returned message carries the
// temp id the caller needs to roll back on network failure.
func (e *Engine) OptimisticSend(text string) (*models.Message, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.selectedID == "" {
		return nil, fmt.Errorf("no chat selected")
	}
	msg := models.Message{
		ID:     tempIDPrefix + uuid.NewString(),
		ChatID: e.selectedID,
		Sender: models.SenderUser,
		Text:   text,
	}
	e.messages = append(e.messages, msg)
	e.botTyping = true
	return &msg, nil
}

// SendFailed rolls an optimistic entry back after a failed network call.
func (e *Engine) SendFailed(tempID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.messages {
		if e.messages[i].ID == tempID {
			e.messages = append(e.messages[:i], e.messages[i+1:]...)
			break
		}
	}
	e.botTyping = false
}

// SelectChat makes chatID the active chat and clears its unread mark. The
// caller is expected to load the message history and call SetMessages.
func (e *Engine) SelectChat(chatID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selectedID = chatID
	e.messages = nil
	e.botTyping = false
	delete(e.unread, chatID)
}

func (e *Engine) SetChats(chats []models.Chat) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.chats = append([]models.Chat(nil), chats...)
	sortChats(e.chats)
}

func (e *Engine) SetMessages(msgs []models.Message) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.messages = append([]models.Message(nil), msgs...)
}

func (e *Engine) Chats() []models.Chat {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.Chat(nil), e.chats...)
}

func (e *Engine) Messages() []models.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.Message(nil), e.messages...)
}

func (e *Engine) SelectedID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectedID
}

func (e *Engine) Unread(chatID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.unread[chatID]
	return ok
}

func (e *Engine) RandomSenderOn() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.randomSenderOn
}

func (e *Engine) BotTyping() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.botTyping
}

func sortChats(chats []models.Chat) {
	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].UpdatedAt.After(chats[j].UpdatedAt)
	})
}

func removeChat(chats []models.Chat, id string) []models.Chat {
	out := chats[:0]
	for _, c := range chats {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}
