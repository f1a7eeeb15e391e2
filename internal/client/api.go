package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fathima-sithara/quote-chat/internal/models"
)

// API is the thin REST wrapper the terminal client uses for commands; all
// state updates still arrive through the websocket.
type API struct {
	base string
	http *http.Client
}

func NewAPI(base string) *API {
	return &API{
		base: base,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *API) GetChats(ctx context.Context) ([]models.Chat, error) {
	var chats []models.Chat
	err := a.do(ctx, http.MethodGet, "/api/chats", nil, &chats)
	return chats, err
}

func (a *API) GetMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	var msgs []models.Message
	err := a.do(ctx, http.MethodGet, "/api/messages/"+chatID, nil, &msgs)
	return msgs, err
}

func (a *API) CreateChat(ctx context.Context, firstName, lastName string) (*models.Chat, error) {
	body := map[string]string{"firstName": firstName, "lastName": lastName}
	var chat models.Chat
	if err := a.do(ctx, http.MethodPost, "/api/chats", body, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

func (a *API) UpdateChat(ctx context.Context, id, firstName, lastName string) (*models.Chat, error) {
	body := map[string]string{"firstName": firstName, "lastName": lastName}
	var chat models.Chat
	if err := a.do(ctx, http.MethodPut, "/api/chats/"+id, body, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

func (a *API) DeleteChat(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/api/chats/"+id, nil, nil)
}

func (a *API) SendMessage(ctx context.Context, chatID, text string) (*models.Message, error) {
	body := map[string]string{"chatId": chatID, "text": text}
	var msg models.Message
	if err := a.do(ctx, http.MethodPost, "/api/messages", body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewBuffer(data)
	} else {
		buf = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, a.base+path, buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
