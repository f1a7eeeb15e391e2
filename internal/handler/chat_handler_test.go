package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fathima-sithara/quote-chat/internal/bot"
	"github.com/fathima-sithara/quote-chat/internal/models"
	"github.com/fathima-sithara/quote-chat/internal/quotes"
	"github.com/fathima-sithara/quote-chat/internal/repository"
	"github.com/fathima-sithara/quote-chat/internal/routes"
	"github.com/fathima-sithara/quote-chat/internal/service"
	"github.com/fathima-sithara/quote-chat/internal/ws"
)

type noopBroadcaster struct{}

func (noopBroadcaster) Broadcast(models.Event) {}

type stubFetcher struct{}

func (stubFetcher) Random(context.Context) (*quotes.Quote, error) {
	return &quotes.Quote{Quote: "q", Author: "a"}, nil
}

func newTestApp(t *testing.T) (*fiber.App, *service.ChatService) {
	t.Helper()
	store := repository.NewMemoryStore()
	bc := noopBroadcaster{}
	responder := bot.NewResponder(store, stubFetcher{}, bc, nil, time.Millisecond)
	svc := service.NewChatService(store, bc, responder, nil)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	routes.Register(app, svc, ws.NewHub())
	return app, svc
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t)
	resp := doJSON(t, app, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "ok", body["status"])
}

func TestCreateChatReturns201(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/chats", map[string]string{
		"firstName": "Ann", "lastName": "Lee",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	chat := decode[models.Chat](t, resp)
	assert.NotEmpty(t, chat.ID)
	assert.Equal(t, "Ann", chat.FirstName)
	assert.Equal(t, "Lee", chat.LastName)
}

func TestCreateChatRejectsMissingFields(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/chats", map[string]string{"firstName": "Ann"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.NotEmpty(t, body["error"])
}

func TestGetChatsListsCreated(t *testing.T) {
	app, svc := newTestApp(t)
	_, err := svc.CreateChat(context.Background(), "Ann", "Lee")
	require.NoError(t, err)

	resp := doJSON(t, app, http.MethodGet, "/api/chats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	chats := decode[[]models.Chat](t, resp)
	require.Len(t, chats, 1)
	assert.Equal(t, "Ann", chats[0].FirstName)
}

func TestUpdateChat(t *testing.T) {
	app, svc := newTestApp(t)
	chat, err := svc.CreateChat(context.Background(), "Ann", "Lee")
	require.NoError(t, err)

	resp := doJSON(t, app, http.MethodPut, "/api/chats/"+chat.ID, map[string]string{
		"firstName": "Anna", "lastName": "Lee-Park",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[models.Chat](t, resp)
	assert.Equal(t, "Anna", updated.FirstName)

	resp = doJSON(t, app, http.MethodPut, "/api/chats/missing", map[string]string{
		"firstName": "X", "lastName": "Y",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteChat(t *testing.T) {
	app, svc := newTestApp(t)
	chat, err := svc.CreateChat(context.Background(), "Ann", "Lee")
	require.NoError(t, err)

	resp := doJSON(t, app, http.MethodDelete, "/api/chats/"+chat.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "chat removed", body["message"])

	resp = doJSON(t, app, http.MethodDelete, "/api/chats/"+chat.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSendAndListMessages(t *testing.T) {
	app, svc := newTestApp(t)
	chat, err := svc.CreateChat(context.Background(), "Ann", "Lee")
	require.NoError(t, err)

	resp := doJSON(t, app, http.MethodPost, "/api/messages", map[string]string{
		"chatId": chat.ID, "text": "hello",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	msg := decode[models.Message](t, resp)
	assert.Equal(t, models.SenderUser, msg.Sender)
	assert.Equal(t, "hello", msg.Text)

	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/messages/%s", chat.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	msgs := decode[[]models.Message](t, resp)
	require.GreaterOrEqual(t, len(msgs), 1)
	assert.Equal(t, msg.ID, msgs[0].ID)
}

func TestSendMessageValidation(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/messages", map[string]string{"text": "hi"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetMessagesUnknownChatIsEmptyArray(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/messages/nope", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(raw), "unknown chat yields an empty array, not null")
}
