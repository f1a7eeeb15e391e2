package client

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fathima-sithara/quote-chat/internal/models"
)

func apply(t *testing.T, e *Engine, ev models.Event) *Notification {
	t.Helper()
	frame, err := json.Marshal(ev)
	require.NoError(t, err)
	note, err := e.Apply(frame)
	require.NoError(t, err)
	return note
}

func chat(id string, updated time.Time) models.Chat {
	return models.Chat{ID: id, FirstName: "F" + id, LastName: "L" + id, UpdatedAt: updated}
}

func userMsg(id, chatID, text string) models.Message {
	return models.Message{ID: id, ChatID: chatID, Sender: models.SenderUser, Text: text}
}

func botMsg(id, chatID, text string) models.Message {
	return models.Message{ID: id, ChatID: chatID, Sender: models.SenderBot, Text: text}
}

func TestNewChatKeepsListSorted(t *testing.T) {
	e := NewEngine()
	base := time.Now().UTC()
	e.SetChats([]models.Chat{chat("a", base.Add(-time.Hour))})

	c := chat("b", base)
	apply(t, e, models.NewChatEvent(&c))

	ids := chatIDs(e.Chats())
	assert.Equal(t, []string{"b", "a"}, ids)
}

func TestNewChatDuplicateDeliveryIsIdempotent(t *testing.T) {
	e := NewEngine()

	c := chat("a", time.Now().UTC())
	apply(t, e, models.NewChatEvent(&c))
	apply(t, e, models.NewChatEvent(&c))

	assert.Equal(t, []string{"a"}, chatIDs(e.Chats()))
}

func TestUpdatedChatReplacesAndResorts(t *testing.T) {
	e := NewEngine()
	base := time.Now().UTC()
	e.SetChats([]models.Chat{
		chat("a", base),
		chat("b", base.Add(-time.Hour)),
	})

	updated := chat("b", base.Add(time.Hour))
	updated.FirstName = "Renamed"
	apply(t, e, models.UpdatedChatEvent(&updated))

	chats := e.Chats()
	assert.Equal(t, []string{"b", "a"}, chatIDs(chats))
	assert.Equal(t, "Renamed", chats[0].FirstName)
}

func TestUpdatedChatNullPayloadIsNoop(t *testing.T) {
	e := NewEngine()
	e.SetChats([]models.Chat{chat("a", time.Now().UTC())})

	apply(t, e, models.UpdatedChatEvent(nil))
	assert.Equal(t, []string{"a"}, chatIDs(e.Chats()))
}

func TestDeletedChatClearsSelection(t *testing.T) {
	e := NewEngine()
	e.SetChats([]models.Chat{chat("a", time.Now().UTC())})
	e.SelectChat("a")
	e.SetMessages([]models.Message{userMsg("m1", "a", "hi")})

	apply(t, e, models.DeletedChatEvent("a"))

	assert.Empty(t, e.Chats())
	assert.Empty(t, e.SelectedID(), "deleting the selected chat clears selection")
	assert.Empty(t, e.Messages())
}

func TestDeletedChatLeavesOtherSelectionAlone(t *testing.T) {
	e := NewEngine()
	now := time.Now().UTC()
	e.SetChats([]models.Chat{chat("a", now), chat("b", now.Add(-time.Minute))})
	e.SelectChat("a")
	e.SetMessages([]models.Message{userMsg("m1", "a", "hi")})

	apply(t, e, models.DeletedChatEvent("b"))

	assert.Equal(t, "a", e.SelectedID())
	assert.Len(t, e.Messages(), 1)
}

func TestNewMessageIdempotent(t *testing.T) {
	e := NewEngine()
	e.SetChats([]models.Chat{chat("a", time.Now().UTC())})
	e.SelectChat("a")

	msg := botMsg("m1", "a", "hello")
	apply(t, e, models.NewMessageEvent(&msg))
	apply(t, e, models.NewMessageEvent(&msg))

	require.Len(t, e.Messages(), 1, "duplicate delivery must not duplicate the message")
	assert.Equal(t, "m1", e.Messages()[0].ID)
}

func TestOptimisticSendReconciledInPlace(t *testing.T) {
	e := NewEngine()
	e.SetChats([]models.Chat{chat("a", time.Now().UTC())})
	e.SelectChat("a")
	e.SetMessages([]models.Message{botMsg("m0", "a", "welcome")})

	optimistic, err := e.OptimisticSend("hi there")
	require.NoError(t, err)
	assert.True(t, e.BotTyping())
	require.Len(t, e.Messages(), 2)

	confirmed := userMsg("server-id", "a", "hi there")
	apply(t, e, models.NewMessageEvent(&confirmed))

	msgs := e.Messages()
	require.Len(t, msgs, 2, "placeholder replaced, not duplicated")
	assert.Equal(t, "m0", msgs[0].ID)
	assert.Equal(t, "server-id", msgs[1].ID, "replacement preserves list position")
	assert.NotEqual(t, optimistic.ID, msgs[1].ID)

	// a re-delivery of the confirmed message is still idempotent
	apply(t, e, models.NewMessageEvent(&confirmed))
	assert.Len(t, e.Messages(), 2)
}

func TestSendFailedRollsBackOptimisticEntry(t *testing.T) {
	e := NewEngine()
	e.SetChats([]models.Chat{chat("a", time.Now().UTC())})
	e.SelectChat("a")

	optimistic, err := e.OptimisticSend("hi")
	require.NoError(t, err)
	require.Len(t, e.Messages(), 1)

	e.SendFailed(optimistic.ID)
	assert.Empty(t, e.Messages())
	assert.False(t, e.BotTyping())
}

func TestOptimisticSendRequiresSelection(t *testing.T) {
	e := NewEngine()
	_, err := e.OptimisticSend("hi")
	assert.Error(t, err)
}

func TestBotMessageClearsTyping(t *testing.T) {
	e := NewEngine()
	e.SetChats([]models.Chat{chat("a", time.Now().UTC())})
	e.SelectChat("a")

	_, err := e.OptimisticSend("hi")
	require.NoError(t, err)
	require.True(t, e.BotTyping())

	reply := botMsg("m2", "a", "a quote - someone")
	apply(t, e, models.NewMessageEvent(&reply))
	assert.False(t, e.BotTyping())
}

func TestBotMessageForOtherChatMarksUnread(t *testing.T) {
	e := NewEngine()
	now := time.Now().UTC()
	e.SetChats([]models.Chat{chat("a", now), chat("b", now.Add(-time.Minute))})
	e.SelectChat("a")

	reply := botMsg("m1", "b", "psst")
	note := apply(t, e, models.NewMessageEvent(&reply))

	assert.True(t, e.Unread("b"))
	require.NotNil(t, note)
	assert.Equal(t, "info", note.Kind)
	assert.Empty(t, e.Messages(), "inactive chat messages stay out of the active list")
}

func TestUserMessageForOtherChatIsSilent(t *testing.T) {
	e := NewEngine()
	now := time.Now().UTC()
	e.SetChats([]models.Chat{chat("a", now), chat("b", now.Add(-time.Minute))})
	e.SelectChat("a")

	msg := userMsg("m1", "b", "hi")
	note := apply(t, e, models.NewMessageEvent(&msg))
	assert.Nil(t, note)
	assert.False(t, e.Unread("b"))
}

func TestSelectChatClearsUnread(t *testing.T) {
	e := NewEngine()
	now := time.Now().UTC()
	e.SetChats([]models.Chat{chat("a", now), chat("b", now.Add(-time.Minute))})
	e.SelectChat("a")

	reply := botMsg("m1", "b", "psst")
	apply(t, e, models.NewMessageEvent(&reply))
	require.True(t, e.Unread("b"))

	e.SelectChat("b")
	assert.False(t, e.Unread("b"))
}

func TestRandomMessageNotifiesWithChatName(t *testing.T) {
	e := NewEngine()
	now := time.Now().UTC()
	a := chat("a", now)
	e.SetChats([]models.Chat{a, chat("b", now.Add(-time.Minute))})
	e.SelectChat("b")

	msg := botMsg("m1", "a", "a random quote")
	note := apply(t, e, models.RandomMessageEvent(&msg, &a))

	require.NotNil(t, note)
	assert.Contains(t, note.Text, a.FirstName)
	assert.True(t, e.Unread("a"))

	// same event twice, active chat this time: merged once
	e.SelectChat("a")
	e.SetMessages(nil)
	apply(t, e, models.RandomMessageEvent(&msg, &a))
	apply(t, e, models.RandomMessageEvent(&msg, &a))
	assert.Len(t, e.Messages(), 1)
}

func TestStatusUpdateSetsIndicator(t *testing.T) {
	e := NewEngine()
	assert.False(t, e.RandomSenderOn())

	apply(t, e, models.StatusUpdateEvent(true))
	assert.True(t, e.RandomSenderOn())

	apply(t, e, models.StatusUpdateEvent(false))
	assert.False(t, e.RandomSenderOn())
}

func TestApplyRejectsMalformedFrames(t *testing.T) {
	e := NewEngine()
	_, err := e.Apply([]byte("not json"))
	assert.Error(t, err)

	_, err = e.Apply([]byte(`{"type":"SOMETHING_ELSE","payload":{}}`))
	assert.Error(t, err)
}

func chatIDs(chats []models.Chat) []string {
	out := make([]string, len(chats))
	for i, c := range chats {
		out[i] = c.ID
	}
	return out
}
