package models

// EventType tags a realtime event pushed to every connected client.
type EventType string

const (
	EventNewChat       EventType = "NEW_CHAT"
	EventUpdatedChat   EventType = "UPDATED_CHAT"
	EventDeletedChat   EventType = "DELETED_CHAT"
	EventNewMessage    EventType = "NEW_MESSAGE"
	EventRandomMessage EventType = "RANDOM_MESSAGE"
	EventStatusUpdate  EventType = "STATUS_UPDATE"

	// ControlToggleRandomSender is the only client->server control message.
	ControlToggleRandomSender = "TOGGLE_RANDOM_SENDER"
)

// Event is the tagged union sent over the websocket.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

type DeletedChatPayload struct {
	ID string `json:"id"`
}

type RandomMessagePayload struct {
	Message *Message `json:"message"`
	Chat    *Chat    `json:"chat"`
}

// StatusPayload keeps the historical field name so existing clients keep
// working.
type StatusPayload struct {
	IsRandomSenderOn bool `json:"isRandomSenderOn"`
}

func NewChatEvent(c *Chat) Event        { return Event{Type: EventNewChat, Payload: c} }
func UpdatedChatEvent(c *Chat) Event    { return Event{Type: EventUpdatedChat, Payload: c} }
func DeletedChatEvent(id string) Event  { return Event{Type: EventDeletedChat, Payload: DeletedChatPayload{ID: id}} }
func NewMessageEvent(m *Message) Event  { return Event{Type: EventNewMessage, Payload: m} }
func StatusUpdateEvent(on bool) Event   { return Event{Type: EventStatusUpdate, Payload: StatusPayload{IsRandomSenderOn: on}} }

func RandomMessageEvent(m *Message, c *Chat) Event {
	return Event{Type: EventRandomMessage, Payload: RandomMessagePayload{Message: m, Chat: c}}
}
