package ws

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/fathima-sithara/quote-chat/internal/models"
)

// Hub maintains the set of live connections and fans events out to all of
// them. A single Run loop dispatches registrations and broadcasts, so every
// connection sees events in broadcast call order.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan models.Event
	register   chan *Client
	unregister chan *Client

	// OnRegister supplies the event pushed to a freshly registered
	// connection (current random-sender status, per protocol).
	OnRegister func() models.Event
	// OnControl receives every well-formed client control message type.
	OnControl func(msgType string)
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan models.Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			if h.OnRegister != nil {
				client.enqueue(marshalEvent(h.OnRegister()))
			}
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case ev := <-h.broadcast:
			data := marshalEvent(ev)
			if data == nil {
				continue
			}
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					// slow or dead connection: drop it rather than block
					// the dispatch loop
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// Broadcast delivers ev to every connected client, best-effort. It never
// blocks the caller.
func (h *Hub) Broadcast(ev models.Event) {
	select {
	case h.broadcast <- ev:
	default:
		log.Warn().Str("type", string(ev.Type)).Msg("broadcast channel full, dropping event")
	}
}

func marshalEvent(ev models.Event) []byte {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("type", string(ev.Type)).Msg("event marshal failed")
		return nil
	}
	return data
}
