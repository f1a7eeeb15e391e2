package client

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/fathima-sithara/quote-chat/internal/models"
)

const reconnectInterval = 3 * time.Second

// Connector keeps one live websocket to the server, feeding every frame
// into the engine. Reconnection is unbounded with a fixed interval; no
// history is replayed after a reconnect, only the server's status push.
type Connector struct {
	url    string
	engine *Engine
	notify func(Notification)

	mu   sync.Mutex
	conn *websocket.Conn
}

func NewConnector(url string, engine *Engine, notify func(Notification)) *Connector {
	if notify == nil {
		notify = func(Notification) {}
	}
	return &Connector{url: url, engine: engine, notify: notify}
}

// Run connects and reads until ctx is cancelled, redialing every
// reconnectInterval after a drop.
func (c *Connector) Run(ctx context.Context) error {
	for {
		conn, err := c.dial(ctx)
		if err != nil {
			return err
		}
		c.setConn(conn)
		c.readLoop(ctx, conn)
		c.setConn(nil)
		_ = conn.Close()

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			log.Warn().Msg("connection lost, reconnecting")
		}
	}
}

func (c *Connector) dial(ctx context.Context) (*websocket.Conn, error) {
	var conn *websocket.Conn
	operation := func() error {
		var err error
		conn, _, err = websocket.DefaultDialer.DialContext(ctx, c.url, nil)
		if err != nil {
			log.Warn().Err(err).Str("url", c.url).Msg("dial failed, retrying")
		}
		return err
	}
	b := backoff.WithContext(backoff.NewConstantBackOff(reconnectInterval), ctx)
	if err := backoff.Retry(operation, b); err != nil {
		return nil, err
	}
	return conn, nil
}

func (c *Connector) readLoop(ctx context.Context, conn *websocket.Conn) {
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return
		}
		note, err := c.engine.Apply(frame)
		if err != nil {
			log.Warn().Err(err).Msg("event dropped")
			continue
		}
		if note != nil {
			c.notify(*note)
		}
	}
}

// ToggleRandomSender flips the process-wide random sender on the server.
func (c *Connector) ToggleRandomSender() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return websocket.ErrCloseSent
	}
	return c.conn.WriteJSON(map[string]string{"type": models.ControlToggleRandomSender})
}

func (c *Connector) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}
