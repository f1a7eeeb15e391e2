package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fathima-sithara/quote-chat/internal/bot"
	"github.com/fathima-sithara/quote-chat/internal/events"
	"github.com/fathima-sithara/quote-chat/internal/models"
)

// Manager owns the process-wide random-sender state: one enabled flag and
// at most one live ticker, shared by every connection. Transitions happen
// only through Toggle/Start/Stop, which broadcast STATUS_UPDATE on every
// actual state change.
type Manager struct {
	mu      sync.Mutex
	enabled bool
	cancel  context.CancelFunc

	interval    time.Duration
	responder   *bot.Responder
	broadcaster events.Broadcaster
}

func NewManager(responder *bot.Responder, broadcaster events.Broadcaster, interval time.Duration) *Manager {
	return &Manager{
		interval:    interval,
		responder:   responder,
		broadcaster: broadcaster,
	}
}

// HandleControl routes client control messages. Unknown types are logged
// and ignored.
func (m *Manager) HandleControl(msgType string) {
	switch msgType {
	case models.ControlToggleRandomSender:
		m.Toggle()
	default:
		log.Warn().Str("type", msgType).Msg("unknown control message ignored")
	}
}

// Toggle flips the random sender and returns the new state. The flip is
// derived and applied under one lock acquisition, so concurrent toggles
// never collapse into a single effective one.
func (m *Manager) Toggle() bool {
	m.mu.Lock()
	target := !m.enabled
	m.applyLocked(target)
	m.mu.Unlock()

	m.announce(target)
	return target
}

// Start enables the random sender. Idempotent: a second start is a no-op
// and broadcasts nothing.
func (m *Manager) Start() { m.transition(true) }

// Stop disables the random sender and cancels pending ticks. An in-flight
// reply is not cancelled, only future ticks are suppressed.
func (m *Manager) Stop() { m.transition(false) }

func (m *Manager) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

// StatusEvent is what newly registered connections receive, so late
// joiners see the current state without history replay.
func (m *Manager) StatusEvent() models.Event {
	return models.StatusUpdateEvent(m.Enabled())
}

// Close cancels the ticker without broadcasting; used during shutdown.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
	m.enabled = false
}

func (m *Manager) transition(target bool) {
	m.mu.Lock()
	if m.enabled == target {
		m.mu.Unlock()
		return
	}
	m.applyLocked(target)
	m.mu.Unlock()

	m.announce(target)
}

func (m *Manager) applyLocked(target bool) {
	m.enabled = target
	if target {
		m.startLocked()
	} else {
		m.stopLocked()
	}
}

func (m *Manager) announce(target bool) {
	m.broadcaster.Broadcast(models.StatusUpdateEvent(target))
	log.Info().Bool("enabled", target).Msg("random sender toggled")
}

func (m *Manager) startLocked() {
	if m.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go m.run(ctx)
}

func (m *Manager) stopLocked() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Manager) run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// detached so a cancelled ticker never aborts a tick that
			// already started
			go m.responder.RandomReply(context.Background())
		}
	}
}
