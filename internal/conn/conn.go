// Package conn owns the single persistent websocket channel to the game
// server. It is the only component that reads or writes the socket: inbound
// frames are decoded and delivered in arrival order on Events, and every
// outbound message goes through Send.
package conn

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"numdrop/internal/protocol"
)

const (
	writeTimeout = 3 * time.Second
	eventBuffer  = 16
)

// Manager is one client connection. Create with Dial, pump with Run.
type Manager struct {
	ws  *websocket.Conn
	log *zap.Logger

	events chan protocol.ServerEvent

	mu     sync.RWMutex
	selfID string
}

// Dial opens the websocket connection. The server's first frame is a connect
// event carrying this client's identity; Run captures it before forwarding.
func Dial(ctx context.Context, url string, log *zap.Logger) (*Manager, error) {
	ws, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Manager{
		ws:     ws,
		log:    log,
		events: make(chan protocol.ServerEvent, eventBuffer),
	}, nil
}

// Events delivers decoded inbound events in the order the transport delivered
// them. The channel is closed when the connection ends.
func (m *Manager) Events() <-chan protocol.ServerEvent {
	return m.events
}

// Identity returns the server-assigned id for this client, once captured.
func (m *Manager) Identity() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selfID, m.selfID != ""
}

// Run is the read loop. It blocks until the connection closes or ctx is
// canceled. A clean close returns nil; the session is over either way, no
// reconnection is attempted.
func (m *Manager) Run(ctx context.Context) error {
	defer close(m.events)

	for {
		_, data, err := m.ws.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read: %w", err)
		}

		ev, err := protocol.Decode(data)
		if err != nil {
			// Unknown or malformed frames are logged, never silently eaten.
			m.log.Warn("dropping undecodable frame", zap.Error(err))
			continue
		}

		if c, ok := ev.(protocol.Connected); ok {
			m.captureIdentity(c.ID)
		}

		select {
		case m.events <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Send marshals and writes one outbound frame. Fire-and-forget: there is no
// acknowledgment tracking, the protocol is at-most-once from this side.
func (m *Manager) Send(ctx context.Context, msg protocol.ClientMessage) error {
	payload, err := protocol.Encode(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msg.Type, err)
	}

	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := m.ws.Write(wctx, websocket.MessageText, payload); err != nil {
		return fmt.Errorf("send %s: %w", msg.Type, err)
	}
	return nil
}

// Close shuts the socket down cleanly.
func (m *Manager) Close() error {
	return m.ws.Close(websocket.StatusNormalClosure, "bye")
}

func (m *Manager) captureIdentity(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.selfID != "" && m.selfID != id {
		m.log.Warn("ignoring identity change mid-connection",
			zap.String("have", m.selfID), zap.String("got", id))
		return
	}
	m.selfID = id
}
