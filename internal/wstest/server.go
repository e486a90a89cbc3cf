// Package wstest provides a scriptable loopback game server for tests. It
// speaks the real wire protocol far enough to drive the client: it assigns
// connection ids, records every frame the client sends, and pushes whatever
// server events a test scripts. It adjudicates nothing.
package wstest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"numdrop/internal/protocol"
)

// Received is one frame the client sent, with its decoded envelope.
type Received struct {
	ClientID string
	Type     string
	Payload  json.RawMessage
}

type srvMsg interface{ isSrvMsg() }

type register struct {
	ID     string
	Outbox chan []byte
}

type unregister struct{ ID string }

// push delivers a pre-encoded frame to one client, or to all when ID is "".
type push struct {
	ID    string
	Frame []byte
}

func (register) isSrvMsg()   {}
func (unregister) isSrvMsg() {}
func (push) isSrvMsg()       {}

// Server is the loopback server. Create with New; it shuts down via
// t.Cleanup.
type Server struct {
	HTTP *httptest.Server

	inbox    chan srvMsg
	received chan Received
	ctx      context.Context
	cancel   context.CancelFunc
}

func New(t *testing.T) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		inbox:    make(chan srvMsg, 64),
		received: make(chan Received, 64),
		ctx:      ctx,
		cancel:   cancel,
	}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/ws", s.handleWS)
	s.HTTP = httptest.NewServer(r)

	go s.loop()
	t.Cleanup(s.Close)
	return s
}

// URL returns the websocket endpoint address.
func (s *Server) URL() string {
	return "ws" + strings.TrimPrefix(s.HTTP.URL, "http") + "/ws"
}

func (s *Server) Close() {
	s.cancel()
	s.HTTP.Close()
}

// Push encodes a server event and delivers it to one client.
func (s *Server) Push(t *testing.T, clientID string, ev protocol.ServerEvent) {
	t.Helper()
	frame, err := protocol.EncodeEvent(ev)
	if err != nil {
		t.Fatalf("encode event: %v", err)
	}
	s.inbox <- push{ID: clientID, Frame: frame}
}

// PushRaw delivers an arbitrary byte frame to one client, for exercising the
// client's handling of malformed or unknown messages.
func (s *Server) PushRaw(t *testing.T, clientID string, frame []byte) {
	t.Helper()
	s.inbox <- push{ID: clientID, Frame: frame}
}

// Broadcast delivers a server event to every connected client.
func (s *Server) Broadcast(t *testing.T, ev protocol.ServerEvent) {
	t.Helper()
	frame, err := protocol.EncodeEvent(ev)
	if err != nil {
		t.Fatalf("encode event: %v", err)
	}
	s.inbox <- push{Frame: frame}
}

// Expect receives the next client frame and asserts its type, failing the
// test if nothing arrives within the window.
func (s *Server) Expect(t *testing.T, msgType string, within time.Duration) Received {
	t.Helper()
	select {
	case rcv := <-s.received:
		if rcv.Type != msgType {
			t.Fatalf("expected client message %q, got %q", msgType, rcv.Type)
		}
		return rcv
	case <-time.After(within):
		t.Fatalf("timed out waiting for client message %q", msgType)
		return Received{} // unreachable
	}
}

// ExpectNone asserts the client sends nothing within the window.
func (s *Server) ExpectNone(t *testing.T, within time.Duration) {
	t.Helper()
	select {
	case rcv := <-s.received:
		t.Fatalf("expected no client message within %v, got %q", within, rcv.Type)
	case <-time.After(within):
		// good: silence
	}
}

// loop serializes all connection bookkeeping, so handlers never share state.
func (s *Server) loop() {
	clients := make(map[string]chan []byte)
	for {
		select {
		case <-s.ctx.Done():
			for id, ch := range clients {
				close(ch)
				delete(clients, id)
			}
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case register:
				clients[msg.ID] = msg.Outbox

			case unregister:
				if ch, ok := clients[msg.ID]; ok {
					close(ch)
					delete(clients, msg.ID)
				}

			case push:
				for id, ch := range clients {
					if msg.ID != "" && msg.ID != id {
						continue
					}
					select {
					case ch <- msg.Frame:
					default:
						// slow client, drop it
						close(ch)
						delete(clients, id)
					}
				}
			}
		}
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	id := uuid.NewString()

	// connect must be the first frame the client sees
	hello, err := protocol.EncodeEvent(protocol.Connected{ID: id})
	if err != nil {
		return
	}
	if err := conn.Write(r.Context(), websocket.MessageText, hello); err != nil {
		return
	}

	outbox := make(chan []byte, 16)
	s.inbox <- register{ID: id, Outbox: outbox}
	defer func() { s.inbox <- unregister{ID: id} }()

	writeCtx, writeCancel := context.WithCancel(r.Context())
	defer writeCancel()
	go func() {
		for frame := range outbox {
			ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
			_ = conn.Write(ctx, websocket.MessageText, frame)
			cancel()
		}
	}()

	for {
		_, data, err := conn.Read(r.Context())
		if err != nil {
			return
		}

		var f struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload,omitempty"`
		}
		if err := json.Unmarshal(data, &f); err != nil {
			continue
		}

		select {
		case s.received <- Received{ClientID: id, Type: f.Type, Payload: f.Payload}:
		case <-s.ctx.Done():
			return
		}
	}
}
