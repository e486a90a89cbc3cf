package conn

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"numdrop/internal/protocol"
	"numdrop/internal/wstest"
)

// helper: receive one event with a timeout so tests never hang
func recvEvent(t *testing.T, ch <-chan protocol.ServerEvent, within time.Duration) protocol.ServerEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatalf("event channel closed unexpectedly")
		}
		return ev
	case <-time.After(within):
		t.Fatalf("timed out waiting for event")
		return nil // unreachable
	}
}

func dialTest(t *testing.T, srv *wstest.Server) *Manager {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	m, err := Dial(ctx, srv.URL(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })

	go func() { _ = m.Run(ctx) }()
	return m
}

func TestDial_CapturesIdentityFromConnectFrame(t *testing.T) {
	srv := wstest.New(t)
	m := dialTest(t, srv)

	ev := recvEvent(t, m.Events(), time.Second)
	connected, ok := ev.(protocol.Connected)
	if !ok {
		t.Fatalf("first event must be connect, got %T", ev)
	}

	id, captured := m.Identity()
	if !captured || id != connected.ID {
		t.Fatalf("identity not captured: got %q captured=%v, frame said %q", id, captured, connected.ID)
	}
}

func TestRun_DeliversEventsInArrivalOrder(t *testing.T) {
	srv := wstest.New(t)
	m := dialTest(t, srv)

	first := recvEvent(t, m.Events(), time.Second)
	id := first.(protocol.Connected).ID

	srv.Push(t, id, protocol.LobbyCreated{Code: "AB12C"})
	srv.Push(t, id, protocol.LobbyJoined{BoardSize: 10})
	srv.Push(t, id, protocol.PlayerList{Players: []protocol.Player{{ID: id, Name: "Sam"}}})

	if _, ok := recvEvent(t, m.Events(), time.Second).(protocol.LobbyCreated); !ok {
		t.Fatalf("expected lobbyCreated first")
	}
	if _, ok := recvEvent(t, m.Events(), time.Second).(protocol.LobbyJoined); !ok {
		t.Fatalf("expected lobbyJoined second")
	}
	if _, ok := recvEvent(t, m.Events(), time.Second).(protocol.PlayerList); !ok {
		t.Fatalf("expected playerList third")
	}
}

func TestSend_ReachesServer(t *testing.T) {
	srv := wstest.New(t)
	m := dialTest(t, srv)
	recvEvent(t, m.Events(), time.Second) // connect

	err := m.Send(context.Background(), protocol.ClientMessage{
		Type:    protocol.MsgJoinLobby,
		Payload: protocol.JoinLobbyPayload{Code: "AB12C", PlayerName: "Sam"},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	rcv := srv.Expect(t, protocol.MsgJoinLobby, time.Second)
	if rcv.Payload == nil {
		t.Fatalf("payload missing on received frame")
	}
}

func TestRun_UnknownFramesAreDroppedNotFatal(t *testing.T) {
	srv := wstest.New(t)
	m := dialTest(t, srv)

	id := recvEvent(t, m.Events(), time.Second).(protocol.Connected).ID

	srv.PushRaw(t, id, []byte(`{"type":"teleport","payload":{}}`))
	srv.Push(t, id, protocol.LobbyJoined{BoardSize: 20})

	// the unknown frame is skipped; the stream keeps flowing
	ev := recvEvent(t, m.Events(), time.Second)
	joined, ok := ev.(protocol.LobbyJoined)
	if !ok || joined.BoardSize != 20 {
		t.Fatalf("expected lobbyJoined after unknown frame, got %T", ev)
	}
}
