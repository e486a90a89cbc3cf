package flow

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"numdrop/internal/conn"
	"numdrop/internal/notify"
	"numdrop/internal/protocol"
	"numdrop/internal/wstest"
)

// pump applies inbound events until one of type want has been handled,
// mirroring the client's single-goroutine run loop.
func pump(t *testing.T, c *Controller, events <-chan protocol.ServerEvent, want string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatalf("event channel closed while waiting for %s", want)
			}
			if err := c.HandleEvent(context.Background(), ev); err != nil {
				t.Fatalf("handle %T: %v", ev, err)
			}
			if tagged(ev) == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func tagged(ev protocol.ServerEvent) string {
	switch ev.(type) {
	case protocol.Connected:
		return protocol.MsgConnect
	case protocol.PlayerList:
		return protocol.MsgPlayerList
	case protocol.LobbyCreated:
		return protocol.MsgLobbyCreated
	case protocol.LobbyJoined:
		return protocol.MsgLobbyJoined
	case protocol.GameStarted:
		return protocol.MsgGameStarted
	case protocol.NumberEliminated:
		return protocol.MsgNumberEliminated
	case protocol.GameOver:
		return protocol.MsgGameOver
	case protocol.LobbyReset:
		return protocol.MsgLobbyReset
	default:
		return ""
	}
}

func TestFullRound_OverLiveConnection(t *testing.T) {
	srv := wstest.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m, err := conn.Dial(ctx, srv.URL(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer m.Close()
	go func() { _ = m.Run(ctx) }()

	c := New(m, notify.NewManager(), zaptest.NewLogger(t))
	pump(t, c, m.Events(), protocol.MsgConnect)

	id, ok := m.Identity()
	if !ok {
		t.Fatalf("identity not captured after connect")
	}

	// create a lobby; the code acknowledgment auto-submits the creator's join
	if err := c.BeginCreate(); err != nil {
		t.Fatalf("begin create: %v", err)
	}
	if err := c.CreateLobby(ctx, "Sam", 10); err != nil {
		t.Fatalf("create: %v", err)
	}
	srv.Expect(t, protocol.MsgCreateLobby, time.Second)
	srv.Push(t, id, protocol.LobbyCreated{Code: "AB12C"})
	pump(t, c, m.Events(), protocol.MsgLobbyCreated)
	srv.Expect(t, protocol.MsgJoinLobby, time.Second)

	srv.Push(t, id, protocol.LobbyJoined{BoardSize: 10})
	pump(t, c, m.Events(), protocol.MsgLobbyJoined)
	if got := len(c.Snapshot().Numbers); got != 10 {
		t.Fatalf("want derived pool of 10, got %d", got)
	}

	// roster lands; we pick; the server echoes the roster with the pick
	srv.Push(t, id, protocol.PlayerList{Players: []protocol.Player{{ID: id, Name: "Sam"}}})
	pump(t, c, m.Events(), protocol.MsgPlayerList)
	if err := c.SelectNumber(ctx, 7); err != nil {
		t.Fatalf("select: %v", err)
	}
	srv.Expect(t, protocol.MsgSelectNumber, time.Second)
	seven := 7
	srv.Push(t, id, protocol.PlayerList{Players: []protocol.Player{{ID: id, Name: "Sam", SelectedNumber: &seven}}})
	pump(t, c, m.Events(), protocol.MsgPlayerList)

	// leader starts
	if err := c.StartGame(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	srv.Expect(t, protocol.MsgStartGame, time.Second)
	srv.Push(t, id, protocol.GameStarted{CurrentTurn: id, CurrentPlayerName: "Sam", Numbers: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}})
	pump(t, c, m.Events(), protocol.MsgGameStarted)
	if c.Phase() != PhasePlaying || !c.IsMyTurn() {
		t.Fatalf("want playing on our turn, got %s myTurn=%v", c.Phase(), c.IsMyTurn())
	}

	// one elimination, then the terminal event
	if err := c.EliminateNumber(ctx, 4); err != nil {
		t.Fatalf("eliminate: %v", err)
	}
	srv.Expect(t, protocol.MsgEliminateNumber, time.Second)
	srv.Push(t, id, protocol.GameOver{Placements: []protocol.PlacementRow{{Name: "Sam", Number: 7, Placement: 1}}})
	pump(t, c, m.Events(), protocol.MsgGameOver)
	if c.Phase() != PhaseGameOver {
		t.Fatalf("want game over, got %s", c.Phase())
	}

	// replay round-trips back to the lobby
	if err := c.RequestReplay(ctx); err != nil {
		t.Fatalf("replay: %v", err)
	}
	srv.Expect(t, protocol.MsgPlayerReadyForReplay, time.Second)
	srv.Push(t, id, protocol.LobbyReset{
		Players:   []protocol.Player{{ID: id, Name: "Sam"}},
		Numbers:   []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		BoardSize: 10,
	})
	pump(t, c, m.Events(), protocol.MsgLobbyReset)
	if c.Phase() != PhaseLobbyWait || c.Snapshot().Started {
		t.Fatalf("want fresh lobby wait, got %s started=%v", c.Phase(), c.Snapshot().Started)
	}
}
