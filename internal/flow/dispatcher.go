package flow

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"

	"go.uber.org/zap"

	"numdrop/internal/protocol"
)

// Local validation errors. These never reach the server.
var (
	ErrInvalidName   = errors.New("name must be at least 2 characters")
	ErrInvalidCode   = errors.New("lobby code must be exactly 5 alphanumeric characters")
	ErrInvalidSize   = errors.New("board size must be one of 10, 20, ... 100")
	ErrWrongPhase    = errors.New("action not valid in current phase")
	ErrNotIdentified = errors.New("connection identity not yet captured")
)

var codePattern = regexp.MustCompile(`^[A-Za-z0-9]{5}$`)

var boardSizes = []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

// BoardSizes returns the enumerated set of legal board sizes.
func BoardSizes() []int {
	return slices.Clone(boardSizes)
}

// BeginCreate moves from the menu to the lobby-creation form.
func (c *Controller) BeginCreate() error {
	if c.phase != PhaseMenu {
		return ErrWrongPhase
	}
	c.transition(PhaseCreateForm)
	return nil
}

// BeginJoin moves from the menu to the join form.
func (c *Controller) BeginJoin() error {
	if c.phase != PhaseMenu {
		return ErrWrongPhase
	}
	c.transition(PhaseJoinForm)
	return nil
}

// CreateLobby submits the creation form: validates locally, emits createLobby
// and waits in AWAITING_LOBBY_CODE for the server's code.
func (c *Controller) CreateLobby(ctx context.Context, name string, boardSize int) error {
	if c.phase != PhaseCreateForm {
		return ErrWrongPhase
	}
	if len(name) < 2 {
		return ErrInvalidName
	}
	if !slices.Contains(boardSizes, boardSize) {
		return ErrInvalidSize
	}

	c.name = name
	msg := protocol.ClientMessage{
		Type:    protocol.MsgCreateLobby,
		Payload: protocol.CreateLobbyPayload{BoardSize: boardSize},
	}
	if err := c.conn.Send(ctx, msg); err != nil {
		return fmt.Errorf("create lobby: %w", err)
	}
	c.transition(PhaseAwaitingCode)
	return nil
}

// JoinLobby submits the join form. Format failures are rejected locally
// without a round trip.
func (c *Controller) JoinLobby(ctx context.Context, code, name string) error {
	if c.phase != PhaseJoinForm {
		return ErrWrongPhase
	}
	if len(name) < 2 {
		return ErrInvalidName
	}
	if !codePattern.MatchString(code) {
		return ErrInvalidCode
	}

	c.name = name
	c.lobbyCode = code
	msg := protocol.ClientMessage{
		Type:    protocol.MsgJoinLobby,
		Payload: protocol.JoinLobbyPayload{Code: code, PlayerName: name},
	}
	if err := c.conn.Send(ctx, msg); err != nil {
		return fmt.Errorf("join lobby: %w", err)
	}
	c.transition(PhaseLobbyWait)
	return nil
}

// SelectNumber picks the local participant's secret number. Idempotent: if
// the snapshot already shows a selection, or the round has started, nothing
// is sent. A successful send arms the error-suppression window, since the
// selection can provoke a near-simultaneous benign error for a duplicate
// elsewhere.
func (c *Controller) SelectNumber(ctx context.Context, n int) error {
	if c.phase != PhaseLobbyWait {
		return ErrWrongPhase
	}
	id, ok := c.conn.Identity()
	if !ok {
		return ErrNotIdentified
	}
	if c.snap.Started || c.snap.HasSelected(id) {
		return nil
	}

	msg := protocol.ClientMessage{
		Type:    protocol.MsgSelectNumber,
		Payload: protocol.NumberPayload{Number: n},
	}
	if err := c.conn.Send(ctx, msg); err != nil {
		return fmt.Errorf("select number: %w", err)
	}
	c.notes.SuppressErrors()
	return nil
}

// StartGame asks the server to start the round. Only the roster leader may
// start, and only once everyone has picked; anything else is a local no-op.
func (c *Controller) StartGame(ctx context.Context) error {
	if c.phase != PhaseLobbyWait {
		return ErrWrongPhase
	}
	id, ok := c.conn.Identity()
	if !ok {
		return ErrNotIdentified
	}
	if !c.snap.IsLeader(id) || !c.snap.AllSelected() {
		return nil
	}

	msg := protocol.ClientMessage{Type: protocol.MsgStartGame}
	if err := c.conn.Send(ctx, msg); err != nil {
		return fmt.Errorf("start game: %w", err)
	}
	return nil
}

// EliminateNumber removes n from the pool. The server rejects illegitimate
// attempts regardless; the client just suppresses the round trip when it is
// not this participant's turn.
func (c *Controller) EliminateNumber(ctx context.Context, n int) error {
	if c.phase != PhasePlaying {
		return ErrWrongPhase
	}
	id, ok := c.conn.Identity()
	if !ok {
		return ErrNotIdentified
	}
	if !c.snap.Started || !c.snap.IsTurn(id) {
		return nil
	}

	msg := protocol.ClientMessage{
		Type:    protocol.MsgEliminateNumber,
		Payload: protocol.NumberPayload{Number: n},
	}
	if err := c.conn.Send(ctx, msg); err != nil {
		return fmt.Errorf("eliminate number: %w", err)
	}
	return nil
}

// RequestReplay signals readiness for a new round without leaving the lobby.
// The phase moves back to LOBBY_WAIT only once the server acknowledges with a
// lobbyReset.
func (c *Controller) RequestReplay(ctx context.Context) error {
	if c.phase != PhaseGameOver {
		return ErrWrongPhase
	}
	msg := protocol.ClientMessage{Type: protocol.MsgPlayerReadyForReplay}
	if err := c.conn.Send(ctx, msg); err != nil {
		return fmt.Errorf("request replay: %w", err)
	}
	return nil
}

// LeaveLobby notifies the server of departure and resets all local state to
// the menu defaults. The reset is unconditional: a failed or unacknowledged
// leave message changes nothing about the local outcome.
func (c *Controller) LeaveLobby(ctx context.Context) {
	msg := protocol.ClientMessage{Type: protocol.MsgLeaveLobby}
	if err := c.conn.Send(ctx, msg); err != nil {
		c.log.Warn("leave message not sent", zap.Error(err))
	}
	c.reset()
}
