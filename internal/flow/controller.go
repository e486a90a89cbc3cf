package flow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"numdrop/internal/notify"
	"numdrop/internal/protocol"
	"numdrop/internal/session"
)

// Sender is the slice of the connection manager the controller needs: the
// single outbound path and the captured self-identity.
type Sender interface {
	Send(ctx context.Context, msg protocol.ClientMessage) error
	Identity() (string, bool)
}

// Controller is the top-level client state machine. It owns the phase, the
// session snapshot and the round outcome, applies inbound events in arrival
// order, and translates validated user intents into outbound messages.
//
// All methods must be called from a single goroutine; the client's run loop
// is that goroutine.
type Controller struct {
	phase     Phase
	snap      session.Snapshot
	outcome   session.Outcome
	name      string
	lobbyCode string

	conn  Sender
	notes *notify.Manager
	log   *zap.Logger
}

func New(conn Sender, notes *notify.Manager, log *zap.Logger) *Controller {
	return &Controller{
		phase: PhaseMenu,
		snap:  session.NewSnapshot(),
		conn:  conn,
		notes: notes,
		log:   log,
	}
}

// NewDefault wires a controller with a stock notification manager.
func NewDefault(conn Sender, log *zap.Logger) *Controller {
	return New(conn, notify.NewManager(), log)
}

func (c *Controller) Phase() Phase               { return c.phase }
func (c *Controller) Snapshot() session.Snapshot { return c.snap }
func (c *Controller) Outcome() session.Outcome   { return c.outcome }
func (c *Controller) LobbyCode() string          { return c.lobbyCode }
func (c *Controller) PlayerName() string         { return c.name }
func (c *Controller) Notes() *notify.Manager     { return c.notes }

// SelfID returns the identity captured at connect time. Self checks always go
// through this id, never through the typed display name.
func (c *Controller) SelfID() (string, bool) {
	return c.conn.Identity()
}

// IsMyTurn reports whether the local participant holds the turn.
func (c *Controller) IsMyTurn() bool {
	id, ok := c.SelfID()
	return ok && c.snap.IsTurn(id)
}

// HandleEvent reconciles one inbound server event: reduces it into the
// snapshot, surfaces any transient notification, and advances the phase where
// the event calls for it. Events are applied strictly in arrival order.
func (c *Controller) HandleEvent(ctx context.Context, ev protocol.ServerEvent) error {
	c.snap = session.Reduce(c.snap, ev)

	switch ev := ev.(type) {
	case protocol.Connected:
		c.log.Info("identity captured", zap.String("id", ev.ID))

	case protocol.LobbyCreated:
		c.lobbyCode = ev.Code
		if c.phase == PhaseAwaitingCode {
			// The creator joins their own lobby as soon as the code lands.
			msg := protocol.ClientMessage{
				Type:    protocol.MsgJoinLobby,
				Payload: protocol.JoinLobbyPayload{Code: ev.Code, PlayerName: c.name},
			}
			if err := c.conn.Send(ctx, msg); err != nil {
				return fmt.Errorf("auto-join created lobby: %w", err)
			}
			c.transition(PhaseLobbyWait)
		}

	case protocol.GameStarted:
		if c.phase == PhaseLobbyWait {
			c.transition(PhasePlaying)
		}

	case protocol.ErrorEvent:
		c.notes.PushError(ev.Message)

	case protocol.PlayerEliminated:
		c.notes.Push(notify.CategoryElimination,
			fmt.Sprintf("%s is out! Number %d (placement %d/%d)",
				ev.PlayerName, ev.Number, ev.Placement, ev.TotalPlayers))

	case protocol.YouWon:
		c.notes.Push(notify.CategoryWin,
			fmt.Sprintf("You won! Number %d held out (placement %d/%d)",
				ev.Number, ev.Placement, ev.TotalPlayers))

	case protocol.YouLost:
		c.notes.Push(notify.CategoryLoss,
			fmt.Sprintf("Your number %d was eliminated (placement %d/%d)",
				ev.Number, ev.Placement, ev.TotalPlayers))

	case protocol.ResetNumbers:
		// Round voided on a duplicate pick; the cleared selections arrive on
		// the next playerList.
		c.notes.Push(notify.CategoryDuplicate,
			"Duplicate numbers picked, selections reset. Pick again!")

	case protocol.GameOver:
		c.outcome = session.OutcomeFrom(ev)
		if c.phase == PhasePlaying {
			c.transition(PhaseGameOver)
		}

	case protocol.LobbyReset:
		c.outcome = nil
		if c.phase == PhaseGameOver {
			c.transition(PhaseLobbyWait)
		}
	}

	return nil
}

// transition advances the phase, logging and refusing anything outside the
// transition table.
func (c *Controller) transition(target Phase) {
	if !c.phase.CanTransitionTo(target) {
		c.log.Warn("illegal phase transition refused",
			zap.String("from", c.phase.String()),
			zap.String("to", target.String()))
		return
	}
	c.log.Debug("phase transition",
		zap.String("from", c.phase.String()),
		zap.String("to", target.String()))
	c.phase = target
}

// reset restores the initial menu state. Unconditional and purely local.
func (c *Controller) reset() {
	c.phase = PhaseMenu
	c.snap = session.NewSnapshot()
	c.outcome = nil
	c.lobbyCode = ""
	c.name = ""
	c.notes.Reset()
}
