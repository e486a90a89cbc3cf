package session

import (
	"slices"

	"numdrop/internal/protocol"
)

// Reduce applies one inbound event to a snapshot and returns the next one.
// Pure: the input snapshot is never mutated, and each case replaces only the
// fields its event supplies. Events that carry no durable session state
// (errors, banners, resetNumbers) fall through unchanged.
func Reduce(s Snapshot, ev protocol.ServerEvent) Snapshot {
	next := s

	switch ev := ev.(type) {
	case protocol.PlayerList:
		// Roster is replaced wholesale, never patched per-field.
		next.Players = slices.Clone(ev.Players)

	case protocol.LobbyJoined:
		// The one derived case: the server does not echo the pool at join
		// time, so the full range 1..boardSize is generated locally.
		next.BoardSize = ev.BoardSize
		next.Numbers = fullPool(ev.BoardSize)

	case protocol.GameStarted:
		next.Started = true
		next.CurrentTurnID = ev.CurrentTurn
		next.CurrentTurnName = ev.CurrentPlayerName
		next.Numbers = slices.Clone(ev.Numbers)

	case protocol.NumberEliminated:
		// The server supplies the remainder and the next turn holder; the
		// client never computes either.
		next.Numbers = slices.Clone(ev.RemainingNumbers)
		next.CurrentTurnID = ev.CurrentTurn
		next.CurrentTurnName = ev.CurrentPlayerName

	case protocol.LobbyReset:
		next = Snapshot{
			Players:   slices.Clone(ev.Players),
			Numbers:   slices.Clone(ev.Numbers),
			BoardSize: ev.BoardSize,
		}
	}

	return next
}

func fullPool(boardSize int) []int {
	pool := make([]int, boardSize)
	for i := range pool {
		pool[i] = i + 1
	}
	return pool
}
