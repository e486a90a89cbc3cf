package session

import (
	"slices"

	"numdrop/internal/protocol"
)

// Snapshot is this client's mirror of the authoritative lobby state. It is
// only ever replaced through Reduce; user actions never touch it.
type Snapshot struct {
	Players         []protocol.Player
	Numbers         []int
	CurrentTurnID   string
	CurrentTurnName string
	Started         bool
	BoardSize       int
}

func NewSnapshot() Snapshot {
	return Snapshot{}
}

// Player looks up a roster entry by connection id.
func (s Snapshot) Player(id string) (protocol.Player, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return protocol.Player{}, false
}

// IsLeader reports whether id sits at roster index 0. Roster order is
// server-assigned and significant.
func (s Snapshot) IsLeader(id string) bool {
	return len(s.Players) > 0 && s.Players[0].ID == id
}

// HasSelected reports whether the player with id has a recorded pick.
func (s Snapshot) HasSelected(id string) bool {
	p, ok := s.Player(id)
	return ok && p.SelectedNumber != nil
}

// AllSelected reports whether every roster entry has a recorded pick.
func (s Snapshot) AllSelected() bool {
	if len(s.Players) == 0 {
		return false
	}
	for _, p := range s.Players {
		if p.SelectedNumber == nil {
			return false
		}
	}
	return true
}

// IsTurn reports whether id currently holds the turn.
func (s Snapshot) IsTurn(id string) bool {
	return s.CurrentTurnID != "" && s.CurrentTurnID == id
}

// PoolContains reports whether n is still eligible for elimination.
func (s Snapshot) PoolContains(n int) bool {
	return slices.Contains(s.Numbers, n)
}
