package session

import (
	"slices"

	"numdrop/internal/protocol"
)

// Outcome is the final ranking of a round, in the exact order the server sent
// it. The ranking convention is the server's; the client only displays it.
type Outcome []protocol.PlacementRow

func OutcomeFrom(ev protocol.GameOver) Outcome {
	return Outcome(slices.Clone(ev.Placements))
}
