package flow

import "testing"

func TestPhaseTransitions(t *testing.T) {
	cases := []struct {
		from    Phase
		to      Phase
		allowed bool
	}{
		{PhaseMenu, PhaseCreateForm, true},
		{PhaseMenu, PhaseJoinForm, true},
		{PhaseMenu, PhasePlaying, false},
		{PhaseCreateForm, PhaseAwaitingCode, true},
		{PhaseJoinForm, PhaseLobbyWait, true},
		{PhaseAwaitingCode, PhaseLobbyWait, true},
		{PhaseLobbyWait, PhasePlaying, true},
		{PhaseLobbyWait, PhaseGameOver, false},
		{PhasePlaying, PhaseGameOver, true},
		{PhaseGameOver, PhaseLobbyWait, true},
		{PhaseGameOver, PhaseCreateForm, false},
		// every phase can fall back to the menu
		{PhaseLobbyWait, PhaseMenu, true},
		{PhasePlaying, PhaseMenu, true},
		{PhaseGameOver, PhaseMenu, true},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: want %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}
