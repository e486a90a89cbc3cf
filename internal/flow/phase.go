package flow

// Phase is the screen/mode the client is currently in.
type Phase string

const (
	PhaseMenu         Phase = "MENU"
	PhaseCreateForm   Phase = "CREATE_FORM"
	PhaseJoinForm     Phase = "JOIN_FORM"
	PhaseAwaitingCode Phase = "AWAITING_LOBBY_CODE"
	PhaseLobbyWait    Phase = "LOBBY_WAIT"
	PhasePlaying      Phase = "PLAYING"
	PhaseGameOver     Phase = "GAME_OVER"
)

func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo checks if a transition from the current phase to the target
// phase is valid. Every phase can fall back to MENU via leaveLobby.
func (p Phase) CanTransitionTo(target Phase) bool {
	validTransitions := map[Phase][]Phase{
		PhaseMenu:         {PhaseCreateForm, PhaseJoinForm},
		PhaseCreateForm:   {PhaseAwaitingCode, PhaseMenu},
		PhaseJoinForm:     {PhaseLobbyWait, PhaseMenu},
		PhaseAwaitingCode: {PhaseLobbyWait, PhaseMenu},
		PhaseLobbyWait:    {PhasePlaying, PhaseMenu},
		PhasePlaying:      {PhaseGameOver, PhaseMenu},
		PhaseGameOver:     {PhaseLobbyWait, PhaseMenu},
	}

	allowed, ok := validTransitions[p]
	if !ok {
		return false
	}

	for _, phase := range allowed {
		if phase == target {
			return true
		}
	}
	return false
}
