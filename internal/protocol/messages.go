package protocol

// Message type tags, client -> server.
const (
	MsgCreateLobby          = "createLobby"
	MsgJoinLobby            = "joinLobby"
	MsgSelectNumber         = "selectNumber"
	MsgStartGame            = "startGame"
	MsgEliminateNumber      = "eliminateNumber"
	MsgPlayerReadyForReplay = "playerReadyForReplay"
	MsgLeaveLobby           = "leaveLobby"
)

// Message type tags, server -> client.
const (
	MsgConnect          = "connect"
	MsgPlayerList       = "playerList"
	MsgLobbyCreated     = "lobbyCreated"
	MsgLobbyJoined      = "lobbyJoined"
	MsgGameStarted      = "gameStarted"
	MsgNumberEliminated = "numberEliminated"
	MsgError            = "error"
	MsgYouWon           = "youWon"
	MsgYouLost          = "youLost"
	MsgPlayerEliminated = "playerEliminated"
	MsgGameOver         = "gameOver"
	MsgResetNumbers     = "resetNumbers"
	MsgLobbyReset       = "lobbyReset"
)

// ClientMessage is one outbound frame. Payload is one of the *Payload structs
// below, or nil for the payload-less messages (startGame, leaveLobby, ...).
type ClientMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type CreateLobbyPayload struct {
	BoardSize int `json:"boardSize"`
}

type JoinLobbyPayload struct {
	Code       string `json:"code"`
	PlayerName string `json:"playerName"`
}

// NumberPayload carries the single integer of selectNumber / eliminateNumber.
type NumberPayload struct {
	Number int `json:"number"`
}

// Player is one roster entry as the server reports it. SelectedNumber and
// Placement are pointers because absence is meaningful: no pick yet, not
// ranked yet.
type Player struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	SelectedNumber *int   `json:"selectedNumber,omitempty"`
	IsEliminated   bool   `json:"isEliminated"`
	Placement      *int   `json:"placement,omitempty"`
}

// PlacementRow is one line of the final ranking, exactly as received.
type PlacementRow struct {
	Name      string `json:"name"`
	Number    int    `json:"number"`
	Placement int    `json:"placement"`
}

// ServerEvent is a decoded inbound frame. One concrete type per wire tag.
type ServerEvent interface{ isServerEvent() }

// Connected delivers the identity the server will use for this client in
// rosters and turn fields. Always the first frame on a connection.
type Connected struct {
	ID string `json:"id"`
}

type PlayerList struct {
	Players []Player `json:"players"`
}

type LobbyCreated struct {
	Code string `json:"code"`
}

type LobbyJoined struct {
	BoardSize int `json:"boardSize"`
}

type GameStarted struct {
	CurrentTurn       string `json:"currentTurn"`
	CurrentPlayerName string `json:"currentPlayerName"`
	Numbers           []int  `json:"numbers"`
}

type NumberEliminated struct {
	Number            int    `json:"number"`
	RemainingNumbers  []int  `json:"remainingNumbers"`
	CurrentTurn       string `json:"currentTurn"`
	CurrentPlayerName string `json:"currentPlayerName"`
}

// ErrorEvent carries the server's advisory error text. On the wire the
// payload is a bare JSON string.
type ErrorEvent struct {
	Message string
}

type YouWon struct {
	Placement    int `json:"placement"`
	TotalPlayers int `json:"totalPlayers"`
	Number       int `json:"number"`
}

type YouLost struct {
	Placement    int `json:"placement"`
	TotalPlayers int `json:"totalPlayers"`
	Number       int `json:"number"`
}

type PlayerEliminated struct {
	PlayerName   string `json:"playerName"`
	Number       int    `json:"number"`
	Placement    int    `json:"placement"`
	TotalPlayers int    `json:"totalPlayers"`
}

type GameOver struct {
	Placements []PlacementRow `json:"placements"`
}

// ResetNumbers signals a duplicate-pick round voided; selections come back
// cleared on the next playerList.
type ResetNumbers struct{}

type LobbyReset struct {
	Players   []Player `json:"players"`
	Numbers   []int    `json:"numbers"`
	BoardSize int      `json:"boardSize"`
}

func (Connected) isServerEvent()        {}
func (PlayerList) isServerEvent()       {}
func (LobbyCreated) isServerEvent()     {}
func (LobbyJoined) isServerEvent()      {}
func (GameStarted) isServerEvent()      {}
func (NumberEliminated) isServerEvent() {}
func (ErrorEvent) isServerEvent()       {}
func (YouWon) isServerEvent()           {}
func (YouLost) isServerEvent()          {}
func (PlayerEliminated) isServerEvent() {}
func (GameOver) isServerEvent()         {}
func (ResetNumbers) isServerEvent()     {}
func (LobbyReset) isServerEvent()       {}
