package server

// Wire message types. One JSON object per WebSocket text frame.
const (
	MsgJoin       = "join"
	MsgAction     = "action"
	MsgInit       = "init"
	MsgGameState  = "gameState"
	MsgPlayerLeft = "playerLeft"
)

// clientMessage is the single inbound frame shape; Type selects which of the
// optional fields apply. Example: {"type":"action","action":"dive"}
type clientMessage struct {
	Type     string `json:"type"`
	Nickname string `json:"nickname,omitempty"`
	Action   string `json:"action,omitempty"`
}

// initMessage is the reply to a successful join.
type initMessage struct {
	Type     string `json:"type"`
	PlayerID int    `json:"playerId"`
	RoomID   int    `json:"roomId"`
}

// gameStateMessage carries the full room snapshot, broadcast every tick and
// on every phase transition. Players are keyed by decimal id to match the
// object the renderer indexes into.
type gameStateMessage struct {
	Type        string             `json:"type"`
	Players     map[string]*Player `json:"players"`
	GameState   string             `json:"gameState"`
	RoundWinner *int               `json:"roundWinner"`
}

// playerLeftMessage tells the remaining occupant its opponent is gone.
type playerLeftMessage struct {
	Type string `json:"type"`
}
