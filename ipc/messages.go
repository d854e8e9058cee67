package ipc

import "github.com/nstehr/funnel/model"

// These constants must stay in sync with the engine bridge's message names.
const (
	TypeHello       = "hello"
	TypeAck         = "ack"
	TypeGameState   = "game_state"
	TypeActionFrame = "action_frame"
)

// HelloMessage opens a game. UnitInformation follows the engine's fixed unit order.
type HelloMessage struct {
	Player          int              `json:"player"`
	UnitInformation []model.UnitInfo `json:"unitInformation"`
}

type AckMessage struct {
	Status  string `json:"status"`
	Session string `json:"session,omitempty"`
	Build   string `json:"build,omitempty"`
}

// ActionFrameMessage is streamed while a turn resolves. Only breaches are kept.
type ActionFrameMessage struct {
	Turn     int           `json:"turn"`
	Frame    int           `json:"frame"`
	Breaches []BreachEvent `json:"breaches"`
}

// BreachEvent reports a mobile unit of Owner that reached the opposing edge at (X, Y).
type BreachEvent struct {
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Owner  int     `json:"owner"`
	Damage float64 `json:"damage"`
	Unit   string  `json:"unit"`
}

func (b BreachEvent) Coord() model.Coord { return model.Coord{X: b.X, Y: b.Y} }
