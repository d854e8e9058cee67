package ipc

import "github.com/nstehr/funnel/turn"

// TypeTurn is the reply to a game_state frame.
const TypeTurn = "turn"

// TurnMessage carries one turn's commands split into the engine's two phases.
// Build holds structure spawns, upgrades and removals; Deploy holds mobile spawns.
type TurnMessage struct {
	Turn   int            `json:"turn"`
	Build  []turn.Command `json:"build"`
	Deploy []turn.Command `json:"deploy"`
}

// NewTurnMessage groups the builder's commands into phases, keeping issue order.
func NewTurnMessage(b *turn.Builder) TurnMessage {
	build, deploy := b.Phases()
	if build == nil {
		build = []turn.Command{}
	}
	if deploy == nil {
		deploy = []turn.Command{}
	}
	return TurnMessage{Turn: b.Snapshot().Turn, Build: build, Deploy: deploy}
}
