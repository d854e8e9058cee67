package model

// Simulator exposes the engine-side computations the agent consults but does not reimplement.
type Simulator interface {
	// PathToEdge returns the path a mobile unit spawned at c would walk, or nil when c is blocked.
	PathToEdge(c Coord) []Coord
	// Attackers lists the structures owned by the opponent of player that can hit c.
	Attackers(c Coord, player int) []Unit
}
