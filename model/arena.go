package model

import "fmt"

// Coord is a cell on the arena grid. Y grows from player 0's back edge toward the opponent.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c Coord) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

// Edge names one of the four diagonal borders of the diamond.
type Edge int

const (
	TopRight Edge = iota
	TopLeft
	BottomLeft
	BottomRight
)

func (e Edge) String() string {
	switch e {
	case TopRight:
		return "top_right"
	case TopLeft:
		return "top_left"
	case BottomLeft:
		return "bottom_left"
	case BottomRight:
		return "bottom_right"
	}
	return "unknown"
}

// DefaultArenaSize is the width and height of the standard duel arena.
const DefaultArenaSize = 28

// Arena describes the diamond-shaped playable region inside a Size x Size square.
// Player 0 owns rows [0, Half) and player 1 owns rows [Half, Size).
type Arena struct {
	Size int
}

func (a Arena) Half() int { return a.Size / 2 }

// InArena reports whether c lies inside the diamond.
func (a Arena) InArena(c Coord) bool {
	h := a.Half()
	if c.Y < 0 || c.Y >= a.Size {
		return false
	}
	if c.Y < h {
		return c.X >= h-1-c.Y && c.X <= h+c.Y
	}
	return c.X >= c.Y-h && c.X <= a.Size-1-(c.Y-h)
}

// Mirror reflects c across the vertical centre line.
func (a Arena) Mirror(c Coord) Coord {
	return Coord{X: a.Size - 1 - c.X, Y: c.Y}
}

// MirrorAll reflects every coordinate in cs, returning a new slice.
func (a Arena) MirrorAll(cs []Coord) []Coord {
	out := make([]Coord, len(cs))
	for i, c := range cs {
		out[i] = a.Mirror(c)
	}
	return out
}

// Side returns -1 for columns left of centre and +1 otherwise.
func (a Arena) Side(x int) int {
	if x < a.Half() {
		return -1
	}
	return 1
}

// OwnHalf reports whether c is on the given player's half of the board.
func (a Arena) OwnHalf(player int, c Coord) bool {
	if player == 0 {
		return c.Y < a.Half()
	}
	return c.Y >= a.Half()
}

// Edge lists the cells along e, starting from the centre of the board.
func (a Arena) Edge(e Edge) []Coord {
	h := a.Half()
	out := make([]Coord, 0, h)
	for i := 0; i < h; i++ {
		var c Coord
		switch e {
		case TopRight:
			c = Coord{X: h + i, Y: a.Size - 1 - i}
		case TopLeft:
			c = Coord{X: h - 1 - i, Y: a.Size - 1 - i}
		case BottomLeft:
			c = Coord{X: h - 1 - i, Y: i}
		case BottomRight:
			c = Coord{X: h + i, Y: i}
		}
		out = append(out, c)
	}
	return out
}

// DeployEdges returns the edges mobile units owned by player may spawn on.
func (a Arena) DeployEdges(player int) []Edge {
	if player == 0 {
		return []Edge{BottomLeft, BottomRight}
	}
	return []Edge{TopLeft, TopRight}
}

// OnEdge reports whether c lies on any of the given edges.
func (a Arena) OnEdge(c Coord, edges ...Edge) bool {
	for _, e := range edges {
		for _, ec := range a.Edge(e) {
			if ec == c {
				return true
			}
		}
	}
	return false
}
