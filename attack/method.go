// Package attack chooses and commits one offensive push per turn.
package attack

import (
	"math"

	"github.com/nstehr/funnel/model"
	"github.com/nstehr/funnel/turn"
)

// Spawn asks for Count mobile units of Kind at Loc.
type Spawn struct {
	Kind  model.UnitKind `json:"-"`
	Unit  string         `json:"unit"`
	Loc   model.Coord    `json:"loc"`
	Count int            `json:"count"`
}

// PlanInput is what a spawn plan may look at. Plans must not issue commands.
type PlanInput struct {
	Snap     *model.Snapshot
	Sim      model.Simulator
	Supports int
	MP       float64
	Mirrored bool
}

func (in PlanInput) cfg() *model.Config { return in.Snap.Config() }

// At maps a canonical coordinate onto the side the method is running on.
func (in PlanInput) At(c model.Coord) model.Coord {
	if in.Mirrored {
		return in.cfg().Arena.Mirror(c)
	}
	return c
}

// Affordable is how many units of kind the predicted MP balance pays for.
func (in PlanInput) Affordable(kind model.UnitKind) int {
	cost := in.cfg().Spec(kind).Cost.MP
	if cost <= 0 {
		return 0
	}
	return int(math.Floor(in.MP / cost))
}

// PlanFunc returns the spawn plan, or nil when the push would be too weak to bother.
type PlanFunc func(in PlanInput) []Spawn

// Method is one attack policy. Coordinates are written for the canonical side;
// Mirror produces the reflected variant.
type Method struct {
	Name    string
	Walls   []model.Coord
	Turrets []model.Coord
	// InstantSell lists placed walls to flag for removal straight after placement.
	InstantSell []model.Coord
	Holes       []model.Coord
	MinMP       float64
	Plan        PlanFunc

	mirrored bool
}

func (m Method) Mirrored() bool { return m.mirrored }

// Mirror reflects every coordinate of m across the centre line.
func (m Method) Mirror(a model.Arena) Method {
	out := m
	out.Name = m.Name + "-mirrored"
	out.Walls = a.MirrorAll(m.Walls)
	out.Turrets = a.MirrorAll(m.Turrets)
	out.InstantSell = a.MirrorAll(m.InstantSell)
	out.Holes = a.MirrorAll(m.Holes)
	out.mirrored = !m.mirrored
	return out
}

// HolesClear reports whether every hole is free of structures, counting this turn's placements.
func (m Method) HolesClear(b *turn.Builder) bool {
	for _, h := range m.Holes {
		if b.Occupied(h) {
			return false
		}
	}
	return true
}

// StructureCost is the SP needed for the method's structures that are not standing yet.
func (m Method) StructureCost(b *turn.Builder) float64 {
	cfg := b.Config()
	var cost float64
	for _, c := range m.Turrets {
		if !b.Occupied(c) {
			cost += cfg.Spec(model.Turret).Cost.SP
		}
	}
	for _, c := range m.Walls {
		if !b.Occupied(c) {
			cost += cfg.Spec(model.Wall).Cost.SP
		}
	}
	return cost
}

// Place spawns the required structures and flags the instant sells. Only walls are sold.
func (m Method) Place(b *turn.Builder) {
	b.Spawn(model.Turret, m.Turrets, 1)
	b.Spawn(model.Wall, m.Walls, 1)
	for _, c := range m.InstantSell {
		u, ok := b.Structure(c)
		if !ok || u.Kind != model.Wall {
			continue
		}
		if b.RemovePlaced([]model.Coord{c}) == 0 {
			b.Remove([]model.Coord{c})
		}
	}
}
