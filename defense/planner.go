package defense

import (
	"log/slog"

	"github.com/nstehr/funnel/model"
	"github.com/nstehr/funnel/turn"
)

// Planner applies a Build's milestones every turn. Application is cumulative and
// idempotent: requests the board already satisfies produce no commands.
type Planner struct {
	build  *Build
	reg    *Registry
	arena  model.Arena
	active []string
}

func NewPlanner(build *Build, reg *Registry, arena model.Arena) *Planner {
	return &Planner{build: build, reg: reg, arena: arena}
}

func (p *Planner) Build() *Build { return p.build }

func (p *Planner) Registry() *Registry { return p.reg }

// Reinforce adds the build's reinforcement milestones for side ("left" or "right")
// to the plan. It reports whether the plan changed.
func (p *Planner) Reinforce(side string) bool {
	if _, ok := p.build.Reinforce[side]; !ok {
		return false
	}
	for _, s := range p.active {
		if s == side {
			return false
		}
	}
	p.active = append(p.active, side)
	return true
}

// Reinforced lists the sides whose reinforcements are active.
func (p *Planner) Reinforced() []string { return append([]string(nil), p.active...) }

// Outcome summarises one application of the plan.
type Outcome struct {
	Registered int
	Spawned    int
	Upgraded   int
	Choices    map[string]model.Coord
}

type aggregate struct {
	turrets, walls, supports, upgrades []model.Coord
	upgrading                          map[model.Coord]bool
}

func (a *aggregate) upgrade(cs ...model.Coord) {
	for _, c := range cs {
		a.upgrades = append(a.upgrades, c)
		a.upgrading[c] = true
	}
}

// Apply issues every milestone due on the builder's turn. predict is consulted at most
// once, and only when an unresolved choice needs it. Cells in hold stay registered
// but are not spawned this turn.
func (p *Planner) Apply(b *turn.Builder, predict func() int, hold map[model.Coord]bool) Outcome {
	turnNumber := b.Snapshot().Turn
	out := Outcome{Choices: make(map[string]model.Coord)}
	agg := aggregate{upgrading: make(map[model.Coord]bool)}

	milestones := p.due(turnNumber)
	for _, m := range milestones {
		agg.turrets = append(agg.turrets, p.expand(m.Turrets, m.Mirror)...)
		agg.walls = append(agg.walls, p.expand(m.Walls, m.Mirror)...)
		agg.supports = append(agg.supports, p.expand(m.Supports, m.Mirror)...)
		agg.upgrade(p.expand(m.Upgrades, m.Mirror)...)
		if m.Choose != nil {
			c := p.resolve(m.Choose, b, &agg, predict)
			out.Choices[m.Choose.Key] = c
			agg.upgrade(c)
		}
	}

	out.Registered += p.register(agg.turrets, model.Turret)
	out.Registered += p.register(agg.walls, model.Wall)
	out.Registered += p.register(agg.supports, model.Support)
	for _, c := range agg.upgrades {
		p.reg.Promote(c)
	}

	out.Spawned += b.Spawn(model.Turret, without(agg.turrets, hold), 1)
	out.Spawned += b.Spawn(model.Wall, without(agg.walls, hold), 1)
	out.Upgraded += b.Upgrade(agg.upgrades)
	out.Spawned += b.Spawn(model.Support, without(agg.supports, hold), 1)
	out.Upgraded += b.Upgrade(agg.supports)
	return out
}

func without(cs []model.Coord, hold map[model.Coord]bool) []model.Coord {
	if len(hold) == 0 {
		return cs
	}
	out := make([]model.Coord, 0, len(cs))
	for _, c := range cs {
		if !hold[c] {
			out = append(out, c)
		}
	}
	return out
}

func (p *Planner) due(turnNumber int) []Milestone {
	var out []Milestone
	for _, m := range p.build.Milestones {
		if m.Turn <= turnNumber {
			out = append(out, m)
		}
	}
	for _, side := range p.active {
		for _, m := range p.build.Reinforce[side] {
			if m.Turn <= turnNumber {
				out = append(out, m)
			}
		}
	}
	return out
}

func (p *Planner) expand(ps []Point, mirror bool) []model.Coord {
	cs := coords(ps)
	if mirror {
		cs = append(cs, p.arena.MirrorAll(cs)...)
	}
	return cs
}

func (p *Planner) register(cs []model.Coord, kind model.UnitKind) int {
	n := 0
	for _, c := range cs {
		if p.reg.Register(c, kind) {
			n++
		}
	}
	return n
}

func (p *Planner) resolve(ch *Choose, b *turn.Builder, agg *aggregate, predict func() int) model.Coord {
	if c, ok := p.reg.Choice(ch.Key); ok {
		return c
	}
	cands := coords(ch.Candidates)
	pick := cands[0]
	switch ch.By {
	case ByPredictedSide:
		if len(cands) > 1 && predict() == -1 {
			pick = cands[1]
		}
	case ByNotUpgraded:
		for _, c := range cands {
			if agg.upgrading[c] {
				continue
			}
			if u, ok := b.Structure(c); ok && u.Upgraded {
				continue
			}
			pick = c
			break
		}
	}
	slog.Debug("build choice frozen", "key", ch.Key, "by", ch.By, "pick", pick)
	return p.reg.Freeze(ch.Key, pick)
}

// PatchOptional places each optional wall not listed in holes and flags it for removal,
// so the cell blocks this turn's deploy phase without staying on the board.
func (p *Planner) PatchOptional(b *turn.Builder, holes map[model.Coord]bool) int {
	n := 0
	for _, c := range coords(p.build.Optional) {
		if holes[c] {
			continue
		}
		if b.Spawn(model.Wall, []model.Coord{c}, 1) > 0 {
			n += b.RemovePlaced([]model.Coord{c})
			continue
		}
		n += b.Remove([]model.Coord{c})
	}
	return n
}

// EndgameSupports returns the support sites facing the preferred side.
func (p *Planner) EndgameSupports(preferLeft bool) []model.Coord {
	cs := coords(p.build.EndgameSupports)
	if preferLeft {
		return p.arena.MirrorAll(cs)
	}
	return cs
}
