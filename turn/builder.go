// Package turn accumulates one turn's commands against a locally predicted balance.
package turn

import (
	"math"

	"github.com/nstehr/funnel/model"
)

// Op is the kind of command issued to the engine.
type Op string

const (
	OpSpawn   Op = "spawn"
	OpUpgrade Op = "upgrade"
	OpRemove  Op = "remove"
)

type Command struct {
	Op   Op             `json:"op"`
	Kind model.UnitKind `json:"-"`
	Unit string         `json:"unit"`
	X    int            `json:"x"`
	Y    int            `json:"y"`
}

func (c Command) Coord() model.Coord { return model.Coord{X: c.X, Y: c.Y} }

// Builder is the only path through which the agent issues commands. Every attempt is
// checked against the board and the local balance; failures are silent and counted.
type Builder struct {
	cfg     *model.Config
	snap    *model.Snapshot
	balance model.ResourcePool

	placed   map[model.Coord]model.UnitKind
	upgraded map[model.Coord]bool
	removed  map[model.Coord]bool
	cmds     []Command
}

func New(snap *model.Snapshot) *Builder {
	cfg := snap.Config()
	return &Builder{
		cfg:      cfg,
		snap:     snap,
		balance:  snap.Resources[cfg.Player],
		placed:   make(map[model.Coord]model.UnitKind),
		upgraded: make(map[model.Coord]bool),
		removed:  make(map[model.Coord]bool),
	}
}

func (b *Builder) Snapshot() *model.Snapshot { return b.snap }

func (b *Builder) Config() *model.Config { return b.cfg }

// Balance is the predicted balance after the commands issued so far.
func (b *Builder) Balance() model.ResourcePool { return b.balance }

func (b *Builder) Commands() []Command {
	out := make([]Command, len(b.cmds))
	copy(out, b.cmds)
	return out
}

// Phases splits the commands into the engine's build phase and deploy phase.
func (b *Builder) Phases() (build, deploy []Command) {
	for _, c := range b.cmds {
		if c.Op == OpSpawn && c.Kind.Mobile() {
			deploy = append(deploy, c)
			continue
		}
		build = append(build, c)
	}
	return build, deploy
}

// Occupied reports whether a structure stands on c now or was placed this turn.
func (b *Builder) Occupied(c model.Coord) bool {
	if _, ok := b.placed[c]; ok {
		return true
	}
	_, ok := b.snap.StationaryAt(c)
	return ok
}

// Structure returns the structure on c as it will stand after this turn's commands.
func (b *Builder) Structure(c model.Coord) (model.Unit, bool) {
	if kind, ok := b.placed[c]; ok {
		u := model.Unit{Kind: kind, Owner: b.cfg.Player, X: c.X, Y: c.Y, Upgraded: b.upgraded[c]}
		return u, true
	}
	u, ok := b.snap.StationaryAt(c)
	if ok && b.upgraded[c] {
		u.Upgraded = true
	}
	return u, ok
}

// Count is the number of own units of kind on the board plus those spawned this turn.
func (b *Builder) Count(kind model.UnitKind) int {
	n := b.snap.CountOwned(b.cfg.Player, kind)
	for _, c := range b.cmds {
		if c.Op == OpSpawn && c.Kind == kind {
			n++
		}
	}
	return n
}

// Affordable is how many units of kind the remaining balance pays for.
func (b *Builder) Affordable(kind model.UnitKind) int {
	cost := b.cfg.Spec(kind).Cost
	n := math.MaxInt32
	if cost.SP > 0 {
		n = min(n, int(math.Floor(b.balance.SP/cost.SP)))
	}
	if cost.MP > 0 {
		n = min(n, int(math.Floor(b.balance.MP/cost.MP)))
	}
	if cost.SP <= 0 && cost.MP <= 0 {
		return 0
	}
	return n
}

func (b *Builder) affords(cost model.Cost) bool {
	return cost.SP <= b.balance.SP && cost.MP <= b.balance.MP
}

func (b *Builder) charge(cost model.Cost) {
	b.balance.SP -= cost.SP
	b.balance.MP -= cost.MP
}

// CanSpawn reports whether one unit of kind could be placed on c right now.
func (b *Builder) CanSpawn(kind model.UnitKind, c model.Coord) bool {
	if !kind.Stationary() && !kind.Mobile() {
		return false
	}
	arena := b.cfg.Arena
	if !arena.InArena(c) || !arena.OwnHalf(b.cfg.Player, c) {
		return false
	}
	if kind.Mobile() && !arena.OnEdge(c, arena.DeployEdges(b.cfg.Player)...) {
		return false
	}
	if b.Occupied(c) {
		return false
	}
	return b.affords(b.cfg.Spec(kind).Cost)
}

// Spawn attempts count units of kind at each location and returns how many were placed.
func (b *Builder) Spawn(kind model.UnitKind, locs []model.Coord, count int) int {
	placed := 0
	for _, c := range locs {
		for i := 0; i < count; i++ {
			if !b.CanSpawn(kind, c) {
				break
			}
			b.charge(b.cfg.Spec(kind).Cost)
			if kind.Stationary() {
				b.placed[c] = kind
			}
			b.emit(OpSpawn, kind, c)
			placed++
		}
	}
	return placed
}

// Upgrade attempts to upgrade the structures at locs and returns how many were upgraded.
func (b *Builder) Upgrade(locs []model.Coord) int {
	done := 0
	for _, c := range locs {
		u, ok := b.Structure(c)
		if !ok || u.Owner != b.cfg.Player || u.Upgraded {
			continue
		}
		cost := b.cfg.Spec(u.Kind).UpgradeCost
		if !b.affords(cost) {
			continue
		}
		b.charge(cost)
		b.upgraded[c] = true
		b.emit(OpUpgrade, u.Kind, c)
		done++
	}
	return done
}

// Remove flags own standing structures at locs for removal. Removal is free.
func (b *Builder) Remove(locs []model.Coord) int {
	done := 0
	for _, c := range locs {
		u, ok := b.snap.StationaryAt(c)
		if !ok || u.Owner != b.cfg.Player || u.PendingRemoval || b.removed[c] {
			continue
		}
		b.removed[c] = true
		b.emit(OpRemove, u.Kind, c)
		done++
	}
	return done
}

// RemovePlaced flags structures spawned this turn for removal at the end of it.
func (b *Builder) RemovePlaced(locs []model.Coord) int {
	done := 0
	for _, c := range locs {
		kind, ok := b.placed[c]
		if !ok || b.removed[c] {
			continue
		}
		b.removed[c] = true
		b.emit(OpRemove, kind, c)
		done++
	}
	return done
}

func (b *Builder) emit(op Op, kind model.UnitKind, c model.Coord) {
	b.cmds = append(b.cmds, Command{Op: op, Kind: kind, Unit: b.cfg.Shorthand(kind), X: c.X, Y: c.Y})
}
