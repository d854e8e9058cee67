package model

import "sort"

// GameState is the per-turn frame sent by the engine bridge.
type GameState struct {
	Turn    int           `json:"turn"`
	Players []PlayerState `json:"players"`
}

type PlayerState struct {
	Health float64     `json:"health"`
	SP     float64     `json:"sp"`
	MP     float64     `json:"mp"`
	Units  []UnitState `json:"units"`
}

// UnitState is one entry of a player's unit list. Remove and upgrade markers
// share the list and flag the structure standing at the same cell.
type UnitState struct {
	Type   string  `json:"type"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Health float64 `json:"health"`
	ID     string  `json:"id"`
}

// ResourcePool holds a player's two currencies.
type ResourcePool struct {
	SP float64 `json:"sp"`
	MP float64 `json:"mp"`
}

// Snapshot is an immutable view of the board for one turn. Only Place mutates it,
// and only while the snapshot is being assembled.
type Snapshot struct {
	Turn      int
	Resources [2]ResourcePool
	Health    [2]float64

	cfg  *Config
	grid map[Coord][]Unit
}

// EmptySnapshot returns a board with no units and no resources.
func EmptySnapshot(turn int, cfg *Config) *Snapshot {
	return &Snapshot{Turn: turn, cfg: cfg, grid: make(map[Coord][]Unit)}
}

// NewSnapshot decodes a wire frame. Unknown shorthands are dropped.
func NewSnapshot(gs GameState, cfg *Config) *Snapshot {
	s := EmptySnapshot(gs.Turn, cfg)
	for owner, p := range gs.Players {
		if owner > 1 {
			break
		}
		s.Resources[owner] = ResourcePool{SP: p.SP, MP: p.MP}
		s.Health[owner] = p.Health
		var markers []UnitState
		for _, us := range p.Units {
			kind := cfg.KindOf(us.Type)
			if kind == Remove || kind == Upgrade {
				markers = append(markers, us)
				continue
			}
			s.Place(Unit{ID: us.ID, Kind: kind, Owner: owner, X: us.X, Y: us.Y, Health: us.Health})
		}
		for _, m := range markers {
			s.mark(Coord{X: m.X, Y: m.Y}, cfg.KindOf(m.Type))
		}
	}
	return s
}

func (s *Snapshot) Config() *Config { return s.cfg }

// Place adds u to the board, filling max health and cost from the config.
// A stationary unit replaces any stationary unit already on its cell.
func (s *Snapshot) Place(u Unit) {
	if u.Kind == KindUnknown || u.Kind == Remove || u.Kind == Upgrade {
		return
	}
	s.fill(&u)
	c := u.Coord()
	units := s.grid[c]
	if u.Kind.Stationary() {
		for i, existing := range units {
			if existing.Kind.Stationary() {
				units[i] = u
				return
			}
		}
	}
	s.grid[c] = append(units, u)
}

func (s *Snapshot) fill(u *Unit) {
	spec := s.cfg.Spec(u.Kind)
	u.Cost = spec.Cost
	u.Damage, u.Range = spec.Damage, spec.Range
	max := spec.Health
	if u.Upgraded {
		u.Cost = u.Cost.Add(spec.UpgradeCost)
		u.Damage, u.Range = spec.UpgradedDamage, spec.UpgradedRange
		max = spec.UpgradedHealth
	}
	if u.MaxHealth == 0 {
		u.MaxHealth = max
	}
	if u.Health == 0 {
		u.Health = u.MaxHealth
	}
}

func (s *Snapshot) mark(c Coord, marker UnitKind) {
	units := s.grid[c]
	for i := range units {
		if !units[i].Kind.Stationary() {
			continue
		}
		switch marker {
		case Remove:
			units[i].PendingRemoval = true
		case Upgrade:
			health := units[i].Health
			units[i].Upgraded = true
			units[i].MaxHealth = 0
			s.fill(&units[i])
			units[i].Health = health
		}
	}
}

// UnitsAt returns every unit on c. The slice must not be modified.
func (s *Snapshot) UnitsAt(c Coord) []Unit { return s.grid[c] }

// StationaryAt returns the structure on c, if any.
func (s *Snapshot) StationaryAt(c Coord) (Unit, bool) {
	for _, u := range s.grid[c] {
		if u.Kind.Stationary() {
			return u, true
		}
	}
	return Unit{}, false
}

// Units lists every unit owned by owner (or everyone when owner < 0), ordered by row then column.
func (s *Snapshot) Units(owner int) []Unit {
	coords := make([]Coord, 0, len(s.grid))
	for c := range s.grid {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Y != coords[j].Y {
			return coords[i].Y < coords[j].Y
		}
		return coords[i].X < coords[j].X
	})
	var out []Unit
	for _, c := range coords {
		for _, u := range s.grid[c] {
			if owner < 0 || u.Owner == owner {
				out = append(out, u)
			}
		}
	}
	return out
}

// CountOwned counts owner's units of kind k anywhere on the board.
func (s *Snapshot) CountOwned(owner int, k UnitKind) int {
	n := 0
	for _, units := range s.grid {
		for _, u := range units {
			if u.Owner == owner && u.Kind == k {
				n++
			}
		}
	}
	return n
}
