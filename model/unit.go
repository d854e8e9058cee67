package model

import "strings"

// UnitKind identifies a unit type independently of the engine's shorthand symbols.
type UnitKind int

const (
	KindUnknown UnitKind = iota
	Wall
	Support
	Turret
	Scout
	Demolisher
	Interceptor
	Remove
	Upgrade
)

var kindNames = map[UnitKind]string{
	KindUnknown: "unknown",
	Wall:        "wall",
	Support:     "support",
	Turret:      "turret",
	Scout:       "scout",
	Demolisher:  "demolisher",
	Interceptor: "interceptor",
	Remove:      "remove",
	Upgrade:     "upgrade",
}

func (k UnitKind) String() string { return kindNames[k] }

// Stationary reports whether k occupies a cell exclusively.
func (k UnitKind) Stationary() bool {
	return k == Wall || k == Support || k == Turret
}

// Mobile reports whether k walks a path toward the opposing edge.
func (k UnitKind) Mobile() bool {
	return k == Scout || k == Demolisher || k == Interceptor
}

// ParseKind maps a kind name ("wall", "turret", ...) to its UnitKind.
func ParseKind(name string) UnitKind {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return k
		}
	}
	return KindUnknown
}

// KindSet is a set of unit kinds; a nil or empty set matches nothing.
type KindSet map[UnitKind]bool

func Kinds(ks ...UnitKind) KindSet {
	s := make(KindSet, len(ks))
	for _, k := range ks {
		s[k] = true
	}
	return s
}

func (s KindSet) Has(k UnitKind) bool { return s[k] }

// Cost is a price in the two currencies: SP buys structures, MP buys mobile units.
type Cost struct {
	SP float64 `json:"sp" yaml:"sp"`
	MP float64 `json:"mp" yaml:"mp"`
}

func (c Cost) Add(o Cost) Cost { return Cost{SP: c.SP + o.SP, MP: c.MP + o.MP} }

// Unit is one unit standing on the board in a snapshot.
type Unit struct {
	ID             string   `json:"id"`
	Kind           UnitKind `json:"-"`
	Owner          int      `json:"owner"`
	X              int      `json:"x"`
	Y              int      `json:"y"`
	Health         float64  `json:"health"`
	MaxHealth      float64  `json:"maxHealth"`
	Upgraded       bool     `json:"upgraded"`
	PendingRemoval bool     `json:"pendingRemoval"`
	Cost           Cost     `json:"-"`
	Damage         float64  `json:"-"`
	Range          float64  `json:"-"`
}

func (u Unit) TypeName() string { return u.Kind.String() }

func (u Unit) Coord() Coord { return Coord{X: u.X, Y: u.Y} }

// HealthRatio is health over max health, 1 when max health is unknown.
func (u Unit) HealthRatio() float64 {
	if u.MaxHealth <= 0 {
		return 1
	}
	return u.Health / u.MaxHealth
}
