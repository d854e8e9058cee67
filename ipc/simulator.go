package ipc

import (
	"log/slog"

	"github.com/nstehr/funnel/model"
)

// Simulator query types. Each query is answered by exactly one result envelope.
const (
	TypePathQuery       = "path_query"
	TypePathResult      = "path_result"
	TypeAttackersQuery  = "attackers_query"
	TypeAttackersResult = "attackers_result"
)

type PathQuery struct {
	Turn int `json:"turn"`
	X    int `json:"x"`
	Y    int `json:"y"`
}

// PathResult is the cell sequence a mobile unit deployed at the query cell would walk.
type PathResult struct {
	Path [][2]int `json:"path"`
}

type AttackersQuery struct {
	Turn   int `json:"turn"`
	X      int `json:"x"`
	Y      int `json:"y"`
	Player int `json:"player"`
}

// AttackersResult lists the structures able to hit a unit of the queried player at the cell.
type AttackersResult struct {
	Units []AttackerInfo `json:"units"`
}

type AttackerInfo struct {
	Type     string  `json:"type"`
	X        int     `json:"x"`
	Y        int     `json:"y"`
	Owner    int     `json:"owner"`
	Health   float64 `json:"health"`
	Upgraded bool    `json:"upgraded"`
	Damage   float64 `json:"damage,omitempty"`
}

// Simulator answers path and threat questions by querying the engine bridge.
// Answers are cached for the lifetime of the value, which is one turn.
type Simulator struct {
	conn *Connection
	cfg  *model.Config
	turn int

	paths     map[model.Coord][]model.Coord
	attackers map[attackKey][]model.Unit
}

type attackKey struct {
	c      model.Coord
	player int
}

var _ model.Simulator = (*Simulator)(nil)

func NewSimulator(conn *Connection, cfg *model.Config, turn int) *Simulator {
	return &Simulator{
		conn:      conn,
		cfg:       cfg,
		turn:      turn,
		paths:     make(map[model.Coord][]model.Coord),
		attackers: make(map[attackKey][]model.Unit),
	}
}

// PathToEdge returns nil when the query fails; callers treat that as no path.
func (s *Simulator) PathToEdge(c model.Coord) []model.Coord {
	if p, ok := s.paths[c]; ok {
		return p
	}
	var res PathResult
	if err := s.conn.Query(TypePathQuery, PathQuery{Turn: s.turn, X: c.X, Y: c.Y}, TypePathResult, &res); err != nil {
		slog.Warn("path query failed", "from", c, "error", err)
		return nil
	}
	path := make([]model.Coord, 0, len(res.Path))
	for _, p := range res.Path {
		path = append(path, model.Coord{X: p[0], Y: p[1]})
	}
	s.paths[c] = path
	return path
}

// Attackers returns nil when the query fails.
func (s *Simulator) Attackers(c model.Coord, player int) []model.Unit {
	key := attackKey{c: c, player: player}
	if us, ok := s.attackers[key]; ok {
		return us
	}
	var res AttackersResult
	q := AttackersQuery{Turn: s.turn, X: c.X, Y: c.Y, Player: player}
	if err := s.conn.Query(TypeAttackersQuery, q, TypeAttackersResult, &res); err != nil {
		slog.Warn("attackers query failed", "at", c, "error", err)
		return nil
	}
	us := make([]model.Unit, 0, len(res.Units))
	for _, a := range res.Units {
		u, ok := s.unit(a)
		if !ok {
			continue
		}
		us = append(us, u)
	}
	s.attackers[key] = us
	return us
}

func (s *Simulator) unit(a AttackerInfo) (model.Unit, bool) {
	kind := s.cfg.KindOf(a.Type)
	if kind == model.KindUnknown {
		return model.Unit{}, false
	}
	spec := s.cfg.Spec(kind)
	u := model.Unit{
		Kind:     kind,
		Owner:    a.Owner,
		X:        a.X,
		Y:        a.Y,
		Health:   a.Health,
		Upgraded: a.Upgraded,
		Cost:     spec.Cost,
		Damage:   spec.Damage,
		Range:    spec.Range,
	}
	if a.Upgraded {
		u.Damage, u.Range = spec.UpgradedDamage, spec.UpgradedRange
	}
	if a.Damage > 0 {
		u.Damage = a.Damage
	}
	return u, true
}
