// Package defense owns the structures the agent has committed to keeping on the board:
// the expected-state registry, the repair scheduler and the milestone planner.
package defense

import "github.com/nstehr/funnel/model"

// Expected is a structure the agent intends to keep at Loc.
type Expected struct {
	Loc   model.Coord
	Kind  model.UnitKind
	Level int
}

// Registry maps locations to expected structures. Entries are only ever added or
// promoted; iteration follows registration order.
type Registry struct {
	entries map[model.Coord]*Expected
	order   []model.Coord
	choices map[string]model.Coord
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[model.Coord]*Expected),
		choices: make(map[string]model.Coord),
	}
}

// Register records kind at loc at level 1. It returns false when loc is already registered.
func (r *Registry) Register(loc model.Coord, kind model.UnitKind) bool {
	if _, ok := r.entries[loc]; ok {
		return false
	}
	r.entries[loc] = &Expected{Loc: loc, Kind: kind, Level: 1}
	r.order = append(r.order, loc)
	return true
}

// Promote raises the entry at loc to level 2. Unregistered locations are ignored.
func (r *Registry) Promote(loc model.Coord) bool {
	e, ok := r.entries[loc]
	if !ok || e.Level >= 2 {
		return false
	}
	e.Level = 2
	return true
}

func (r *Registry) Get(loc model.Coord) (Expected, bool) {
	e, ok := r.entries[loc]
	if !ok {
		return Expected{}, false
	}
	return *e, true
}

func (r *Registry) Len() int { return len(r.order) }

// Entries returns copies of every entry in registration order.
func (r *Registry) Entries() []Expected {
	out := make([]Expected, 0, len(r.order))
	for _, loc := range r.order {
		out = append(out, *r.entries[loc])
	}
	return out
}

// Choice returns a previously frozen decision.
func (r *Registry) Choice(key string) (model.Coord, bool) {
	c, ok := r.choices[key]
	return c, ok
}

// Freeze records a decision the first time it is made; later calls keep the original.
func (r *Registry) Freeze(key string, c model.Coord) model.Coord {
	if prev, ok := r.choices[key]; ok {
		return prev
	}
	r.choices[key] = c
	return c
}
