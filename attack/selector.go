package attack

import (
	"log/slog"

	bt "github.com/joeycumines/go-behaviortree"

	"github.com/nstehr/funnel/model"
	"github.com/nstehr/funnel/turn"
)

// Decision records the method committed this turn.
type Decision struct {
	Method string        `json:"method"`
	Spawns []Spawn       `json:"spawns"`
	Holes  []model.Coord `json:"holes"`
	Placed int           `json:"placed"`
}

// Selector tries methods in order and commits the first feasible one.
type Selector struct {
	methods []Method
	sim     model.Simulator
}

func NewSelector(sim model.Simulator, methods ...Method) *Selector {
	return &Selector{methods: methods, sim: sim}
}

func (s *Selector) Methods() []Method { return s.methods }

// Select evaluates the methods against b. Each method is a sequence of checks
// (holes, structure cost, spawn plan) ending in a commit, and the methods sit under
// a selector so the first sequence to succeed wins. No feasible method is not an error.
func (s *Selector) Select(b *turn.Builder, supports int) (Decision, bool) {
	var (
		decision  Decision
		committed bool
	)
	children := make([]bt.Node, 0, len(s.methods))
	for _, m := range s.methods {
		children = append(children, s.sequence(m, b, supports, func(d Decision) {
			decision, committed = d, true
		}))
	}
	if len(children) == 0 {
		return Decision{}, false
	}

	status, err := bt.New(bt.Selector, children...).Tick()
	if err != nil {
		slog.Error("attack selector failed", "error", err)
		return Decision{}, false
	}
	if status != bt.Success || !committed {
		return Decision{}, false
	}
	return decision, true
}

func (s *Selector) sequence(m Method, b *turn.Builder, supports int, done func(Decision)) bt.Node {
	var plan []Spawn

	holes := bt.New(func([]bt.Node) (bt.Status, error) {
		if !m.HolesClear(b) {
			slog.Debug("attack skipped", "method", m.Name, "reason", "hole blocked")
			return bt.Failure, nil
		}
		return bt.Success, nil
	})
	structures := bt.New(func([]bt.Node) (bt.Status, error) {
		if cost := m.StructureCost(b); cost > b.Balance().SP {
			slog.Debug("attack skipped", "method", m.Name, "reason", "structures unaffordable", "cost", cost)
			return bt.Failure, nil
		}
		return bt.Success, nil
	})
	viable := bt.New(func([]bt.Node) (bt.Status, error) {
		mp := b.Balance().MP
		if mp < m.MinMP || m.Plan == nil {
			slog.Debug("attack skipped", "method", m.Name, "reason", "mp below minimum", "mp", mp)
			return bt.Failure, nil
		}
		plan = m.Plan(PlanInput{Snap: b.Snapshot(), Sim: s.sim, Supports: supports, MP: mp, Mirrored: m.Mirrored()})
		if len(plan) == 0 {
			slog.Debug("attack skipped", "method", m.Name, "reason", "push too weak")
			return bt.Failure, nil
		}
		return bt.Success, nil
	})
	commit := bt.New(func([]bt.Node) (bt.Status, error) {
		m.Place(b)
		placed := 0
		for _, sp := range plan {
			placed += b.Spawn(sp.Kind, []model.Coord{sp.Loc}, sp.Count)
		}
		done(Decision{Method: m.Name, Spawns: plan, Holes: m.Holes, Placed: placed})
		return bt.Success, nil
	})

	return bt.New(bt.Sequence, holes, structures, viable, commit)
}
