package defense

import (
	"github.com/emirpasic/gods/trees/binaryheap"

	"github.com/nstehr/funnel/model"
	"github.com/nstehr/funnel/turn"
)

// RepairPlan is the outcome of reconciling the registry with a snapshot.
type RepairPlan struct {
	Rebuild []Expected
	Remove  []model.Coord
	Cost    float64
	// Deferred counts missing structures left for a later turn.
	Deferred int
}

type candidate struct {
	entry Expected
	seq   int
}

// byFrontRow orders candidates by descending y, then by registration order.
func byFrontRow(a, b interface{}) int {
	ca, cb := a.(candidate), b.(candidate)
	switch {
	case ca.entry.Loc.Y > cb.entry.Loc.Y:
		return -1
	case ca.entry.Loc.Y < cb.entry.Loc.Y:
		return 1
	}
	return ca.seq - cb.seq
}

// Reconcile compares the registry to snap. Missing structures are rebuilt at level 1,
// front rows first, until the next one would push the total cost past budget. Structures
// below the repair threshold are listed for removal regardless of budget. Locations in
// skip are left alone.
func Reconcile(reg *Registry, snap *model.Snapshot, budget float64, skip map[model.Coord]bool) RepairPlan {
	cfg := snap.Config()
	heap := binaryheap.NewWith(byFrontRow)
	var plan RepairPlan

	for i, e := range reg.Entries() {
		u, ok := snap.StationaryAt(e.Loc)
		if !ok {
			if skip[e.Loc] {
				continue
			}
			heap.Push(candidate{entry: e, seq: i})
			continue
		}
		if u.HealthRatio() < cfg.RepairThreshold && !u.PendingRemoval {
			plan.Remove = append(plan.Remove, e.Loc)
		}
	}

	for {
		v, ok := heap.Pop()
		if !ok {
			break
		}
		c := v.(candidate)
		cost := cfg.Spec(c.entry.Kind).Cost.SP
		if plan.Cost+cost > budget {
			plan.Deferred = heap.Size() + 1
			break
		}
		plan.Cost += cost
		rebuilt := c.entry
		rebuilt.Level = 1
		plan.Rebuild = append(plan.Rebuild, rebuilt)
	}
	return plan
}

// Apply issues the plan through b. Upgrading rebuilt structures is left to the planner.
func (p RepairPlan) Apply(b *turn.Builder) (built, removed int) {
	for _, e := range p.Rebuild {
		built += b.Spawn(e.Kind, []model.Coord{e.Loc}, 1)
	}
	removed = b.Remove(p.Remove)
	return built, removed
}
