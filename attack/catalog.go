package attack

import (
	"math"

	"github.com/nstehr/funnel/model"
	"github.com/nstehr/funnel/spatial"
)

func at(x, y int) model.Coord { return model.Coord{X: x, Y: y} }

func spawn(in PlanInput, kind model.UnitKind, c model.Coord, n int) Spawn {
	return Spawn{Kind: kind, Unit: in.cfg().Shorthand(kind), Loc: in.At(c), Count: n}
}

// box returns the canonical region [tl, br) or its reflection.
func box(in PlanInput, tl, br model.Coord) spatial.Box {
	if in.Mirrored {
		a := in.cfg().Arena
		tl, br = at(a.Size-br.X, tl.Y), at(a.Size-tl.X, br.Y)
	}
	return spatial.NewBox(in.Snap, tl, br)
}

var structures = model.Kinds(model.Wall, model.Turret, model.Support)

// Catalog returns the built-in methods, each followed by its mirrored variant.
func Catalog(a model.Arena) []Method {
	base := []Method{CornerPing(), DoubleCornerPing(), EarlySideRush(), DemolisherWeakSide(), DemolisherLine()}
	out := make([]Method, 0, 2*len(base))
	for _, m := range base {
		out = append(out, m, m.Mirror(a))
	}
	return out
}

// CornerPing funnels scouts along the right edge: a first wave cracks the corner
// wall and the second wave scores through it.
func CornerPing() Method {
	walls := []model.Coord{at(7, 6), at(19, 8), at(20, 9), at(23, 12), at(25, 13), at(12, 3), at(13, 2), at(13, 1)}
	for x := 8; x < 19; x++ {
		walls = append(walls, at(x, 7))
	}
	return Method{
		Name:        "corner-ping",
		Walls:       walls,
		Turrets:     []model.Coord{at(21, 10), at(22, 11), at(24, 12)},
		InstantSell: []model.Coord{at(23, 12), at(12, 3), at(13, 2), at(13, 1)},
		Holes:       []model.Coord{at(26, 12), at(26, 13), at(27, 13)},
		MinMP:       5,
		Plan:        cornerPingPlan,
	}
}

func cornerPingPlan(in PlanInput) []Spawn {
	cfg := in.cfg()
	scout := cfg.Spec(model.Scout)
	if scout.Health <= 0 {
		return nil
	}
	full := scout.Health + float64(in.Supports)*cfg.Spec(model.Support).Shield

	// Scouts lost walking through turret cover before reaching the corner.
	lost := 0
	if in.Sim != nil {
		hp := full
		for _, z := range []model.Coord{at(24, 11), at(25, 11), at(25, 12), at(26, 12), at(26, 13), at(27, 13)} {
			for _, t := range in.Sim.Attackers(in.At(z), cfg.Player) {
				hp -= t.Damage
				if hp <= 0 {
					hp = full
					lost++
				}
			}
		}
	}

	var wallHealth float64
	if w, ok := in.Snap.StationaryAt(in.At(at(27, 14))); ok {
		wallHealth = w.Health
	}
	first := int(math.Ceil(wallHealth*0.75/scout.Health)) + lost
	total := in.Affordable(model.Scout)
	if total-first < cfg.MinScoutSurplus {
		return nil
	}

	var plan []Spawn
	if first > 0 {
		plan = append(plan, spawn(in, model.Scout, at(11, 2), first))
	}
	return append(plan, spawn(in, model.Scout, at(12, 1), total-first))
}

// DoubleCornerPing sends a small wave from the back corner and the rest from the flank.
func DoubleCornerPing() Method {
	walls := []model.Coord{at(2, 13), at(3, 13), at(4, 13), at(5, 12), at(22, 12), at(23, 13), at(24, 13), at(25, 13), at(26, 13), at(20, 9)}
	for x := 7; x < 21; x++ {
		walls = append(walls, at(x, 11))
	}
	return Method{
		Name:        "double-corner-ping",
		Walls:       walls,
		Turrets:     []model.Coord{at(19, 10)},
		InstantSell: []model.Coord{at(20, 9)},
		Holes:       []model.Coord{at(1, 13)},
		MinMP:       7,
		Plan: func(in PlanInput) []Spawn {
			const firstWave = 3
			total := in.Affordable(model.Scout)
			if total-firstWave < in.cfg().MinScoutSurplus {
				return nil
			}
			return []Spawn{
				spawn(in, model.Scout, at(15, 1), firstWave),
				spawn(in, model.Scout, at(23, 9), total-firstWave),
			}
		},
	}
}

// EarlySideRush walls off the left centre and pushes every scout through a single gap.
func EarlySideRush() Method {
	return Method{
		Name:        "early-side-rush",
		Walls:       []model.Coord{at(11, 11), at(10, 11), at(9, 11), at(7, 9), at(6, 8)},
		Turrets:     []model.Coord{at(8, 10)},
		InstantSell: []model.Coord{at(7, 9), at(6, 8)},
		Holes:       []model.Coord{at(12, 11)},
		MinMP:       5,
		Plan: func(in PlanInput) []Spawn {
			n := in.Affordable(model.Scout)
			if n < 1 {
				return nil
			}
			return []Spawn{spawn(in, model.Scout, at(15, 1), n)}
		},
	}
}

// DemolisherWeakSide sends demolishers at the right corner when it carries no more
// turrets than the left one and the stack can out-damage everything standing there.
func DemolisherWeakSide() Method {
	return Method{
		Name:  "demolisher-weak-side",
		Walls: []model.Coord{at(22, 12), at(22, 13)},
		MinMP: 12,
		Plan: func(in PlanInput) []Spawn {
			n := in.Affordable(model.Demolisher)
			if n < 4 {
				return nil
			}
			target := box(in, at(22, 17), at(26, 14))
			other := box(in, at(2, 17), at(6, 14))
			turrets := model.Kinds(model.Turret)
			if target.Count(turrets) > other.Count(turrets) {
				return nil
			}
			dmg := in.cfg().Spec(model.Demolisher).Damage
			potential := float64(n) * dmg * 10 * (math.Pow(1.1, float64(n)) - 0.5)
			if potential <= target.TotalHealth() {
				return nil
			}
			start := at(16, 2)
			if box(in, at(5, 16), at(22, 14)).Count(structures) < 7 {
				start = at(11, 2)
			}
			return []Spawn{spawn(in, model.Demolisher, start, n)}
		},
	}
}

// DemolisherLine walks a demolisher column up the right flank behind a throwaway wall.
func DemolisherLine() Method {
	return Method{
		Name:        "demolisher-line",
		Walls:       []model.Coord{at(23, 13)},
		InstantSell: []model.Coord{at(23, 13)},
		MinMP:       9,
		Plan: func(in PlanInput) []Spawn {
			if box(in, at(20, 16), at(24, 14)).Count(model.Kinds(model.Turret)) > 3 {
				return nil
			}
			n := in.Affordable(model.Demolisher)
			if n < 3 {
				return nil
			}
			return []Spawn{spawn(in, model.Demolisher, at(24, 10), n)}
		},
	}
}
