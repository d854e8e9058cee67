package rules

import (
	"log/slog"
	"math"

	"github.com/nstehr/funnel/attack"
	"github.com/nstehr/funnel/model"
)

var (
	// demolisherStarts are the candidate deploy cells for a fallback demolisher push.
	demolisherStarts = []model.Coord{{X: 3, Y: 10}, {X: 24, Y: 10}, {X: 11, Y: 2}, {X: 16, Y: 2}}
	// stallSites are the flank cells interceptors are deployed from.
	stallSites = []model.Coord{{X: 23, Y: 9}, {X: 4, Y: 9}}
)

// ActionLaunchAttack runs the attack selector and records the committed method.
func ActionLaunchAttack(env RuleEnv) error {
	if env.T.Selector == nil {
		return nil
	}
	d, ok := env.T.Selector.Select(env.T.Builder, env.Count(model.Support.String()))
	if !ok {
		slog.Debug("no attack method feasible", "turn", env.TurnNumber(), "mp", env.MP())
		return nil
	}
	commitAttack(env, d)
	slog.Debug("attack committed", "method", d.Method, "placed", d.Placed, "holes", len(d.Holes))
	return nil
}

func commitAttack(env RuleEnv, d attack.Decision) {
	env.T.Attack = &d
	env.Memory["lastAttackTurn"] = env.TurnNumber()
}

// DemolisherPush spawns at least minimum demolishers from the deploy cell whose
// path takes the least turret damage.
func DemolisherPush(minimum int) ActionFunc {
	return func(env RuleEnv) error {
		b := env.T.Builder
		n := b.Affordable(model.Demolisher)
		if n < minimum {
			return nil
		}
		start, ok := leastDamageStart(env, demolisherStarts)
		if !ok {
			return nil
		}
		placed := b.Spawn(model.Demolisher, []model.Coord{start}, n)
		if placed == 0 {
			return nil
		}
		commitAttack(env, attack.Decision{
			Method: "demolisher-push",
			Spawns: []attack.Spawn{{Kind: model.Demolisher, Unit: b.Config().Shorthand(model.Demolisher), Loc: start, Count: placed}},
			Placed: placed,
		})
		slog.Debug("demolisher push", "start", start, "count", placed)
		return nil
	}
}

// leastDamageStart returns the spawnable candidate whose simulated path is
// covered by the least opponent damage. Ties keep the earlier candidate.
func leastDamageStart(env RuleEnv, candidates []model.Coord) (model.Coord, bool) {
	b := env.T.Builder
	player := b.Config().Player
	var (
		best  model.Coord
		found bool
		least = math.Inf(1)
	)
	for _, c := range candidates {
		if !b.CanSpawn(model.Demolisher, c) {
			continue
		}
		if env.T.Sim == nil {
			return c, true
		}
		dmg := 0.0
		for _, step := range env.T.Sim.PathToEdge(c) {
			for _, u := range env.T.Sim.Attackers(step, player) {
				dmg += u.Damage
			}
		}
		if dmg < least {
			best, least, found = c, dmg, true
		}
	}
	return best, found
}

// ActionStallInterceptors sends one interceptor from each flank.
func ActionStallInterceptors(env RuleEnv) error {
	n := env.T.Builder.Spawn(model.Interceptor, stallSites, 1)
	if n > 0 {
		slog.Debug("stalling with interceptors", "count", n)
	}
	return nil
}

// ReactiveTurrets places a turret one row above each breach from the previous
// turn, at most limit per turn, and records them as expected structures.
func ReactiveTurrets(limit int) ActionFunc {
	return func(env RuleEnv) error {
		b := env.T.Builder
		placed := 0
		for _, br := range env.T.Breaches {
			if placed >= limit {
				break
			}
			if br.Turn < env.TurnNumber()-1 {
				continue
			}
			c := model.Coord{X: br.Loc.X, Y: br.Loc.Y + 1}
			if b.Spawn(model.Turret, []model.Coord{c}, 1) == 0 {
				continue
			}
			if env.T.Planner != nil {
				env.T.Planner.Registry().Register(c, model.Turret)
			}
			placed++
			slog.Debug("reactive turret", "breach", br.Loc, "at", c)
		}
		return nil
	}
}

// EndgameSupports spends SP above reserve on supports facing the predicted side.
func EndgameSupports(reserve float64) ActionFunc {
	return func(env RuleEnv) error {
		p := env.T.Planner
		if p == nil {
			return nil
		}
		b := env.T.Builder
		cost := b.Config().Spec(model.Support).Cost.SP
		placed := 0
		for _, c := range p.EndgameSupports(env.Side() < 0) {
			if b.Balance().SP-cost < reserve {
				break
			}
			if b.Spawn(model.Support, []model.Coord{c}, 1) == 0 {
				continue
			}
			p.Registry().Register(c, model.Support)
			placed++
		}
		if placed > 0 {
			slog.Debug("endgame supports", "count", placed, "sp", b.Balance().SP)
		}
		return nil
	}
}

// ActionPatchOptionalWalls closes the build's optional walls for this turn's
// deploy phase unless the committed attack needs them open.
func ActionPatchOptionalWalls(env RuleEnv) error {
	holes := make(map[model.Coord]bool)
	if env.T.Attack != nil {
		for _, h := range env.T.Attack.Holes {
			holes[h] = true
		}
	}
	n := env.T.Planner.PatchOptional(env.T.Builder, holes)
	if n > 0 {
		slog.Debug("optional walls patched", "count", n)
	}
	return nil
}
