package rules

import (
	"github.com/nstehr/funnel/attack"
	"github.com/nstehr/funnel/defense"
	"github.com/nstehr/funnel/model"
	"github.com/nstehr/funnel/turn"
)

// Breach is a point where an opponent unit reached our edge.
type Breach struct {
	Loc  model.Coord `json:"loc"`
	Turn int         `json:"turn"`
}

// Turn carries the collaborators rules read from and act through for one turn.
type Turn struct {
	Builder  *turn.Builder
	Planner  *defense.Planner
	Selector *attack.Selector
	Sim      model.Simulator
	// Predict returns the memoised side prediction for this turn.
	Predict func() int
	// Breaches holds every breach recorded this game, oldest first.
	Breaches []Breach
	// Attack is set once an attack has been committed this turn.
	Attack *attack.Decision
}

// RuleEnv wraps the turn and exposes helper methods callable from expr expressions.
type RuleEnv struct {
	T      *Turn
	Memory map[string]any
}

func (e RuleEnv) snap() *model.Snapshot { return e.T.Builder.Snapshot() }

func (e RuleEnv) cfg() *model.Config { return e.T.Builder.Config() }

func (e RuleEnv) TurnNumber() int { return e.snap().Turn }

// SP and MP are the predicted balances after the commands already issued this turn.
func (e RuleEnv) SP() float64 { return e.T.Builder.Balance().SP }
func (e RuleEnv) MP() float64 { return e.T.Builder.Balance().MP }

func (e RuleEnv) Health() float64 { return e.snap().Health[e.cfg().Player] }

func (e RuleEnv) EnemyHealth() float64 { return e.snap().Health[e.cfg().Opponent()] }

// Side is the predicted attack side: -1 left, 1 right, 0 unknown.
func (e RuleEnv) Side() int {
	if e.T.Predict == nil {
		return 0
	}
	return e.T.Predict()
}

func (e RuleEnv) Affordable(kind string) int {
	return e.T.Builder.Affordable(model.ParseKind(kind))
}

func (e RuleEnv) Cost(kind string) float64 {
	c := e.cfg().Spec(model.ParseKind(kind)).Cost
	return c.SP + c.MP
}

// Count is our units of kind on the board plus those spawned this turn.
func (e RuleEnv) Count(kind string) int {
	return e.T.Builder.Count(model.ParseKind(kind))
}

func (e RuleEnv) EnemyCount(kind string) int {
	return e.snap().CountOwned(e.cfg().Opponent(), model.ParseKind(kind))
}

func (e RuleEnv) AttackCommitted() bool { return e.T.Attack != nil }

func (e RuleEnv) BreachCount() int { return len(e.T.Breaches) }

// RecentBreaches counts breaches recorded during the previous turn or later.
func (e RuleEnv) RecentBreaches() int {
	n := 0
	for _, b := range e.T.Breaches {
		if b.Turn >= e.TurnNumber()-1 {
			n++
		}
	}
	return n
}

// TurnsSinceAttack is the number of turns since the last committed attack,
// or the current turn number plus one when none has been made.
func (e RuleEnv) TurnsSinceAttack() int {
	last, ok := e.Memory["lastAttackTurn"].(int)
	if !ok {
		return e.TurnNumber() + 1
	}
	return e.TurnNumber() - last
}

func (e RuleEnv) HasOptionalWalls() bool {
	return e.T.Planner != nil && len(e.T.Planner.Build().Optional) > 0
}

func (e RuleEnv) HasEndgameSupports() bool {
	return e.T.Planner != nil && len(e.T.Planner.Build().EndgameSupports) > 0
}
