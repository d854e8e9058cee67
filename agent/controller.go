package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nstehr/funnel/attack"
	"github.com/nstehr/funnel/defense"
	"github.com/nstehr/funnel/ipc"
	"github.com/nstehr/funnel/journal"
	"github.com/nstehr/funnel/model"
	"github.com/nstehr/funnel/predict"
	"github.com/nstehr/funnel/rules"
	"github.com/nstehr/funnel/turn"
)

// TurnResult is everything decided for one turn.
type TurnResult struct {
	Message   ipc.TurnMessage
	Predicted predict.Result
	Repair    defense.RepairPlan
	Build     defense.Outcome
	Attack    *attack.Decision
	Fired     []string
	Events    []Event
}

// Controller plays one game. It owns the cross-turn state: the expected-state
// registry (through the planner), recorded breaches and the rule engine memory.
// It is not safe for concurrent use; the connection serialises turns.
type Controller struct {
	cfg        *model.Config
	session    string
	planner    *defense.Planner
	engine     *rules.Engine
	strategist *Strategist
	journal    *journal.Journal
	metrics    *metrics

	breaches []rules.Breach
	// holes are the cells the previous turn's attack needed open; repair skips them.
	holes map[model.Coord]bool
}

// ControllerOptions are the per-session collaborators.
type ControllerOptions struct {
	Session         string
	Build           *defense.Build
	Doctrine        rules.Doctrine
	BreachThreshold int
	Journal         *journal.Journal
}

func NewController(cfg *model.Config, opts ControllerOptions) (*Controller, error) {
	if opts.Build == nil {
		return nil, fmt.Errorf("controller: no build")
	}
	engine, err := rules.NewEngine(rules.CompileDoctrine(opts.Doctrine))
	if err != nil {
		return nil, fmt.Errorf("compile doctrine %q: %w", opts.Doctrine.Name, err)
	}
	m, err := newMetrics()
	if err != nil {
		return nil, err
	}
	planner := defense.NewPlanner(opts.Build, defense.NewRegistry(), cfg.Arena)
	return &Controller{
		cfg:        cfg,
		session:    opts.Session,
		planner:    planner,
		engine:     engine,
		strategist: NewStrategist(engine, planner, opts.Doctrine, opts.BreachThreshold),
		journal:    opts.Journal,
		metrics:    m,
		holes:      make(map[model.Coord]bool),
	}, nil
}

func (c *Controller) Config() *model.Config { return c.cfg }

func (c *Controller) Planner() *defense.Planner { return c.planner }

func (c *Controller) Strategist() *Strategist { return c.strategist }

// PlayTurn runs one turn against snap: repair, build, predict, tactics, submit.
func (c *Controller) PlayTurn(snap *model.Snapshot, sim model.Simulator) TurnResult {
	ctx := context.Background()
	var res TurnResult
	res.Events = c.strategist.Observe(snap)

	b := turn.New(snap)

	// Prediction is lazy and memoised: the planner and the rules may both ask.
	predictor := predict.New(c.cfg, sim)
	predicted := false
	predictSide := func() int {
		if !predicted {
			res.Predicted = predictor.Predict(snap)
			predicted = true
			slog.Debug("attack side predicted", "turn", snap.Turn, "side", res.Predicted.Side, "tier", res.Predicted.Tier)
		}
		return res.Predicted.Side
	}

	res.Repair = defense.Reconcile(c.planner.Registry(), snap, b.Balance().SP, c.holes)
	built, removed := res.Repair.Apply(b)
	if res.Repair.Deferred > 0 {
		slog.Debug("repairs deferred", "turn", snap.Turn, "deferred", res.Repair.Deferred, "cost", res.Repair.Cost)
	}

	res.Build = c.planner.Apply(b, predictSide, c.holes)

	t := &rules.Turn{
		Builder:  b,
		Planner:  c.planner,
		Selector: attack.NewSelector(sim, attack.Catalog(c.cfg.Arena)...),
		Sim:      sim,
		Predict:  predictSide,
		Breaches: c.breaches,
	}
	fired, err := c.engine.Evaluate(t)
	if err != nil {
		slog.Error("rule engine error", "error", err)
	}
	res.Fired = fired
	res.Attack = t.Attack

	c.holes = make(map[model.Coord]bool)
	if t.Attack != nil {
		for _, h := range t.Attack.Holes {
			c.holes[h] = true
		}
		c.metrics.attack(ctx, t.Attack.Method)
	}
	c.metrics.turn(ctx, built, removed)

	res.Message = ipc.NewTurnMessage(b)
	c.record(snap, res)

	method := ""
	if res.Attack != nil {
		method = res.Attack.Method
	}
	balance := snap.Resources[c.cfg.Player]
	slog.Info("turn played",
		"session", c.session,
		"turn", snap.Turn,
		"sp", balance.SP,
		"mp", balance.MP,
		"predictedSide", res.Predicted.Side,
		"attack", method,
		"repairs", built,
		"removals", removed,
		"commands", len(res.Message.Build)+len(res.Message.Deploy),
	)
	return res
}

func (c *Controller) record(snap *model.Snapshot, res TurnResult) {
	balance := snap.Resources[c.cfg.Player]
	r := journal.TurnRecord{
		Session:       c.session,
		Turn:          snap.Turn,
		SP:            balance.SP,
		MP:            balance.MP,
		PredictedSide: res.Predicted.Side,
		PredictTier:   res.Predicted.Tier.String(),
		Repairs:       len(res.Repair.Rebuild),
		Removals:      len(res.Repair.Remove),
		Rules:         journal.JSON(res.Fired),
		Commands:      journal.JSON(res.Message),
	}
	if res.Attack != nil {
		r.AttackMethod = res.Attack.Method
	}
	if err := c.journal.RecordTurn(r); err != nil {
		slog.Warn("journal write failed", "turn", snap.Turn, "error", err)
	}
}

// RecordBreaches stores the opponent's breaches reported during turnNumber.
// Each one feeds the reactive rules, the strategist and telemetry.
func (c *Controller) RecordBreaches(turnNumber int, events []ipc.BreachEvent) {
	ctx := context.Background()
	var records []journal.BreachRecord
	for _, e := range events {
		if e.Owner == c.cfg.Player {
			continue
		}
		loc := e.Coord()
		side := c.cfg.Arena.Side(loc.X)
		c.breaches = append(c.breaches, rules.Breach{Loc: loc, Turn: turnNumber})
		c.strategist.RecordBreach(side)
		c.metrics.breach(ctx, sideName(side))
		records = append(records, journal.BreachRecord{
			Session: c.session,
			Turn:    turnNumber,
			X:       loc.X,
			Y:       loc.Y,
			Side:    side,
			Damage:  e.Damage,
		})
		slog.Debug("breach recorded", "turn", turnNumber, "at", loc, "side", sideName(side))
	}
	if err := c.journal.RecordBreaches(records); err != nil {
		slog.Warn("journal write failed", "turn", turnNumber, "error", err)
	}
}

// Breaches returns every breach recorded this game.
func (c *Controller) Breaches() []rules.Breach { return append([]rules.Breach(nil), c.breaches...) }
