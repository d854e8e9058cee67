package agent

import (
	"log/slog"
	"strings"

	"github.com/nstehr/funnel/defense"
	"github.com/nstehr/funnel/model"
	"github.com/nstehr/funnel/rules"
)

// maxEvents bounds the event history kept for doctrine rationales.
const maxEvents = 20

// Strategist revises the plan between turns. It counts breaches per side and
// activates the build's reinforcements once a side crosses the threshold, and
// it nudges the doctrine in response to detected events, swapping the engine's
// rule set when the doctrine changes.
type Strategist struct {
	engine    *rules.Engine
	planner   *defense.Planner
	doctrine  rules.Doctrine
	threshold int

	breaches map[int]int // side → breaches taken
	prev     *stateSnapshot
	events   []Event
}

func NewStrategist(engine *rules.Engine, planner *defense.Planner, d rules.Doctrine, threshold int) *Strategist {
	if threshold <= 0 {
		threshold = 3
	}
	d.Validate()
	return &Strategist{
		engine:    engine,
		planner:   planner,
		doctrine:  d,
		threshold: threshold,
		breaches:  make(map[int]int),
	}
}

func (s *Strategist) Doctrine() rules.Doctrine { return s.doctrine }

// Events returns the recent event history, oldest first.
func (s *Strategist) Events() []Event { return append([]Event(nil), s.events...) }

func sideName(side int) string {
	if side < 0 {
		return "left"
	}
	return "right"
}

// RecordBreach counts a breach on side and reports whether it activated reinforcements.
func (s *Strategist) RecordBreach(side int) bool {
	if side == 0 {
		return false
	}
	s.breaches[side]++
	if s.breaches[side] < s.threshold {
		return false
	}
	if !s.planner.Reinforce(sideName(side)) {
		return false
	}
	slog.Info("reinforcing side", "side", sideName(side), "breaches", s.breaches[side])
	return true
}

// Breaches returns the breach count for side.
func (s *Strategist) Breaches(side int) int { return s.breaches[side] }

// Observe diffs snap against the previous turn and revises the doctrine if any
// event calls for it. It returns the events detected this turn.
func (s *Strategist) Observe(snap *model.Snapshot) []Event {
	events := detectEvents(snap, s.prev)
	cur := takeSnapshot(snap)
	s.prev = &cur
	if len(events) == 0 {
		return nil
	}

	s.events = append(s.events, events...)
	if n := len(s.events); n > maxEvents {
		s.events = s.events[n-maxEvents:]
	}
	for _, e := range events {
		slog.Debug("event detected", "kind", e.Kind, "turn", e.Turn, "detail", e.Detail)
	}

	if next, changed := revise(s.doctrine, events); changed {
		next.Rationale = strings.TrimSpace(formatEvents(events))
		s.swap(next)
	}
	return events
}

// revise maps events to doctrine adjustments.
func revise(d rules.Doctrine, events []Event) (rules.Doctrine, bool) {
	orig := d
	for _, e := range events {
		switch e.Kind {
		case EventHealthCritical:
			d.DefensePriority += 0.25
			d.Aggression -= 0.25
		case EventResourceCollapse:
			d.SupportReserve += 4
		case EventOpponentBuildsOut:
			d.Aggression += 0.1
		case EventPhaseTransition:
			if gamePhase(e.Turn) == "Endgame" && d.EconomyPriority < 0.75 {
				d.EconomyPriority = 0.75
			}
		case EventStructureLost:
			d.DefensePriority += 0.05
		}
	}
	d.Validate()
	return d, d != orig
}

func (s *Strategist) swap(d rules.Doctrine) {
	if err := s.engine.Swap(rules.CompileDoctrine(d)); err != nil {
		slog.Error("strategist rule swap failed", "error", err)
		return
	}
	s.doctrine = d
	slog.Info("doctrine revised",
		"name", d.Name,
		"rationale", d.Rationale,
		"aggression", d.Aggression,
		"economy", d.EconomyPriority,
		"defense", d.DefensePriority,
		"stallTurns", d.StallTurns,
		"supportReserve", d.SupportReserve,
	)
}
