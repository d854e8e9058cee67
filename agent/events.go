package agent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nstehr/funnel/model"
)

// EventKind identifies the category of a game event that should trigger
// doctrine re-evaluation by the strategist.
type EventKind string

const (
	EventStructureLost     EventKind = "structure_lost"
	EventBreachTaken       EventKind = "breach_taken"
	EventResourceCollapse  EventKind = "resource_collapse"
	EventPhaseTransition   EventKind = "phase_transition"
	EventHealthCritical    EventKind = "health_critical"
	EventOpponentBuildsOut EventKind = "opponent_builds_out"
)

// Event represents a significant game event detected by diffing consecutive
// snapshots. Events are accumulated on the strategist and logged with the
// doctrine revision they caused.
type Event struct {
	Kind   EventKind
	Turn   int
	Detail string
}

// stateSnapshot captures the diffable fields of one turn's board.
type stateSnapshot struct {
	turn       int
	structures map[model.Coord]model.UnitKind // own stationary units
	health     float64
	sp         float64
	phase      string
	enemySP    float64 // SP value of the opponent's standing structures
}

const (
	// collapseFrom and collapseTo bound a resource_collapse: SP falling from at
	// least collapseFrom to below collapseTo in one turn.
	collapseFrom = 12
	collapseTo   = 2
	// criticalHealth is the health at or below which health_critical fires once.
	criticalHealth = 10
	// buildOutSP is the jump in opponent structure value that counts as a build-out.
	buildOutSP = 20
)

// gamePhase buckets turns the way the milestone tables are laid out:
// the opening ladder, the midgame and the support-heavy endgame.
func gamePhase(turn int) string {
	switch {
	case turn < 7:
		return "Opening"
	case turn < 20:
		return "Midgame"
	default:
		return "Endgame"
	}
}

// takeSnapshot captures the current diffable state for next turn's comparison.
func takeSnapshot(snap *model.Snapshot) stateSnapshot {
	cfg := snap.Config()
	s := stateSnapshot{
		turn:       snap.Turn,
		structures: make(map[model.Coord]model.UnitKind),
		health:     snap.Health[cfg.Player],
		sp:         snap.Resources[cfg.Player].SP,
		phase:      gamePhase(snap.Turn),
	}
	for _, u := range snap.Units(cfg.Player) {
		if u.Kind.Stationary() {
			s.structures[u.Coord()] = u.Kind
		}
	}
	for _, u := range snap.Units(cfg.Opponent()) {
		if u.Kind.Stationary() {
			s.enemySP += u.Cost.SP
		}
	}
	return s
}

// detectEvents compares the current snapshot against the previous one and
// returns any triggered events. Returns nil if prev is nil (first turn).
func detectEvents(snap *model.Snapshot, prev *stateSnapshot) []Event {
	if prev == nil {
		return nil
	}

	var events []Event
	cur := takeSnapshot(snap)

	// 1. structure_lost: structures standing last turn are gone
	var lost []string
	for c, kind := range prev.structures {
		if _, ok := cur.structures[c]; !ok {
			lost = append(lost, fmt.Sprintf("%s%s", kind, c))
		}
	}
	if len(lost) > 0 {
		sort.Strings(lost)
		events = append(events, Event{
			Kind:   EventStructureLost,
			Turn:   cur.turn,
			Detail: fmt.Sprintf("Lost %d structures: %s", len(lost), strings.Join(lost, ", ")),
		})
	}

	// 2. breach_taken: health dropped since last turn
	if cur.health < prev.health {
		events = append(events, Event{
			Kind:   EventBreachTaken,
			Turn:   cur.turn,
			Detail: fmt.Sprintf("Health %.0f → %.0f", prev.health, cur.health),
		})
	}

	// 3. health_critical: crossed the critical threshold this turn
	if prev.health > criticalHealth && cur.health <= criticalHealth {
		events = append(events, Event{
			Kind:   EventHealthCritical,
			Turn:   cur.turn,
			Detail: fmt.Sprintf("Health critical: %.0f", cur.health),
		})
	}

	// 4. resource_collapse: SP spent down from plenty to nearly nothing
	if prev.sp >= collapseFrom && cur.sp < collapseTo {
		events = append(events, Event{
			Kind:   EventResourceCollapse,
			Turn:   cur.turn,
			Detail: fmt.Sprintf("SP collapsed %.1f → %.1f", prev.sp, cur.sp),
		})
	}

	// 5. phase_transition
	if prev.phase != cur.phase {
		events = append(events, Event{
			Kind:   EventPhaseTransition,
			Turn:   cur.turn,
			Detail: fmt.Sprintf("Phase transition: %s → %s", prev.phase, cur.phase),
		})
	}

	// 6. opponent_builds_out: a large jump in opponent structure value
	if cur.enemySP-prev.enemySP >= buildOutSP {
		events = append(events, Event{
			Kind:   EventOpponentBuildsOut,
			Turn:   cur.turn,
			Detail: fmt.Sprintf("Opponent structures %.0f → %.0f SP", prev.enemySP, cur.enemySP),
		})
	}

	return events
}

// formatEvents renders accumulated events as a single log-friendly block.
func formatEvents(events []Event) string {
	if len(events) == 0 {
		return ""
	}
	var b strings.Builder
	for _, e := range events {
		fmt.Fprintf(&b, "[turn %d] %s: %s\n", e.Turn, e.Kind, e.Detail)
	}
	return b.String()
}
