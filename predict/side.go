// Package predict guesses which flank the opponent will attack from.
//
// The verdict is -1 (left), +1 (right) or 0 (no information). The board is read from
// the agent's point of view: the opponent holds the top half and its frontier row is
// the first row above the midline.
package predict

import (
	"github.com/nstehr/funnel/model"
	"github.com/nstehr/funnel/spatial"
)

// Tier names the stage that produced a verdict.
type Tier int

const (
	TierNone Tier = iota
	TierPath
	TierInvestment
	TierFrontier
)

func (t Tier) String() string {
	switch t {
	case TierPath:
		return "path"
	case TierInvestment:
		return "investment"
	case TierFrontier:
		return "frontier"
	}
	return "none"
}

type Result struct {
	Side int
	Tier Tier
}

type Predictor struct {
	cfg *model.Config
	sim model.Simulator
}

func New(cfg *model.Config, sim model.Simulator) *Predictor {
	return &Predictor{cfg: cfg, sim: sim}
}

// Predict runs the tiers in order and stops at the first determinate one.
func (p *Predictor) Predict(snap *model.Snapshot) Result {
	left, right := p.PathExits(snap)
	if side := combine(left, right); side != 0 {
		return Result{Side: side, Tier: TierPath}
	}
	if side, _, _ := p.Investment(snap); side != 0 {
		return Result{Side: side, Tier: TierInvestment}
	}
	if side := p.Frontier(snap); side != 0 {
		return Result{Side: side, Tier: TierFrontier}
	}
	return Result{}
}

func combine(left, right int) int {
	switch {
	case left != 0 && right != 0:
		if left == right {
			return left
		}
		return 0
	case left != 0:
		return left
	default:
		return right
	}
}

// PathExits walks the opponent's spawn edges in mirrored pairs from the centre
// outward and reports, for each edge, the side on which the first conclusive path
// crosses the opponent's frontier row.
func (p *Predictor) PathExits(snap *model.Snapshot) (left, right int) {
	if p.sim == nil {
		return 0, 0
	}
	arena := p.cfg.Arena
	lefts, rights := arena.Edge(model.TopLeft), arena.Edge(model.TopRight)
	for i := range lefts {
		if left == 0 {
			left = p.exit(snap, lefts[i])
		}
		if right == 0 {
			right = p.exit(snap, rights[i])
		}
		if left != 0 && right != 0 {
			break
		}
	}
	return left, right
}

func (p *Predictor) exit(snap *model.Snapshot, start model.Coord) int {
	if _, blocked := snap.StationaryAt(start); blocked {
		return 0
	}
	path := p.sim.PathToEdge(start)
	if len(path) == 0 {
		return 0
	}
	arena := p.cfg.Arena
	frontier := arena.Half()
	// Only a path that stalls on the opponent's half shows where its structures
	// funnel attackers; one that reaches our edge says nothing.
	if path[len(path)-1].Y < frontier {
		return 0
	}
	for i := len(path) - 1; i >= 0; i-- {
		if path[i].Y == frontier {
			return arena.Side(path[i].X)
		}
	}
	return 0
}

// Investment compares the structure currency the opponent has sunk into each
// quadrant of its half. The heavier side wins when it leads by the configured margin.
func (p *Predictor) Investment(snap *model.Snapshot) (side int, left, right float64) {
	arena := p.cfg.Arena
	h, size := arena.Half(), arena.Size
	opp := p.cfg.Opponent()
	for x := h; x < size; x++ {
		top := size + h - x // exclusive: rows h..size+h-1-x
		rcol := spatial.NewBox(snap, model.Coord{X: x, Y: top}, model.Coord{X: x + 1, Y: h})
		lx := arena.Mirror(model.Coord{X: x, Y: h}).X
		lcol := spatial.NewBox(snap, model.Coord{X: lx, Y: top}, model.Coord{X: lx + 1, Y: h})
		right += rcol.TotalCost(opp).SP
		left += lcol.TotalCost(opp).SP
	}
	margin := p.cfg.InvestmentMargin
	switch {
	case left >= right+margin:
		side = -1
	case right >= left+margin:
		side = 1
	}
	return side, left, right
}

// Frontier compares mirrored structures on the opponent's frontier row from the
// centre outward and predicts the side holding the weaker one at the first asymmetry.
func (p *Predictor) Frontier(snap *model.Snapshot) int {
	arena := p.cfg.Arena
	h := arena.Half()
	for k := 0; k < h; k++ {
		l, lok := snap.StationaryAt(model.Coord{X: h - 1 - k, Y: h})
		r, rok := snap.StationaryAt(model.Coord{X: h + k, Y: h})
		switch {
		case !lok && !rok:
			continue
		case !lok:
			return -1
		case !rok:
			return 1
		case !l.Upgraded && r.Upgraded:
			return -1
		case l.Upgraded && !r.Upgraded:
			return 1
		case l.PendingRemoval && !r.PendingRemoval:
			return -1
		case !l.PendingRemoval && r.PendingRemoval:
			return 1
		}
	}
	return 0
}
