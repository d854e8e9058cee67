package predict

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nstehr/funnel/model"
)

type fakeSim struct {
	paths map[model.Coord][]model.Coord
	asked []model.Coord
}

func (f *fakeSim) PathToEdge(c model.Coord) []model.Coord {
	f.asked = append(f.asked, c)
	return f.paths[c]
}

func (f *fakeSim) Attackers(model.Coord, int) []model.Unit { return nil }

// straight builds a path from start down column-wise to (crossX, 14) that is
// turned back and stalls one row up, on the opponent's half.
func straight(start model.Coord, crossX int) []model.Coord {
	path := []model.Coord{start}
	for y := start.Y - 1; y >= 14; y-- {
		path = append(path, model.Coord{X: crossX, Y: y})
	}
	return append(path, model.Coord{X: crossX, Y: 15})
}

// through is straight but carries on into our half and reaches the bottom edge.
func through(start model.Coord, crossX int) []model.Coord {
	path := straight(start, crossX)
	path = path[:len(path)-1]
	return append(path, model.Coord{X: crossX, Y: 13}, model.Coord{X: crossX, Y: 12})
}

func board(cfg *model.Config) *model.Snapshot {
	return model.EmptySnapshot(3, cfg)
}

func TestPredictEmptySymmetricBoard(t *testing.T) {
	cfg := model.DefaultConfig()

	assert.Equal(t, Result{}, New(cfg, nil).Predict(board(cfg)))

	sim := &fakeSim{paths: map[model.Coord][]model.Coord{
		{X: 13, Y: 27}: straight(model.Coord{X: 13, Y: 27}, 20),
		{X: 14, Y: 27}: straight(model.Coord{X: 14, Y: 27}, 7),
	}}
	assert.Equal(t, Result{}, New(cfg, sim).Predict(board(cfg)))
}

func TestPredictBothPathsExitRight(t *testing.T) {
	cfg := model.DefaultConfig()
	snap := board(cfg)
	// Heavy left investment would say -1 if the investment tier ran.
	for y := 14; y < 19; y++ {
		snap.Place(model.Unit{Kind: model.Turret, Owner: 1, X: 5, Y: y, Upgraded: true})
	}
	sim := &fakeSim{paths: map[model.Coord][]model.Coord{
		{X: 13, Y: 27}: straight(model.Coord{X: 13, Y: 27}, 20),
		{X: 14, Y: 27}: straight(model.Coord{X: 14, Y: 27}, 22),
	}}

	got := New(cfg, sim).Predict(snap)
	assert.Equal(t, Result{Side: 1, Tier: TierPath}, got)
	assert.Len(t, sim.asked, 2)
}

func TestPathExitsOneSided(t *testing.T) {
	cfg := model.DefaultConfig()
	snap := board(cfg)
	snap.Place(model.Unit{Kind: model.Wall, Owner: 1, X: 13, Y: 27})
	sim := &fakeSim{paths: map[model.Coord][]model.Coord{
		{X: 13, Y: 27}: straight(model.Coord{X: 13, Y: 27}, 20),
		// never reaches the frontier row: inconclusive
		{X: 14, Y: 27}: {{X: 14, Y: 27}, {X: 14, Y: 26}, {X: 15, Y: 20}},
		{X: 15, Y: 26}: straight(model.Coord{X: 15, Y: 26}, 3),
	}}

	p := New(cfg, sim)
	left, right := p.PathExits(snap)
	assert.Zero(t, left)
	assert.Equal(t, -1, right)
	assert.NotContains(t, sim.asked, model.Coord{X: 13, Y: 27})
	assert.Equal(t, Result{Side: -1, Tier: TierPath}, p.Predict(snap))
}

func TestPathExitsIgnoresPathsReachingOurEdge(t *testing.T) {
	cfg := model.DefaultConfig()
	snap := board(cfg)
	sim := &fakeSim{paths: map[model.Coord][]model.Coord{
		{X: 13, Y: 27}: through(model.Coord{X: 13, Y: 27}, 5),
		{X: 14, Y: 27}: through(model.Coord{X: 14, Y: 27}, 5),
		{X: 12, Y: 26}: straight(model.Coord{X: 12, Y: 26}, 20),
	}}

	left, right := New(cfg, sim).PathExits(snap)
	assert.Equal(t, 1, left)
	assert.Zero(t, right)
	assert.Equal(t, Result{Side: 1, Tier: TierPath}, New(cfg, sim).Predict(snap))
}

func TestPathExitsStalledPastFrontier(t *testing.T) {
	cfg := model.DefaultConfig()
	path := straight(model.Coord{X: 13, Y: 27}, 20)
	assert.Equal(t, 15, path[len(path)-1].Y)

	sim := &fakeSim{paths: map[model.Coord][]model.Coord{
		{X: 13, Y: 27}: path,
		{X: 14, Y: 27}: straight(model.Coord{X: 14, Y: 27}, 20),
	}}
	left, right := New(cfg, sim).PathExits(board(cfg))
	assert.Equal(t, 1, left)
	assert.Equal(t, 1, right)
}

func TestInvestmentLeftHeavier(t *testing.T) {
	infos := []model.UnitInfo{
		{Shorthand: "FF", Cost1: 1, StartHealth: 60},
		{Shorthand: "EF", Cost1: 12, StartHealth: 30},
	}
	cfg := model.NewConfig(0, infos, model.DefaultTunables())
	snap := board(cfg)
	snap.Place(model.Unit{Kind: model.Support, Owner: 1, X: 5, Y: 16})

	p := New(cfg, nil)
	side, left, right := p.Investment(snap)
	assert.Equal(t, -1, side)
	assert.Equal(t, 12.0, left)
	assert.Zero(t, right)
	assert.Equal(t, Result{Side: -1, Tier: TierInvestment}, p.Predict(snap))
}

func TestInvestmentBelowMargin(t *testing.T) {
	cfg := model.DefaultConfig()
	snap := board(cfg)
	snap.Place(model.Unit{Kind: model.Turret, Owner: 1, X: 22, Y: 15, Upgraded: true})
	// Own structures never count.
	snap.Place(model.Unit{Kind: model.Support, Owner: 0, X: 5, Y: 12})

	side, left, right := New(cfg, nil).Investment(snap)
	assert.Zero(t, side)
	assert.Zero(t, left)
	assert.Equal(t, 6.0, right)
}

func TestFrontierWeakerSide(t *testing.T) {
	cfg := model.DefaultConfig()
	wall := func(x int, upgraded, removing bool) model.Unit {
		return model.Unit{Kind: model.Wall, Owner: 1, X: x, Y: 14, Upgraded: upgraded, PendingRemoval: removing}
	}

	tests := []struct {
		name  string
		units []model.Unit
		want  int
	}{
		{"empty", nil, 0},
		{"symmetric", []model.Unit{wall(13, false, false), wall(14, false, false)}, 0},
		{"left empty", []model.Unit{wall(14, false, false)}, -1},
		{"right empty", []model.Unit{wall(13, false, false)}, 1},
		{"left not upgraded", []model.Unit{wall(11, false, false), wall(16, true, false)}, -1},
		{"right not upgraded", []model.Unit{wall(11, true, false), wall(16, false, false)}, 1},
		{"left removing", []model.Unit{wall(12, false, true), wall(15, false, false)}, -1},
		{"right removing", []model.Unit{wall(12, false, false), wall(15, false, true)}, 1},
		{"first asymmetry wins", []model.Unit{
			wall(13, false, false), wall(14, false, false),
			wall(12, false, false),
			wall(10, false, false),
		}, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			snap := board(cfg)
			for _, u := range tc.units {
				snap.Place(u)
			}
			p := New(cfg, nil)
			assert.Equal(t, tc.want, p.Frontier(snap))
			if tc.want != 0 {
				assert.Equal(t, Result{Side: tc.want, Tier: TierFrontier}, p.Predict(snap))
			}
		})
	}
}
