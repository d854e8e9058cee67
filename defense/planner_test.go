package defense

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nstehr/funnel/model"
	"github.com/nstehr/funnel/turn"
)

const threeStage = `
name: test
milestones:
  - turn: 0
    turrets: [[3, 12]]
    walls: [[0, 13], [1, 13]]
  - turn: 2
    walls: [[2, 13]]
    upgrades: [[3, 12]]
  - turn: 4
    supports: [[13, 2]]
`

func mustParse(t *testing.T, src string) *Build {
	t.Helper()
	b, err := parseBuild([]byte(src), "test.yaml")
	require.NoError(t, err)
	return b
}

func TestApplyTurnZeroOnEmptyBoard(t *testing.T) {
	reg := NewRegistry()
	p := NewPlanner(mustParse(t, threeStage), reg, model.Arena{Size: model.DefaultArenaSize})
	b := turn.New(emptyBoard(0, 40))

	out := p.Apply(b, func() int { t.Fatal("predict must not be called"); return 0 }, nil)

	assert.Equal(t, 3, out.Registered)
	assert.Equal(t, 3, out.Spawned)
	assert.Zero(t, out.Upgraded)
	assert.Equal(t, []turn.Command{
		{Op: turn.OpSpawn, Kind: model.Turret, Unit: "DF", X: 3, Y: 12},
		{Op: turn.OpSpawn, Kind: model.Wall, Unit: "FF", X: 0, Y: 13},
		{Op: turn.OpSpawn, Kind: model.Wall, Unit: "FF", X: 1, Y: 13},
	}, b.Commands())
	assert.Equal(t, []Expected{
		{Loc: model.Coord{X: 3, Y: 12}, Kind: model.Turret, Level: 1},
		{Loc: model.Coord{X: 0, Y: 13}, Kind: model.Wall, Level: 1},
		{Loc: model.Coord{X: 1, Y: 13}, Kind: model.Wall, Level: 1},
	}, reg.Entries())
}

func TestApplyIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	p := NewPlanner(mustParse(t, threeStage), reg, model.Arena{Size: model.DefaultArenaSize})
	b := turn.New(emptyBoard(4, 40))

	first := p.Apply(b, func() int { return 0 }, nil)
	cmds := b.Commands()
	entries := reg.Entries()
	second := p.Apply(b, func() int { return 0 }, nil)

	assert.Equal(t, 5, first.Registered)
	assert.Zero(t, second.Registered)
	assert.Zero(t, second.Spawned)
	assert.Zero(t, second.Upgraded)
	assert.Equal(t, cmds, b.Commands())
	assert.Equal(t, entries, reg.Entries())

	e, _ := reg.Get(model.Coord{X: 3, Y: 12})
	assert.Equal(t, 2, e.Level)
}

func TestApplySkipsSatisfiedStructures(t *testing.T) {
	s := emptyBoard(2, 40)
	s.Place(model.Unit{Kind: model.Turret, X: 3, Y: 12, Upgraded: true})
	s.Place(model.Unit{Kind: model.Wall, X: 0, Y: 13})
	s.Place(model.Unit{Kind: model.Wall, X: 1, Y: 13})
	p := NewPlanner(mustParse(t, threeStage), NewRegistry(), model.Arena{Size: model.DefaultArenaSize})
	b := turn.New(s)

	out := p.Apply(b, func() int { return 0 }, nil)
	assert.Equal(t, 1, out.Spawned)
	assert.Zero(t, out.Upgraded)
	assert.Len(t, b.Commands(), 1)
}

func TestApplyHoldsCells(t *testing.T) {
	reg := NewRegistry()
	p := NewPlanner(mustParse(t, threeStage), reg, model.Arena{Size: model.DefaultArenaSize})
	b := turn.New(emptyBoard(0, 40))

	out := p.Apply(b, func() int { return 0 }, map[model.Coord]bool{{X: 1, Y: 13}: true})
	assert.Equal(t, 3, out.Registered)
	assert.Equal(t, 2, out.Spawned)
	assert.False(t, b.Occupied(model.Coord{X: 1, Y: 13}))
	_, ok := reg.Get(model.Coord{X: 1, Y: 13})
	assert.True(t, ok)
}

func TestChoiceIsFrozen(t *testing.T) {
	builds, err := LoadBuilds("")
	require.NoError(t, err)
	reg := NewRegistry()
	p := NewPlanner(builds["funnel"], reg, model.Arena{Size: model.DefaultArenaSize})

	calls := 0
	left := func() int { calls++; return -1 }

	out := p.Apply(turn.New(emptyBoard(1, 100)), left, nil)
	assert.Equal(t, model.Coord{X: 1, Y: 12}, out.Choices["flank-first"])
	assert.Equal(t, 1, calls)

	right := func() int { calls++; return 1 }
	s := emptyBoard(2, 100)
	s.Place(model.Unit{Kind: model.Turret, X: 1, Y: 12, Upgraded: true})
	s.Place(model.Unit{Kind: model.Turret, X: 24, Y: 12})
	out = p.Apply(turn.New(s), right, nil)
	assert.Equal(t, model.Coord{X: 1, Y: 12}, out.Choices["flank-first"])
	assert.Equal(t, model.Coord{X: 24, Y: 12}, out.Choices["flank-second"])
	assert.Equal(t, 1, calls, "frozen choice must not re-predict")

	e, _ := reg.Get(model.Coord{X: 24, Y: 12})
	assert.Equal(t, 2, e.Level)
}

func TestNotUpgradedSkipsPendingUpgrade(t *testing.T) {
	b := mustParse(t, `
name: pair
milestones:
  - turn: 0
    turrets: [[3, 12], [24, 12]]
    choose: {key: a, by: predicted-side, candidates: [[24, 12], [3, 12]]}
    mirror: false
  - turn: 0
    choose: {key: b, by: not-upgraded, candidates: [[24, 12], [3, 12]]}
`)
	p := NewPlanner(b, NewRegistry(), model.Arena{Size: model.DefaultArenaSize})
	out := p.Apply(turn.New(emptyBoard(0, 40)), func() int { return 0 }, nil)

	assert.Equal(t, model.Coord{X: 24, Y: 12}, out.Choices["a"])
	assert.Equal(t, model.Coord{X: 3, Y: 12}, out.Choices["b"])
	assert.Equal(t, 2, out.Upgraded)
}

func TestMirrorAndReinforce(t *testing.T) {
	b := mustParse(t, `
name: sym
milestones:
  - turn: 0
    turrets: [[24, 12]]
    mirror: true
reinforce:
  left:
    - turn: 0
      walls: [[3, 13]]
`)
	reg := NewRegistry()
	p := NewPlanner(b, reg, model.Arena{Size: model.DefaultArenaSize})

	assert.False(t, p.Reinforce("right"))
	assert.True(t, p.Reinforce("left"))
	assert.False(t, p.Reinforce("left"))

	bld := turn.New(emptyBoard(0, 40))
	out := p.Apply(bld, func() int { return 0 }, nil)
	assert.Equal(t, 3, out.Spawned)
	_, ok := reg.Get(model.Coord{X: 3, Y: 12})
	assert.True(t, ok)
	_, ok = reg.Get(model.Coord{X: 3, Y: 13})
	assert.True(t, ok)
	assert.Equal(t, []string{"left"}, p.Reinforced())
}

func TestPatchOptionalRespectsHoles(t *testing.T) {
	builds, err := LoadBuilds("")
	require.NoError(t, err)
	s := emptyBoard(3, 10)
	s.Place(model.Unit{Kind: model.Wall, X: 27, Y: 13})
	p := NewPlanner(builds["funnel"], NewRegistry(), model.Arena{Size: model.DefaultArenaSize})

	b := turn.New(s)
	assert.Equal(t, 2, p.PatchOptional(b, nil))
	assert.Len(t, b.Commands(), 3)

	b = turn.New(s)
	assert.Equal(t, 1, p.PatchOptional(b, map[model.Coord]bool{{X: 26, Y: 13}: true}))
}

func TestEndgameSupportsMirror(t *testing.T) {
	builds, err := LoadBuilds("")
	require.NoError(t, err)
	p := NewPlanner(builds["funnel"], NewRegistry(), model.Arena{Size: model.DefaultArenaSize})

	right := p.EndgameSupports(false)
	left := p.EndgameSupports(true)
	require.Len(t, left, len(right))
	assert.Equal(t, model.Coord{X: 15, Y: 1}, right[0])
	assert.Equal(t, model.Coord{X: 12, Y: 1}, left[0])
}

func TestLoadBuilds(t *testing.T) {
	builds, err := LoadBuilds("")
	require.NoError(t, err)
	require.Contains(t, builds, "funnel")
	require.Contains(t, builds, "vwall")

	arena := model.Arena{Size: model.DefaultArenaSize}
	for name, b := range builds {
		p := NewPlanner(b, NewRegistry(), arena)
		for _, m := range b.Milestones {
			for _, c := range p.expand(append(append(m.Walls, m.Turrets...), m.Supports...), m.Mirror) {
				assert.True(t, arena.InArena(c) && arena.OwnHalf(0, c), "%s: %v", name, c)
			}
		}
	}

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.yaml"), []byte(threeStage), 0o644))
	builds, err = LoadBuilds(dir)
	require.NoError(t, err)
	assert.Contains(t, builds, "test")
}

func TestParseBuildRejectsBadTables(t *testing.T) {
	bad := []string{
		"name: x\nmilestones: []\n",
		"milestones:\n  - turn: 0\n",
		"name: x\nmilestones:\n  - turn: 0\n    walls: [[1, 2, 3]]\n",
		"name: x\nmilestones:\n  - turn: 0\n    choose: {key: k, by: coin-flip, candidates: [[1, 12]]}\n",
		"name: x\nmilestones:\n  - turn: -1\n",
		"name: x\nmilestones:\n  - turn: 0\nreinforce:\n  middle: []\n",
	}
	for _, src := range bad {
		_, err := parseBuild([]byte(src), "bad.yaml")
		assert.Error(t, err, src)
	}
}
