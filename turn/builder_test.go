package turn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nstehr/funnel/model"
)

func snapshot(sp, mp float64) *model.Snapshot {
	s := model.EmptySnapshot(1, model.DefaultConfig())
	s.Resources[0] = model.ResourcePool{SP: sp, MP: mp}
	return s
}

func TestSpawnGatesPlacement(t *testing.T) {
	s := snapshot(10, 5)
	s.Place(model.Unit{Kind: model.Wall, X: 13, Y: 13})
	b := New(s)

	tests := []struct {
		name string
		kind model.UnitKind
		c    model.Coord
		want int
	}{
		{"outside arena", model.Wall, model.Coord{X: 0, Y: 0}, 0},
		{"opponent half", model.Wall, model.Coord{X: 13, Y: 14}, 0},
		{"occupied", model.Wall, model.Coord{X: 13, Y: 13}, 0},
		{"ok", model.Turret, model.Coord{X: 3, Y: 12}, 1},
		{"placed this turn", model.Wall, model.Coord{X: 3, Y: 12}, 0},
		{"mobile off edge", model.Scout, model.Coord{X: 13, Y: 5}, 0},
		{"mobile on edge", model.Scout, model.Coord{X: 13, Y: 0}, 1},
		{"remove marker", model.Remove, model.Coord{X: 14, Y: 0}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, b.Spawn(tc.kind, []model.Coord{tc.c}, 1))
		})
	}
	assert.Equal(t, model.ResourcePool{SP: 8, MP: 4}, b.Balance())
}

func TestSpawnNeverOverdraws(t *testing.T) {
	b := New(snapshot(3, 2.5))

	walls := []model.Coord{{X: 0, Y: 13}, {X: 1, Y: 13}, {X: 2, Y: 13}, {X: 3, Y: 13}}
	assert.Equal(t, 3, b.Spawn(model.Wall, walls, 1))
	assert.Equal(t, 2, b.Spawn(model.Scout, []model.Coord{{X: 13, Y: 0}}, 5))
	assert.Zero(t, b.Spawn(model.Demolisher, []model.Coord{{X: 14, Y: 0}}, 1))
	assert.GreaterOrEqual(t, b.Balance().SP, 0.0)
	assert.GreaterOrEqual(t, b.Balance().MP, 0.0)
	assert.Zero(t, b.Affordable(model.Wall))
}

func TestSpawnAndUpgradeAreIdempotent(t *testing.T) {
	b := New(snapshot(20, 0))
	locs := []model.Coord{{X: 3, Y: 12}, {X: 24, Y: 12}}

	assert.Equal(t, 2, b.Spawn(model.Turret, locs, 1))
	assert.Equal(t, 2, b.Upgrade(locs))
	before := b.Commands()

	assert.Zero(t, b.Spawn(model.Turret, locs, 1))
	assert.Zero(t, b.Upgrade(locs))
	assert.Equal(t, before, b.Commands())
	assert.Equal(t, 20.0-4-8, b.Balance().SP)
}

func TestRemoveOnlyOwnStandingStructures(t *testing.T) {
	s := snapshot(0, 0)
	s.Place(model.Unit{Kind: model.Wall, X: 5, Y: 10})
	s.Place(model.Unit{Kind: model.Wall, X: 6, Y: 10, PendingRemoval: true})
	s.Place(model.Unit{Kind: model.Wall, Owner: 1, X: 5, Y: 20})
	b := New(s)

	locs := []model.Coord{{X: 5, Y: 10}, {X: 6, Y: 10}, {X: 5, Y: 20}, {X: 7, Y: 10}, {X: 5, Y: 10}}
	assert.Equal(t, 1, b.Remove(locs))
}

func TestPhasesSeparateMobileSpawns(t *testing.T) {
	b := New(snapshot(10, 10))
	b.Spawn(model.Wall, []model.Coord{{X: 5, Y: 10}}, 1)
	b.Spawn(model.Scout, []model.Coord{{X: 13, Y: 0}}, 2)
	b.Upgrade([]model.Coord{{X: 5, Y: 10}})
	b.RemovePlaced([]model.Coord{{X: 5, Y: 10}})

	build, deploy := b.Phases()
	require.Len(t, build, 3)
	require.Len(t, deploy, 2)
	assert.Equal(t, OpSpawn, build[0].Op)
	assert.Equal(t, "FF", build[0].Unit)
	assert.Equal(t, OpUpgrade, build[1].Op)
	assert.Equal(t, OpRemove, build[2].Op)
	assert.Equal(t, "PI", deploy[0].Unit)
	assert.Equal(t, 2, b.Count(model.Scout))
}
