package robot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/field"
)

func TestMergeFillsUnknownOnly(t *testing.T) {
	env := newStartEnv(t, 4, 4, 0, 0)
	a := newTestAgent(t, env, 0, 1, 0)
	b := newTestAgent(t, env, 1, 1, 0)

	a.ownMap[0] = field.KnownCell(1)
	a.knownCells = 1
	b.ownMap[0] = field.KnownCell(99)
	b.ownMap[5] = field.KnownCell(2)
	b.ownMap[6] = field.ObstacleCell
	b.ownDisturbance[5] = components.Direction{DX: 1}
	a.ownDisturbance[7] = components.Direction{DY: 1}

	res, err := a.Merge(b.Export())
	require.NoError(t, err)
	assert.Equal(t, MergeResult{Cells: 2, Disturbances: 1}, res)
	assert.Equal(t, field.KnownCell(1), a.ownMap[0], "own knowledge wins")
	assert.Equal(t, field.KnownCell(2), a.ownMap[5])
	assert.Equal(t, field.ObstacleCell, a.ownMap[6])
	assert.False(t, a.ownMap[1].IsKnown())
	assert.Len(t, a.ownDisturbance, 2)
	assert.Equal(t, 3, a.knownCells)
}

func TestMergeIdempotent(t *testing.T) {
	env := newStartEnv(t, 4, 4, 0, 0)
	a := newTestAgent(t, env, 0, 1, 0)
	b := newTestAgent(t, env, 1, 1, 0)
	b.sense(env)
	b.ownDisturbance[3] = components.Direction{DX: -1}

	peer := b.Export()
	first, err := a.Merge(peer)
	require.NoError(t, err)
	assert.Positive(t, first.Cells)

	snapshot := a.Export()
	second, err := a.Merge(peer)
	require.NoError(t, err)
	assert.Equal(t, MergeResult{}, second)
	assert.Equal(t, snapshot, a.Export())
}

func TestMergeSizeMismatch(t *testing.T) {
	a := newTestAgent(t, newStartEnv(t, 4, 4, 0, 0), 0, 1, 0)
	_, err := a.Merge(MapExport{Cells: make([]field.Cell, 3)})
	assert.ErrorIs(t, err, ErrMapSize)
}

func TestExportIsACopy(t *testing.T) {
	a := newTestAgent(t, newStartEnv(t, 3, 3, 0, 0), 0, 1, 0)
	exp := a.Export()
	exp.Cells[0] = field.KnownCell(5)
	exp.Disturbance[1] = components.Direction{DX: 1}
	assert.False(t, a.ownMap[0].IsKnown())
	assert.Empty(t, a.ownDisturbance)
}
