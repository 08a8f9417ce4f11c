package robot

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/field"
)

func newEnv(t *testing.T, rows, cols int) *field.Environment {
	t.Helper()
	env, err := field.NewEnvironment(rows, cols, field.DefaultParams())
	require.NoError(t, err)
	return env
}

// place moves a robot and republishes it, as if a cycle had ended there.
func place(a *Agent, x, y float64) {
	a.pos = components.Position{X: x, Y: y}
	a.publish()
}

func newTestAgent(t *testing.T, env *field.Environment, id int, sensor, comm float64) *Agent {
	t.Helper()
	a, err := NewAgent(env, id, sensor, comm, rand.New(rand.NewSource(int64(id)+1)))
	require.NoError(t, err)
	return a
}

func TestNewAgentEmptyStarts(t *testing.T) {
	env := newEnv(t, 10, 10)
	_, err := NewAgent(env, 0, 3, 3, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrEmptyStarts)

	_, err = Spawn(env, 3, 3, 3, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrEmptyStarts)
}

func TestNewAgentInitialState(t *testing.T) {
	env := newEnv(t, 10, 10)
	env.AddStart(1, 1)
	a := newTestAgent(t, env, 7, 3, 0)

	s := a.State()
	assert.Equal(t, 7, s.ID)
	assert.Equal(t, components.Position{X: 1, Y: 1}, s.Position, "no jitter on a 10x10 grid")
	assert.Equal(t, components.Velocity{}, s.Velocity)
	assert.Zero(t, s.Cycle)
	assert.Zero(t, s.KnownCells)
	for _, c := range a.ownMap {
		assert.False(t, c.IsKnown())
	}
}

func TestNewAgentJitterBounds(t *testing.T) {
	env := newEnv(t, 1000, 1000) // jitter bound 10
	env.AddStart(100, 200)
	env.AddStart(600, 700)
	rng := rand.New(rand.NewSource(99))

	seen := map[components.Point]bool{}
	for i := 0; i < 200; i++ {
		a, err := NewAgent(env, i, 5, 5, rng)
		require.NoError(t, err)
		p := a.State().Position
		near0 := p.X >= 90 && p.X <= 110 && p.Y >= 190 && p.Y <= 210
		near1 := p.X >= 590 && p.X <= 610 && p.Y >= 690 && p.Y <= 710
		assert.True(t, near0 || near1, "position %v outside jitter of any start", p)
		assert.Equal(t, float64(int(p.X)), p.X, "jitter is integral")
		if near0 {
			seen[components.Point{X: 100, Y: 200}] = true
		} else {
			seen[components.Point{X: 600, Y: 700}] = true
		}
	}
	assert.Len(t, seen, 2, "both starts get used")
}

func TestSwarm(t *testing.T) {
	env := newEnv(t, 10, 10)
	env.AddStart(2, 3)
	swarm, err := Spawn(env, 4, 3, 3, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 4, swarm.Len())

	s, ok := swarm.Lookup(2)
	require.True(t, ok)
	assert.Equal(t, 2, s.ID)
	_, ok = swarm.Lookup(9)
	assert.False(t, ok)

	states := swarm.States()
	require.Len(t, states, 4)
	for i, st := range states {
		assert.Equal(t, i, st.ID)
	}

	a := swarm.Agents()[0]
	_, err = NewSwarm([]*Agent{a, a})
	assert.ErrorIs(t, err, ErrDuplicateID)
}
