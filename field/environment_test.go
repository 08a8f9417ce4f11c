package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/config"
)

func TestNewEnvironmentInvalid(t *testing.T) {
	_, err := NewEnvironment(0, 10, DefaultParams())
	assert.ErrorIs(t, err, ErrInvalidDimensions)
	_, err = NewEnvironment(10, -1, DefaultParams())
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestEnvironmentOrderedLists(t *testing.T) {
	env, err := NewEnvironment(10, 10, DefaultParams())
	require.NoError(t, err)

	env.AddStart(1, 1)
	env.AddStart(1, 1)
	env.AddStart(3, 4)
	env.AddGoal(8, 8)
	env.AddGoal(2, 9)

	assert.Equal(t, []components.Point{{X: 1, Y: 1}, {X: 1, Y: 1}, {X: 3, Y: 4}}, env.Starts())
	assert.Equal(t, []components.Point{{X: 8, Y: 8}, {X: 2, Y: 9}}, env.Goals())

	// Returned slices are copies.
	starts := env.Starts()
	starts[0].X = 99
	assert.Equal(t, 1, env.Starts()[0].X)
}

func TestEnvironmentSeal(t *testing.T) {
	env, err := NewEnvironment(5, 5, DefaultParams())
	require.NoError(t, err)
	env.AddObstacle(2, 2)
	assert.False(t, env.Sealed())

	env.Seal()
	env.Seal()
	assert.True(t, env.Sealed())

	mutators := map[string]func(){
		"AddGoal":              func() { env.AddGoal(1, 1) },
		"AddStart":             func() { env.AddStart(1, 1) },
		"AddObstacle":          func() { env.AddObstacle(1, 1) },
		"AddRectangleObstacle": func() { env.AddRectangleObstacle(0, 0, 1, 1) },
		"AddCircleObstacle":    func() { env.AddCircleObstacle(1, 1, 1) },
		"AddDisturbance":       func() { env.AddDisturbance(1, 1, components.Direction{DX: 1}) },
	}
	for name, fn := range mutators {
		assert.Panics(t, fn, name)
	}
}

func TestEnvironmentValues(t *testing.T) {
	env, err := NewEnvironment(3, 3, DefaultParams())
	require.NoError(t, err)
	env.AddObstacle(1, 1)

	values := env.Values()
	require.Len(t, values, 9)
	assert.Equal(t, float32(ObstacleValue), values[4])
	assert.Equal(t, float32(0.1), values[0])

	env.Seal()
	sealed := env.Values()
	assert.Same(t, &sealed[0], &env.Values()[0], "sealed buffer is shared")
}

func TestDisturbancesCopy(t *testing.T) {
	env, err := NewEnvironment(5, 5, DefaultParams())
	require.NoError(t, err)
	env.AddDisturbance(2, 3, components.Direction{DX: 1, DY: 1})

	d := env.Disturbances()
	require.Len(t, d, 1)
	delete(d, 17)
	_, ok := env.Disturbance(17)
	assert.True(t, ok)
}

func TestAddVortex(t *testing.T) {
	env, err := NewEnvironment(50, 50, DefaultParams())
	require.NoError(t, err)
	AddVortex(env, 25, 25, 4, 6)

	// Spoke 0 points along +x: cell (25+j, 25) pushes (0, j/2).
	d, ok := env.Disturbance(25*50 + 25 + 5)
	require.True(t, ok)
	assert.Equal(t, components.Direction{DX: 0, DY: 2}, d)

	// Spoke 1 points along +y: cell (25, 25+j) pushes (-j/2, 0).
	d, ok = env.Disturbance((25+4)*50 + 25)
	require.True(t, ok)
	assert.Equal(t, components.Direction{DX: -2, DY: 0}, d)
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.World.Rows, cfg.World.Cols = 20, 30
	cfg.Scenario = config.ScenarioConfig{
		Starts:       []config.Point{{X: 1, Y: 1}},
		Goals:        []config.Point{{X: 15, Y: 10}},
		Rectangles:   []config.RectangleConfig{{ULX: 0, ULY: 18, LRX: 29, LRY: 19}},
		Circles:      []config.CircleConfig{{X: 25, Y: 5, Radius: 2}},
		Obstacles:    []config.Point{{X: 3, Y: 3}},
		Disturbances: []config.DisturbanceConfig{{X: 5, Y: 5, DX: 2, DY: 0}},
	}

	env, err := NewFromConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, 20, env.Rows())
	assert.Equal(t, 30, env.Cols())
	assert.Len(t, env.Starts(), 1)
	assert.Len(t, env.Goals(), 1)
	assert.Equal(t, Obstacle, env.Cell(19*30+10).Kind)
	assert.Equal(t, Obstacle, env.Cell(5*30+25).Kind)
	assert.Equal(t, Obstacle, env.Cell(3*30+3).Kind)
	assert.Greater(t, env.Cell(10*30+15).Value, 10.0)
	_, ok := env.Disturbance(5*30 + 5)
	assert.True(t, ok)
}
